package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBodyLimitRouter(limit int64, readErr *error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/products", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			*readErr = err
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusCreated)
	})
	router.GET("/products", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		body          string
		contentLength int64 // -1 hides the length from the middleware
		wantStatus    int
		wantTooLarge  bool
	}{
		{name: "payload under the limit", method: http.MethodPost, body: `{"name":"Widget"}`, contentLength: 17, wantStatus: http.StatusCreated},
		{name: "declared length over the limit", method: http.MethodPost, body: strings.Repeat("x", 65), contentLength: 65, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "streamed body over the limit", method: http.MethodPost, body: strings.Repeat("x", 65), contentLength: -1, wantStatus: http.StatusBadRequest, wantTooLarge: true},
		{name: "listing without body", method: http.MethodGet, contentLength: 0, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			router := newBodyLimitRouter(64, &readErr)

			req := httptest.NewRequest(tt.method, "/products", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusRequestEntityTooLarge {
				assert.Contains(t, w.Body.String(), "ERR_BODY_TOO_LARGE")
				assert.Contains(t, w.Body.String(), w.Header().Get(RequestIDHeader))
			}
			if tt.wantTooLarge {
				var maxErr *http.MaxBytesError
				require.True(t, errors.As(readErr, &maxErr), "got %v", readErr)
				assert.Equal(t, int64(64), maxErr.Limit)
			}
		})
	}
}
