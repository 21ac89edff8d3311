package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/inventa/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		wantEcho bool
	}{
		{name: "absent header gets a uuid"},
		{name: "client id is kept", incoming: "upstream-7f3a", wantEcho: true},
		{name: "id at the length cap is kept", incoming: strings.Repeat("a", MaxRequestIDLength), wantEcho: true},
		{name: "oversized id is replaced", incoming: strings.Repeat("a", MaxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var inGin, inCtx string
			r := gin.New()
			r.Use(RequestID())
			r.GET("/products", func(c *gin.Context) {
				inGin = GetRequestID(c)
				inCtx = logger.GetRequestID(c.Request.Context())
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/products", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(RequestIDHeader)
			if tt.wantEcho {
				assert.Equal(t, tt.incoming, got)
			} else {
				_, err := uuid.Parse(got)
				require.NoError(t, err, "want a generated uuid, got %q", got)
			}
			assert.Equal(t, got, inGin)
			assert.Equal(t, got, inCtx)
		})
	}
}

func TestGetRequestID_OutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))
}

func TestSecure(t *testing.T) {
	r := gin.New()
	r.Use(Secure())
	r.GET("/products", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": []int{}}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	for header, want := range map[string]string{
		"X-Frame-Options":         "DENY",
		"X-Content-Type-Options":  "nosniff",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
	} {
		assert.Equal(t, want, w.Header().Get(header), header)
	}
}
