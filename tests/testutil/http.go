package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PerformRequest sends a request through handler and returns the recorded response.
// A non-nil body is encoded as JSON.
func PerformRequest(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// JSONResponse parses the response body as JSON.
func JSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var result map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &result)
	require.NoError(t, err, "Failed to parse JSON response: %s", w.Body.String())
	return result
}

// ResponseData returns the "data" member of a success envelope.
func ResponseData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	resp := JSONResponse(t, w)
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "Expected data object in response: %s", w.Body.String())
	return data
}

// AssertSuccessResponse asserts the response is a successful API response.
func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()

	resp := JSONResponse(t, w)
	assert.Equal(t, true, resp["success"], "Expected success to be true: %s", w.Body.String())
	assert.Nil(t, resp["error"], "Expected no error")
}

// AssertErrorResponse asserts the response is an error API response with the given code.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) map[string]any {
	t.Helper()

	resp := JSONResponse(t, w)
	assert.Equal(t, false, resp["success"], "Expected success to be false")

	errMap, ok := resp["error"].(map[string]any)
	require.True(t, ok, "Expected error object in response: %s", w.Body.String())
	assert.Equal(t, expectedCode, errMap["code"], "Unexpected error code")
	return errMap
}
