package handler

import (
	"net/http"
	"testing"

	"github.com/inventa/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditHandler_ListAndGet(t *testing.T) {
	api := newTestAPI(t)
	id := idOf(t, createProduct(t, api, "Widget", "wid"))
	api.do(t, http.MethodDelete, "/products/"+id, nil)
	createUser(t, api, "Ada", "ada@example.com")

	all := api.do(t, http.MethodGet, "/audits", nil)
	records := all["data"].([]any)
	require.Len(t, records, 3)
	assert.Equal(t, "users", records[0].(map[string]any)["affected_table"], "newest first")
	assert.Equal(t, float64(20), all["meta"].(map[string]any)["page_size"])

	filtered := api.do(t, http.MethodGet, "/audits?table=products&action=delete", nil)
	deletes := filtered["data"].([]any)
	require.Len(t, deletes, 1)
	record := deletes[0].(map[string]any)
	assert.Equal(t, float64(1), record["actor_id"])

	w := testutil.PerformRequest(t, api.router, http.MethodGet, "/audits?table=orders", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorResponse(t, w, "ERR_VALIDATION")

	got := api.do(t, http.MethodGet, "/audits/"+idOf(t, record), nil)["data"].(map[string]any)
	changes := got["changes"].(map[string]any)
	assert.Equal(t, "Widget", changes["deleted"].(map[string]any)["name"])

	w = testutil.PerformRequest(t, api.router, http.MethodGet, "/audits/9999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditHandler_Delete(t *testing.T) {
	api := newTestAPI(t)
	createProduct(t, api, "Widget", "")
	record := api.do(t, http.MethodGet, "/audits", nil)["data"].([]any)[0].(map[string]any)
	path := "/audits/" + idOf(t, record)

	w := testutil.PerformRequest(t, api.router, http.MethodDelete, path, nil, map[string]string{actorHeader: "1"})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = testutil.PerformRequest(t, api.router, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditHandler_Immutable(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/audits"},
		{http.MethodPut, "/audits/1"},
		{http.MethodPatch, "/audits/1"},
	} {
		t.Run(tc.method, func(t *testing.T) {
			w := testutil.PerformRequest(t, api.router, tc.method, tc.path, map[string]any{"action": "create"}, nil)
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, "GET, DELETE", w.Header().Get("Allow"))
			testutil.AssertErrorResponse(t, w, "ERR_METHOD_NOT_ALLOWED")
		})
	}
}
