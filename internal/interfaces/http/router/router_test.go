package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func echoMethod(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }

func TestRouter_Prefix(t *testing.T) {
	assert.Equal(t, "/api/v1", NewRouter(gin.New()).Prefix())
	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).Prefix())
}

func TestRouter_MountsResources(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).
		Use(func(c *gin.Context) {
			c.Header("X-Api", "yes")
			c.Next()
		}).
		Mount(Resource{
			Name:   "items",
			Prefix: "/items",
			Middleware: []gin.HandlerFunc{func(c *gin.Context) {
				c.Header("X-Resource", "items")
				c.Next()
			}},
			Routes: []Route{
				{http.MethodGet, "", echoMethod},
				{http.MethodPost, "", echoMethod},
				{http.MethodPatch, "/:id", echoMethod},
			},
		}).
		Setup()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/items"},
		{http.MethodPost, "/api/v1/items"},
		{http.MethodPatch, "/api/v1/items/3"},
	} {
		w := serve(engine, tc.method, tc.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, tc.method, w.Body.String())
		assert.Equal(t, "yes", w.Header().Get("X-Api"))
		assert.Equal(t, "items", w.Header().Get("X-Resource"))
	}

	w := serve(engine, http.MethodGet, "/health")
	assert.Empty(t, w.Header().Get("X-Api"), "versioned middleware stays off unversioned routes")
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodDelete, "/api/v1/items/3").Code)
}

type recordingResource struct{}

func (recordingResource) reply(name string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, name) }
}

func (r recordingResource) List(c *gin.Context)        { r.reply("list")(c) }
func (r recordingResource) ListTrashed(c *gin.Context) { r.reply("trashed")(c) }
func (r recordingResource) Graveyard(c *gin.Context)   { r.reply("graveyard")(c) }
func (r recordingResource) GetByID(c *gin.Context)     { r.reply("get")(c) }
func (r recordingResource) Create(c *gin.Context)      { r.reply("create")(c) }
func (r recordingResource) Update(c *gin.Context)      { r.reply("update")(c) }
func (r recordingResource) Delete(c *gin.Context)      { r.reply("delete")(c) }
func (r recordingResource) Restore(c *gin.Context)     { r.reply("restore")(c) }
func (r recordingResource) ForceDelete(c *gin.Context) { r.reply("force")(c) }

func TestResourceRoutes(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Mount(ResourceRoutes("catalog", "/products", recordingResource{})).Setup()

	tests := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/v1/products", "list"},
		{http.MethodPost, "/api/v1/products", "create"},
		{http.MethodGet, "/api/v1/products/trashed", "trashed"},
		{http.MethodGet, "/api/v1/products/graveyard", "graveyard"},
		{http.MethodGet, "/api/v1/products/7", "get"},
		{http.MethodPut, "/api/v1/products/7", "update"},
		{http.MethodDelete, "/api/v1/products/7", "delete"},
		{http.MethodPost, "/api/v1/products/7/restore", "restore"},
		{http.MethodDelete, "/api/v1/products/7/force", "force"},
	}
	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.want, w.Body.String(), "%s %s", tt.method, tt.path)
	}
}
