package handler

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	appaudit "github.com/inventa/backend/internal/application/audit"
	catalogapp "github.com/inventa/backend/internal/application/catalog"
	identityapp "github.com/inventa/backend/internal/application/identity"
	"github.com/inventa/backend/internal/infrastructure/persistence"
	"github.com/inventa/backend/internal/interfaces/http/middleware"
	"github.com/inventa/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// actorHeader lets tests pick the acting user without issuing tokens
const actorHeader = "X-Test-Actor"

type testAPI struct {
	router *gin.Engine
	db     *persistence.Database
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	log := zaptest.NewLogger(t)

	auditRepo := persistence.NewGormAuditRepository(db.DB)
	recorder := appaudit.NewRecorder(persistence.NewGormTransactionScope(db.DB), log)
	audits := appaudit.NewQueryService(auditRepo, log)

	products := NewProductHandler(catalogapp.NewProductService(
		persistence.NewGormProductRepository(db.DB), recorder, audits))
	users := NewUserHandler(identityapp.NewUserService(
		persistence.NewGormUserRepository(db.DB), recorder, audits))
	auditHandler := NewAuditHandler(audits)

	router := gin.New()
	router.Use(middleware.RequestID(), func(c *gin.Context) {
		if raw := c.GetHeader(actorHeader); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			require.NoError(t, err)
			c.Set(middleware.ActorIDKey, id)
		}
		c.Next()
	})

	p := router.Group("/products")
	p.GET("", products.List)
	p.POST("", products.Create)
	p.GET("/trashed", products.ListTrashed)
	p.GET("/graveyard", products.Graveyard)
	p.GET("/:id", products.GetByID)
	p.PUT("/:id", products.Update)
	p.DELETE("/:id", products.Delete)
	p.POST("/:id/restore", products.Restore)
	p.DELETE("/:id/force", products.ForceDelete)

	u := router.Group("/users")
	u.GET("", users.List)
	u.POST("", users.Create)
	u.GET("/trashed", users.ListTrashed)
	u.GET("/graveyard", users.Graveyard)
	u.GET("/:id", users.GetByID)
	u.PUT("/:id", users.Update)
	u.DELETE("/:id", users.Delete)
	u.POST("/:id/restore", users.Restore)
	u.DELETE("/:id/force", users.ForceDelete)

	a := router.Group("/audits")
	a.GET("", auditHandler.List)
	a.POST("", auditHandler.Immutable)
	a.GET("/:id", auditHandler.GetByID)
	a.PUT("/:id", auditHandler.Immutable)
	a.PATCH("/:id", auditHandler.Immutable)
	a.DELETE("/:id", auditHandler.Delete)

	return &testAPI{router: router, db: db}
}

func (api *testAPI) do(t *testing.T, method, path string, body any) map[string]any {
	t.Helper()
	w := testutil.PerformRequest(t, api.router, method, path, body, map[string]string{actorHeader: "1"})
	if w.Code == http.StatusNoContent {
		return nil
	}
	return testutil.JSONResponse(t, w)
}

func idOf(t *testing.T, data map[string]any) string {
	t.Helper()
	id, ok := data["id"].(float64)
	require.True(t, ok, "missing id in %v", data)
	return strconv.FormatUint(uint64(id), 10)
}
