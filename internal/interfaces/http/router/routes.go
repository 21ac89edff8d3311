package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inventa/backend/internal/interfaces/http/handler"
)

// TrashableResource is implemented by handlers of soft-deletable entities
type TrashableResource interface {
	List(c *gin.Context)
	ListTrashed(c *gin.Context)
	Graveyard(c *gin.Context)
	GetByID(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Restore(c *gin.Context)
	ForceDelete(c *gin.Context)
}

// ResourceRoutes is the route table of a soft-deletable resource:
// CRUD, the trash and graveyard listings, restore and purge.
func ResourceRoutes(name, prefix string, h TrashableResource) Resource {
	return Resource{
		Name:   name,
		Prefix: prefix,
		Routes: []Route{
			{http.MethodGet, "", h.List},
			{http.MethodPost, "", h.Create},
			{http.MethodGet, "/trashed", h.ListTrashed},
			{http.MethodGet, "/graveyard", h.Graveyard},
			{http.MethodGet, "/:id", h.GetByID},
			{http.MethodPut, "/:id", h.Update},
			{http.MethodDelete, "/:id", h.Delete},
			{http.MethodPost, "/:id/restore", h.Restore},
			{http.MethodDelete, "/:id/force", h.ForceDelete},
		},
	}
}

// AuditRoutes is the route table of the audit trail. Create and edit verbs
// are routed to a 405 so they are not mistaken for unknown paths.
func AuditRoutes(h *handler.AuditHandler) Resource {
	return Resource{
		Name:   "audit",
		Prefix: "/audits",
		Routes: []Route{
			{http.MethodGet, "", h.List},
			{http.MethodPost, "", h.Immutable},
			{http.MethodGet, "/:id", h.GetByID},
			{http.MethodPut, "/:id", h.Immutable},
			{http.MethodPatch, "/:id", h.Immutable},
			{http.MethodDelete, "/:id", h.Delete},
		},
	}
}
