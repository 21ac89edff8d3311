package handler

import (
	"github.com/gin-gonic/gin"
	auditapp "github.com/inventa/backend/internal/application/audit"
)

// AuditHandler exposes the audit trail. Records are read-only over the API
// apart from the administrative delete.
type AuditHandler struct {
	BaseHandler
	queryService *auditapp.QueryService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(queryService *auditapp.QueryService) *AuditHandler {
	return &AuditHandler{queryService: queryService}
}

// List returns audit records, newest first.
// Query: table, action, page, per_page
func (h *AuditHandler) List(c *gin.Context) {
	var req auditapp.ListAuditsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	page, err := h.queryService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Page(c, page)
}

// GetByID returns one audit record with its change payload
func (h *AuditHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	record, err := h.queryService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// Delete removes an audit record
func (h *AuditHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.queryService.Delete(c.Request.Context(), id, actorID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Immutable answers create and edit attempts with 405
func (h *AuditHandler) Immutable(c *gin.Context) {
	c.Header("Allow", "GET, DELETE")
	h.MethodNotAllowed(c, "Audit records cannot be created or modified")
}
