package catalog

import (
	"time"

	appaudit "github.com/inventa/backend/internal/application/audit"
	"github.com/inventa/backend/internal/domain/catalog"
	"github.com/inventa/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product.
// Code is a base: the stored code gets a two digit sequence appended.
type CreateProductRequest struct {
	Name     string           `json:"name" binding:"required,max=255"`
	Code     string           `json:"code" binding:"max=253"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Quantity *int64           `json:"quantity" binding:"required,min=0"`
}

// UpdateProductRequest represents a request to update a product.
// An empty code keeps the current one.
type UpdateProductRequest struct {
	Name     string           `json:"name" binding:"required,max=255"`
	Code     string           `json:"code" binding:"max=255"`
	Price    *decimal.Decimal `json:"price" binding:"required"`
	Quantity *int64           `json:"quantity" binding:"required,min=0"`
}

// ListProductsRequest holds the product listing query parameters
type ListProductsRequest struct {
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

// GraveyardRequest pages the two halves of the graveyard view independently
type GraveyardRequest struct {
	Page         int `form:"page"`
	PerPage      int `form:"per_page"`
	AuditPage    int `form:"audit_page"`
	AuditPerPage int `form:"audit_per_page"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt *time.Time      `json:"deleted_at,omitempty"`
}

// GraveyardResponse lists trashed products next to the records of permanently deleted ones
type GraveyardResponse struct {
	Trashed shared.Paginated[ProductResponse]        `json:"trashed"`
	Deleted shared.Paginated[appaudit.AuditResponse] `json:"deleted"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Code:      p.Code,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		DeletedAt: p.DeletedAt,
	}
}
