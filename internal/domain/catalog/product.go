package catalog

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/inventa/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TableName is the audit table identifier for products
const TableName = "products"

// Field limits
const (
	MaxNameLength = 255
	MaxCodeLength = 255
	PriceScale    = 2
)

// Product represents a stocked item
type Product struct {
	shared.SoftDeletableEntity
	Name     string
	Code     string
	Price    decimal.Decimal
	Quantity int64
}

// NewProduct creates a new product.
// The code must already be generated (see GenerateCode); it is stored as given.
func NewProduct(name, code string, price decimal.Decimal, quantity int64) (*Product, error) {
	verr := &shared.ValidationError{}
	validateName(verr, name)
	validateCode(verr, code)
	validatePrice(verr, price)
	validateQuantity(verr, quantity)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Product{
		SoftDeletableEntity: shared.SoftDeletableEntity{
			BaseEntity: shared.BaseEntity{CreatedAt: now, UpdatedAt: now},
		},
		Name:     strings.TrimSpace(name),
		Code:     code,
		Price:    price.Round(PriceScale),
		Quantity: quantity,
	}, nil
}

// Update replaces the editable attributes.
// An empty code keeps the current one.
func (p *Product) Update(name, code string, price decimal.Decimal, quantity int64) error {
	verr := &shared.ValidationError{}
	validateName(verr, name)
	validateCode(verr, code)
	validatePrice(verr, price)
	validateQuantity(verr, quantity)
	if err := verr.OrNil(); err != nil {
		return err
	}

	p.Name = strings.TrimSpace(name)
	if code = strings.TrimSpace(code); code != "" {
		p.Code = code
	}
	p.Price = price.Round(PriceScale)
	p.Quantity = quantity
	p.UpdatedAt = time.Now()
	return nil
}

// Snapshot returns the public attribute set recorded in audit payloads
func (p *Product) Snapshot() map[string]any {
	var deletedAt any
	if p.DeletedAt != nil {
		deletedAt = *p.DeletedAt
	}
	return map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"code":       p.Code,
		"price":      p.Price.StringFixed(PriceScale),
		"quantity":   p.Quantity,
		"created_at": p.CreatedAt,
		"updated_at": p.UpdatedAt,
		"deleted_at": deletedAt,
	}
}

func validateName(verr *shared.ValidationError, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr.Add("name", "is required")
		return
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		verr.Add("name", "cannot exceed 255 characters")
	}
}

func validateCode(verr *shared.ValidationError, code string) {
	if utf8.RuneCountInString(code) > MaxCodeLength {
		verr.Add("code", "cannot exceed 255 characters")
	}
}

func validatePrice(verr *shared.ValidationError, price decimal.Decimal) {
	if price.IsNegative() {
		verr.Add("price", "cannot be negative")
	}
}

func validateQuantity(verr *shared.ValidationError, quantity int64) {
	if quantity < 0 {
		verr.Add("quantity", "cannot be negative")
	}
}
