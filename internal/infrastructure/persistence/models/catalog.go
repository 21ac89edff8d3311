package models

import (
	"github.com/inventa/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is a row of the products table
type ProductModel struct {
	SoftDeleteModel
	Name     string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_products_name"`
	Code     string          `gorm:"type:varchar(255);not null;default:'';index"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Quantity int64           `gorm:"not null;default:0"`
}

func (ProductModel) TableName() string {
	return catalog.TableName
}

func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		SoftDeletableEntity: m.SoftDeletable(),
		Name:                m.Name,
		Code:                m.Code,
		Price:               m.Price,
		Quantity:            m.Quantity,
	}
}

// ProductModelFromDomain maps p onto a row, id and timestamps included
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	return &ProductModel{
		SoftDeleteModel: newSoftDeleteModel(p.SoftDeletableEntity),
		Name:            p.Name,
		Code:            p.Code,
		Price:           p.Price,
		Quantity:        p.Quantity,
	}
}

// CodeSequenceModel holds the last sequence number issued for a code base
type CodeSequenceModel struct {
	Base      string `gorm:"type:varchar(255);primaryKey"`
	LastValue int    `gorm:"not null"`
}

func (CodeSequenceModel) TableName() string {
	return "product_code_sequences"
}
