package model

import (
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

type StockLevel string

const (
	StockIn    StockLevel = "in_stock"
	StockLow   StockLevel = "low_stock"
	StockEmpty StockLevel = "out_of_stock"
)

type Product struct {
	BaseModel
	BranchID          ID              `gorm:"type:varchar(64);not null;index" json:"branch_id"`
	SKU               string          `gorm:"type:varchar(64);index" json:"sku"`
	Name              string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Description       *string         `gorm:"type:text" json:"description,omitempty"`
	QuantityInStock   int             `gorm:"not null;default:0" json:"quantity_in_stock"`
	MinimumStockLevel int             `gorm:"not null;default:0" json:"minimum_stock_level"`
	PurchasePrice     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"purchase_price"`
	SalePrice         decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"sale_price"`
	Status            ProductStatus   `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	ImageURL          *string         `gorm:"type:text" json:"image_url,omitempty"`
	Location          *string         `gorm:"type:varchar(100)" json:"location,omitempty"`

	// Relasi varian: satu parent, banyak varian
	IsVariant       bool    `gorm:"not null;default:false" json:"is_variant"`
	ParentProductID *ID     `gorm:"type:varchar(64);index" json:"parent_product_id,omitempty"`
	VariantName     *string `gorm:"type:varchar(100)" json:"variant_name,omitempty"`

	Transactions []StockTransaction `gorm:"constraint:OnDelete:CASCADE;" json:"transactions,omitempty"`
}

// DisplayName is the label used on transactions and lists, with the variant suffix
// for variants.
func (p *Product) DisplayName() string {
	if p.IsVariant && p.VariantName != nil && *p.VariantName != "" {
		return p.Name + " - " + *p.VariantName
	}
	return p.Name
}

// VariantLabel is the name variants are ordered by.
func (p *Product) VariantLabel() string {
	if p.VariantName != nil && *p.VariantName != "" {
		return *p.VariantName
	}
	return p.Name
}

// StockLevel classifies the on-hand quantity against the minimum stock level.
func (p *Product) StockLevel() StockLevel {
	switch {
	case p.QuantityInStock <= 0:
		return StockEmpty
	case p.QuantityInStock <= p.MinimumStockLevel:
		return StockLow
	default:
		return StockIn
	}
}
