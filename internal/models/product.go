// internal/models/product.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Badge string

const (
	BadgeNew        Badge = "new"
	BadgeSale       Badge = "sale"
	BadgeBestSeller Badge = "best-seller"
	BadgeLimited    Badge = "limited"
)

// Image is one product image as rendered on the site. PriceID associates
// the image with a specific variant's authority price when set.
type Image struct {
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
	PriceID  string `json:"priceId,omitempty"`
	Featured bool   `json:"featured,omitempty"`
}

// Variant is one priced unit of a product, backed by one active authority
// price object.
type Variant struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	PriceID   string          `json:"priceId,omitempty"`
	SKU       string          `json:"sku,omitempty"`
	Available bool            `json:"available"`
}

// Specification is a label/value pair shown on the product page.
type Specification struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Product is the canonical document stored in the content store. Field
// names match the content-store schema, so the struct marshals directly
// into create and patch bodies.
type Product struct {
	CRMProductID    string           `json:"crmProductId"`
	StripeProductID string           `json:"stripeProductId,omitempty"`
	Name            string           `json:"name"`
	Slug            string           `json:"slug"`
	Description     string           `json:"description,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	SalePrice       *decimal.Decimal `json:"salePrice,omitempty"`
	Images          []Image          `json:"images,omitempty"`
	Category        string           `json:"category,omitempty"`
	Collection      string           `json:"collection,omitempty"`
	Features        []string         `json:"features,omitempty"`
	Variants        []Variant        `json:"variants"`
	InStock         bool             `json:"inStock"`
	StockCount      *int             `json:"stockCount,omitempty"`
	Badge           Badge            `json:"badge,omitempty"`
	SEOTitle        string           `json:"seoTitle,omitempty"`
	SEODescription  string           `json:"seoDescription,omitempty"`
	Specifications  []Specification  `json:"specifications,omitempty"`
	IsActive        bool             `json:"isActive"`
	PublishedAt     time.Time        `json:"publishedAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// DesiredPrice is one price the CRM payload asks the authority to carry.
// Key is the stable logical-variant identity: when an amount changes the
// replacement authority price keeps the same key so later syncs recognize
// it as the same variant.
type DesiredPrice struct {
	Key    string
	Name   string
	Amount decimal.Decimal
	SKU    string
}
