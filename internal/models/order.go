// internal/models/order.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// LineItem is one product line on an order or invoice.
type LineItem struct {
	CRMProductID string          `json:"crmProductId,omitempty"`
	Name         string          `json:"name"`
	VariantName  string          `json:"variantName,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Total        decimal.Decimal `json:"total"`
}

// Order is a financial document mirrored read-mostly from the CRM.
type Order struct {
	CRMOrderID      string          `json:"crmOrderId"`
	Number          string          `json:"number,omitempty"`
	CRMContactID    string          `json:"crmContactId,omitempty"`
	LineItems       []LineItem      `json:"lineItems,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	BillingAddress  *Address        `json:"billingAddress,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Invoice carries an optional cross-reference to its order so a paid
// invoice can propagate payment status.
type Invoice struct {
	CRMInvoiceID   string          `json:"crmInvoiceId"`
	Number         string          `json:"number,omitempty"`
	CRMContactID   string          `json:"crmContactId,omitempty"`
	CRMOrderID     string          `json:"crmOrderId,omitempty"`
	LineItems      []LineItem      `json:"lineItems,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	PaymentStatus  PaymentStatus   `json:"paymentStatus"`
	BillingAddress *Address        `json:"billingAddress,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}
