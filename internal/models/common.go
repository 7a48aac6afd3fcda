// internal/models/common.go
package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Content-store documents carry prices as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// PaymentStatus is derived from amounts, never trusted from the source.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusVoid    PaymentStatus = "void"
)

// DerivePaymentStatus computes payment status from the amounts on a
// financial document. A source-side cancellation overrides both paid and
// partial.
func DerivePaymentStatus(total, amountPaid decimal.Decimal, cancelled bool) PaymentStatus {
	if cancelled {
		return PaymentStatusVoid
	}
	if amountPaid.GreaterThan(decimal.Zero) && amountPaid.GreaterThanOrEqual(total) {
		return PaymentStatusPaid
	}
	if amountPaid.GreaterThan(decimal.Zero) {
		return PaymentStatusPartial
	}
	return PaymentStatusUnpaid
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

func (a Address) IsEmpty() bool {
	return a == Address{}
}

// Collection names in the content store.
const (
	CollectionProducts = "products"
	CollectionContacts = "contacts"
	CollectionOrders   = "orders"
	CollectionInvoices = "invoices"
)

// External-ID field names the resolver queries on.
const (
	FieldCRMProductID = "crmProductId"
	FieldCRMContactID = "crmContactId"
	FieldCRMOrderID   = "crmOrderId"
	FieldCRMInvoiceID = "crmInvoiceId"
	FieldEmail        = "email"
)
