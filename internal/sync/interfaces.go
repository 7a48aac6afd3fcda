// internal/sync/interfaces.go
package sync

import (
	"context"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/models"
)

// ContentStore is the shared mutable resource every canonical record lives
// in. All writes are full-field upserts keyed by external ID; there is no
// client-side locking, so last-write-wins is the consistency model.
type ContentStore interface {
	FindByField(ctx context.Context, collection, field, value string) (*clients.StoredDocument, error)
	Create(ctx context.Context, collection string, doc interface{}) (*clients.StoredDocument, error)
	Patch(ctx context.Context, collection, id string, doc interface{}) error
	Delete(ctx context.Context, collection, id string) error
}

// PriceAuthority is the payment processor, authoritative for price amounts
// once mirrored. Amounts are immutable on its side: a change is a
// deactivate-then-create pair.
type PriceAuthority interface {
	EnsureProduct(ctx context.Context, crmProductID, name string) (string, error)
	ListActivePrices(ctx context.Context, stripeProductID string) ([]clients.AuthorityPrice, error)
	CreatePrice(ctx context.Context, params clients.CreatePriceParams) (clients.AuthorityPrice, error)
	DeactivatePrice(ctx context.Context, priceID string) error
}

// CRM is the source of truth for record identity and detail payloads.
type CRM interface {
	GetProduct(ctx context.Context, productID string) (models.Payload, error)
	GetContact(ctx context.Context, contactID string) (models.Payload, error)
	GetOrder(ctx context.Context, orderID string) (models.Payload, error)
	GetInvoice(ctx context.Context, invoiceID string) (models.Payload, error)
	ListProducts(ctx context.Context, page, limit int) ([]models.Payload, error)
	ListContacts(ctx context.Context, page, limit int) ([]models.Payload, error)
}
