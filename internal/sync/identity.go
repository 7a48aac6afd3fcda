// internal/sync/identity.go
package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/models"
)

// Resolver maps an external record identity to the matching content-store
// document. It is a pure read: a miss is (nil, nil), and a backend read
// failure is an error — the two are never conflated, because a retryable
// error reported as "not found" would become a fresh duplicate create.
type Resolver struct {
	store ContentStore
}

func NewResolver(store ContentStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveByExternalID finds the document whose external-ID field exactly
// matches id.
func (r *Resolver) ResolveByExternalID(ctx context.Context, collection, field, id string) (*clients.StoredDocument, error) {
	if id == "" {
		return nil, nil
	}
	doc, err := r.store.FindByField(ctx, collection, field, id)
	if err != nil {
		return nil, fmt.Errorf("identity lookup for %s/%s=%s: %w", collection, field, id, err)
	}
	return doc, nil
}

// ResolveContact looks up by CRM contact ID first and falls back to an
// email match. The same human can arrive through two flows (form submit,
// newsletter) before an ID is known, and both must land on one document.
func (r *Resolver) ResolveContact(ctx context.Context, crmContactID, email string) (*clients.StoredDocument, error) {
	doc, err := r.ResolveByExternalID(ctx, models.CollectionContacts, models.FieldCRMContactID, crmContactID)
	if err != nil || doc != nil {
		return doc, err
	}
	return r.ResolveByEmail(ctx, email)
}

// ResolveByEmail finds a contact by its case-insensitive email key.
func (r *Resolver) ResolveByEmail(ctx context.Context, email string) (*clients.StoredDocument, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	doc, err := r.store.FindByField(ctx, models.CollectionContacts, models.FieldEmail, email)
	if err != nil {
		return nil, fmt.Errorf("email lookup for %s: %w", email, err)
	}
	return doc, nil
}
