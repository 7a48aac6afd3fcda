// internal/sync/fakes_test.go
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/models"
)

type storedDoc struct {
	id         string
	collection string
	fields     map[string]interface{}
}

func (d *storedDoc) handle() *clients.StoredDocument {
	raw, _ := json.Marshal(d.fields)
	return &clients.StoredDocument{ID: d.id, Data: raw}
}

// fakeStore is an in-memory content store with the same find/create/patch/
// delete semantics the engine relies on, including set-fields patching and
// a duplicate-email rejection on create.
type fakeStore struct {
	nextID int
	docs   []*storedDoc

	findErr   error
	patchErr  error
	deleteErr error

	// rejectDuplicateEmail makes Create enforce email uniqueness on the
	// contacts collection, like the real store does.
	rejectDuplicateEmail bool
	// staleEmailLookups makes the first N email lookups miss, simulating
	// the store's duplicate check being more current than its query index.
	staleEmailLookups int

	createCalls int
	patchCalls  int
}

func (f *fakeStore) FindByField(_ context.Context, collection, field, value string) (*clients.StoredDocument, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if field == models.FieldEmail && f.staleEmailLookups > 0 {
		f.staleEmailLookups--
		return nil, nil
	}
	if d := f.find(collection, field, value); d != nil {
		return d.handle(), nil
	}
	return nil, nil
}

func (f *fakeStore) Create(_ context.Context, collection string, doc interface{}) (*clients.StoredDocument, error) {
	fields := toFields(doc)
	if f.rejectDuplicateEmail && collection == models.CollectionContacts {
		if email, _ := fields["email"].(string); email != "" {
			if f.find(collection, models.FieldEmail, email) != nil {
				return nil, clients.ErrDuplicate
			}
		}
	}

	f.createCalls++
	f.nextID++
	d := &storedDoc{
		id:         fmt.Sprintf("doc_%d", f.nextID),
		collection: collection,
		fields:     fields,
	}
	f.docs = append(f.docs, d)
	return d.handle(), nil
}

func (f *fakeStore) Patch(_ context.Context, collection, id string, doc interface{}) error {
	if f.patchErr != nil {
		return f.patchErr
	}
	f.patchCalls++
	for _, d := range f.docs {
		if d.collection == collection && d.id == id {
			for k, v := range toFields(doc) {
				d.fields[k] = v
			}
			return nil
		}
	}
	return clients.ErrNotFound
}

func (f *fakeStore) Delete(_ context.Context, collection, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, d := range f.docs {
		if d.collection == collection && d.id == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return clients.ErrNotFound
}

func (f *fakeStore) seed(collection string, fields map[string]interface{}) *storedDoc {
	f.nextID++
	d := &storedDoc{
		id:         fmt.Sprintf("doc_%d", f.nextID),
		collection: collection,
		fields:     fields,
	}
	f.docs = append(f.docs, d)
	return d
}

func (f *fakeStore) find(collection, field, value string) *storedDoc {
	for _, d := range f.docs {
		if d.collection != collection {
			continue
		}
		if s, ok := d.fields[field].(string); ok && s == value {
			return d
		}
	}
	return nil
}

func (f *fakeStore) inCollection(collection string) []*storedDoc {
	var out []*storedDoc
	for _, d := range f.docs {
		if d.collection == collection {
			out = append(out, d)
		}
	}
	return out
}

func toFields(doc interface{}) map[string]interface{} {
	raw, _ := json.Marshal(doc)
	var m map[string]interface{}
	_ = json.Unmarshal(raw, &m)
	return m
}

// fakeAuthority mirrors the immutable-price model: prices are only ever
// created or deactivated, never amended.
type fakeAuthority struct {
	nextID      int
	products    map[string]string // crm product id → authority product id
	prices      map[string][]clients.AuthorityPrice
	deactivated []string
	created     []clients.CreatePriceParams

	listErr   error
	ensureErr error
}

func newFakeAuthority() *fakeAuthority {
	return &fakeAuthority{
		products: make(map[string]string),
		prices:   make(map[string][]clients.AuthorityPrice),
	}
}

func (f *fakeAuthority) EnsureProduct(_ context.Context, crmProductID, _ string) (string, error) {
	if f.ensureErr != nil {
		return "", f.ensureErr
	}
	if id, ok := f.products[crmProductID]; ok {
		return id, nil
	}
	f.nextID++
	id := fmt.Sprintf("prod_%d", f.nextID)
	f.products[crmProductID] = id
	return id, nil
}

func (f *fakeAuthority) ListActivePrices(_ context.Context, stripeProductID string) ([]clients.AuthorityPrice, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]clients.AuthorityPrice(nil), f.prices[stripeProductID]...), nil
}

func (f *fakeAuthority) CreatePrice(_ context.Context, params clients.CreatePriceParams) (clients.AuthorityPrice, error) {
	f.nextID++
	created := clients.AuthorityPrice{
		ID:         fmt.Sprintf("price_%d", f.nextID),
		Amount:     params.Amount,
		Nickname:   params.Name,
		VariantKey: params.Key,
		SKU:        params.SKU,
	}
	f.prices[params.StripeProductID] = append(f.prices[params.StripeProductID], created)
	f.created = append(f.created, params)
	return created, nil
}

func (f *fakeAuthority) DeactivatePrice(_ context.Context, priceID string) error {
	f.deactivated = append(f.deactivated, priceID)
	for productID, prices := range f.prices {
		for i, p := range prices {
			if p.ID == priceID {
				f.prices[productID] = append(prices[:i], prices[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeAuthority) seedPrice(stripeProductID string, p clients.AuthorityPrice) {
	f.prices[stripeProductID] = append(f.prices[stripeProductID], p)
}

// fakeCRM serves canned payloads.
type fakeCRM struct {
	products map[string]models.Payload
	contacts map[string]models.Payload
	orders   map[string]models.Payload
	invoices map[string]models.Payload

	productPages [][]models.Payload
	contactPages [][]models.Payload

	err error
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{
		products: make(map[string]models.Payload),
		contacts: make(map[string]models.Payload),
		orders:   make(map[string]models.Payload),
		invoices: make(map[string]models.Payload),
	}
}

func (f *fakeCRM) get(m map[string]models.Payload, id string) (models.Payload, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("crm: %w", clients.ErrNotFound)
}

func (f *fakeCRM) GetProduct(_ context.Context, id string) (models.Payload, error) {
	return f.get(f.products, id)
}

func (f *fakeCRM) GetContact(_ context.Context, id string) (models.Payload, error) {
	return f.get(f.contacts, id)
}

func (f *fakeCRM) GetOrder(_ context.Context, id string) (models.Payload, error) {
	return f.get(f.orders, id)
}

func (f *fakeCRM) GetInvoice(_ context.Context, id string) (models.Payload, error) {
	return f.get(f.invoices, id)
}

func (f *fakeCRM) ListProducts(_ context.Context, page, _ int) ([]models.Payload, error) {
	if f.err != nil {
		return nil, f.err
	}
	if page > len(f.productPages) {
		return nil, nil
	}
	return f.productPages[page-1], nil
}

func (f *fakeCRM) ListContacts(_ context.Context, page, _ int) ([]models.Payload, error) {
	if f.err != nil {
		return nil, f.err
	}
	if page > len(f.contactPages) {
		return nil, nil
	}
	return f.contactPages[page-1], nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}
