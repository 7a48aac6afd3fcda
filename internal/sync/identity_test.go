// internal/sync/identity_test.go
package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storesync/internal/models"
)

func TestResolveByExternalID(t *testing.T) {
	store := &fakeStore{}
	store.seed(models.CollectionProducts, map[string]interface{}{
		"crmProductId": "p1",
		"name":         "Cedar Bucket",
	})
	r := NewResolver(store)

	doc, err := r.ResolveByExternalID(context.Background(), models.CollectionProducts, models.FieldCRMProductID, "p1")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "doc_1", doc.ID)

	// A miss is (nil, nil), never an error.
	doc, err = r.ResolveByExternalID(context.Background(), models.CollectionProducts, models.FieldCRMProductID, "p-unknown")
	require.NoError(t, err)
	assert.Nil(t, doc)

	// An empty id never reaches the store.
	doc, err = r.ResolveByExternalID(context.Background(), models.CollectionProducts, models.FieldCRMProductID, "")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestResolveDistinguishesMissFromFailure(t *testing.T) {
	store := &fakeStore{findErr: errors.New("store unreachable")}
	r := NewResolver(store)

	_, err := r.ResolveByExternalID(context.Background(), models.CollectionProducts, models.FieldCRMProductID, "p1")
	require.Error(t, err, "a backend failure must not look like a miss")
	assert.Contains(t, err.Error(), "identity lookup")
}

func TestResolveContactFallsBackToEmail(t *testing.T) {
	store := &fakeStore{}
	store.seed(models.CollectionContacts, map[string]interface{}{
		"crmContactId": "c1",
		"email":        "jordan@example.com",
	})
	r := NewResolver(store)

	// Unknown CRM id, known email.
	doc, err := r.ResolveContact(context.Background(), "c2", "Jordan@Example.com ")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "doc_1", doc.ID)

	// Known CRM id short-circuits the email lookup.
	doc, err = r.ResolveContact(context.Background(), "c1", "other@example.com")
	require.NoError(t, err)
	require.NotNil(t, doc)
}

func TestResolveByEmailEmpty(t *testing.T) {
	r := NewResolver(&fakeStore{})
	doc, err := r.ResolveByEmail(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, doc)
}
