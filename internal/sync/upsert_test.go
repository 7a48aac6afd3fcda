// internal/sync/upsert_test.go
package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/models"
)

func TestUpsertCreatesWhenNoTarget(t *testing.T) {
	store := &fakeStore{}
	u := NewUpserter(store)

	outcome, err := u.Upsert(context.Background(), models.CollectionProducts, nil,
		&models.Product{CRMProductID: "p1", Name: "Cedar Bucket"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)
	assert.Len(t, store.inCollection(models.CollectionProducts), 1)
}

func TestUpsertPatchesResolvedTarget(t *testing.T) {
	store := &fakeStore{}
	seeded := store.seed(models.CollectionProducts, map[string]interface{}{
		"crmProductId": "p1",
		"name":         "Old Name",
	})
	u := NewUpserter(store)

	outcome, err := u.Upsert(context.Background(), models.CollectionProducts, seeded.handle(),
		&models.Product{CRMProductID: "p1", Name: "New Name"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)
	assert.Len(t, store.inCollection(models.CollectionProducts), 1)
	assert.Equal(t, "New Name", seeded.fields["name"])
}

func TestUpsertPropagatesDuplicate(t *testing.T) {
	store := &fakeStore{rejectDuplicateEmail: true}
	store.seed(models.CollectionContacts, map[string]interface{}{
		"crmContactId": "c1",
		"email":        "jordan@example.com",
	})
	u := NewUpserter(store)

	_, err := u.Upsert(context.Background(), models.CollectionContacts, nil,
		&models.Contact{CRMContactID: "c2", Email: "jordan@example.com"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, clients.ErrDuplicate), "duplicate rejection must stay recognizable for recovery")
}
