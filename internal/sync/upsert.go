// internal/sync/upsert.go
package sync

import (
	"context"
	"fmt"

	"github.com/javajoker/storesync/internal/clients"
)

// Upserter commits one canonical document per call: create when no target
// identity was resolved, else patch with the full computed document. The
// write always happens — idempotence comes from convergent output for
// convergent input, not from suppressing the second write.
type Upserter struct {
	store ContentStore
}

func NewUpserter(store ContentStore) *Upserter {
	return &Upserter{store: store}
}

// Upsert returns the outcome of the write. A duplicate rejection from the
// store propagates as clients.ErrDuplicate for the caller's recovery path.
func (u *Upserter) Upsert(ctx context.Context, collection string, existing *clients.StoredDocument, doc interface{}) (RecordOutcome, error) {
	if existing == nil {
		if _, err := u.store.Create(ctx, collection, doc); err != nil {
			return OutcomeErrored, fmt.Errorf("failed to create %s document: %w", collection, err)
		}
		return OutcomeCreated, nil
	}

	if err := u.store.Patch(ctx, collection, existing.ID, doc); err != nil {
		return OutcomeErrored, fmt.Errorf("failed to patch %s/%s: %w", collection, existing.ID, err)
	}
	return OutcomeUpdated, nil
}
