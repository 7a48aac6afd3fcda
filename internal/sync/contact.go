// internal/sync/contact.go
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/models"
)

// SyncContactEvent handles one contact webhook delivery, including the
// delete path and tag-only updates.
func (o *Orchestrator) SyncContactEvent(ctx context.Context, eventType, contactID string) (*Summary, error) {
	summary := newSummary("contact-webhook")

	var res RecordResult
	var err error
	switch eventType {
	case EventDeleted, EventArchived:
		res, err = o.deleteRecord(ctx, models.CollectionContacts, models.FieldCRMContactID, contactID)
	default:
		res, err = o.syncRecord(ctx, o.contactFlow(contactID))
	}

	summary.add(res)
	return summary.finish(), err
}

// SyncAllContacts pages through the CRM contact list and runs the contact
// flow for each record.
func (o *Orchestrator) SyncAllContacts(ctx context.Context) (*Summary, error) {
	summary := newSummary("contact-poll")

	for page := 1; ; page++ {
		payloads, err := o.crm.ListContacts(ctx, page, o.pageSize)
		if err != nil {
			return summary.finish(), fmt.Errorf("failed to list contacts (page %d): %w", page, err)
		}
		if len(payloads) == 0 {
			break
		}

		for _, payload := range payloads {
			contactID := payload.String(contactIDSources...)
			if contactID == "" {
				summary.add(RecordResult{Outcome: OutcomeSkipped, Stage: StageReceived, Error: "payload carries no contact id"})
				continue
			}

			flow := o.contactFlow(contactID)
			flow.fetch = func(context.Context) (models.Payload, error) { return payload, nil }

			res, err := o.syncRecord(ctx, flow)
			summary.add(res)
			if err != nil {
				return summary.finish(), err
			}
		}

		if len(payloads) < o.pageSize {
			break
		}
	}

	return summary.finish(), nil
}

func (o *Orchestrator) contactFlow(contactID string) recordFlow {
	return recordFlow{
		collection:      models.CollectionContacts,
		externalIDField: models.FieldCRMContactID,
		externalID:      contactID,
		fetch: func(ctx context.Context) (models.Payload, error) {
			return o.crm.GetContact(ctx, contactID)
		},
		normalize: func(payload models.Payload) (interface{}, error) {
			doc := o.normalizer.Contact(payload)
			if doc.CRMContactID == "" {
				doc.CRMContactID = contactID
			}
			if doc.Email == "" {
				return nil, fmt.Errorf("contact %s has no email", contactID)
			}
			return doc, nil
		},
		resolveFallback: func(ctx context.Context, doc interface{}) (*clients.StoredDocument, error) {
			return o.resolver.ResolveByEmail(ctx, doc.(*models.Contact).Email)
		},
		merge:       o.mergeStoredContact,
		onDuplicate: o.recoverDuplicateContact,
	}
}

// mergeStoredContact folds the stored contact into the incoming document:
// tag union plus non-empty-only field overlay.
func (o *Orchestrator) mergeStoredContact(doc interface{}, existing *clients.StoredDocument) (interface{}, error) {
	incoming := doc.(*models.Contact)

	var stored models.Contact
	if err := json.Unmarshal(existing.Data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode stored contact: %w", err)
	}
	return MergeContact(incoming, &stored), nil
}

// recoverDuplicateContact handles a create rejected by the store's own
// uniqueness check. That check is more current than any lookup this run
// performed, so the recovery is attempted even when the resolver's email
// fallback missed: search by email, merge tags, patch.
func (o *Orchestrator) recoverDuplicateContact(ctx context.Context, doc interface{}) (RecordOutcome, error) {
	incoming := doc.(*models.Contact)

	existing, err := o.resolver.ResolveByEmail(ctx, incoming.Email)
	if err != nil {
		return OutcomeErrored, fmt.Errorf("duplicate recovery lookup failed: %w", err)
	}
	if existing == nil {
		return OutcomeErrored, fmt.Errorf("store rejected contact %s as duplicate but no match found by email", incoming.CRMContactID)
	}

	merged, err := o.mergeStoredContact(incoming, existing)
	if err != nil {
		return OutcomeErrored, err
	}
	if err := o.store.Patch(ctx, models.CollectionContacts, existing.ID, merged); err != nil {
		return OutcomeErrored, fmt.Errorf("duplicate recovery patch failed: %w", err)
	}
	return OutcomeUpdated, nil
}
