// internal/sync/product.go
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/models"
)

// SyncProductEvent handles one product webhook delivery.
func (o *Orchestrator) SyncProductEvent(ctx context.Context, eventType, productID string) (*Summary, error) {
	summary := newSummary("product-webhook")

	var res RecordResult
	var err error
	switch eventType {
	case EventDeleted, EventArchived:
		res, err = o.deleteRecord(ctx, models.CollectionProducts, models.FieldCRMProductID, productID)
	default:
		res, err = o.syncRecord(ctx, o.productFlow(productID))
	}

	summary.add(res)
	return summary.finish(), err
}

// SyncAllProducts pages through the CRM catalog and runs the full product
// flow for each record. One record's failure never aborts the pass; a
// resolver-level failure does, since no record can be processed without
// identity resolution.
func (o *Orchestrator) SyncAllProducts(ctx context.Context) (*Summary, error) {
	summary := newSummary("product-poll")

	for page := 1; ; page++ {
		payloads, err := o.crm.ListProducts(ctx, page, o.pageSize)
		if err != nil {
			return summary.finish(), fmt.Errorf("failed to list products (page %d): %w", page, err)
		}
		if len(payloads) == 0 {
			break
		}

		for _, payload := range payloads {
			productID := payload.String(productIDSources...)
			if productID == "" {
				summary.add(RecordResult{Outcome: OutcomeSkipped, Stage: StageReceived, Error: "payload carries no product id"})
				continue
			}

			flow := o.productFlow(productID)
			// The list payload is the detail payload in bulk mode; no
			// second fetch per record.
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

func (o *Orchestrator) productFlow(productID string) recordFlow {
	return recordFlow{
		collection:      models.CollectionProducts,
		externalIDField: models.FieldCRMProductID,
		externalID:      productID,
		fetch: func(ctx context.Context) (models.Payload, error) {
			return o.crm.GetProduct(ctx, productID)
		},
		normalize: func(payload models.Payload) (interface{}, error) {
			doc := o.normalizer.Product(payload)
			if doc.CRMProductID == "" {
				doc.CRMProductID = productID
			}
			if doc.Name == "" {
				return nil, fmt.Errorf("product %s has no usable name", productID)
			}
			return doc, nil
		},
		reconcile: o.reconcileProduct,
	}
}

// reconcileProduct settles the document's variant list against the price
// authority and derives the base price.
func (o *Orchestrator) reconcileProduct(ctx context.Context, payload models.Payload, doc interface{}, existing *clients.StoredDocument) error {
	product := doc.(*models.Product)

	if product.StripeProductID == "" && existing != nil {
		var stored models.Product
		if err := json.Unmarshal(existing.Data, &stored); err == nil {
			product.StripeProductID = stored.StripeProductID
		}
	}
	if product.StripeProductID == "" {
		id, err := o.reconciler.authority.EnsureProduct(ctx, product.CRMProductID, product.Name)
		if err != nil {
			return fmt.Errorf("failed to mirror product %s: %w", product.CRMProductID, err)
		}
		product.StripeProductID = id
	}

	desired := o.normalizer.DesiredPrices(payload)
	variants, err := o.reconciler.Reconcile(ctx, product.StripeProductID, product.CRMProductID, desired)
	if err != nil {
		return err
	}

	product.Variants = variants
	if base, ok := BasePrice(variants); ok {
		product.Price = base
	}
	return nil
}
