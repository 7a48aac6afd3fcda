// internal/sync/order.go
package sync

import (
	"context"
	"fmt"

	"github.com/javajoker/storesync/internal/models"
)

// SyncOrderEvent handles one order webhook delivery. Orders have no
// deletion path; cancellations arrive as status updates.
func (o *Orchestrator) SyncOrderEvent(ctx context.Context, orderID string) (*Summary, error) {
	summary := newSummary("order-webhook")

	res, err := o.syncRecord(ctx, recordFlow{
		collection:      models.CollectionOrders,
		externalIDField: models.FieldCRMOrderID,
		externalID:      orderID,
		fetch: func(ctx context.Context) (models.Payload, error) {
			return o.crm.GetOrder(ctx, orderID)
		},
		normalize: func(payload models.Payload) (interface{}, error) {
			doc := o.normalizer.Order(payload)
			if doc.CRMOrderID == "" {
				doc.CRMOrderID = orderID
			}
			return doc, nil
		},
	})

	summary.add(res)
	return summary.finish(), err
}

// markOrderPaid patches the linked order's payment status. Used by the
// invoice flow when a paid invoice carries an order cross-reference.
func (o *Orchestrator) markOrderPaid(ctx context.Context, crmOrderID string) error {
	existing, err := o.resolver.ResolveByExternalID(ctx, models.CollectionOrders, models.FieldCRMOrderID, crmOrderID)
	if err != nil {
		return err
	}
	if existing == nil {
		// The order may simply not be mirrored yet; its own sync will
		// derive the paid status from the CRM amounts.
		return nil
	}

	patch := map[string]interface{}{"paymentStatus": models.PaymentStatusPaid}
	if err := o.store.Patch(ctx, models.CollectionOrders, existing.ID, patch); err != nil {
		return fmt.Errorf("failed to propagate payment status to order %s: %w", crmOrderID, err)
	}
	return nil
}
