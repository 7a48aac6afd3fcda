// internal/sync/invoice.go
package sync

import (
	"context"

	"github.com/javajoker/storesync/internal/models"
)

// SyncInvoiceEvent handles one invoice webhook delivery. When the
// normalized invoice is paid and cross-references an order, the paid
// status propagates to that order.
func (o *Orchestrator) SyncInvoiceEvent(ctx context.Context, invoiceID string) (*Summary, error) {
	summary := newSummary("invoice-webhook")

	res, err := o.syncRecord(ctx, recordFlow{
		collection:      models.CollectionInvoices,
		externalIDField: models.FieldCRMInvoiceID,
		externalID:      invoiceID,
		fetch: func(ctx context.Context) (models.Payload, error) {
			return o.crm.GetInvoice(ctx, invoiceID)
		},
		normalize: func(payload models.Payload) (interface{}, error) {
			doc := o.normalizer.Invoice(payload)
			if doc.CRMInvoiceID == "" {
				doc.CRMInvoiceID = invoiceID
			}
			return doc, nil
		},
		afterUpsert: func(ctx context.Context, doc interface{}) error {
			invoice := doc.(*models.Invoice)
			if invoice.PaymentStatus != models.PaymentStatusPaid || invoice.CRMOrderID == "" {
				return nil
			}
			return o.markOrderPaid(ctx, invoice.CRMOrderID)
		},
	})

	summary.add(res)
	return summary.finish(), err
}
