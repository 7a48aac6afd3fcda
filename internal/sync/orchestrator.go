// internal/sync/orchestrator.go
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/config"
	"github.com/javajoker/storesync/internal/models"
)

// Webhook event types.
const (
	EventCreated    = "created"
	EventUpdated    = "updated"
	EventDeleted    = "deleted"
	EventArchived   = "archived"
	EventTagUpdated = "tag-updated"
)

// Per-record pipeline stages. A record can fail at any stage; the stage at
// failure is reported in its result.
const (
	StageReceived            = "received"
	StageResolvingIdentity   = "resolving-identity"
	StageFetchingDetail      = "fetching-detail"
	StageNormalizing         = "normalizing"
	StageReconcilingVariants = "reconciling-variants"
	StageUpserting           = "upserting"
	StageDone                = "done"
)

type RecordOutcome string

const (
	OutcomeCreated RecordOutcome = "created"
	OutcomeUpdated RecordOutcome = "updated"
	OutcomeDeleted RecordOutcome = "deleted"
	OutcomeSkipped RecordOutcome = "skipped"
	OutcomeErrored RecordOutcome = "errored"
)

// RecordResult is the per-record outcome reported back to the trigger.
type RecordResult struct {
	ExternalID string        `json:"external_id"`
	Outcome    RecordOutcome `json:"outcome"`
	Stage      string        `json:"stage"`
	Error      string        `json:"error,omitempty"`
}

// Summary aggregates one orchestrator run. Webhook deliveries produce a
// one-record summary; cron passes produce one entry per record.
type Summary struct {
	RunID      uuid.UUID      `json:"run_id"`
	Trigger    string         `json:"trigger"`
	Created    int            `json:"created"`
	Updated    int            `json:"updated"`
	Deleted    int            `json:"deleted"`
	Skipped    int            `json:"skipped"`
	Errored    int            `json:"errored"`
	Records    []RecordResult `json:"records"`
	StartedAt  time.Time      `json:"started_at"`
	DurationMs int64          `json:"duration_ms"`
}

func newSummary(trigger string) *Summary {
	return &Summary{
		RunID:     uuid.New(),
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}
}

func (s *Summary) add(res RecordResult) {
	s.Records = append(s.Records, res)
	switch res.Outcome {
	case OutcomeCreated:
		s.Created++
	case OutcomeUpdated:
		s.Updated++
	case OutcomeDeleted:
		s.Deleted++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeErrored:
		s.Errored++
	}
}

func (s *Summary) finish() *Summary {
	s.DurationMs = time.Since(s.StartedAt).Milliseconds()
	return s
}

// Orchestrator drives the fixed per-record pipeline for all four record
// types and the two polling passes. Records are processed sequentially —
// no internal fan-out — which bounds load on the store and both
// authorities and keeps per-record error isolation simple.
type Orchestrator struct {
	crm        CRM
	store      ContentStore
	resolver   *Resolver
	normalizer *Normalizer
	reconciler *PriceReconciler
	upserter   *Upserter
	pageSize   int
	logger     *logrus.Entry
}

func NewOrchestrator(crm CRM, store ContentStore, authority PriceAuthority, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		crm:        crm,
		store:      store,
		resolver:   NewResolver(store),
		normalizer: NewNormalizer(),
		reconciler: NewPriceReconciler(authority),
		upserter:   NewUpserter(store),
		pageSize:   cfg.Sync.PageSize,
		logger:     logrus.WithField("component", "sync"),
	}
}

// recordFlow parameterizes the generic pipeline for one record type. Only
// collection, externalIDField, externalID, fetch and normalize are
// mandatory; the optional hooks cover the product reconcile step, the
// contact email fallback and merge, the contact duplicate-create recovery,
// and the invoice payment-status propagation.
type recordFlow struct {
	collection      string
	externalIDField string
	externalID      string

	fetch     func(ctx context.Context) (models.Payload, error)
	normalize func(payload models.Payload) (interface{}, error)

	// resolveFallback runs after normalization when the ID lookup missed,
	// for types with a secondary identity key.
	resolveFallback func(ctx context.Context, doc interface{}) (*clients.StoredDocument, error)
	// reconcile mutates the document against the price authority. Its
	// failure downgrades the record to skipped without touching storage.
	reconcile func(ctx context.Context, payload models.Payload, doc interface{}, existing *clients.StoredDocument) error
	// merge folds the stored document into the incoming one before the
	// patch.
	merge func(doc interface{}, existing *clients.StoredDocument) (interface{}, error)
	// onDuplicate recovers from a store-side duplicate rejection on create.
	onDuplicate func(ctx context.Context, doc interface{}) (RecordOutcome, error)
	// afterUpsert runs side effects that depend on the committed document.
	afterUpsert func(ctx context.Context, doc interface{}) error
}

// syncRecord runs one record through the pipeline. The returned error is
// non-nil only for run-fatal conditions: identity resolution against an
// unreachable store, where no record can be processed safely. Every other
// failure is folded into the record's own result.
func (o *Orchestrator) syncRecord(ctx context.Context, flow recordFlow) (RecordResult, error) {
	res := RecordResult{ExternalID: flow.externalID, Stage: StageReceived}
	log := o.logger.WithFields(logrus.Fields{
		"collection": flow.collection,
		"record":     flow.externalID,
	})

	res.Stage = StageResolvingIdentity
	existing, err := o.resolver.ResolveByExternalID(ctx, flow.collection, flow.externalIDField, flow.externalID)
	if err != nil {
		res.Outcome = OutcomeErrored
		res.Error = err.Error()
		return res, err
	}

	res.Stage = StageFetchingDetail
	payload, err := flow.fetch(ctx)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			// Deleted upstream before the detail fetch completed: a skip,
			// not an error.
			res.Outcome = OutcomeSkipped
			res.Error = err.Error()
			log.WithError(err).Info("Record vanished upstream, skipping")
			return res, nil
		}
		res.Outcome = OutcomeErrored
		res.Error = err.Error()
		log.WithError(err).Warn("Detail fetch failed")
		return res, nil
	}

	res.Stage = StageNormalizing
	doc, err := flow.normalize(payload)
	if err != nil {
		res.Outcome = OutcomeErrored
		res.Error = err.Error()
		return res, nil
	}

	if existing == nil && flow.resolveFallback != nil {
		res.Stage = StageResolvingIdentity
		existing, err = flow.resolveFallback(ctx, doc)
		if err != nil {
			res.Outcome = OutcomeErrored
			res.Error = err.Error()
			return res, err
		}
		res.Stage = StageNormalizing
	}

	if flow.reconcile != nil {
		res.Stage = StageReconcilingVariants
		if err := flow.reconcile(ctx, payload, doc, existing); err != nil {
			res.Outcome = OutcomeSkipped
			res.Error = err.Error()
			log.WithError(err).Warn("Price reconciliation failed, record skipped")
			return res, nil
		}
	}

	if existing != nil && flow.merge != nil {
		if doc, err = flow.merge(doc, existing); err != nil {
			res.Outcome = OutcomeErrored
			res.Error = err.Error()
			return res, nil
		}
	}

	res.Stage = StageUpserting
	outcome, err := o.upserter.Upsert(ctx, flow.collection, existing, doc)
	if err != nil {
		if errors.Is(err, clients.ErrDuplicate) && flow.onDuplicate != nil {
			// The store's own duplicate check is more current than our
			// lookup; recover in-process instead of failing the record.
			outcome, err = flow.onDuplicate(ctx, doc)
		}
		if err != nil {
			res.Outcome = OutcomeErrored
			res.Error = err.Error()
			log.WithError(err).Warn("Upsert failed")
			return res, nil
		}
	}

	if flow.afterUpsert != nil {
		if err := flow.afterUpsert(ctx, doc); err != nil {
			res.Outcome = OutcomeErrored
			res.Error = err.Error()
			log.WithError(err).Warn("Post-upsert propagation failed")
			return res, nil
		}
	}

	res.Stage = StageDone
	res.Outcome = outcome
	log.WithField("outcome", outcome).Info("Record synced")
	return res, nil
}

// deleteRecord handles delete/archive events: resolve and delete, no
// normalization or reconciliation.
func (o *Orchestrator) deleteRecord(ctx context.Context, collection, field, externalID string) (RecordResult, error) {
	res := RecordResult{ExternalID: externalID, Stage: StageResolvingIdentity}

	existing, err := o.resolver.ResolveByExternalID(ctx, collection, field, externalID)
	if err != nil {
		res.Outcome = OutcomeErrored
		res.Error = err.Error()
		return res, err
	}
	if existing == nil {
		res.Outcome = OutcomeSkipped
		return res, nil
	}

	res.Stage = StageUpserting
	if err := o.store.Delete(ctx, collection, existing.ID); err != nil {
		res.Outcome = OutcomeErrored
		res.Error = err.Error()
		return res, nil
	}

	res.Stage = StageDone
	res.Outcome = OutcomeDeleted
	o.logger.WithFields(logrus.Fields{
		"collection": collection,
		"record":     externalID,
	}).Info("Record deleted")
	return res, nil
}
