// internal/handlers/sync.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storesync/internal/sync"
)

// SyncHandler exposes the polling passes to an external scheduler.
type SyncHandler struct {
	orchestrator *sync.Orchestrator
}

func NewSyncHandler(orchestrator *sync.Orchestrator) *SyncHandler {
	return &SyncHandler{
		orchestrator: orchestrator,
	}
}

// POST /sync/products
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	summary, err := h.orchestrator.SyncAllProducts(c.Request.Context())
	logSummary("product-poll", summary)
	respondWithSummary(c, summary, err)
}

// POST /sync/contacts
func (h *SyncHandler) SyncContacts(c *gin.Context) {
	summary, err := h.orchestrator.SyncAllContacts(c.Request.Context())
	logSummary("contact-poll", summary)
	respondWithSummary(c, summary, err)
}

func logSummary(trigger string, s *sync.Summary) {
	logrus.WithFields(logrus.Fields{
		"run_id":      s.RunID,
		"trigger":     trigger,
		"created":     s.Created,
		"updated":     s.Updated,
		"deleted":     s.Deleted,
		"skipped":     s.Skipped,
		"errored":     s.Errored,
		"duration_ms": s.DurationMs,
	}).Info("Sync pass finished")
}
