// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/config"
	"github.com/javajoker/storesync/internal/handlers"
	"github.com/javajoker/storesync/internal/middleware"
	"github.com/javajoker/storesync/internal/sync"
)

func Initialize(cfg *config.Config) *gin.Engine {
	// Initialize clients
	crmClient := clients.NewCRMClient(cfg.CRM, cfg.RequestTimeout())
	storeClient := clients.NewContentStoreClient(cfg.ContentStore, cfg.RequestTimeout())
	priceService := clients.NewStripePriceService(cfg.Stripe)

	orchestrator := sync.NewOrchestrator(crmClient, storeClient, priceService, cfg)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(orchestrator)
	syncHandler := handlers.NewSyncHandler(orchestrator)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Webhook routes: GET is the unauthenticated verification
		// handshake, POST carries deliveries behind the shared secret.
		webhooks := v1.Group("/webhooks")
		webhooks.Use(middleware.WebhookRateLimit())
		{
			webhooks.GET("/products", webhookHandler.VerifyWebhook)
			webhooks.GET("/orders", webhookHandler.VerifyWebhook)
			webhooks.GET("/invoices", webhookHandler.VerifyWebhook)
			webhooks.GET("/contacts", webhookHandler.VerifyWebhook)

			protected := webhooks.Group("")
			protected.Use(middleware.WebhookAuth(cfg.Webhook.Secret))
			{
				protected.POST("/products", webhookHandler.ProductWebhook)
				protected.POST("/orders", webhookHandler.OrderWebhook)
				protected.POST("/invoices", webhookHandler.InvoiceWebhook)
				protected.POST("/contacts", webhookHandler.ContactWebhook)
			}
		}

		// Polling triggers for the external scheduler
		syncRoutes := v1.Group("/sync")
		syncRoutes.Use(middleware.SyncRateLimit(), middleware.WebhookAuth(cfg.Webhook.Secret))
		{
			syncRoutes.POST("/products", syncHandler.SyncProducts)
			syncRoutes.POST("/contacts", syncHandler.SyncContacts)
		}
	}

	return r
}
