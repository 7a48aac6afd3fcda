// cmd/sync/main.go
//
// One-shot polling runner for an external scheduler: each cron tick starts
// one process, which runs the selected passes sequentially and exits
// non-zero on a run-fatal failure.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storesync/internal/clients"
	"github.com/javajoker/storesync/internal/config"
	"github.com/javajoker/storesync/internal/sync"
)

func main() {
	products := flag.Bool("products", true, "run the product polling pass")
	contacts := flag.Bool("contacts", false, "run the contact polling pass")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	crmClient := clients.NewCRMClient(cfg.CRM, cfg.RequestTimeout())
	storeClient := clients.NewContentStoreClient(cfg.ContentStore, cfg.RequestTimeout())
	priceService := clients.NewStripePriceService(cfg.Stripe)
	orchestrator := sync.NewOrchestrator(crmClient, storeClient, priceService, cfg)

	ctx := context.Background()
	failed := false

	if *products {
		summary, err := orchestrator.SyncAllProducts(ctx)
		printSummary(summary)
		if err != nil {
			logrus.WithError(err).Error("Product pass aborted")
			failed = true
		}
	}

	if *contacts {
		summary, err := orchestrator.SyncAllContacts(ctx)
		printSummary(summary)
		if err != nil {
			logrus.WithError(err).Error("Contact pass aborted")
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func printSummary(s *sync.Summary) {
	if s == nil {
		return
	}
	encoded, err := json.Marshal(s)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode summary")
		return
	}
	os.Stdout.Write(append(encoded, '\n'))
}
