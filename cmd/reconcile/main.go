// Package main is the status reconcile job. It sweeps every active
// program and persists any status that drifted from its date-derived
// value, so programs nobody reads still carry fresh statuses. Run it
// from cron, typically shortly after midnight KST when date boundaries
// flip.
package main

import (
	"context"
	"log"
	"time"

	"github.com/maeulsoft/programhub/internal/config"
	"github.com/maeulsoft/programhub/internal/database"
	"github.com/maeulsoft/programhub/internal/logger"
	"github.com/maeulsoft/programhub/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	appLog := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.Connect(ctx, database.Config{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	updated, err := services.NewProgramService(db, appLog).Reconcile(ctx)
	if err != nil {
		log.Fatalf("reconcile sweep failed: %v", err)
	}
	appLog.Info("reconcile sweep finished", map[string]interface{}{
		"updated": updated,
	})
}
