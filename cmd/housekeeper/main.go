package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/sfhaven/haven/internal/adapters/nats"
	"github.com/sfhaven/haven/internal/adapters/postgres"
	"github.com/sfhaven/haven/internal/core/ports"
	"github.com/sfhaven/haven/internal/pkg/config"
	"github.com/sfhaven/haven/internal/pkg/logging"
	"github.com/sfhaven/haven/internal/workflows"
)

func main() {
	cfg, err := config.Load("haven-housekeeper")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("haven-housekeeper", logLevel, "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var eventPub ports.EventPublisher
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, purge announcements disabled", "error", err)
	} else {
		defer publisher.Close()
		eventPub = publisher
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, "housekeeping-queue", worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.HousekeepingWorkflow)
	w.RegisterActivity(&workflows.HousekeepingActivities{
		Alerts:    postgres.NewAlertRepo(db),
		Publisher: eventPub,
	})

	// Kick off the cron workflow; already-started is fine across restarts.
	_, err = c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           "alert-housekeeping",
		TaskQueue:    "housekeeping-queue",
		CronSchedule: "*/15 * * * *",
	}, workflows.HousekeepingWorkflow, workflows.HousekeepingInput{GraceHours: 1})
	if err != nil {
		slog.Warn("start cron workflow", "error", err)
	}

	slog.Info("housekeeper worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
