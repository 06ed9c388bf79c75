package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/greggyneo/homefinder/internal/adapters/nats"
	"github.com/greggyneo/homefinder/internal/adapters/postgres"
	"github.com/greggyneo/homefinder/internal/adapters/valkey"
	"github.com/greggyneo/homefinder/internal/pkg/config"
	"github.com/greggyneo/homefinder/internal/pkg/logging"
	"github.com/greggyneo/homefinder/internal/workflows"
)

func main() {
	cfg, err := config.Load("homefinder-importworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("homefinder-importworker", "info", "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		pub = nil
	} else {
		defer pub.Close()
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ImportAmenitiesWorkflow)
	activities := &workflows.ImportActivities{
		Amenities: postgres.NewAmenityRepo(db),
	}
	if cache != nil {
		activities.Cache = cache
	}
	if pub != nil {
		activities.Events = pub
	}
	w.RegisterActivity(activities)

	log.Println("import worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
