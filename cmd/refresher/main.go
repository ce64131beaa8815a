// Command refresher runs the Temporal worker for the dataset refresh
// workflow and keeps a cron schedule that re-samples every site's load.
package main

import (
	"context"
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/nats"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/postgres"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/config"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/workflows"
)

const taskQueue = "refresh-queue"

func main() {
	cfg, err := config.Load("recycleheat-refresher")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	hostPort := os.Getenv("TEMPORAL_ADDRESS")
	if hostPort == "" {
		hostPort = "localhost:7233"
	}
	c, err := client.Dial(client.Options{HostPort: hostPort})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, taskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.DatasetRefreshWorkflow)
	w.RegisterActivity(&workflows.RefreshActivities{
		Production:  postgres.NewProductionRepo(db),
		Consumption: postgres.NewConsumptionRepo(db),
		Readings:    postgres.NewReadingRepo(db),
		Publisher:   pub,
	})

	// One scheduled run every 15 minutes. The workflow ID is fixed so
	// restarting the worker never stacks a second cron chain.
	_, err = c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:           "dataset-refresh-cron",
		TaskQueue:    taskQueue,
		CronSchedule: "*/15 * * * *",
	}, workflows.DatasetRefreshWorkflow, workflows.RefreshInput{Source: "refresher"})
	if err != nil {
		log.Printf("start cron workflow: %v (may already be running)", err)
	}

	log.Println("refresher worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
