// Command monitor drains the site-reading work queue: each reading is
// persisted, the site's current load is updated, and connected API
// instances are told to refresh their map snapshots. Readings arrive on
// the queue either from the ingest endpoint or directly from site meters.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	natsadapter "github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/nats"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/postgres"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/config"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("recycleheat-monitor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("recycleheat-monitor", logLevel, "json")
	logger := slog.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		logger.Error("nats connect failed", "error", err)
		os.Exit(1)
	}
	defer pub.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		logger.Error("nats subscriber failed", "error", err)
		os.Exit(1)
	}
	defer sub.Close()

	// The monitor is the single persistence point for queued readings, so
	// it must not publish back onto the same queue.
	readings := usecases.NewReadingService(
		postgres.NewReadingRepo(db),
		postgres.NewProductionRepo(db),
		postgres.NewConsumptionRepo(db),
		nil,
	)

	var processed atomic.Int64
	err = sub.SubscribeReadings(ctx, func(ctx context.Context, r *domain.SiteReading) error {
		if err := readings.Record(ctx, r); err != nil {
			logger.Warn("reading rejected",
				"kind", r.Kind, "site_id", r.SiteID, "load_mw", r.LoadMW, "error", err)
			return err
		}
		processed.Add(1)
		return nil
	})
	if err != nil {
		logger.Error("subscribe readings failed", "error", err)
		os.Exit(1)
	}

	logger.Info("monitor started", "nats", cfg.NATS.URL)

	// Refresh broadcasts are debounced: one per tick covers every reading
	// processed in that window.
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			n := processed.Swap(0)
			if n == 0 {
				continue
			}
			ev := domain.RefreshEvent{Time: time.Now(), Source: "monitor"}
			if err := pub.PublishRefresh(ctx, &ev); err != nil {
				logger.Warn("refresh broadcast failed", "error", err)
				continue
			}
			logger.Info("refresh broadcast", "readings", n)
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			cancel()
			// Let in-flight handlers finish before the subscriber drains.
			time.Sleep(2 * time.Second)
			return
		case <-ctx.Done():
			return
		}
	}
}
