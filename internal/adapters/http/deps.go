package http

import (
	"github.com/nats-io/nats.go"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/postgres"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/valkey"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Sites     *usecases.SiteService
	Pipelines *usecases.PipelineService
	Analytics *usecases.AnalyticsService
	Readings  *usecases.ReadingService
	Config    *usecases.MapConfigService
	Store     *usecases.EntityStore
	Camera    usecases.CameraConfig
	Publisher ports.EventPublisher
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
