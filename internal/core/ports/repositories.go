package ports

import (
	"context"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
)

// ProductionSiteFilter narrows production site listings.
type ProductionSiteFilter struct {
	ActiveOnly bool
}

// ProductionSiteRepository persists heat supply sites.
type ProductionSiteRepository interface {
	List(ctx context.Context, f ProductionSiteFilter) ([]domain.ProductionSite, error)
	GetByID(ctx context.Context, id int64) (*domain.ProductionSite, error)
	Create(ctx context.Context, site *domain.ProductionSite) error
	Update(ctx context.Context, site *domain.ProductionSite) error
	Delete(ctx context.Context, id int64) error
}

// ConsumptionSiteFilter narrows consumption site listings.
type ConsumptionSiteFilter struct {
	ConnectedOnly bool
	SiteType      string
}

// ConsumptionSiteRepository persists heat demand sites.
type ConsumptionSiteRepository interface {
	List(ctx context.Context, f ConsumptionSiteFilter) ([]domain.ConsumptionSite, error)
	GetByID(ctx context.Context, id int64) (*domain.ConsumptionSite, error)
	Create(ctx context.Context, site *domain.ConsumptionSite) error
	Update(ctx context.Context, site *domain.ConsumptionSite) error
	Delete(ctx context.Context, id int64) error
}

// PipelineFilter narrows pipeline listings.
type PipelineFilter struct {
	Status            domain.PipelineStatus
	ProductionSiteID  int64
	ConsumptionSiteID int64
}

// PipelineRepository persists pipelines between sites.
type PipelineRepository interface {
	List(ctx context.Context, f PipelineFilter) ([]domain.Pipeline, error)
	GetByID(ctx context.Context, id int64) (*domain.Pipeline, error)
	Create(ctx context.Context, p *domain.Pipeline) error
	Delete(ctx context.Context, id int64) error
	// Exists reports whether a pipeline already links the two sites.
	Exists(ctx context.Context, productionID, consumptionID int64) (bool, error)
	// CountForSite returns how many pipelines touch the given site.
	CountForSite(ctx context.Context, key domain.EntityKey) (int, error)
}

// ReadingRepository persists site load readings.
type ReadingRepository interface {
	Insert(ctx context.Context, r *domain.SiteReading) error
	InsertBatch(ctx context.Context, rs []domain.SiteReading) error
	LatestForSite(ctx context.Context, key domain.EntityKey, limit int) ([]domain.SiteReading, error)
}

// ConfigRepository persists runtime map display settings.
type ConfigRepository interface {
	List(ctx context.Context) ([]domain.ConfigEntry, error)
	Upsert(ctx context.Context, entry *domain.ConfigEntry) error
}
