package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
)

// siteKeyFromParams parses the :kind and :id route params.
func siteKeyFromParams(c *fiber.Ctx) (domain.EntityKey, error) {
	kind := domain.SiteKind(c.Params("kind"))
	if kind != domain.KindProduction && kind != domain.KindConsumption {
		return domain.EntityKey{}, errors.New("kind must be production or consumption")
	}
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return domain.EntityKey{}, errors.New("id must be a positive integer")
	}
	return domain.EntityKey{Kind: kind, ID: int64(id)}, nil
}

// publishRefresh tells every running instance that site data changed.
func publishRefresh(c *fiber.Ctx, deps *Dependencies) {
	if deps.Publisher == nil {
		return
	}
	_ = deps.Publisher.PublishRefresh(c.Context(), &domain.RefreshEvent{
		Time:   time.Now(),
		Source: "api",
	})
}

// ListProductionSitesHandler returns all production sites.
func ListProductionSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ports.ProductionSiteFilter{ActiveOnly: c.QueryBool("active", false)}
		sites, err := deps.Sites.ListProduction(c.Context(), f)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg, start, end := paginate(c, len(sites))
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sites[start:end], Pagination: pg})
	}
}

// GetProductionSiteHandler returns one production site.
func GetProductionSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "id must be a positive integer")
		}
		site, err := deps.Sites.GetProduction(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "production site not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(site)
	}
}

// CreateProductionSiteHandler creates a production site.
func CreateProductionSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var site domain.ProductionSite
		if err := c.BodyParser(&site); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Sites.CreateProduction(c.Context(), &site); err != nil {
			return errBadRequest(c, err.Error())
		}
		publishRefresh(c, deps)
		return c.Status(201).JSON(site)
	}
}

// UpdateProductionSiteHandler updates a production site.
func UpdateProductionSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "id must be a positive integer")
		}
		var site domain.ProductionSite
		if err := c.BodyParser(&site); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		site.ID = int64(id)
		if err := deps.Sites.UpdateProduction(c.Context(), &site); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "production site not found")
			}
			return errInternal(c, err.Error())
		}
		publishRefresh(c, deps)
		return c.JSON(site)
	}
}

// ListConsumptionSitesHandler returns all consumption sites.
func ListConsumptionSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ports.ConsumptionSiteFilter{
			ConnectedOnly: c.QueryBool("connected", false),
			SiteType:      c.Query("type"),
		}
		sites, err := deps.Sites.ListConsumption(c.Context(), f)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg, start, end := paginate(c, len(sites))
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: sites[start:end], Pagination: pg})
	}
}

// GetConsumptionSiteHandler returns one consumption site.
func GetConsumptionSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "id must be a positive integer")
		}
		site, err := deps.Sites.GetConsumption(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "consumption site not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(site)
	}
}

// CreateConsumptionSiteHandler creates a consumption site.
func CreateConsumptionSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var site domain.ConsumptionSite
		if err := c.BodyParser(&site); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Sites.CreateConsumption(c.Context(), &site); err != nil {
			return errBadRequest(c, err.Error())
		}
		publishRefresh(c, deps)
		return c.Status(201).JSON(site)
	}
}

// UpdateConsumptionSiteHandler updates a consumption site.
func UpdateConsumptionSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "id must be a positive integer")
		}
		var site domain.ConsumptionSite
		if err := c.BodyParser(&site); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		site.ID = int64(id)
		if err := deps.Sites.UpdateConsumption(c.Context(), &site); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "consumption site not found")
			}
			return errInternal(c, err.Error())
		}
		publishRefresh(c, deps)
		return c.JSON(site)
	}
}

// DeleteSiteHandler removes a site of either variant.
func DeleteSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := siteKeyFromParams(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if err := deps.Sites.DeleteSite(c.Context(), key); err != nil {
			switch {
			case errors.Is(err, usecases.ErrSiteInUse):
				return errConflict(c, err.Error())
			case errors.Is(err, pgx.ErrNoRows):
				return errNotFound(c, "site not found")
			default:
				return errInternal(c, err.Error())
			}
		}
		publishRefresh(c, deps)
		return c.SendStatus(204)
	}
}

// ListPipelinesHandler returns pipelines, optionally filtered.
func ListPipelinesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := ports.PipelineFilter{
			Status:            domain.PipelineStatus(c.Query("status")),
			ProductionSiteID:  int64(c.QueryInt("production_site_id", 0)),
			ConsumptionSiteID: int64(c.QueryInt("consumption_site_id", 0)),
		}
		pipes, err := deps.Pipelines.List(c.Context(), f)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg, start, end := paginate(c, len(pipes))
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: pipes[start:end], Pagination: pg})
	}
}

// GetPipelineHandler returns one pipeline.
func GetPipelineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "id must be a positive integer")
		}
		p, err := deps.Pipelines.Get(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "pipeline not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(p)
	}
}

// CreatePipelineHandler creates a pipeline between two sites.
func CreatePipelineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p domain.Pipeline
		if err := c.BodyParser(&p); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Pipelines.Create(c.Context(), &p); err != nil {
			switch {
			case errors.Is(err, usecases.ErrPipelineExists):
				return errConflict(c, err.Error())
			case errors.Is(err, pgx.ErrNoRows):
				return errBadRequest(c, "one of the endpoint sites does not exist")
			default:
				return errBadRequest(c, err.Error())
			}
		}
		publishRefresh(c, deps)
		return c.Status(201).JSON(p)
	}
}

// DeletePipelineHandler removes a pipeline.
func DeletePipelineHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return errBadRequest(c, "id must be a positive integer")
		}
		if err := deps.Pipelines.Delete(c.Context(), int64(id)); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "pipeline not found")
			}
			return errInternal(c, err.Error())
		}
		publishRefresh(c, deps)
		return c.SendStatus(204)
	}
}

// OverviewHandler returns network-wide analytics.
func OverviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ov, err := deps.Analytics.Overview(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(ov)
	}
}

// SiteAnalyticsHandler returns per-site analytics: the site itself, its
// pipelines, and the derived utilization or supply-coverage figures.
func SiteAnalyticsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := siteKeyFromParams(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		var (
			out  any
			aErr error
		)
		switch key.Kind {
		case domain.KindProduction:
			out, aErr = deps.Analytics.ProductionSiteAnalytics(c.Context(), key.ID)
		default:
			out, aErr = deps.Analytics.ConsumptionSiteAnalytics(c.Context(), key.ID)
		}
		if aErr != nil {
			if errors.Is(aErr, pgx.ErrNoRows) {
				return errNotFound(c, "site not found")
			}
			return errInternal(c, aErr.Error())
		}
		return c.JSON(out)
	}
}

// MapConfigHandler returns the effective map display settings.
func MapConfigHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cfg, err := deps.Config.Settings(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(fiber.Map{"map_config": cfg})
	}
}

// SetMapConfigHandler stores one map display setting.
func SetMapConfigHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entry domain.ConfigEntry
		if err := c.BodyParser(&entry); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Config.Set(c.Context(), &entry); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(entry)
	}
}

// SiteReadingsHandler returns the latest readings for a site.
func SiteReadingsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := siteKeyFromParams(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		readings, err := deps.Readings.History(c.Context(), key, c.QueryInt("limit", 100))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(readings)
	}
}

// RecordReadingHandler ingests a single site load reading.
func RecordReadingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var r domain.SiteReading
		if err := c.BodyParser(&r); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if r.Kind != domain.KindProduction && r.Kind != domain.KindConsumption {
			return errBadRequest(c, "kind must be production or consumption")
		}
		if r.LoadMW < 0 {
			return errBadRequest(c, "load_mw must not be negative")
		}
		if r.Time.IsZero() {
			r.Time = time.Now()
		}

		// Hand off to the reading work queue when the broker is up; the
		// monitor persists from there. Without a broker, record inline.
		if deps.Publisher != nil {
			if err := deps.Publisher.PublishReading(c.Context(), &r); err == nil {
				return c.Status(202).JSON(r)
			}
		}
		if err := deps.Readings.Record(c.Context(), &r); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errNotFound(c, "site not found")
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(202).JSON(r)
	}
}

// MapEntitiesHandler returns the current map snapshot. 503 while the first
// fetch has not completed yet.
func MapEntitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap, ok := deps.Store.Snapshot()
		if !ok {
			return newError(c, 503, "snapshot_pending", "site data not loaded yet")
		}
		c.Set("Cache-Control", "public, max-age=15")
		return c.JSON(fiber.Map{
			"production":  snap.Production,
			"consumption": snap.Consumption,
			"fetched_at":  snap.FetchedAt,
		})
	}
}

// RefreshHandler forces a data refresh and broadcasts it to all instances.
func RefreshHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Store.Refresh(c.Context()); err != nil {
			return errInternal(c, err.Error())
		}
		publishRefresh(c, deps)
		return c.JSON(fiber.Map{"status": "refreshed"})
	}
}

// PlacementPreviewHandler computes the popup placement for a screen point.
// Useful for debugging client rendering without opening a session.
func PlacementPreviewHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pt := domain.ScreenPoint{
			X: c.QueryFloat("x", 0),
			Y: c.QueryFloat("y", 0),
		}
		vp := domain.Viewport{
			Width:  c.QueryFloat("width", 0),
			Height: c.QueryFloat("height", 0),
		}
		pl := usecases.PlacementFor(pt, vp)
		return c.JSON(fiber.Map{
			"anchor": pl.Anchor,
			"offset": pl.Offset,
		})
	}
}
