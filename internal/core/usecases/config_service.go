package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/metrics"
)

const mapConfigCacheKey = "map:config"

// MapConfigService serves runtime map display settings: built-in defaults
// overlaid with whatever operators stored through the config endpoint.
type MapConfigService struct {
	repo  ports.ConfigRepository
	cache ports.CacheService
}

// NewMapConfigService creates a new MapConfigService.
func NewMapConfigService(repo ports.ConfigRepository, cache ports.CacheService) *MapConfigService {
	return &MapConfigService{repo: repo, cache: cache}
}

// defaultMapConfig covers a fresh install; the coordinates center on the
// seeded San Francisco network.
func defaultMapConfig() map[string]json.RawMessage {
	return map[string]json.RawMessage{
		"default_zoom":     json.RawMessage(`12`),
		"center_lat":       json.RawMessage(`37.7749`),
		"center_lng":       json.RawMessage(`-122.4194`),
		"production_icon":  json.RawMessage(`"power-plant"`),
		"consumption_icon": json.RawMessage(`"building"`),
		"pipeline_color":   json.RawMessage(`"#ff4444"`),
		"pipeline_width":   json.RawMessage(`3`),
		"max_zoom":         json.RawMessage(`18`),
		"min_zoom":         json.RawMessage(`5`),
	}
}

// Settings returns the effective map configuration. Stored entries override
// defaults key by key.
func (s *MapConfigService) Settings(ctx context.Context) (map[string]json.RawMessage, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, mapConfigCacheKey); err == nil {
			var cfg map[string]json.RawMessage
			if err := json.Unmarshal(data, &cfg); err == nil {
				metrics.CacheHits.WithLabelValues("map_config").Inc()
				return cfg, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("map_config").Inc()
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg := defaultMapConfig()
	for _, e := range entries {
		cfg[e.Key] = e.Value
	}

	if s.cache != nil {
		if data, err := json.Marshal(cfg); err == nil {
			_ = s.cache.Set(ctx, mapConfigCacheKey, data, 60)
		}
	}
	return cfg, nil
}

// Set validates and stores one setting, then drops the cached merge.
func (s *MapConfigService) Set(ctx context.Context, entry *domain.ConfigEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("config key must not be empty")
	}
	if !json.Valid(entry.Value) {
		return fmt.Errorf("config value for %q is not valid JSON", entry.Key)
	}
	if err := s.repo.Upsert(ctx, entry); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, mapConfigCacheKey)
	}
	return nil
}
