package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// SiteKind discriminates the two entity variants shown on the map.
type SiteKind string

const (
	KindProduction  SiteKind = "production"
	KindConsumption SiteKind = "consumption"
)

// EntityKey identifies one map entity. IDs are only unique within a variant,
// so the key always carries both.
type EntityKey struct {
	Kind SiteKind `json:"kind"`
	ID   int64    `json:"id"`
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s/%d", k.Kind, k.ID)
}

// ProductionSite is a heat supply point (power plant, geothermal source, ...).
type ProductionSite struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Location          GeoPoint   `json:"location"`
	Address           string     `json:"address,omitempty"`
	MaxCapacityMW     float64    `json:"max_capacity_mw"`
	CurrentOutputMW   float64    `json:"current_output_mw"`
	EfficiencyPercent float64    `json:"efficiency_percent"`
	FuelType          string     `json:"fuel_type,omitempty"`
	Active            bool       `json:"active"`
	CommissionedAt    *time.Time `json:"commissioned_at,omitempty"`
	LastMaintenance   *time.Time `json:"last_maintenance,omitempty"`
	Description       string     `json:"description,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Key returns the map entity key of the site.
func (p *ProductionSite) Key() EntityKey {
	return EntityKey{Kind: KindProduction, ID: p.ID}
}

// MapEntity returns the flattened map view of the site.
func (p *ProductionSite) MapEntity() MapEntity {
	return MapEntity{
		Key:      p.Key(),
		Name:     p.Name,
		Location: p.Location,
		StatusOK: p.Active,
	}
}

// ConsumptionSite is a heat demand point (hotel, residential area, industry, ...).
type ConsumptionSite struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Location             GeoPoint   `json:"location"`
	Address              string     `json:"address,omitempty"`
	SiteType             string     `json:"site_type,omitempty"`
	PeakDemandMW         float64    `json:"peak_demand_mw"`
	CurrentDemandMW      float64    `json:"current_demand_mw"`
	AnnualConsumptionMWh float64    `json:"annual_consumption_mwh,omitempty"`
	Connected            bool       `json:"connected"`
	ConnectedAt          *time.Time `json:"connected_at,omitempty"`
	PriorityLevel        int        `json:"priority_level"`
	Description          string     `json:"description,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Key returns the map entity key of the site.
func (c *ConsumptionSite) Key() EntityKey {
	return EntityKey{Kind: KindConsumption, ID: c.ID}
}

// MapEntity returns the flattened map view of the site.
func (c *ConsumptionSite) MapEntity() MapEntity {
	return MapEntity{
		Key:      c.Key(),
		Name:     c.Name,
		Location: c.Location,
		StatusOK: c.Connected,
	}
}

// MapEntity is the variant-agnostic view of a site that the map core works
// with. Collections of MapEntity are replaced wholesale on refresh, never
// mutated in place.
type MapEntity struct {
	Key      EntityKey `json:"key"`
	Name     string    `json:"name"`
	Location GeoPoint  `json:"location"`
	StatusOK bool      `json:"status_ok"`
}

// PipelineStatus is the operational state of a pipeline.
type PipelineStatus string

const (
	PipelineActive      PipelineStatus = "active"
	PipelineInactive    PipelineStatus = "inactive"
	PipelineMaintenance PipelineStatus = "maintenance"
	PipelinePlanned     PipelineStatus = "planned"
)

// Pipeline connects a production site to a consumption site.
type Pipeline struct {
	ID                int64          `json:"id"`
	ProductionSiteID  int64          `json:"production_site_id"`
	ConsumptionSiteID int64          `json:"consumption_site_id"`
	DistanceKM        float64        `json:"distance_km"`
	MaxFlowMW         float64        `json:"max_flow_mw"`
	CurrentFlowMW     float64        `json:"current_flow_mw"`
	SupplyTempC       float64        `json:"supply_temp_c"`
	ReturnTempC       float64        `json:"return_temp_c"`
	Status            PipelineStatus `json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
}

// SiteReading is a point-in-time load measurement for a site.
type SiteReading struct {
	Time        time.Time `json:"time"`
	Kind        SiteKind  `json:"kind"`
	SiteID      int64     `json:"site_id"`
	LoadMW      float64   `json:"load_mw"`
	SupplyTempC float64   `json:"supply_temp_c,omitempty"`
	ReturnTempC float64   `json:"return_temp_c,omitempty"`
}

// Key returns the entity key of the site the reading belongs to.
func (r *SiteReading) Key() EntityKey {
	return EntityKey{Kind: r.Kind, ID: r.SiteID}
}

// RefreshEvent announces that the site datasets changed and map sessions
// should re-fetch and reconcile.
type RefreshEvent struct {
	Time   time.Time `json:"time"`
	Source string    `json:"source"` // "api", "monitor", "refresher"
}

// NetworkOverview aggregates system-wide statistics.
type NetworkOverview struct {
	ProductionSites      int     `json:"production_sites"`
	ActiveProduction     int     `json:"active_production"`
	ConsumptionSites     int     `json:"consumption_sites"`
	ConnectedConsumption int     `json:"connected_consumption"`
	Pipelines            int     `json:"pipelines"`
	ActivePipelines      int     `json:"active_pipelines"`
	TotalCapacityMW      float64 `json:"total_capacity_mw"`
	CurrentOutputMW      float64 `json:"current_output_mw"`
	TotalDemandMW        float64 `json:"total_demand_mw"`
	CurrentDemandMW      float64 `json:"current_demand_mw"`
	PipelineKM           float64 `json:"pipeline_km"`
	UtilizationPercent   float64 `json:"utilization_percent"`
	CoveragePercent      float64 `json:"coverage_percent"`
}

// ProductionAnalytics describes one production site's performance and the
// pipelines carrying its heat out.
type ProductionAnalytics struct {
	Site               ProductionSite `json:"site"`
	UtilizationPercent float64        `json:"utilization_percent"`
	ConnectedDemandMW  float64        `json:"connected_demand_mw"`
	Pipelines          []Pipeline     `json:"pipelines"`
}

// ConsumptionAnalytics describes one consumption site's supply situation
// and the pipelines feeding it.
type ConsumptionAnalytics struct {
	Site               ConsumptionSite `json:"site"`
	SupplyCapacityMW   float64         `json:"supply_capacity_mw"`
	CurrentSupplyMW    float64         `json:"current_supply_mw"`
	CoveragePercent    float64         `json:"coverage_percent"`
	UtilizationPercent float64         `json:"utilization_percent"`
	Pipelines          []Pipeline      `json:"pipelines"`
}

// ConfigEntry is one runtime-tunable map display setting. Values are kept
// as raw JSON so clients decide their own types.
type ConfigEntry struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}
