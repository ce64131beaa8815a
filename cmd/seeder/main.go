// Command seeder loads the San Francisco pilot-network dataset: four heat
// production sites, five consumption sites, and the pipelines linking them.
// Existing rows are cleared first, so it is safe to re-run.
package main

import (
	"context"
	"log"
	"time"

	natsadapter "github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/nats"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/adapters/postgres"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/usecases"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/pkg/config"
)

func main() {
	cfg, err := config.Load("recycleheat-seeder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"site_readings", "pipelines", "consumption_sites", "production_sites"} {
		if _, err := db.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("clear %s: %v", table, err)
		}
	}

	productionRepo := postgres.NewProductionRepo(db)
	consumptionRepo := postgres.NewConsumptionRepo(db)
	pipelineRepo := postgres.NewPipelineRepo(db)

	production := productionSites()
	for i := range production {
		if err := productionRepo.Create(ctx, &production[i]); err != nil {
			log.Fatalf("create production site %q: %v", production[i].Name, err)
		}
	}
	log.Printf("seeded %d production sites", len(production))

	consumption := consumptionSites()
	for i := range consumption {
		if err := consumptionRepo.Create(ctx, &consumption[i]); err != nil {
			log.Fatalf("create consumption site %q: %v", consumption[i].Name, err)
		}
	}
	log.Printf("seeded %d consumption sites", len(consumption))

	// Pipeline distances come from site coordinates.
	pipelineSvc := usecases.NewPipelineService(pipelineRepo, productionRepo, consumptionRepo)
	links := []struct {
		prod, cons int
		maxFlowMW  float64
		supplyC    float64
		returnC    float64
	}{
		{0, 0, 10.0, 85, 45}, // 365 Main → Marriott
		{2, 1, 15.0, 80, 40}, // Fortress Green → SOMA Residential
		{1, 2, 20.0, 90, 50}, // 200 Paul → Financial District
	}
	for _, l := range links {
		p := domain.Pipeline{
			ProductionSiteID:  production[l.prod].ID,
			ConsumptionSiteID: consumption[l.cons].ID,
			MaxFlowMW:         l.maxFlowMW,
			CurrentFlowMW:     consumption[l.cons].CurrentDemandMW,
			SupplyTempC:       l.supplyC,
			ReturnTempC:       l.returnC,
			Status:            domain.PipelineActive,
		}
		if err := pipelineSvc.Create(ctx, &p); err != nil {
			log.Fatalf("create pipeline %d→%d: %v", p.ProductionSiteID, p.ConsumptionSiteID, err)
		}
	}
	log.Printf("seeded %d pipelines", len(links))

	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err == nil {
		defer pub.Close()
		_ = pub.PublishRefresh(ctx, &domain.RefreshEvent{Time: time.Now(), Source: "seeder"})
		log.Println("refresh broadcast sent")
	} else {
		log.Printf("nats unavailable, skipping refresh broadcast: %v", err)
	}

	log.Println("seed complete")
}

func daysAgo(n int) *time.Time {
	t := time.Now().AddDate(0, 0, -n)
	return &t
}

func date(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func productionSites() []domain.ProductionSite {
	return []domain.ProductionSite{
		{
			Name:              "Digital Realty Heat Center - 365 Main",
			Location:          domain.GeoPoint{Lat: 37.7879, Lng: -122.3972},
			Address:           "365 Main Street, San Francisco, CA 94105",
			MaxCapacityMW:     45.0,
			CurrentOutputMW:   32.5,
			EfficiencyPercent: 88.5,
			FuelType:          "Natural Gas",
			Active:            true,
			CommissionedAt:    date(2001, 6, 15),
			LastMaintenance:   daysAgo(30),
			Description:       "Premier district heating facility in downtown San Francisco with high-efficiency cogeneration system.",
		},
		{
			Name:              "Digital Realty Heat Center - 200 Paul",
			Location:          domain.GeoPoint{Lat: 37.7529, Lng: -122.3890},
			Address:           "200 Paul Avenue, San Francisco, CA 94124",
			MaxCapacityMW:     75.0,
			CurrentOutputMW:   58.2,
			EfficiencyPercent: 91.2,
			FuelType:          "Biomass",
			Active:            true,
			CommissionedAt:    date(2000, 3, 20),
			LastMaintenance:   daysAgo(15),
			Description:       "Large-scale biomass heating facility serving industrial and residential areas.",
		},
		{
			Name:              "Fortress Green Heat Center",
			Location:          domain.GeoPoint{Lat: 37.7749, Lng: -122.4094},
			Address:           "274 Brannan Street, San Francisco, CA 94107",
			MaxCapacityMW:     35.0,
			CurrentOutputMW:   28.7,
			EfficiencyPercent: 94.1,
			FuelType:          "Geothermal",
			Active:            true,
			CommissionedAt:    date(2020, 9, 10),
			LastMaintenance:   daysAgo(7),
			Description:       "Modern geothermal heating system with advanced heat pump technology.",
		},
		{
			Name:              "Colocation Heat Hub - Paul Ave",
			Location:          domain.GeoPoint{Lat: 37.7530, Lng: -122.3885},
			Address:           "200 Paul Ave, San Francisco, CA 94124",
			MaxCapacityMW:     25.0,
			CurrentOutputMW:   19.8,
			EfficiencyPercent: 86.7,
			FuelType:          "Solar Thermal",
			Active:            true,
			CommissionedAt:    date(2015, 11, 5),
			LastMaintenance:   daysAgo(45),
			Description:       "Solar thermal heating system with backup natural gas boilers.",
		},
	}
}

func consumptionSites() []domain.ConsumptionSite {
	return []domain.ConsumptionSite{
		{
			Name:                 "Marriott Downtown Hotel",
			Location:             domain.GeoPoint{Lat: 37.7851, Lng: -122.4020},
			Address:              "55 4th Street, San Francisco, CA 94103",
			SiteType:             "Hotel",
			PeakDemandMW:         8.5,
			CurrentDemandMW:      6.2,
			AnnualConsumptionMWh: 45600,
			Connected:            true,
			ConnectedAt:          date(2018, 4, 12),
			PriorityLevel:        2,
			Description:          "Large downtown hotel with 500 rooms requiring consistent heating and hot water.",
		},
		{
			Name:                 "SOMA Residential Complex",
			Location:             domain.GeoPoint{Lat: 37.7749, Lng: -122.4194},
			Address:              "123 Folsom Street, San Francisco, CA 94107",
			SiteType:             "Residential",
			PeakDemandMW:         12.3,
			CurrentDemandMW:      8.9,
			AnnualConsumptionMWh: 67800,
			Connected:            true,
			ConnectedAt:          date(2019, 8, 22),
			PriorityLevel:        1,
			Description:          "Modern residential complex with 200 units and energy-efficient design.",
		},
		{
			Name:                 "Financial District Office Tower",
			Location:             domain.GeoPoint{Lat: 37.7946, Lng: -122.3999},
			Address:              "101 California Street, San Francisco, CA 94111",
			SiteType:             "Commercial",
			PeakDemandMW:         15.7,
			CurrentDemandMW:      11.4,
			AnnualConsumptionMWh: 89200,
			Connected:            true,
			ConnectedAt:          date(2017, 2, 8),
			PriorityLevel:        2,
			Description:          "High-rise office building with modern HVAC systems and high heating demands.",
		},
		{
			Name:                 "Mission Bay Hospital",
			Location:             domain.GeoPoint{Lat: 37.7665, Lng: -122.3927},
			Address:              "1825 4th Street, San Francisco, CA 94158",
			SiteType:             "Healthcare",
			PeakDemandMW:         22.1,
			CurrentDemandMW:      18.5,
			AnnualConsumptionMWh: 125400,
			Connected:            false,
			PriorityLevel:        1,
			Description:          "Major medical facility requiring reliable heating for patient care and sterilization.",
		},
		{
			Name:                 "Bayview Industrial Park",
			Location:             domain.GeoPoint{Lat: 37.7380, Lng: -122.3916},
			Address:              "2000 3rd Street, San Francisco, CA 94124",
			SiteType:             "Industrial",
			PeakDemandMW:         28.9,
			CurrentDemandMW:      21.7,
			AnnualConsumptionMWh: 156800,
			Connected:            false,
			PriorityLevel:        3,
			Description:          "Large industrial facility with manufacturing processes requiring process heating.",
		},
	}
}
