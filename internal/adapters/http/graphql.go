package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/domain"
	"github.com/DavesarXKhushal/pyrecycleheat/internal/core/ports"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lng": &graphql.Field{Type: graphql.Float},
		},
	})

	productionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductionSite",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.Int},
			"name":               &graphql.Field{Type: graphql.String},
			"location":           &graphql.Field{Type: geoPointType},
			"max_capacity_mw":    &graphql.Field{Type: graphql.Float},
			"current_output_mw":  &graphql.Field{Type: graphql.Float},
			"efficiency_percent": &graphql.Field{Type: graphql.Float},
			"fuel_type":          &graphql.Field{Type: graphql.String},
			"active":             &graphql.Field{Type: graphql.Boolean},
		},
	})

	consumptionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ConsumptionSite",
		Fields: graphql.Fields{
			"id":                &graphql.Field{Type: graphql.Int},
			"name":              &graphql.Field{Type: graphql.String},
			"location":          &graphql.Field{Type: geoPointType},
			"site_type":         &graphql.Field{Type: graphql.String},
			"peak_demand_mw":    &graphql.Field{Type: graphql.Float},
			"current_demand_mw": &graphql.Field{Type: graphql.Float},
			"connected":         &graphql.Field{Type: graphql.Boolean},
			"priority_level":    &graphql.Field{Type: graphql.Int},
		},
	})

	pipelineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Pipeline",
		Fields: graphql.Fields{
			"id":                  &graphql.Field{Type: graphql.Int},
			"production_site_id":  &graphql.Field{Type: graphql.Int},
			"consumption_site_id": &graphql.Field{Type: graphql.Int},
			"distance_km":         &graphql.Field{Type: graphql.Float},
			"max_flow_mw":         &graphql.Field{Type: graphql.Float},
			"current_flow_mw":     &graphql.Field{Type: graphql.Float},
			"status":              &graphql.Field{Type: graphql.String},
		},
	})

	entityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapEntity",
		Fields: graphql.Fields{
			"name":      &graphql.Field{Type: graphql.String},
			"location":  &graphql.Field{Type: geoPointType},
			"status_ok": &graphql.Field{Type: graphql.Boolean},
			"kind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(domain.MapEntity); ok {
						return string(e.Key.Kind), nil
					}
					return nil, nil
				},
			},
			"id": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if e, ok := p.Source.(domain.MapEntity); ok {
						return int(e.Key.ID), nil
					}
					return nil, nil
				},
			},
		},
	})

	overviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NetworkOverview",
		Fields: graphql.Fields{
			"production_sites":      &graphql.Field{Type: graphql.Int},
			"active_production":     &graphql.Field{Type: graphql.Int},
			"consumption_sites":     &graphql.Field{Type: graphql.Int},
			"connected_consumption": &graphql.Field{Type: graphql.Int},
			"pipelines":             &graphql.Field{Type: graphql.Int},
			"active_pipelines":      &graphql.Field{Type: graphql.Int},
			"total_capacity_mw":     &graphql.Field{Type: graphql.Float},
			"current_output_mw":     &graphql.Field{Type: graphql.Float},
			"total_demand_mw":       &graphql.Field{Type: graphql.Float},
			"current_demand_mw":     &graphql.Field{Type: graphql.Float},
			"pipeline_km":           &graphql.Field{Type: graphql.Float},
			"utilization_percent":   &graphql.Field{Type: graphql.Float},
			"coverage_percent":      &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"productionSites": &graphql.Field{
				Type:        graphql.NewList(productionType),
				Description: "List heat production sites",
				Args: graphql.FieldConfigArgument{
					"active": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sites.ListProduction(p.Context, ports.ProductionSiteFilter{
						ActiveOnly: p.Args["active"].(bool),
					})
				},
			},
			"consumptionSites": &graphql.Field{
				Type:        graphql.NewList(consumptionType),
				Description: "List heat consumption sites",
				Args: graphql.FieldConfigArgument{
					"connected": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"type":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Sites.ListConsumption(p.Context, ports.ConsumptionSiteFilter{
						ConnectedOnly: p.Args["connected"].(bool),
						SiteType:      p.Args["type"].(string),
					})
				},
			},
			"pipelines": &graphql.Field{
				Type:        graphql.NewList(pipelineType),
				Description: "List pipelines between sites",
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Pipelines.List(p.Context, ports.PipelineFilter{
						Status: domain.PipelineStatus(p.Args["status"].(string)),
					})
				},
			},
			"siteSearch": &graphql.Field{
				Type:        graphql.NewList(entityType),
				Description: "Search the current map snapshot by name",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snap, ok := deps.Store.Snapshot()
					if !ok {
						return []domain.MapEntity{}, nil
					}
					query := strings.ToLower(strings.TrimSpace(p.Args["query"].(string)))
					var out []domain.MapEntity
					for _, e := range snap.Entities() {
						if query == "" || strings.Contains(strings.ToLower(e.Name), query) {
							out = append(out, e)
						}
					}
					return out, nil
				},
			},
			"networkOverview": &graphql.Field{
				Type:        overviewType,
				Description: "System-wide capacity, demand, and coverage stats",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Analytics.Overview(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
