package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/sfhaven/haven/internal/core/domain"
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

	alertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ParkingAlert",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: geoPointType},
			"alert_type":      &graphql.Field{Type: graphql.String},
			"description":     &graphql.Field{Type: graphql.String},
			"created_at":      &graphql.Field{Type: graphql.DateTime},
			"expires_at":      &graphql.Field{Type: graphql.DateTime},
			"distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	zoneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ParkingZone",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.Int},
			"zone_type":          &graphql.Field{Type: graphql.String},
			"time_limit_minutes": &graphql.Field{Type: graphql.Int},
			"notes":              &graphql.Field{Type: graphql.String},
			"effective_date":     &graphql.Field{Type: graphql.DateTime},
			"expiry_date":        &graphql.Field{Type: graphql.DateTime},
			"geometry": &graphql.Field{
				Type:        graphql.NewList(geoPointType),
				Description: "Closed polygon ring, first vertex repeated last",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					z, ok := p.Source.(domain.ParkingZone)
					if !ok {
						return nil, nil
					}
					return z.Geometry.Ring, nil
				},
			},
		},
	})

	verdictType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Verdict",
		Fields: graphql.Fields{
			"is_legal":           &graphql.Field{Type: graphql.Boolean},
			"status":             &graphql.Field{Type: graphql.String},
			"zone_id":            &graphql.Field{Type: graphql.Int},
			"zone_type":          &graphql.Field{Type: graphql.String},
			"time_limit_minutes": &graphql.Field{Type: graphql.Int},
			"active_alerts":      &graphql.Field{Type: graphql.NewList(alertType)},
			"evaluated_at":       &graphql.Field{Type: graphql.DateTime},
		},
	})

	serviceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Service",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"category":        &graphql.Field{Type: graphql.String},
			"subcategory":     &graphql.Field{Type: graphql.String},
			"description":     &graphql.Field{Type: graphql.String},
			"address":         &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: geoPointType},
			"phone":           &graphql.Field{Type: graphql.String},
			"website":         &graphql.Field{Type: graphql.String},
			"distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	emergencyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "EmergencyResource",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"name":            &graphql.Field{Type: graphql.String},
			"type":            &graphql.Field{Type: graphql.String},
			"phone":           &graphql.Field{Type: graphql.String},
			"address":         &graphql.Field{Type: graphql.String},
			"location":        &graphql.Field{Type: geoPointType},
			"available_24_7":  &graphql.Field{Type: graphql.Boolean},
			"distance_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"parkingCheck": &graphql.Field{
				Type:        verdictType,
				Description: "Resolve parking legality at a point, optionally at an RFC 3339 instant",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"at":  &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					var at *time.Time
					if raw, ok := p.Args["at"].(string); ok && raw != "" {
						t, err := time.Parse(time.RFC3339, raw)
						if err != nil {
							return nil, err
						}
						at = &t
					}
					return deps.Parking.CheckLegality(p.Context, lat, lng, at)
				},
			},
			"zonesNearby": &graphql.Field{
				Type:        graphql.NewList(zoneType),
				Description: "Parking zones within a radius of a point",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					radius := p.Args["radius"].(float64)
					return deps.Parking.ZonesNear(p.Context, lat, lng, radius)
				},
			},
			"alertsNearby": &graphql.Field{
				Type:        graphql.NewList(alertType),
				Description: "Live community alerts near a point, closest first",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Parking.AlertsNear(p.Context, lat, lng, radius, limit)
				},
			},
			"servicesNearby": &graphql.Field{
				Type:        graphql.NewList(serviceType),
				Description: "Services near a point ranked by distance",
				Args: graphql.FieldConfigArgument{
					"lat":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius":   &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					radius := p.Args["radius"].(float64)
					category := p.Args["category"].(string)
					limit := p.Args["limit"].(int)
					return deps.Services.FindNearby(p.Context, lat, lng, radius, category, limit)
				},
			},
			"service": &graphql.Field{
				Type:        serviceType,
				Description: "Get a service by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Services.GetByID(p.Context, id)
				},
			},
			"emergencyNearest": &graphql.Field{
				Type:        graphql.NewList(emergencyType),
				Description: "Closest emergency resources, optionally filtered by type",
				Args: graphql.FieldConfigArgument{
					"lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"type":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					resourceType := p.Args["type"].(string)
					limit := p.Args["limit"].(int)
					return deps.Emergency.Nearest(p.Context, lat, lng, resourceType, limit)
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
