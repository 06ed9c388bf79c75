package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/greggyneo/homefinder/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	styleType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryStyle",
		Fields: graphql.Fields{
			"icon":  &graphql.Field{Type: graphql.String},
			"color": &graphql.Field{Type: graphql.String},
			"label": &graphql.Field{Type: graphql.String},
		},
	})

	amenityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Amenity",
		Fields: graphql.Fields{
			"category": &graphql.Field{Type: graphql.String},
			"name":     &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"display":  &graphql.Field{Type: geoPointType},
			"distance": &graphql.Field{Type: graphql.Float},
			"style":    &graphql.Field{Type: styleType},
		},
	})

	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Bounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"min_lon": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"max_lon": &graphql.Field{Type: graphql.Float},
		},
	})

	trendPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TrendPoint",
		Fields: graphql.Fields{
			"month":      &graphql.Field{Type: graphql.String},
			"median_psm": &graphql.Field{Type: graphql.Float},
			"avg_psm":    &graphql.Field{Type: graphql.Float},
			"count":      &graphql.Field{Type: graphql.Int},
			"min_price":  &graphql.Field{Type: graphql.Float},
			"max_price":  &graphql.Field{Type: graphql.Float},
		},
	})

	affordabilityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Affordability",
		Fields: graphql.Fields{
			"max_monthly_payment":   &graphql.Field{Type: graphql.Float},
			"max_loan_amount":       &graphql.Field{Type: graphql.Float},
			"max_property_value":    &graphql.Field{Type: graphql.Float},
			"down_payment_required": &graphql.Field{Type: graphql.Float},
			"max_price_per_sqm":     &graphql.Field{Type: graphql.Float},
			"affordable":            &graphql.Field{Type: graphql.Boolean},
		},
	})

	comparisonType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TownComparison",
		Fields: graphql.Fields{
			"town":                &graphql.Field{Type: graphql.String},
			"transactions":        &graphql.Field{Type: graphql.Int},
			"median_psm":          &graphql.Field{Type: graphql.Float},
			"avg_price":           &graphql.Field{Type: graphql.Float},
			"min_price":           &graphql.Field{Type: graphql.Float},
			"max_price":           &graphql.Field{Type: graphql.Float},
			"mrt_count":           &graphql.Field{Type: graphql.Int},
			"school_count":        &graphql.Field{Type: graphql.Int},
			"affordability_score": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"towns": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "List all towns in the resale dataset",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					meta, err := deps.Meta.Get(p.Context)
					if err != nil {
						return nil, err
					}
					return meta.Towns, nil
				},
			},
			"amenitiesNearby": &graphql.Field{
				Type: graphql.NewObject(graphql.ObjectConfig{
					Name: "AmenitySearch",
					Fields: graphql.Fields{
						"features": &graphql.Field{Type: graphql.NewList(amenityType)},
						"bounds":   &graphql.Field{Type: boundsType},
						"count":    &graphql.Field{Type: graphql.Int},
					},
				}),
				Description: "Find amenities near a location, positioned for display",
				Args: graphql.FieldConfigArgument{
					"lat":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius":   &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 100},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					category := p.Args["category"].(string)
					limit := p.Args["limit"].(int)
					return deps.Amenities.FindNearby(p.Context, lat, lon, radius, category, limit)
				},
			},
			"trends": &graphql.Field{
				Type:        graphql.NewList(trendPointType),
				Description: "Monthly price aggregates for a town and flat type",
				Args: graphql.FieldConfigArgument{
					"town":        &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"flat_type":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"start_month": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"end_month":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Trends.Trends(p.Context, domain.TrendFilter{
						Town:       p.Args["town"].(string),
						FlatType:   p.Args["flat_type"].(string),
						StartMonth: p.Args["start_month"].(string),
						EndMonth:   p.Args["end_month"].(string),
					})
				},
			},
			"affordability": &graphql.Field{
				Type:        affordabilityType,
				Description: "Evaluate maximum affordable property value",
				Args: graphql.FieldConfigArgument{
					"income":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"expenses":         &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"interest_pct":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: domain.DefaultInterestPct},
					"tenure_years":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: domain.DefaultTenureYears},
					"down_payment_pct": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: domain.DefaultDownPaymentPct},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					eval, err := deps.Affordability.Evaluate(p.Context, domain.AffordabilityInput{
						Income:         p.Args["income"].(float64),
						Expenses:       p.Args["expenses"].(float64),
						InterestPct:    p.Args["interest_pct"].(float64),
						TenureYears:    p.Args["tenure_years"].(int),
						DownPaymentPct: p.Args["down_payment_pct"].(float64),
					}, "")
					if err != nil {
						return nil, err
					}
					return eval.AffordabilityResult, nil
				},
			},
			"compareTowns": &graphql.Field{
				Type:        graphql.NewList(comparisonType),
				Description: "Compare up to five towns side by side",
				Args: graphql.FieldConfigArgument{
					"towns":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.String))},
					"flat_type": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"income":    &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw := p.Args["towns"].([]interface{})
					towns := make([]string, 0, len(raw))
					for _, t := range raw {
						if s, ok := t.(string); ok {
							towns = append(towns, s)
						}
					}
					return deps.Comparisons.Compare(p.Context, towns,
						p.Args["flat_type"].(string), p.Args["income"].(float64))
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
