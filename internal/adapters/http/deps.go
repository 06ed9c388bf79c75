package http

import (
	"github.com/nats-io/nats.go"

	"github.com/greggyneo/homefinder/internal/adapters/postgres"
	"github.com/greggyneo/homefinder/internal/adapters/valkey"
	"github.com/greggyneo/homefinder/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Meta          *usecases.MetaService
	Trends        *usecases.TrendService
	Amenities     *usecases.AmenityService
	Affordability *usecases.AffordabilityService
	Comparisons   *usecases.ComparisonService
	Scenarios     *usecases.ScenarioService
	NATS          *nats.Conn
	DB            *postgres.DB
	Cache         *valkey.Cache
}
