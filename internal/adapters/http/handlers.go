package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/greggyneo/homefinder/internal/core/affordability"
	"github.com/greggyneo/homefinder/internal/core/domain"
)

// svcError maps a use-case error onto the response: validation failures are
// the caller's fault, everything else is a server-side failure.
func svcError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) {
		return errBadRequest(c, err.Error())
	}
	return errInternal(c, err.Error())
}

// MetaHandler returns the dataset's filter dimensions.
func MetaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meta, err := deps.Meta.Get(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(meta)
	}
}

// TrendsHandler returns monthly price aggregates.
// GET /v1/trends?town=BISHAN&flat_type=4+ROOM&start_month=2020-01&end_month=2024-12
func TrendsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := domain.TrendFilter{
			Town:       normalizeTown(c.Query("town")),
			FlatType:   strings.ToUpper(c.Query("flat_type")),
			StartMonth: c.Query("start_month"),
			EndMonth:   c.Query("end_month"),
		}

		points, err := deps.Trends.Trends(c.Context(), filter)
		if err != nil {
			return svcError(c, err)
		}

		return c.JSON(fiber.Map{
			"filter": filter,
			"points": points,
			"count":  len(points),
		})
	}
}

// TransactionsHandler returns a page of raw resale transactions.
func TransactionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := domain.TrendFilter{
			Town:       normalizeTown(c.Query("town")),
			FlatType:   strings.ToUpper(c.Query("flat_type")),
			StartMonth: c.Query("start_month"),
			EndMonth:   c.Query("end_month"),
		}
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)

		txs, total, err := deps.Trends.Transactions(c.Context(), filter, limit, offset)
		if err != nil {
			return svcError(c, err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: txs, Pagination: pg})
	}
}

// MarketStatsHandler returns dataset-wide summary statistics.
func MarketStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Trends.MarketStats(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(stats)
	}
}

// affordabilityRequest uses pointers so omitted fields can be told apart from
// explicit zeros and filled with the documented defaults.
type affordabilityRequest struct {
	Income         *float64 `json:"income"`
	Expenses       *float64 `json:"expenses"`
	InterestPct    *float64 `json:"interest_rate_pct"`
	TenureYears    *int     `json:"tenure_years"`
	DownPaymentPct *float64 `json:"down_payment_pct"`
	FlatType       string   `json:"flat_type"`
}

func (r affordabilityRequest) toInput() domain.AffordabilityInput {
	in := domain.AffordabilityInput{
		InterestPct:    domain.DefaultInterestPct,
		TenureYears:    domain.DefaultTenureYears,
		DownPaymentPct: domain.DefaultDownPaymentPct,
	}
	if r.Income != nil {
		in.Income = *r.Income
	}
	if r.Expenses != nil {
		in.Expenses = *r.Expenses
	}
	if r.InterestPct != nil {
		in.InterestPct = *r.InterestPct
	}
	if r.TenureYears != nil {
		in.TenureYears = *r.TenureYears
	}
	if r.DownPaymentPct != nil {
		in.DownPaymentPct = *r.DownPaymentPct
	}
	return in
}

// AffordabilityHandler evaluates household affordability.
// POST /v1/affordability
func AffordabilityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req affordabilityRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		eval, err := deps.Affordability.Evaluate(c.Context(), req.toInput(), req.FlatType)
		if err != nil {
			var verr *affordability.ValidationError
			if errors.As(err, &verr) {
				return errUnprocessable(c, verr.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(eval)
	}
}

// compareRequest selects the towns to put side by side.
type compareRequest struct {
	Towns    []string `json:"towns"`
	FlatType string   `json:"flat_type"`
	Income   float64  `json:"income"`
}

// CompareTownsHandler returns a side-by-side comparison of up to five towns.
// POST /v1/towns/compare
func CompareTownsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req compareRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		rows, err := deps.Comparisons.Compare(c.Context(), req.Towns, req.FlatType, req.Income)
		if err != nil {
			return svcError(c, err)
		}
		return c.JSON(fiber.Map{
			"towns": rows,
			"count": len(rows),
		})
	}
}

// NearbyAmenitiesHandler returns positioned amenities around a point plus the
// viewport bounds framing them. Bounds is null when nothing matched.
// GET /v1/amenities/nearby?lat=1.3521&lon=103.8198&radius=600&category=MRT_STATION
func NearbyAmenitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Presence, not the zero value: (0, 0) is a legitimate coordinate.
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 1000)
		category := c.Query("category")
		limit := c.QueryInt("limit", 500)

		if radius <= 0 || radius > 10000 {
			return errBadRequest(c, "radius must be between 1 and 10000 meters")
		}

		result, err := deps.Amenities.FindNearby(c.Context(), lat, lon, radius, category, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(result)
	}
}

// ListAmenitiesHandler lists amenities, optionally filtered by category.
func ListAmenitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		features, err := deps.Amenities.ListByCategory(c.Context(), c.Query("category"))
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		total := len(features)
		if offset >= total {
			features = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			features = features[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: features, Pagination: pg})
	}
}

// AmenityStatsHandler returns per-category amenity counts, optionally scoped
// to one town.
func AmenityStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := deps.Amenities.StatsByTown(c.Context(), normalizeTown(c.Query("town")))
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(stats)
	}
}

// importRequest is a GeoJSON feature collection with an optional category
// override applied to every feature.
type importRequest struct {
	Type     string           `json:"type"`
	Category string           `json:"category"`
	Features []map[string]any `json:"features"`
}

// ImportAmenitiesHandler upserts a GeoJSON feature collection.
// POST /v1/amenities/import
func ImportAmenitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req importRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.Type != "" && req.Type != "FeatureCollection" {
			return errBadRequest(c, "body must be a GeoJSON FeatureCollection")
		}
		if len(req.Features) == 0 {
			return errBadRequest(c, "features array is required")
		}
		if len(req.Features) > 50000 {
			return errBadRequest(c, "maximum 50000 features per import")
		}

		batchID := uuid.NewString()
		summary, err := deps.Amenities.ImportFeatures(c.Context(), batchID, req.Category, req.Features)
		if err != nil {
			return svcError(c, err)
		}
		return c.Status(201).JSON(summary)
	}
}

// CreateScenarioHandler stores a named affordability scenario.
// POST /v1/scenarios
func CreateScenarioHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
			affordabilityRequest
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		in := req.toInput()
		scenario, err := deps.Scenarios.Create(c.Context(), &domain.Scenario{
			Name:           req.Name,
			Income:         in.Income,
			Expenses:       in.Expenses,
			InterestPct:    in.InterestPct,
			TenureYears:    in.TenureYears,
			DownPaymentPct: in.DownPaymentPct,
		})
		if err != nil {
			var verr *affordability.ValidationError
			if errors.As(err, &verr) {
				return errUnprocessable(c, verr.Error())
			}
			return svcError(c, err)
		}
		return c.Status(201).JSON(scenario)
	}
}

// ListScenariosHandler returns a page of saved scenarios.
func ListScenariosHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 20)

		scenarios, total, err := deps.Scenarios.List(c.Context(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: scenarios, Pagination: pg})
	}
}

// GetScenarioHandler returns one scenario with its recomputed result.
func GetScenarioHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "scenario id is required")
		}

		scenario, result, err := deps.Scenarios.Get(c.Context(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if scenario == nil {
			return errNotFound(c, "scenario not found")
		}
		return c.JSON(fiber.Map{
			"scenario": scenario,
			"result":   result,
		})
	}
}

// DeleteScenarioHandler removes a scenario.
func DeleteScenarioHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "scenario id is required")
		}
		if err := deps.Scenarios.Delete(c.Context(), id); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// DatasetStatusHandler returns row counts from the core tables.
func DatasetStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var status struct {
			Transactions int    `json:"transactions"`
			Amenities    int    `json:"amenities"`
			Scenarios    int    `json:"scenarios"`
			LastImport   string `json:"last_import,omitempty"`
		}
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM resale_flat_prices),
				(SELECT count(*) FROM amenities),
				(SELECT count(*) FROM scenarios),
				COALESCE((SELECT max(loaded_at)::text FROM amenities), '')
		`)
		if err := row.Scan(&status.Transactions, &status.Amenities, &status.Scenarios, &status.LastImport); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(status)
	}
}

// normalizeTown uppercases and trims a town query value the way the dataset
// stores towns.
func normalizeTown(town string) string {
	return strings.ToUpper(strings.TrimSpace(town))
}
