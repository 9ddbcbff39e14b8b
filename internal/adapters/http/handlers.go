package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/geojson"
)

// CatalogStats holds row counts of the ingested map catalogs.
type CatalogStats struct {
	Stations   int    `json:"stations"`
	Scenes     int    `json:"scenes"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// CatalogStatsHandler returns row counts from the catalog tables.
func CatalogStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM stations),
				(SELECT count(*) FROM scenes),
				COALESCE((SELECT max(created_at)::text FROM stations), '')
		`)
		if err := row.Scan(&stats.Stations, &stats.Scenes, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// ListStationsHandler returns a page of the station catalog.
func ListStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		stations, err := deps.Stations.List(c.Context(), limit, offset)
		if err != nil {
			return errInternal(c, err.Error())
		}

		var total int
		if deps.DB != nil {
			if err := deps.DB.Pool.QueryRow(c.Context(),
				`SELECT count(*) FROM stations`).Scan(&total); err != nil {
				return errInternal(c, err.Error())
			}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: stations, Pagination: pg})
	}
}

// NearbyStationsHandler returns stations within a radius of a point.
func NearbyStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		radius := c.QueryFloat("radius", 5000)
		limit := c.QueryInt("limit", 50)

		if lat == 0 || lon == 0 {
			return errBadRequest(c, "lat and lon are required")
		}
		if radius <= 0 || radius > 500000 {
			return errBadRequest(c, "radius must be between 1 and 500000 meters")
		}
		if limit <= 0 || limit > 50 {
			limit = 50
		}

		stations, err := deps.Stations.FindNearby(c.Context(), lat, lon, radius, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(stations)
	}
}

// SearchStationsHandler performs fuzzy search on station names.
func SearchStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 50 {
			limit = 20
		}

		stations, err := deps.Stations.Search(c.Context(), query, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(stations)
	}
}

// StationsByLevelHandler returns the stations visible at a LOD tier.
func StationsByLevelHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lod, err := c.ParamsInt("lod")
		if err != nil || lod < 0 || lod > 3 {
			return errBadRequest(c, "lod must be an integer 0-3")
		}

		stations, err := deps.Stations.ListByLOD(c.Context(), lod)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(stations)
	}
}

// GetStationHandler returns a single station by ID.
func GetStationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "station id is required")
		}
		station, err := deps.Stations.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "station not found")
		}
		return c.JSON(station)
	}
}

// ListScenesHandler returns the full scene catalog.
func ListScenesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scenes, err := deps.Scenes.ListAll(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(scenes)
	}
}

// ActiveScenesHandler evaluates scene activation statelessly for an
// arbitrary query point, without touching the live session.
func ActiveScenesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		zoom := c.QueryFloat("zoom", 1)

		p := domain.GeoPoint{Lat: lat, Lon: lon}
		if err := p.Validate(); err != nil {
			return errBadRequest(c, err.Error())
		}
		if zoom < 0 {
			return errBadRequest(c, "zoom must not be negative")
		}

		catalog, err := deps.Scenes.ListAll(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}

		vp := domain.Viewport{CenterLat: lat, CenterLon: lon, Scale: 1, ZoomDistance: zoom}
		active := usecases.ComputeActiveScenes(vp, catalog)
		if active == nil {
			active = []string{}
		}
		return c.JSON(fiber.Map{"active": active})
	}
}

// BoundariesHandler returns the static boundary dataset, optionally
// filtered to the features visible at a zoom level.
func BoundariesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		features := deps.Boundaries
		if zoom := c.QueryFloat("zoom", -1); zoom >= 0 {
			features = geojson.FilterByZoom(features, zoom)
		}
		if features == nil {
			features = []domain.BoundaryFeature{}
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(features)
	}
}

// ZoomLevelsHandler returns the zoom level catalog.
func ZoomLevelsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Zoom.Levels())
	}
}

// ClassifyZoomHandler classifies a camera distance against the catalog.
func ClassifyZoomHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		distance := c.QueryFloat("distance", -1)
		if distance < 0 {
			return errBadRequest(c, "distance query parameter is required and must not be negative")
		}
		return c.JSON(deps.Zoom.Classify(distance))
	}
}

// TileConfigHandler returns the tile/render configuration for a distance.
func TileConfigHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		distance := c.QueryFloat("distance", -1)
		if distance < 0 {
			return errBadRequest(c, "distance query parameter is required and must not be negative")
		}
		return c.JSON(fiber.Map{
			"tile": deps.Zoom.TileConfig(distance),
			"lod":  deps.Zoom.LODFromLevel(distance),
		})
	}
}

// GeoToScreenHandler projects a geographic point through the current
// session viewport.
func GeoToScreenHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)

		p := domain.GeoPoint{Lat: lat, Lon: lon}
		if err := p.Validate(); err != nil {
			return errBadRequest(c, err.Error())
		}

		frame, err := deps.Session.Frame(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(deps.Projection.GeoToScreen(p, frame.Viewport))
	}
}

// ScreenToGeoHandler unprojects screen coordinates through the current
// session viewport.
func ScreenToGeoHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		x := c.QueryFloat("x", -1)
		y := c.QueryFloat("y", -1)
		if x < 0 || y < 0 {
			return errBadRequest(c, "x and y query parameters are required")
		}

		frame, err := deps.Session.Frame(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(deps.Projection.ScreenToGeo(x, y, frame.Viewport))
	}
}

// fitRequest is the body of POST /v1/projection/fit.
type fitRequest struct {
	Points  []domain.GeoPoint `json:"points"`
	Width   float64           `json:"width"`
	Height  float64           `json:"height"`
	Padding float64           `json:"padding"`
}

// FitHandler computes the center and scale that frame a point set.
func FitHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req fitRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Width <= 0 || req.Height <= 0 {
			return errBadRequest(c, "width and height must be positive")
		}
		if req.Padding <= 0 {
			req.Padding = 0.1
		}

		bounds, err := deps.Projection.CalculateBounds(req.Points)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(deps.Projection.FitMapToView(bounds, req.Width, req.Height, req.Padding))
	}
}

// ViewportHandler returns the live session frame snapshot.
func ViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		frame, err := deps.Session.Frame(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(frame)
	}
}

// actionResult reports the outcome of one action in a batch.
type actionResult struct {
	Type  string `json:"type"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ViewportActionsHandler applies a batch of interpreter/UI actions to the
// session, in order. Each action succeeds or fails independently; a
// failed action never leaves the viewport half-updated.
func ViewportActionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var actions []domain.Action
		if err := c.BodyParser(&actions); err != nil {
			// Single-action bodies are accepted too.
			var one domain.Action
			if err := c.BodyParser(&one); err != nil {
				return errBadRequest(c, "invalid request body")
			}
			actions = []domain.Action{one}
		}
		if len(actions) == 0 {
			return errBadRequest(c, "at least one action is required")
		}
		if len(actions) > 50 {
			return errBadRequest(c, "too many actions in one batch (max 50)")
		}

		results := make([]actionResult, 0, len(actions))
		allOK := true
		for _, a := range actions {
			res := actionResult{Type: a.Type, OK: true}
			if err := deps.Session.Apply(c.UserContext(), a); err != nil {
				res.OK = false
				res.Error = err.Error()
				allOK = false
			}
			results = append(results, res)
		}

		status := 200
		if !allOK {
			status = 400
		}
		return c.Status(status).JSON(fiber.Map{"results": results})
	}
}

// tripRequest is the body of POST /v1/trips. Source and destination are
// station names, "Name (CODE)" forms, bare codes, or "lat,lon" pairs.
type tripRequest struct {
	Source      string  `json:"source"`
	Destination string  `json:"destination"`
	Speed       float64 `json:"speed"`
}

// StartTripHandler starts a camera trip between two endpoints.
func StartTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req tripRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Source == "" || req.Destination == "" {
			return errBadRequest(c, "source and destination are required")
		}

		err := deps.Session.Apply(c.UserContext(), domain.Action{
			Type:        "start_trip",
			Source:      req.Source,
			Destination: req.Destination,
			Speed:       req.Speed,
		})
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return errNotFound(c, "station not found")
		case errors.Is(err, domain.ErrSameStation):
			return errConflict(c, "source and destination are the same station")
		case err != nil:
			return errBadRequest(c, err.Error())
		}

		frame, err := deps.Session.Frame(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.Status(201).JSON(frame.Trip)
	}
}

// CurrentTripHandler returns the live trip state.
func CurrentTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		frame, err := deps.Session.Frame(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(frame.Trip)
	}
}

// StopTripHandler cancels the running trip. Idempotent.
func StopTripHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Session.Apply(c.UserContext(), domain.Action{Type: "stop_trip"}); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}
