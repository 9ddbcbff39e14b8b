package http_test

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/http"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/session"
)

// ---- Mock repositories ----

type mockStationRepo struct {
	listFn        func(ctx context.Context, limit, offset int) ([]domain.Station, error)
	getByIDFn     func(ctx context.Context, id string) (*domain.Station, error)
	resolveNameFn func(ctx context.Context, name string) (*domain.Station, error)
	searchFn      func(ctx context.Context, query string, limit int) ([]domain.Station, error)
	findNearbyFn  func(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Station, error)
}

func (m *mockStationRepo) Upsert(ctx context.Context, s *domain.Station) error       { return nil }
func (m *mockStationRepo) UpsertBatch(ctx context.Context, s []domain.Station) error { return nil }
func (m *mockStationRepo) List(ctx context.Context, limit, offset int) ([]domain.Station, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}
func (m *mockStationRepo) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockStationRepo) ResolveName(ctx context.Context, name string) (*domain.Station, error) {
	if m.resolveNameFn != nil {
		return m.resolveNameFn(ctx, name)
	}
	return nil, domain.ErrNotFound
}
func (m *mockStationRepo) Search(ctx context.Context, query string, limit int) ([]domain.Station, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}
func (m *mockStationRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Station, error) {
	if m.findNearbyFn != nil {
		return m.findNearbyFn(ctx, lat, lon, radiusMeters, limit)
	}
	return nil, nil
}
func (m *mockStationRepo) ListByCategories(ctx context.Context, categories []string) ([]domain.Station, error) {
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

// makeDeps wires handlers to real services over mock repositories and a
// live session actor, shut down via t.Cleanup.
func makeDeps(t *testing.T, opts ...func(*handler.Dependencies)) *handler.Dependencies {
	t.Helper()

	repo := &mockStationRepo{}
	stations := usecases.NewStationService(repo, nil)
	projection := usecases.NewProjectionService(100)
	zoom := usecases.NewZoomService(220)
	scenes := usecases.NewSceneService(2)
	trips := usecases.NewTripController()

	home := domain.Viewport{CenterLat: 22.5, CenterLon: 82.5, Scale: 100, Width: 1024, Height: 768}
	vp := usecases.NewViewportService(home, projection, zoom, scenes, trips, stations, 220)

	runner := session.New(session.Config{
		SessionID: "test",
		TickHz:    100,
		Viewport:  vp,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = runner.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	d := &handler.Dependencies{
		Stations:   stations,
		Projection: projection,
		Zoom:       zoom,
		Session:    runner,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

// ---- Zoom handler tests ----

func TestZoomLevels(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/zoom/levels", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var levels []domain.ZoomLevel
	if err := json.Unmarshal(readBody(t, resp.Body), &levels); err != nil {
		t.Fatal(err)
	}
	if len(levels) != 11 {
		t.Fatalf("expected 11 zoom levels, got %d", len(levels))
	}
	if levels[0].Name != "Street Level" || levels[10].Name != "Global View" {
		t.Fatalf("catalog out of order: %s ... %s", levels[0].Name, levels[10].Name)
	}
}

func TestClassifyZoom(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/zoom/classify?distance=0.05", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var cls domain.ZoomClassification
	if err := json.Unmarshal(readBody(t, resp.Body), &cls); err != nil {
		t.Fatal(err)
	}
	if cls.Name != "Street Level" {
		t.Fatalf("expected Street Level, got %q", cls.Name)
	}
	if cls.ActualAreaKm != 11 {
		t.Fatalf("expected actual area 11, got %d", cls.ActualAreaKm)
	}
}

func TestClassifyZoom_MissingDistance(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/zoom/classify", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTileConfig(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/zoom/tile-config?distance=0.4", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Tile domain.TileConfig `json:"tile"`
		LOD  int               `json:"lod"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &result); err != nil {
		t.Fatal(err)
	}
	if result.Tile.TileSize != 1 {
		t.Fatalf("expected tile size 1 at distance 0.4, got %v", result.Tile.TileSize)
	}
	if result.Tile.MaxStations != 1000 {
		t.Fatalf("expected 1000 max stations, got %d", result.Tile.MaxStations)
	}
	if !result.Tile.ShowTracks {
		t.Fatal("expected tracks visible at close zoom")
	}
	if result.LOD != 0 {
		t.Fatalf("expected LOD 0, got %d", result.LOD)
	}
}

// ---- Projection handler tests ----

func TestFitHandler(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"points":[{"lat":19.12,"lon":72.85},{"lat":28.64,"lon":77.22}],"width":1024,"height":768}`
	req := httptest.NewRequest("POST", "/v1/projection/fit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var fit usecases.FitResult
	if err := json.Unmarshal(readBody(t, resp.Body), &fit); err != nil {
		t.Fatal(err)
	}
	if fit.Scale <= 0 {
		t.Fatalf("expected positive scale, got %v", fit.Scale)
	}
	wantLat, wantLon := (19.12+28.64)/2, (72.85+77.22)/2
	if math.Abs(fit.CenterLat-wantLat) > 1e-9 || math.Abs(fit.CenterLon-wantLon) > 1e-9 {
		t.Fatalf("expected center (%v, %v), got (%v, %v)", wantLat, wantLon, fit.CenterLat, fit.CenterLon)
	}
}

func TestFitHandler_NoPoints(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/projection/fit", strings.NewReader(`{"points":[],"width":1024,"height":768}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGeoToScreen_InvalidLat(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/projection/geo-to-screen?lat=95&lon=10", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGeoToScreen_RoundTrip(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/projection/geo-to-screen?lat=22.5&lon=82.5", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var pt domain.ScreenPoint
	if err := json.Unmarshal(readBody(t, resp.Body), &pt); err != nil {
		t.Fatal(err)
	}
	// The home center projects to the middle of the 1024x768 surface.
	if pt.X != 512 || pt.Y != 384 {
		t.Fatalf("expected screen (512, 384), got (%v, %v)", pt.X, pt.Y)
	}
}

// ---- Station handler tests ----

func TestSearchStations(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Stations = usecases.NewStationService(&mockStationRepo{
			searchFn: func(ctx context.Context, query string, limit int) ([]domain.Station, error) {
				return []domain.Station{
					{ID: "st-cstm", Code: "CSTM", Name: "Mumbai CST", Location: domain.GeoPoint{Lat: 18.94, Lon: 72.835}},
				}, nil
			},
		}, nil)
	})
	app := setupApp(deps)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/stations/search?q=mumbai", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var stations []domain.Station
	if err := json.Unmarshal(readBody(t, resp.Body), &stations); err != nil {
		t.Fatal(err)
	}
	if len(stations) != 1 || stations[0].ID != "st-cstm" {
		t.Fatalf("unexpected search result: %+v", stations)
	}
}

func TestSearchStations_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/stations/search", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNearbyStations_BadRadius(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/stations/nearby?lat=19&lon=72&radius=900000", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestGetStation_NotFound(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/stations/st-nope", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStationsByLevel_BadLOD(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/stations/level/9", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestBoundaries_FilterByZoom(t *testing.T) {
	deps := makeDeps(t, func(d *handler.Dependencies) {
		d.Boundaries = []domain.BoundaryFeature{
			{Name: "India", Kind: "country_border", MinZoom: 0},
			{Name: "Maharashtra", Kind: "state_border", MinZoom: 0, MaxZoom: 8},
		}
	})
	app := setupApp(deps)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/boundaries?zoom=12", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var features []domain.BoundaryFeature
	if err := json.Unmarshal(readBody(t, resp.Body), &features); err != nil {
		t.Fatal(err)
	}
	// State borders fade out above their max zoom; the country border stays.
	if len(features) != 1 || features[0].Name != "India" {
		t.Fatalf("unexpected boundary filter result: %+v", features)
	}
}

// ---- Viewport handler tests ----

func TestViewportSnapshot(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/viewport", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var frame usecases.Frame
	if err := json.Unmarshal(readBody(t, resp.Body), &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Viewport.Scale <= 0 {
		t.Fatalf("expected positive scale, got %v", frame.Viewport.Scale)
	}
	if frame.Viewport.CenterLat != 22.5 || frame.Viewport.CenterLon != 82.5 {
		t.Fatalf("unexpected home center: (%v, %v)", frame.Viewport.CenterLat, frame.Viewport.CenterLon)
	}
}

func TestViewportActions_Batch(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `[{"type":"center","lat":19.12,"lon":72.85},{"type":"zoom","mode":"to","value":2}]`
	req := httptest.NewRequest("POST", "/v1/viewport/actions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result struct {
		Results []struct {
			Type string `json:"type"`
			OK   bool   `json:"ok"`
		} `json:"results"`
	}
	if err := json.Unmarshal(readBody(t, resp.Body), &result); err != nil {
		t.Fatal(err)
	}
	if len(result.Results) != 2 || !result.Results[0].OK || !result.Results[1].OK {
		t.Fatalf("unexpected batch results: %+v", result.Results)
	}
}

func TestViewportActions_UnknownType(t *testing.T) {
	app := setupApp(makeDeps(t))

	req := httptest.NewRequest("POST", "/v1/viewport/actions", strings.NewReader(`[{"type":"teleport"}]`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- Trip handler tests ----

func TestStartTrip_Coordinates(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"source":"19.12,72.85","destination":"28.64,77.22"}`
	req := httptest.NewRequest("POST", "/v1/trips", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var trip domain.Trip
	if err := json.Unmarshal(readBody(t, resp.Body), &trip); err != nil {
		t.Fatal(err)
	}
	if trip.Status != domain.TripRunning {
		t.Fatalf("expected running trip, got %q", trip.Status)
	}

	// Cancel is idempotent.
	for i := 0; i < 2; i++ {
		resp, err = app.Test(httptest.NewRequest("DELETE", "/v1/trips/current", nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 204 {
			t.Fatalf("expected 204, got %d", resp.StatusCode)
		}
	}
}

func TestStartTrip_UnknownStation(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"source":"Mumbai CST","destination":"Atlantis Central"}`
	req := httptest.NewRequest("POST", "/v1/trips", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestStartTrip_SameEndpoint(t *testing.T) {
	app := setupApp(makeDeps(t))

	body := `{"source":"19.12,72.85","destination":"19.12,72.85"}`
	req := httptest.NewRequest("POST", "/v1/trips", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestCurrentTrip_IdleByDefault(t *testing.T) {
	app := setupApp(makeDeps(t))

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/trips/current", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var trip domain.Trip
	if err := json.Unmarshal(readBody(t, resp.Body), &trip); err != nil {
		t.Fatal(err)
	}
	if trip.Status != domain.TripIdle {
		t.Fatalf("expected idle trip, got %q", trip.Status)
	}
}
