package usecases

import (
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
)

// FitResult is the viewport placement computed by FitMapToView.
type FitResult struct {
	CenterLat float64 `json:"center_lat"`
	CenterLon float64 `json:"center_lon"`
	Scale     float64 `json:"scale"`
}

// ProjectionService converts between geographic and screen coordinates
// using an equirectangular projection. All methods are pure; NaN inputs
// propagate rather than error, callers validate GeoPoint invariants
// upstream.
type ProjectionService struct {
	// defaultFitScale is used when fit bounds are degenerate (zero lat or
	// lon range) and no scale can be derived.
	defaultFitScale float64
}

// NewProjectionService creates a new ProjectionService.
func NewProjectionService(defaultFitScale float64) *ProjectionService {
	if defaultFitScale <= 0 {
		defaultFitScale = 100
	}
	return &ProjectionService{defaultFitScale: defaultFitScale}
}

// GeoToScreen projects a geographic point into viewport pixel space.
func (s *ProjectionService) GeoToScreen(p domain.GeoPoint, v domain.Viewport) domain.ScreenPoint {
	return domain.ScreenPoint{
		X: (p.Lon-v.CenterLon)*v.Scale + v.Width/2,
		Y: (v.CenterLat-p.Lat)*v.Scale + v.Height/2,
	}
}

// ScreenToGeo is the exact algebraic inverse of GeoToScreen. For any
// viewport with Scale > 0, ScreenToGeo(GeoToScreen(p, v), v) == p to
// floating-point tolerance.
func (s *ProjectionService) ScreenToGeo(x, y float64, v domain.Viewport) domain.GeoPoint {
	return domain.GeoPoint{
		Lat: v.CenterLat - (y-v.Height/2)/v.Scale,
		Lon: v.CenterLon + (x-v.Width/2)/v.Scale,
	}
}

// CalculateBounds scans the points once and returns their bounding box.
// An empty input has no meaningful bounds and yields a ValidationError.
func (s *ProjectionService) CalculateBounds(points []domain.GeoPoint) (domain.Bounds, error) {
	if len(points) == 0 {
		return domain.Bounds{}, &domain.ValidationError{Field: "points", Message: "cannot compute bounds of an empty point set"}
	}

	b := domain.Bounds{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLon: points[0].Lon, MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
	}
	return b, nil
}

// FitMapToView centers on the bounds midpoint and picks the largest scale
// that keeps the whole box visible, shrunk by the padding fraction.
// Degenerate bounds (single point, zero extent on either axis) fall back
// to the configured default scale instead of dividing by zero.
func (s *ProjectionService) FitMapToView(b domain.Bounds, width, height, padding float64) FitResult {
	center := b.Center()
	res := FitResult{CenterLat: center.Lat, CenterLon: center.Lon, Scale: s.defaultFitScale}

	latRange := b.LatRange()
	lonRange := b.LonRange()
	if latRange <= 0 || lonRange <= 0 || width <= 0 || height <= 0 {
		return res
	}

	scaleY := height / latRange
	scaleX := width / lonRange
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	res.Scale = scale * (1 - padding)
	if res.Scale <= 0 {
		res.Scale = s.defaultFitScale
	}
	return res
}
