package usecases

import (
	"math"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
)

// ZoomService maps the continuous camera zoom distance onto the discrete
// zoom level catalog and derives level-of-detail configuration. Pure and
// deterministic: the same distance always classifies identically.
type ZoomService struct {
	// areaPerDistance calibrates camera distance units to kilometers of
	// visible ground.
	areaPerDistance float64
	levels          []domain.ZoomLevel
}

// NewZoomService creates a ZoomService over the static zoom catalog.
func NewZoomService(areaPerDistance float64) *ZoomService {
	if areaPerDistance <= 0 {
		areaPerDistance = 220
	}
	return &ZoomService{areaPerDistance: areaPerDistance, levels: domain.ZoomLevels}
}

// DistanceToAreaKm converts a zoom distance to visible ground kilometers.
// Strictly increasing in zoomDistance.
func (s *ZoomService) DistanceToAreaKm(zoomDistance float64) int {
	return int(math.Round(zoomDistance * s.areaPerDistance))
}

// Classify selects the catalog entry whose nominal areaKm is numerically
// closest to the computed coverage. Ties go to the first entry in
// ascending-level order; this tie-break is observable and intentional.
func (s *ZoomService) Classify(zoomDistance float64) domain.ZoomClassification {
	actual := s.DistanceToAreaKm(zoomDistance)

	best := s.levels[0]
	bestDelta := abs(actual - best.AreaKm)
	for _, lvl := range s.levels[1:] {
		if d := abs(actual - lvl.AreaKm); d < bestDelta {
			best = lvl
			bestDelta = d
		}
	}

	return domain.ZoomClassification{
		ZoomLevel:    best,
		ActualAreaKm: actual,
		AreaDeltaKm:  bestDelta,
	}
}

// LODFromLevel partitions [0, ∞) into four detail tiers.
func (s *ZoomService) LODFromLevel(level float64) int {
	switch {
	case level <= 0.5:
		return 0
	case level <= 2:
		return 1
	case level <= 10:
		return 2
	default:
		return 3
	}
}

// TileConfig derives tile size, render budget, and detail flags for the
// rendering collaborator. The classifier itself draws nothing.
func (s *ZoomService) TileConfig(zoomDistance float64) domain.TileConfig {
	cfg := domain.TileConfig{
		ShowDetails: zoomDistance <= 5,
		ShowLabels:  zoomDistance <= 10,
		ShowTracks:  zoomDistance <= 2,
	}

	switch {
	case zoomDistance <= 1:
		cfg.TileSize = 1
	case zoomDistance <= 5:
		cfg.TileSize = 5
	case zoomDistance <= 15:
		cfg.TileSize = 20
	default:
		cfg.TileSize = 50
	}

	switch {
	case zoomDistance <= 0.5:
		cfg.MaxStations = 1000
	case zoomDistance <= 2:
		cfg.MaxStations = 500
	case zoomDistance <= 10:
		cfg.MaxStations = 100
	default:
		cfg.MaxStations = 20
	}

	return cfg
}

// Levels returns the immutable zoom catalog.
func (s *ZoomService) Levels() []domain.ZoomLevel {
	return s.levels
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
