package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/ports"
)

// lodCategories maps a LOD tier to the station categories it renders:
// 0 shows only zonal headquarters, each higher tier adds the next band,
// and tier 3 shows everything.
var lodCategories = map[int][]string{
	0: {"HQ"},
	1: {"HQ", "A1"},
	2: {"HQ", "A1", "A"},
}

// StationService handles station catalog queries and name resolution.
type StationService struct {
	stations ports.StationRepository
	cache    ports.CacheService
}

// NewStationService creates a new StationService.
func NewStationService(stations ports.StationRepository, cache ports.CacheService) *StationService {
	return &StationService{stations: stations, cache: cache}
}

// List returns a page of the station catalog.
func (s *StationService) List(ctx context.Context, limit, offset int) ([]domain.Station, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.stations.List(ctx, limit, offset)
}

// GetByID returns a single station.
func (s *StationService) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	return s.stations.GetByID(ctx, id)
}

// Resolve maps a station name (or "Name (CODE)", or bare code) to its
// record. Unresolvable names surface domain.ErrNotFound.
func (s *StationService) Resolve(ctx context.Context, name string) (*domain.Station, error) {
	if name == "" {
		return nil, fmt.Errorf("station name must not be empty")
	}

	cacheKey := "stations:resolve:" + name
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var st domain.Station
			if err := json.Unmarshal(data, &st); err == nil {
				return &st, nil
			}
		}
	}

	st, err := s.stations.ResolveName(ctx, name)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(st); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return st, nil
}

// Search performs fuzzy search on station names.
func (s *StationService) Search(ctx context.Context, query string, limit int) ([]domain.Station, error) {
	if query == "" {
		return nil, fmt.Errorf("search query must not be empty")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	cacheKey := fmt.Sprintf("stations:search:%s:%d", query, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stations []domain.Station
			if err := json.Unmarshal(data, &stations); err == nil {
				return stations, nil
			}
		}
	}

	stations, err := s.stations.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	// Cache for 5 minutes (the catalog changes only on re-ingest)
	if s.cache != nil {
		if data, err := json.Marshal(stations); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	return stations, nil
}

// FindNearby returns stations within radiusMeters of the given point.
func (s *StationService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Station, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	cacheKey := fmt.Sprintf("stations:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stations []domain.Station
			if err := json.Unmarshal(data, &stations); err == nil {
				return stations, nil
			}
		}
	}

	stations, err := s.stations.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stations); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	return stations, nil
}

// ListByLOD returns the stations visible at a LOD tier.
func (s *StationService) ListByLOD(ctx context.Context, lod int) ([]domain.Station, error) {
	if lod < 0 || lod > 3 {
		return nil, fmt.Errorf("lod must be 0-3, got %d", lod)
	}

	cats, ok := lodCategories[lod]
	if !ok {
		// Tier 3: everything.
		return s.stations.ListByCategories(ctx, nil)
	}
	return s.stations.ListByCategories(ctx, cats)
}
