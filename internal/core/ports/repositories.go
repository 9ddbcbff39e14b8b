package ports

import (
	"context"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
)

// StationRepository persists and queries the railway station catalog.
type StationRepository interface {
	Upsert(ctx context.Context, station *domain.Station) error
	UpsertBatch(ctx context.Context, stations []domain.Station) error
	List(ctx context.Context, limit, offset int) ([]domain.Station, error)
	GetByID(ctx context.Context, id string) (*domain.Station, error)
	// ResolveName matches a station by exact name, "Name (CODE)" form, or
	// bare code. Returns domain.ErrNotFound when nothing matches.
	ResolveName(ctx context.Context, name string) (*domain.Station, error)
	Search(ctx context.Context, query string, limit int) ([]domain.Station, error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Station, error)
	ListByCategories(ctx context.Context, categories []string) ([]domain.Station, error)
}

// SceneRepository persists the scene catalog.
type SceneRepository interface {
	Upsert(ctx context.Context, scene *domain.Scene) error
	UpsertBatch(ctx context.Context, scenes []domain.Scene) error
	ListAll(ctx context.Context) ([]domain.Scene, error)
}
