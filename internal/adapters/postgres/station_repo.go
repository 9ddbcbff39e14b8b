package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
)

// StationRepo implements ports.StationRepository with pgx.
type StationRepo struct {
	db *DB
}

// NewStationRepo creates a new StationRepo.
func NewStationRepo(db *DB) *StationRepo {
	return &StationRepo{db: db}
}

const stationColumns = `
	id, COALESCE(code, ''), name, COALESCE(zone, ''), COALESCE(category, ''),
	ST_Y(location::geometry) as lat,
	ST_X(location::geometry) as lon,
	COALESCE(metadata, '{}'), created_at`

func scanStation(row pgx.Row) (*domain.Station, error) {
	var s domain.Station
	err := row.Scan(
		&s.ID, &s.Code, &s.Name, &s.Zone, &s.Category,
		&s.Location.Lat, &s.Location.Lon,
		&s.Metadata, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert inserts or updates a single station.
func (r *StationRepo) Upsert(ctx context.Context, s *domain.Station) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO stations (id, code, name, zone, category, location, metadata)
		VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography, $8)
		ON CONFLICT (id) DO UPDATE
		SET code = EXCLUDED.code, name = EXCLUDED.name, zone = EXCLUDED.zone,
		    category = EXCLUDED.category, location = EXCLUDED.location,
		    metadata = EXCLUDED.metadata
	`, s.ID, s.Code, s.Name, s.Zone, s.Category, s.Location.Lon, s.Location.Lat, s.Metadata)
	return err
}

// UpsertBatch inserts many stations using pgx.Batch.
func (r *StationRepo) UpsertBatch(ctx context.Context, stations []domain.Station) error {
	batch := &pgx.Batch{}
	for _, s := range stations {
		batch.Queue(`
			INSERT INTO stations (id, code, name, zone, category, location, metadata)
			VALUES ($1, $2, $3, $4, $5, ST_SetSRID(ST_MakePoint($6, $7), 4326)::geography, $8)
			ON CONFLICT (id) DO UPDATE
			SET code = EXCLUDED.code, name = EXCLUDED.name, zone = EXCLUDED.zone,
			    category = EXCLUDED.category, location = EXCLUDED.location,
			    metadata = EXCLUDED.metadata
		`, s.ID, s.Code, s.Name, s.Zone, s.Category, s.Location.Lon, s.Location.Lat, s.Metadata)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range stations {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// List returns a page of the catalog ordered by name.
func (r *StationRepo) List(ctx context.Context, limit, offset int) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stationColumns+`
		FROM stations
		ORDER BY name
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStations(rows)
}

// GetByID returns a station by id.
func (r *StationRepo) GetByID(ctx context.Context, id string) (*domain.Station, error) {
	s, err := scanStation(r.db.Pool.QueryRow(ctx, `
		SELECT `+stationColumns+`
		FROM stations WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

// ResolveName matches a station by exact name, "Name (CODE)" display form,
// or bare code, case-insensitively.
func (r *StationRepo) ResolveName(ctx context.Context, name string) (*domain.Station, error) {
	s, err := scanStation(r.db.Pool.QueryRow(ctx, `
		SELECT `+stationColumns+`
		FROM stations
		WHERE lower(name) = lower($1)
		   OR lower(name || ' (' || code || ')') = lower($1)
		   OR lower(code) = lower($1)
		ORDER BY category = 'HQ' DESC, name
		LIMIT 1
	`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

// Search performs fuzzy search on station names via pg_trgm similarity.
func (r *StationRepo) Search(ctx context.Context, query string, limit int) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stationColumns+`, similarity(name, $1) as sim
		FROM stations
		WHERE name %> $1 OR code ILIKE $1 || '%'
		ORDER BY sim DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var s domain.Station
		var sim float64
		if err := rows.Scan(
			&s.ID, &s.Code, &s.Name, &s.Zone, &s.Category,
			&s.Location.Lat, &s.Location.Lon,
			&s.Metadata, &s.CreatedAt, &sim,
		); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// FindNearby returns stations within radiusMeters using PostGIS ST_DWithin.
func (r *StationRepo) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Station, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+stationColumns+`,
		       ST_Distance(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography) as distance
		FROM stations
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY distance
		LIMIT $4
	`, lon, lat, radiusMeters, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		var s domain.Station
		var dist float64
		if err := rows.Scan(
			&s.ID, &s.Code, &s.Name, &s.Zone, &s.Category,
			&s.Location.Lat, &s.Location.Lon,
			&s.Metadata, &s.CreatedAt, &dist,
		); err != nil {
			return nil, err
		}
		s.Distance = &dist
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// ListByCategories returns stations in the given categories; a nil or
// empty slice means every category.
func (r *StationRepo) ListByCategories(ctx context.Context, categories []string) ([]domain.Station, error) {
	var rows pgx.Rows
	var err error
	if len(categories) == 0 {
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+stationColumns+`
			FROM stations
			ORDER BY name
		`)
	} else {
		rows, err = r.db.Pool.Query(ctx, `
			SELECT `+stationColumns+`
			FROM stations
			WHERE category = ANY($1)
			ORDER BY name
		`, categories)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStations(rows)
}

func collectStations(rows pgx.Rows) ([]domain.Station, error) {
	var stations []domain.Station
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(
			&s.ID, &s.Code, &s.Name, &s.Zone, &s.Category,
			&s.Location.Lat, &s.Location.Lon,
			&s.Metadata, &s.CreatedAt,
		); err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}
