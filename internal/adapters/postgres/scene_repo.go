package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
)

// SceneRepo implements ports.SceneRepository with pgx. Scene objects and
// lighting are opaque rendering payload and live in jsonb columns; only
// the anchor and trigger are relational so the activation query stays
// indexable.
type SceneRepo struct {
	db *DB
}

// NewSceneRepo creates a new SceneRepo.
func NewSceneRepo(db *DB) *SceneRepo {
	return &SceneRepo{db: db}
}

// Upsert inserts or updates a single scene. A nil Location is stored as
// NULL so malformed entries survive ingest and are skipped downstream.
func (r *SceneRepo) Upsert(ctx context.Context, sc *domain.Scene) error {
	objects, err := json.Marshal(sc.Objects)
	if err != nil {
		return fmt.Errorf("marshal objects: %w", err)
	}
	lighting, err := json.Marshal(sc.Lighting)
	if err != nil {
		return fmt.Errorf("marshal lighting: %w", err)
	}

	var lat, lon *float64
	if sc.Location != nil {
		lat, lon = &sc.Location.Lat, &sc.Location.Lon
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO scenes (id, name, location, radius_meters, min_zoom, max_zoom, objects, lighting)
		VALUES ($1, $2,
		        CASE WHEN $3::float8 IS NULL THEN NULL
		             ELSE ST_SetSRID(ST_MakePoint($4, $3), 4326)::geography END,
		        $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, location = EXCLUDED.location,
		    radius_meters = EXCLUDED.radius_meters,
		    min_zoom = EXCLUDED.min_zoom, max_zoom = EXCLUDED.max_zoom,
		    objects = EXCLUDED.objects, lighting = EXCLUDED.lighting
	`, sc.ID, sc.Name, lat, lon,
		sc.Trigger.RadiusMeters, sc.Trigger.MinZoom, sc.Trigger.MaxZoom,
		objects, lighting)
	return err
}

// UpsertBatch inserts many scenes using pgx.Batch.
func (r *SceneRepo) UpsertBatch(ctx context.Context, scenes []domain.Scene) error {
	batch := &pgx.Batch{}
	for i := range scenes {
		sc := &scenes[i]
		objects, err := json.Marshal(sc.Objects)
		if err != nil {
			return fmt.Errorf("marshal objects for %s: %w", sc.ID, err)
		}
		lighting, err := json.Marshal(sc.Lighting)
		if err != nil {
			return fmt.Errorf("marshal lighting for %s: %w", sc.ID, err)
		}

		var lat, lon *float64
		if sc.Location != nil {
			lat, lon = &sc.Location.Lat, &sc.Location.Lon
		}

		batch.Queue(`
			INSERT INTO scenes (id, name, location, radius_meters, min_zoom, max_zoom, objects, lighting)
			VALUES ($1, $2,
			        CASE WHEN $3::float8 IS NULL THEN NULL
			             ELSE ST_SetSRID(ST_MakePoint($4, $3), 4326)::geography END,
			        $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, location = EXCLUDED.location,
			    radius_meters = EXCLUDED.radius_meters,
			    min_zoom = EXCLUDED.min_zoom, max_zoom = EXCLUDED.max_zoom,
			    objects = EXCLUDED.objects, lighting = EXCLUDED.lighting
		`, sc.ID, sc.Name, lat, lon,
			sc.Trigger.RadiusMeters, sc.Trigger.MinZoom, sc.Trigger.MaxZoom,
			objects, lighting)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range scenes {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// ListAll returns the full scene catalog. The activation engine takes the
// whole catalog as a snapshot, so there is no pagination here.
func (r *SceneRepo) ListAll(ctx context.Context) ([]domain.Scene, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, COALESCE(name, ''),
		       ST_Y(location::geometry) as lat,
		       ST_X(location::geometry) as lon,
		       radius_meters, min_zoom, max_zoom,
		       COALESCE(objects, '[]'), lighting, created_at
		FROM scenes
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []domain.Scene
	for rows.Next() {
		var sc domain.Scene
		var lat, lon *float64
		var objects []byte
		var lighting []byte
		if err := rows.Scan(
			&sc.ID, &sc.Name, &lat, &lon,
			&sc.Trigger.RadiusMeters, &sc.Trigger.MinZoom, &sc.Trigger.MaxZoom,
			&objects, &lighting, &sc.CreatedAt,
		); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			sc.Location = &domain.GeoPoint{Lat: *lat, Lon: *lon}
		}
		if err := json.Unmarshal(objects, &sc.Objects); err != nil {
			return nil, fmt.Errorf("unmarshal objects for %s: %w", sc.ID, err)
		}
		if len(lighting) > 0 {
			if err := json.Unmarshal(lighting, &sc.Lighting); err != nil {
				return nil, fmt.Errorf("unmarshal lighting for %s: %w", sc.ID, err)
			}
		}
		scenes = append(scenes, sc)
	}
	return scenes, rows.Err()
}
