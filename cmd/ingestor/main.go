package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/adapters/postgres"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/config"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/geojson"
)

// The ingestor loads the map catalogs into Postgres:
//
//	ingestor stations <file.geojson> [file2.geojson ...]
//	ingestor scenes   <scenes.json>
//
// Station files are GeoJSON, flat or zone-grouped; scene files are a JSON
// array of scene definitions. Both runs are idempotent upserts, so
// re-ingesting a corrected dataset is the normal update path.
func main() {
	if len(os.Args) < 3 {
		log.Fatal("usage: ingestor <stations|scenes> <file> [file ...]")
	}

	cfg, err := config.Load("mapdisplay-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "stations":
		repo := postgres.NewStationRepo(db)
		for _, path := range os.Args[2:] {
			if err := ingestStations(ctx, repo, path); err != nil {
				log.Fatalf("ERROR [%s]: %v", path, err)
			}
		}
	case "scenes":
		repo := postgres.NewSceneRepo(db)
		for _, path := range os.Args[2:] {
			if err := ingestScenes(ctx, repo, path); err != nil {
				log.Fatalf("ERROR [%s]: %v", path, err)
			}
		}
	default:
		log.Fatalf("unknown catalog: %s", os.Args[1])
	}

	log.Println("ingestion complete")
}

func ingestStations(ctx context.Context, repo *postgres.StationRepo, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	fc, err := geojson.Decode(data)
	if err != nil {
		return err
	}

	stations := geojson.Stations(fc)
	for i := range stations {
		stations[i].ID = stationID(&stations[i])
	}

	if err := repo.UpsertBatch(ctx, stations); err != nil {
		return err
	}
	log.Printf("OK  %s: %d stations", path, len(stations))
	return nil
}

// stationID derives a stable id from the station code, falling back to a
// slug of the name so re-ingest hits the same row.
func stationID(s *domain.Station) string {
	if s.Code != "" {
		return "st-" + strings.ToLower(s.Code)
	}
	slug := strings.ToLower(s.Name)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	return "st-" + strings.Trim(slug, "-")
}

func ingestScenes(ctx context.Context, repo *postgres.SceneRepo, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var scenes []domain.Scene
	if err := json.Unmarshal(data, &scenes); err != nil {
		return err
	}

	// Entries without an anchor are kept: the activation engine skips
	// them, and the catalog owner sees them in /v1/scenes.
	missing := 0
	for i := range scenes {
		if scenes[i].Location == nil {
			missing++
		}
	}
	if missing > 0 {
		log.Printf("WARN %s: %d scenes have no location and will never activate", path, missing)
	}

	if err := repo.UpsertBatch(ctx, scenes); err != nil {
		return err
	}
	log.Printf("OK  %s: %d scenes", path, len(scenes))
	return nil
}
