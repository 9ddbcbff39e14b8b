package usecases_test

import (
	"testing"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
)

func TestZoom_DistanceToAreaKm_Monotonic(t *testing.T) {
	svc := usecases.NewZoomService(220)

	distances := []float64{0.01, 0.05, 0.15, 0.5, 1, 3, 6, 12, 25, 60, 150}
	prev := -1
	for _, d := range distances {
		area := svc.DistanceToAreaKm(d)
		if area <= prev {
			t.Errorf("area mapping not strictly increasing at d=%v: %d <= %d", d, area, prev)
		}
		prev = area
	}
}

func TestZoom_Classify_Deterministic(t *testing.T) {
	svc := usecases.NewZoomService(220)

	first := svc.Classify(4.2)
	for i := 0; i < 10; i++ {
		again := svc.Classify(4.2)
		if again != first {
			t.Fatalf("classification not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestZoom_Classify(t *testing.T) {
	svc := usecases.NewZoomService(220)

	tests := []struct {
		distance   float64
		wantName   string
		wantActual int
	}{
		{0.05, "Street Level", 11},
		{3, "State", 660},
		{12, "Country", 2640},
		{150, "Global View", 33000},
	}
	for _, tc := range tests {
		got := svc.Classify(tc.distance)
		if got.Name != tc.wantName {
			t.Errorf("Classify(%v): expected %q, got %q", tc.distance, tc.wantName, got.Name)
		}
		if got.ActualAreaKm != tc.wantActual {
			t.Errorf("Classify(%v): expected actual area %d, got %d", tc.distance, tc.wantActual, got.ActualAreaKm)
		}
	}
}

func TestZoom_Classify_TieBreak(t *testing.T) {
	svc := usecases.NewZoomService(220)

	// 54 km is exactly halfway between the Neighborhood (33) and City (75)
	// nominal areas; the tie must go to the first entry in ascending-level
	// order.
	c := svc.Classify(54.0 / 220.0)
	if c.ActualAreaKm != 54 {
		t.Fatalf("expected actual area 54, got %d", c.ActualAreaKm)
	}
	if c.AreaDeltaKm != 21 {
		t.Fatalf("expected delta 21, got %d", c.AreaDeltaKm)
	}
	if c.Name != "Neighborhood" {
		t.Errorf("tie should resolve to the lower level, got %q", c.Name)
	}
}

func TestZoom_LODPartition(t *testing.T) {
	svc := usecases.NewZoomService(220)

	tests := []struct {
		level float64
		want  int
	}{
		{0, 0},
		{0.3, 0},
		{0.5, 0},
		{0.500001, 1},
		{2, 1},
		{2.000001, 2},
		{10, 2},
		{10.000001, 3},
		{150, 3},
		{1e9, 3},
	}
	for _, tc := range tests {
		if got := svc.LODFromLevel(tc.level); got != tc.want {
			t.Errorf("LODFromLevel(%v): expected %d, got %d", tc.level, tc.want, got)
		}
	}
}

func TestZoom_TileConfig(t *testing.T) {
	svc := usecases.NewZoomService(220)

	tests := []struct {
		distance    float64
		tileSize    float64
		maxStations int
	}{
		{0.4, 1, 1000},
		{1, 1, 500},
		{1.5, 5, 500},
		{5, 5, 100},
		{10, 20, 100},
		{15, 20, 20},
		{40, 50, 20},
	}
	for _, tc := range tests {
		cfg := svc.TileConfig(tc.distance)
		if cfg.TileSize != tc.tileSize {
			t.Errorf("TileConfig(%v): expected tile size %v, got %v", tc.distance, tc.tileSize, cfg.TileSize)
		}
		if cfg.MaxStations != tc.maxStations {
			t.Errorf("TileConfig(%v): expected budget %d, got %d", tc.distance, tc.maxStations, cfg.MaxStations)
		}
	}
}

func TestZoom_TileConfig_Flags(t *testing.T) {
	svc := usecases.NewZoomService(220)

	cfg := svc.TileConfig(1.5)
	if !cfg.ShowDetails || !cfg.ShowLabels || !cfg.ShowTracks {
		t.Errorf("at distance 1.5 all flags should be on: %+v", cfg)
	}

	cfg = svc.TileConfig(7)
	if cfg.ShowDetails || !cfg.ShowLabels || cfg.ShowTracks {
		t.Errorf("at distance 7 only labels should be on: %+v", cfg)
	}

	cfg = svc.TileConfig(30)
	if cfg.ShowDetails || cfg.ShowLabels || cfg.ShowTracks {
		t.Errorf("at distance 30 all flags should be off: %+v", cfg)
	}
}
