package usecases_test

import (
	"testing"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/usecases"
)

func sceneAt(id string, lat, lon, radiusMeters, minZoom, maxZoom float64) domain.Scene {
	return domain.Scene{
		ID:       id,
		Location: &domain.GeoPoint{Lat: lat, Lon: lon},
		Trigger:  domain.SceneTrigger{RadiusMeters: radiusMeters, MinZoom: minZoom, MaxZoom: maxZoom},
	}
}

func viewportAt(lat, lon, zoom float64) domain.Viewport {
	return domain.Viewport{CenterLat: lat, CenterLon: lon, Scale: 10, ZoomDistance: zoom, Width: 1024, Height: 768}
}

func TestComputeActiveScenes(t *testing.T) {
	catalog := []domain.Scene{sceneAt("mumbai-cst", 19.12, 72.85, 2000, 0, 5)}

	// Camera on the anchor, zoom in range.
	active := usecases.ComputeActiveScenes(viewportAt(19.12, 72.85, 3), catalog)
	if len(active) != 1 || active[0] != "mumbai-cst" {
		t.Errorf("expected scene active at anchor, got %v", active)
	}

	// Zoom out of range.
	active = usecases.ComputeActiveScenes(viewportAt(19.12, 72.85, 6), catalog)
	if len(active) != 0 {
		t.Errorf("expected inactive at zoom 6, got %v", active)
	}

	// ~97.7 km away, far beyond the 2 km radius.
	active = usecases.ComputeActiveScenes(viewportAt(20.0, 72.85, 3), catalog)
	if len(active) != 0 {
		t.Errorf("expected inactive at 97.7 km, got %v", active)
	}
}

func TestComputeActiveScenes_DefaultZoomWindow(t *testing.T) {
	// MaxZoom unset (0) widens to the default 100.
	catalog := []domain.Scene{sceneAt("delhi-hq", 28.64, 77.22, 5000, 0, 0)}

	active := usecases.ComputeActiveScenes(viewportAt(28.64, 77.22, 50), catalog)
	if len(active) != 1 {
		t.Errorf("expected active with unset max zoom at distance 50, got %v", active)
	}

	active = usecases.ComputeActiveScenes(viewportAt(28.64, 77.22, 101), catalog)
	if len(active) != 0 {
		t.Errorf("expected inactive beyond the default max zoom, got %v", active)
	}
}

func TestComputeActiveScenes_SkipsMalformed(t *testing.T) {
	catalog := []domain.Scene{
		{ID: "broken", Trigger: domain.SceneTrigger{RadiusMeters: 2000}},
		sceneAt("ok", 19.12, 72.85, 2000, 0, 5),
	}

	active := usecases.ComputeActiveScenes(viewportAt(19.12, 72.85, 3), catalog)
	if len(active) != 1 || active[0] != "ok" {
		t.Errorf("malformed scene must be skipped, not fatal: %v", active)
	}
}

func TestComputeActiveScenes_EmptyCatalog(t *testing.T) {
	if active := usecases.ComputeActiveScenes(viewportAt(19.12, 72.85, 3), nil); len(active) != 0 {
		t.Errorf("empty catalog must yield an empty set, got %v", active)
	}
}

func TestSceneService_Hysteresis(t *testing.T) {
	svc := usecases.NewSceneService(2)
	svc.ReplaceCatalog([]domain.Scene{sceneAt("mumbai-cst", 19.12, 72.85, 2000, 0, 5)})

	onAnchor := viewportAt(19.12, 72.85, 3)
	farAway := viewportAt(25.0, 80.0, 3)

	// First agreeing tick: pending, not yet active.
	eval := svc.Evaluate(onAnchor)
	if len(eval.Active) != 0 || len(eval.Activated) != 0 {
		t.Fatalf("one tick must not activate with hysteresis 2: %+v", eval)
	}

	// Second agreeing tick: toggles on.
	eval = svc.Evaluate(onAnchor)
	if len(eval.Activated) != 1 || eval.Activated[0] != "mumbai-cst" {
		t.Fatalf("expected activation on second tick: %+v", eval)
	}
	if len(eval.Active) != 1 {
		t.Fatalf("expected active set of 1: %+v", eval)
	}

	// Camera leaves: still active for one tick (pending inactive).
	eval = svc.Evaluate(farAway)
	if len(eval.Deactivated) != 0 || len(eval.Active) != 1 {
		t.Fatalf("one disagreeing tick must not deactivate: %+v", eval)
	}

	// Second disagreeing tick: toggles off.
	eval = svc.Evaluate(farAway)
	if len(eval.Deactivated) != 1 || len(eval.Active) != 0 {
		t.Fatalf("expected deactivation on second tick: %+v", eval)
	}
}

func TestSceneService_BoundaryFlapSuppressed(t *testing.T) {
	svc := usecases.NewSceneService(2)
	svc.ReplaceCatalog([]domain.Scene{sceneAt("mumbai-cst", 19.12, 72.85, 2000, 0, 5)})

	onAnchor := viewportAt(19.12, 72.85, 3)
	farAway := viewportAt(25.0, 80.0, 3)

	// A camera oscillating across the boundary every tick never reaches
	// two agreeing ticks, so the scene never toggles.
	for i := 0; i < 10; i++ {
		vp := onAnchor
		if i%2 == 1 {
			vp = farAway
		}
		eval := svc.Evaluate(vp)
		if len(eval.Activated) != 0 || len(eval.Deactivated) != 0 {
			t.Fatalf("tick %d: flapping input must not toggle state: %+v", i, eval)
		}
	}
}

func TestSceneService_NoHysteresisImmediateToggle(t *testing.T) {
	svc := usecases.NewSceneService(1)
	svc.ReplaceCatalog([]domain.Scene{sceneAt("mumbai-cst", 19.12, 72.85, 2000, 0, 5)})

	eval := svc.Evaluate(viewportAt(19.12, 72.85, 3))
	if len(eval.Activated) != 1 {
		t.Fatalf("hysteresis 1 must activate on the first tick: %+v", eval)
	}

	eval = svc.Evaluate(viewportAt(25.0, 80.0, 3))
	if len(eval.Deactivated) != 1 {
		t.Fatalf("hysteresis 1 must deactivate on the first tick: %+v", eval)
	}
}

func TestSceneService_ReplaceCatalogDropsRemovedState(t *testing.T) {
	svc := usecases.NewSceneService(1)
	svc.ReplaceCatalog([]domain.Scene{sceneAt("a", 19.12, 72.85, 2000, 0, 5)})

	vp := viewportAt(19.12, 72.85, 3)
	if eval := svc.Evaluate(vp); len(eval.Active) != 1 {
		t.Fatal("scene a should be active before refresh")
	}

	// Refresh-by-replacement: a disappears, b arrives at the same anchor.
	svc.ReplaceCatalog([]domain.Scene{sceneAt("b", 19.12, 72.85, 2000, 0, 5)})

	eval := svc.Evaluate(vp)
	if len(eval.Active) != 1 || eval.Active[0] != "b" {
		t.Errorf("expected only scene b after refresh, got %+v", eval)
	}
	// a's state is gone: re-adding it starts from Inactive.
	svc.ReplaceCatalog([]domain.Scene{sceneAt("a", 25.0, 80.0, 2000, 0, 5)})
	eval = svc.Evaluate(vp)
	if len(eval.Deactivated) != 0 {
		t.Errorf("re-added scene must start Inactive, not emit a deactivation: %+v", eval)
	}
}
