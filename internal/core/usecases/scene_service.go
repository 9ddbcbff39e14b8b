package usecases

import (
	"log/slog"
	"sort"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/geospatial"
)

// DefaultMaxZoom widens a scene trigger whose MaxZoom is unset (0).
const DefaultMaxZoom = 100.0

// scenePhase is the hysteresis state of one scene. A scene must hold the
// opposite raw predicate for a full streak of ticks before toggling, so a
// camera hovering on a trigger boundary cannot flap the active set.
type scenePhase int

const (
	phaseInactive scenePhase = iota
	phasePendingActive
	phaseActive
	phasePendingInactive
)

type sceneState struct {
	phase  scenePhase
	streak int
}

// SceneEvaluation is the outcome of one activation tick: the full active
// set (wholesale replacement semantics) plus the toggles this tick caused.
type SceneEvaluation struct {
	Active      []string `json:"active"`
	Activated   []string `json:"activated"`
	Deactivated []string `json:"deactivated"`
}

// SceneService recomputes the active-scene set from camera position and
// zoom on every evaluation tick. It never mutates the viewport or the
// catalog; the catalog is a snapshot replaced wholesale on refresh.
type SceneService struct {
	hysteresisTicks int
	catalog         []domain.Scene
	states          map[string]*sceneState
}

// NewSceneService creates a SceneService. hysteresisTicks is the number of
// consecutive agreeing ticks required before a scene toggles (minimum 1,
// where 1 means no hysteresis).
func NewSceneService(hysteresisTicks int) *SceneService {
	if hysteresisTicks < 1 {
		hysteresisTicks = 1
	}
	return &SceneService{
		hysteresisTicks: hysteresisTicks,
		states:          make(map[string]*sceneState),
	}
}

// ReplaceCatalog swaps in a new catalog snapshot. Hysteresis state is kept
// for scenes that survive the refresh and dropped for removed ones.
func (s *SceneService) ReplaceCatalog(scenes []domain.Scene) {
	s.catalog = scenes

	keep := make(map[string]bool, len(scenes))
	for _, sc := range scenes {
		keep[sc.ID] = true
	}
	for id := range s.states {
		if !keep[id] {
			delete(s.states, id)
		}
	}
}

// Catalog returns the current scene catalog snapshot.
func (s *SceneService) Catalog() []domain.Scene {
	return s.catalog
}

// sceneTriggered is the raw memoryless predicate: within trigger radius
// (planar 111 km/degree approximation) and within the zoom window. The
// second return is false when the scene is malformed and must be skipped.
func sceneTriggered(sc *domain.Scene, vp domain.Viewport) (bool, bool) {
	if sc.Location == nil {
		return false, false
	}

	maxZoom := sc.Trigger.MaxZoom
	if maxZoom == 0 {
		maxZoom = DefaultMaxZoom
	}
	withinZoom := vp.ZoomDistance >= sc.Trigger.MinZoom && vp.ZoomDistance <= maxZoom

	distKm := geospatial.PlanarDistanceKm(vp.CenterLat, vp.CenterLon, sc.Location.Lat, sc.Location.Lon)
	withinRadius := distKm <= sc.Trigger.RadiusMeters/1000

	return withinRadius && withinZoom, true
}

// ComputeActiveScenes is the stateless evaluation exposed to
// collaborators: the set of scene ids triggered by the given viewport,
// with no hysteresis. Malformed entries are skipped and logged, never
// fatal. The result replaces any previous set wholesale.
func ComputeActiveScenes(vp domain.Viewport, catalog []domain.Scene) []string {
	var active []string
	for i := range catalog {
		sc := &catalog[i]
		triggered, ok := sceneTriggered(sc, vp)
		if !ok {
			slog.Warn("skipping malformed scene: missing location", "scene_id", sc.ID)
			continue
		}
		if triggered {
			active = append(active, sc.ID)
		}
	}
	sort.Strings(active)
	return active
}

// Evaluate runs one activation tick against the current catalog snapshot,
// advancing each scene's hysteresis state machine
// (Inactive → PendingActive → Active and the symmetric path back).
func (s *SceneService) Evaluate(vp domain.Viewport) SceneEvaluation {
	var eval SceneEvaluation

	for i := range s.catalog {
		sc := &s.catalog[i]
		triggered, ok := sceneTriggered(sc, vp)
		if !ok {
			slog.Warn("skipping malformed scene: missing location", "scene_id", sc.ID)
			continue
		}

		st := s.states[sc.ID]
		if st == nil {
			st = &sceneState{}
			s.states[sc.ID] = st
		}

		switch st.phase {
		case phaseInactive:
			if triggered {
				st.phase = phasePendingActive
				st.streak = 1
				if st.streak >= s.hysteresisTicks {
					st.phase = phaseActive
					eval.Activated = append(eval.Activated, sc.ID)
				}
			}
		case phasePendingActive:
			if triggered {
				st.streak++
				if st.streak >= s.hysteresisTicks {
					st.phase = phaseActive
					eval.Activated = append(eval.Activated, sc.ID)
				}
			} else {
				st.phase = phaseInactive
				st.streak = 0
			}
		case phaseActive:
			if !triggered {
				st.phase = phasePendingInactive
				st.streak = 1
				if st.streak >= s.hysteresisTicks {
					st.phase = phaseInactive
					eval.Deactivated = append(eval.Deactivated, sc.ID)
				}
			}
		case phasePendingInactive:
			if triggered {
				st.phase = phaseActive
				st.streak = 0
			} else {
				st.streak++
				if st.streak >= s.hysteresisTicks {
					st.phase = phaseInactive
					eval.Deactivated = append(eval.Deactivated, sc.ID)
				}
			}
		}

		if st.phase == phaseActive || st.phase == phasePendingInactive {
			eval.Active = append(eval.Active, sc.ID)
		}
	}

	sort.Strings(eval.Active)
	sort.Strings(eval.Activated)
	sort.Strings(eval.Deactivated)
	return eval
}
