package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/pkg/geospatial"
)

const (
	// minZoomDistance keeps the camera strictly above ground so scale
	// derivation never divides by zero.
	minZoomDistance = 0.01
	maxZoomDistance = 150.0

	// gotoStationAreaKm is the visible ground coverage after a
	// goto_station action (the "400 km radius" the interpreter promises).
	gotoStationAreaKm = 400.0
)

// StationResolver resolves a station name to its catalog record.
// *StationService satisfies it; tests substitute a mock.
type StationResolver interface {
	Resolve(ctx context.Context, name string) (*domain.Station, error)
}

// Frame is the per-tick snapshot handed to the rendering collaborator:
// viewport pose, zoom classification, LOD configuration, and the active
// scene set.
type Frame struct {
	Viewport domain.Viewport           `json:"viewport"`
	Zoom     domain.ZoomClassification `json:"zoom"`
	LOD      int                       `json:"lod"`
	Tile     domain.TileConfig         `json:"tile"`
	Scenes   SceneEvaluation           `json:"scenes"`
	Trip     domain.Trip               `json:"trip"`
}

// ViewportService owns one viewport's state and orchestrates the engines
// around it. All methods must be called from a single goroutine (the
// session actor); the service provides no internal synchronization.
//
// Per tick the update order is fixed: pending actions, then the trip step
// (which may write the center), then zoom classification, then scene
// activation — so classifier and activation always observe one consistent
// snapshot.
type ViewportService struct {
	vp   domain.Viewport
	home domain.Viewport

	projector *ProjectionService
	zoom      *ZoomService
	scenes    *SceneService
	trips     *TripController
	stations  StationResolver

	areaPerDistance float64
}

// NewViewportService creates a ViewportService starting at the given home
// viewport (typically a fit of the boundary dataset).
func NewViewportService(
	home domain.Viewport,
	projector *ProjectionService,
	zoom *ZoomService,
	scenes *SceneService,
	trips *TripController,
	stations StationResolver,
	areaPerDistance float64,
) *ViewportService {
	if areaPerDistance <= 0 {
		areaPerDistance = 220
	}
	s := &ViewportService{
		home:            home,
		projector:       projector,
		zoom:            zoom,
		scenes:          scenes,
		trips:           trips,
		stations:        stations,
		areaPerDistance: areaPerDistance,
	}
	s.vp = home
	s.syncZoomFromScale()
	s.home = s.vp
	return s
}

// Viewport returns the current viewport state.
func (s *ViewportService) Viewport() domain.Viewport {
	return s.vp
}

// Trips exposes the trip controller for status queries and stop requests.
func (s *ViewportService) Trips() *TripController {
	return s.trips
}

// Scenes exposes the scene engine for catalog refreshes.
func (s *ViewportService) Scenes() *SceneService {
	return s.scenes
}

// Resize updates the render surface dimensions.
func (s *ViewportService) Resize(width, height float64) {
	if width > 0 {
		s.vp.Width = width
	}
	if height > 0 {
		s.vp.Height = height
	}
	s.syncScaleFromZoom()
}

// syncScaleFromZoom derives the projection scale from the zoom distance:
// the visible ground span in degrees is areaKm / 111, and scale is pixels
// per degree over the viewport height.
func (s *ViewportService) syncScaleFromZoom() {
	visibleDeg := s.vp.ZoomDistance * s.areaPerDistance / geospatial.KmPerDegree
	if visibleDeg <= 0 || s.vp.Height <= 0 {
		return
	}
	s.vp.Scale = s.vp.Height / visibleDeg
}

// syncZoomFromScale is the inverse mapping, used when the scale is set
// directly (fit-to-view, reset).
func (s *ViewportService) syncZoomFromScale() {
	if s.vp.Scale <= 0 || s.vp.Height <= 0 {
		return
	}
	visibleDeg := s.vp.Height / s.vp.Scale
	s.vp.ZoomDistance = clampZoom(visibleDeg * geospatial.KmPerDegree / s.areaPerDistance)
}

func clampZoom(d float64) float64 {
	if d < minZoomDistance {
		return minZoomDistance
	}
	if d > maxZoomDistance {
		return maxZoomDistance
	}
	return d
}

// CenterOn moves the camera center, validating coordinates first. On
// validation failure the viewport is left unchanged.
func (s *ViewportService) CenterOn(lat, lon float64) error {
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return err
	}
	s.vp.CenterLat = lat
	s.vp.CenterLon = lon
	return nil
}

// SetZoomDistance sets the camera distance and re-derives the scale.
func (s *ViewportService) SetZoomDistance(d float64) {
	s.vp.ZoomDistance = clampZoom(d)
	s.syncScaleFromZoom()
}

// Reset restores the home view. A running trip keeps running; only the
// camera pose resets.
func (s *ViewportService) Reset() {
	width, height := s.vp.Width, s.vp.Height
	s.vp = s.home
	s.vp.Width, s.vp.Height = width, height
	s.syncScaleFromZoom()
}

// Apply dispatches one interpreter/UI action onto the viewport. Each
// action type maps to exactly one operation; unknown types are rejected.
// A failed action (unresolvable station, bad coordinates) leaves the
// viewport unchanged.
func (s *ViewportService) Apply(ctx context.Context, a domain.Action) error {
	switch a.Type {
	case "zoom":
		switch a.Mode {
		case "", "to":
			s.SetZoomDistance(a.Value)
		case "by":
			if a.Value <= 0 {
				return &domain.ValidationError{Field: "value", Message: "zoom-by factor must be positive"}
			}
			// Factor > 1 zooms in (less ground visible).
			s.SetZoomDistance(s.vp.ZoomDistance / a.Value)
		default:
			return &domain.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown zoom mode %q", a.Mode)}
		}
		return nil

	case "zoom_out":
		s.SetZoomDistance(s.home.ZoomDistance)
		return nil

	case "center":
		return s.CenterOn(a.Lat, a.Lon)

	case "pan", "move_camera":
		return s.moveCamera(a.Direction, a.Distance)

	case "goto_station":
		st, err := s.stations.Resolve(ctx, a.Name)
		if err != nil {
			return err
		}
		if err := s.CenterOn(st.Location.Lat, st.Location.Lon); err != nil {
			return err
		}
		s.SetZoomDistance(gotoStationAreaKm / s.areaPerDistance)
		return nil

	case "goto_location":
		if err := s.CenterOn(a.Lat, a.Lon); err != nil {
			return err
		}
		if a.Altitude > 0 {
			s.SetZoomDistance(a.Altitude / s.areaPerDistance)
		}
		return nil

	case "start_trip":
		src, srcID, err := s.resolveEndpoint(ctx, a.Source)
		if err != nil {
			return fmt.Errorf("resolve source: %w", err)
		}
		dst, dstID, err := s.resolveEndpoint(ctx, a.Destination)
		if err != nil {
			return fmt.Errorf("resolve destination: %w", err)
		}
		if (srcID != "" && srcID == dstID) || src == dst {
			return domain.ErrSameStation
		}
		speed := a.Speed
		if speed <= 0 {
			speed = 3
		}
		_, err = s.trips.Start(src, dst, nil, speed)
		return err

	case "stop_trip":
		s.trips.Stop()
		return nil

	case "reset":
		s.Reset()
		return nil

	default:
		return &domain.ValidationError{Field: "type", Message: fmt.Sprintf("unknown action type %q", a.Type)}
	}
}

// moveCamera pans laterally (distance in kilometers, converted to
// degrees) or dollies forward/backward along the zoom axis.
func (s *ViewportService) moveCamera(direction string, distanceKm float64) error {
	if distanceKm < 0 {
		return &domain.ValidationError{Field: "distance", Message: "distance must not be negative"}
	}
	deg := distanceKm / geospatial.KmPerDegree

	switch direction {
	case "left":
		s.vp.CenterLon -= deg
	case "right":
		s.vp.CenterLon += deg
	case "up":
		s.vp.CenterLat += deg
	case "down":
		s.vp.CenterLat -= deg
	case "forward":
		s.SetZoomDistance(s.vp.ZoomDistance - distanceKm/s.areaPerDistance)
	case "backward":
		s.SetZoomDistance(s.vp.ZoomDistance + distanceKm/s.areaPerDistance)
	default:
		return &domain.ValidationError{Field: "direction", Message: fmt.Sprintf("unknown direction %q", direction)}
	}
	return nil
}

// resolveEndpoint turns a trip endpoint into coordinates: either a raw
// "lat,lon" pair or a station name/code resolved through the catalog.
// The second return is the station id when one was involved.
func (s *ViewportService) resolveEndpoint(ctx context.Context, name string) (domain.GeoPoint, string, error) {
	if p, ok := parseLatLon(name); ok {
		if err := p.Validate(); err != nil {
			return domain.GeoPoint{}, "", err
		}
		return p, "", nil
	}
	st, err := s.stations.Resolve(ctx, name)
	if err != nil {
		return domain.GeoPoint{}, "", err
	}
	return st.Location, st.ID, nil
}

func parseLatLon(s string) (domain.GeoPoint, bool) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return domain.GeoPoint{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return domain.GeoPoint{}, false
	}
	return domain.GeoPoint{Lat: lat, Lon: lon}, true
}

// StartTrip starts a coordinate trip directly, bypassing name resolution.
func (s *ViewportService) StartTrip(source, destination domain.GeoPoint, route []domain.GeoPoint, speed float64) (domain.Trip, error) {
	return s.trips.Start(source, destination, route, speed)
}

// Snapshot builds a frame from the current state without advancing any
// engine: no trip step, no hysteresis tick. The active scene set carries
// over from the last evaluation; the per-tick toggle lists are cleared
// because a snapshot causes no transitions.
func (s *ViewportService) Snapshot(scenes SceneEvaluation) Frame {
	scenes.Activated, scenes.Deactivated = nil, nil
	return Frame{
		Viewport: s.vp,
		Zoom:     s.zoom.Classify(s.vp.ZoomDistance),
		LOD:      s.zoom.LODFromLevel(s.vp.ZoomDistance),
		Tile:     s.zoom.TileConfig(s.vp.ZoomDistance),
		Scenes:   scenes,
		Trip:     s.trips.Status(),
	}
}

// Tick advances the session by elapsedSeconds and produces the frame
// snapshot. Order is binding: trip step first, then classification, then
// scene activation.
func (s *ViewportService) Tick(elapsedSeconds float64) Frame {
	if pos, ok := s.trips.Tick(elapsedSeconds); ok {
		s.vp.CenterLat = pos.Lat
		s.vp.CenterLon = pos.Lon
	}

	zc := s.zoom.Classify(s.vp.ZoomDistance)

	return Frame{
		Viewport: s.vp,
		Zoom:     zc,
		LOD:      s.zoom.LODFromLevel(s.vp.ZoomDistance),
		Tile:     s.zoom.TileConfig(s.vp.ZoomDistance),
		Scenes:   s.scenes.Evaluate(s.vp),
		Trip:     s.trips.Status(),
	}
}
