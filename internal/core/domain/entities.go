package domain

import (
	"time"
)

// Station represents a railway station loaded from the GeoJSON catalog.
type Station struct {
	ID        string         `json:"id"`
	Code      string         `json:"code,omitempty"`
	Name      string         `json:"name"`
	Zone      string         `json:"zone,omitempty"`
	Category  string         `json:"category,omitempty"` // HQ, A1, A, ...
	Location  GeoPoint       `json:"location"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Distance  *float64       `json:"distance,omitempty"` // computed field
	CreatedAt time.Time      `json:"created_at"`
}

// SceneTrigger defines the activation region of a scene: a radius around
// its anchor plus a zoom-distance window. A MaxZoom of 0 means "unset" and
// is widened to DefaultMaxZoom during evaluation.
type SceneTrigger struct {
	RadiusMeters float64 `json:"radius_meters"`
	MinZoom      float64 `json:"min_zoom"`
	MaxZoom      float64 `json:"max_zoom"`
}

// SceneObject is a 3D object placed inside a scene. The engine treats
// objects as opaque payload for the rendering collaborator.
type SceneObject struct {
	Kind     string         `json:"kind"`
	Model    string         `json:"model,omitempty"`
	Position GeoPoint       `json:"position"`
	Rotation float64        `json:"rotation,omitempty"`
	ScaleF   float64        `json:"scale,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
}

// SceneLighting describes ambient and directional light for a scene.
type SceneLighting struct {
	Ambient   string  `json:"ambient,omitempty"`
	Intensity float64 `json:"intensity,omitempty"`
	SunAngle  float64 `json:"sun_angle,omitempty"`
}

// Scene is a location-anchored bundle of 3D content activated by camera
// proximity and zoom. Location is a pointer so malformed catalog entries
// (missing anchor) can be detected and skipped.
type Scene struct {
	ID        string         `json:"id"`
	Name      string         `json:"name,omitempty"`
	Location  *GeoPoint      `json:"location"`
	Trigger   SceneTrigger   `json:"trigger"`
	Objects   []SceneObject  `json:"objects,omitempty"`
	Lighting  *SceneLighting `json:"lighting,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// BoundaryFeature is a named boundary polygon or river polyline with
// zoom-window visibility, loaded from the states/boundary GeoJSON.
type BoundaryFeature struct {
	Name        string          `json:"name"`
	Kind        string          `json:"kind"` // country_border, state_border, river
	MinZoom     float64         `json:"min_zoom"`
	MaxZoom     float64         `json:"max_zoom"`
	Polygons    [][]GeoPoint    `json:"polygons,omitempty"`
	LineStrings []GeoLineString `json:"line_strings,omitempty"`
}

// Viewport is the camera/view state used to render the map. Exactly one
// live instance per session; mutated only by the session's update path.
type Viewport struct {
	CenterLat    float64 `json:"center_lat"`
	CenterLon    float64 `json:"center_lon"`
	Scale        float64 `json:"scale"`
	ZoomDistance float64 `json:"zoom_distance"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
}

// Validate checks that the viewport can project coordinates.
func (v Viewport) Validate() error {
	if v.Scale <= 0 {
		return &ConfigurationError{Message: "viewport scale must be strictly positive"}
	}
	if v.ZoomDistance < 0 {
		return &ConfigurationError{Message: "zoom distance must not be negative"}
	}
	return nil
}

// TripStatus is the lifecycle state of a camera trip.
type TripStatus string

const (
	TripIdle    TripStatus = "idle"
	TripRunning TripStatus = "running"
)

// Trip is a scripted camera animation along a route of geographic
// waypoints. Route always has at least two points; the plain two-point
// trip is a single-segment route.
type Trip struct {
	Source      GeoPoint   `json:"source"`
	Destination GeoPoint   `json:"destination"`
	Route       []GeoPoint `json:"route,omitempty"`
	Speed       float64    `json:"speed"`
	Status      TripStatus `json:"status"`
	Progress    float64    `json:"progress"` // 0..1
	// DurationEstimate is the nominal trip duration in seconds at unit
	// speed, fixed when the trip starts.
	DurationEstimate float64   `json:"duration_estimate"`
	Position         GeoPoint  `json:"position"`
	StartedAt        time.Time `json:"started_at,omitempty"`
}

// Action is a structured map command produced by the external
// natural-language interpreter or direct UI controls.
type Action struct {
	Type string `json:"type"` // zoom, center, pan, goto_station, zoom_out, reset, start_trip, stop_trip, move_camera, goto_location

	// zoom
	Mode  string  `json:"mode,omitempty"` // "to" | "by"
	Value float64 `json:"value,omitempty"`

	// center / goto_location
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
	Altitude float64 `json:"altitude,omitempty"`

	// pan / move_camera
	Direction string  `json:"direction,omitempty"` // left, right, up, down, forward, backward
	Distance  float64 `json:"distance,omitempty"`

	// goto_station / start_trip
	Name        string  `json:"name,omitempty"`
	Source      string  `json:"source,omitempty"`
	Destination string  `json:"destination,omitempty"`
	Speed       float64 `json:"speed,omitempty"`
}
