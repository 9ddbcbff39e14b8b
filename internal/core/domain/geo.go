package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate is within the representable range.
func (p GeoPoint) Validate() error {
	if p.Lat < -90 || p.Lat > 90 {
		return &ValidationError{Field: "lat", Message: "latitude must be in [-90, 90]"}
	}
	if p.Lon < -180 || p.Lon > 180 {
		return &ValidationError{Field: "lon", Message: "longitude must be in [-180, 180]"}
	}
	return nil
}

// ScreenPoint is a projected position in render space (pixels).
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GeoLineString represents an ordered sequence of geographic coordinates.
type GeoLineString struct {
	Coordinates []GeoPoint `json:"coordinates"`
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Center returns the midpoint of the bounding box.
func (b Bounds) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// LatRange returns the latitude extent of the box.
func (b Bounds) LatRange() float64 { return b.MaxLat - b.MinLat }

// LonRange returns the longitude extent of the box.
func (b Bounds) LonRange() float64 { return b.MaxLon - b.MinLon }
