package geojson

import (
	"encoding/json"
	"fmt"

	"github.com/manojaiworkshop/MapDisplay3D-sub001/internal/core/domain"
)

// Geometry is a raw GeoJSON geometry. Coordinates stay as json.RawMessage
// until the type is known because nesting depth varies per type.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is one GeoJSON feature with loosely-typed properties.
type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

// FeatureCollection is a standard GeoJSON FeatureCollection, optionally
// carrying the zone-grouped station layout used by the railway dataset:
// {"zones": {"CR": {"features": [...]}, ...}}.
type FeatureCollection struct {
	Type     string                       `json:"type"`
	Features []Feature                    `json:"features"`
	Zones    map[string]FeatureCollection `json:"zones,omitempty"`
}

// Decode parses GeoJSON bytes in either layout.
func Decode(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	return &fc, nil
}

// point decodes a Point geometry's [lon, lat] pair.
func (g Geometry) point() (domain.GeoPoint, error) {
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("point coordinates: %w", err)
	}
	if len(coords) < 2 {
		return domain.GeoPoint{}, fmt.Errorf("point needs [lon, lat], got %d values", len(coords))
	}
	return domain.GeoPoint{Lat: coords[1], Lon: coords[0]}, nil
}

// rings decodes Polygon coordinates ([[[lon,lat],...],...]).
func (g Geometry) rings() ([][]domain.GeoPoint, error) {
	var raw [][][]float64
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return nil, fmt.Errorf("polygon coordinates: %w", err)
	}
	return convertRings(raw), nil
}

// multiRings decodes MultiPolygon coordinates and flattens the polygons.
func (g Geometry) multiRings() ([][]domain.GeoPoint, error) {
	var raw [][][][]float64
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return nil, fmt.Errorf("multipolygon coordinates: %w", err)
	}
	var out [][]domain.GeoPoint
	for _, poly := range raw {
		out = append(out, convertRings(poly)...)
	}
	return out, nil
}

// line decodes LineString coordinates.
func (g Geometry) line() ([]domain.GeoPoint, error) {
	var raw [][]float64
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return nil, fmt.Errorf("linestring coordinates: %w", err)
	}
	pts := make([]domain.GeoPoint, 0, len(raw))
	for _, c := range raw {
		if len(c) >= 2 {
			pts = append(pts, domain.GeoPoint{Lat: c[1], Lon: c[0]})
		}
	}
	return pts, nil
}

func convertRings(raw [][][]float64) [][]domain.GeoPoint {
	rings := make([][]domain.GeoPoint, 0, len(raw))
	for _, ring := range raw {
		pts := make([]domain.GeoPoint, 0, len(ring))
		for _, c := range ring {
			if len(c) >= 2 {
				pts = append(pts, domain.GeoPoint{Lat: c[1], Lon: c[0]})
			}
		}
		rings = append(rings, pts)
	}
	return rings
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func floatProp(props map[string]any, key string, def float64) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return def
}

// Stations extracts Point features as stations. Zone-grouped files are
// flattened; the zone key is kept on the station. A station whose name
// comes with a code is rendered as "Name (CODE)", matching the desktop
// client's combo-box labels.
func Stations(fc *FeatureCollection) []domain.Station {
	var stations []domain.Station

	appendFrom := func(features []Feature, zone string) {
		for _, f := range features {
			if f.Geometry.Type != "Point" {
				continue
			}
			loc, err := f.Geometry.point()
			if err != nil {
				continue
			}
			st := domain.Station{
				Name:     strProp(f.Properties, "name"),
				Code:     strProp(f.Properties, "code"),
				Category: strProp(f.Properties, "category"),
				Zone:     zone,
				Location: loc,
			}
			if st.Code != "" {
				st.Name = fmt.Sprintf("%s (%s)", st.Name, st.Code)
			}
			stations = append(stations, st)
		}
	}

	if len(fc.Zones) > 0 {
		for zone, zfc := range fc.Zones {
			appendFrom(zfc.Features, zone)
		}
	} else {
		appendFrom(fc.Features, "")
	}
	return stations
}

// Boundaries extracts Polygon/MultiPolygon/LineString features with their
// zoom-window visibility properties.
func Boundaries(fc *FeatureCollection) []domain.BoundaryFeature {
	var out []domain.BoundaryFeature
	for _, f := range fc.Features {
		bf := domain.BoundaryFeature{
			Name:    strProp(f.Properties, "name"),
			Kind:    strProp(f.Properties, "type"),
			MinZoom: floatProp(f.Properties, "min_zoom", 0),
			MaxZoom: floatProp(f.Properties, "max_zoom", 0),
		}

		switch f.Geometry.Type {
		case "Polygon":
			rings, err := f.Geometry.rings()
			if err != nil {
				continue
			}
			bf.Polygons = rings
		case "MultiPolygon":
			rings, err := f.Geometry.multiRings()
			if err != nil {
				continue
			}
			bf.Polygons = rings
		case "LineString":
			pts, err := f.Geometry.line()
			if err != nil {
				continue
			}
			bf.LineStrings = []domain.GeoLineString{{Coordinates: pts}}
		default:
			continue
		}
		out = append(out, bf)
	}
	return out
}

// FilterByZoom keeps the boundary features visible at the given zoom
// level. MaxZoom of 0 means "no upper bound".
func FilterByZoom(features []domain.BoundaryFeature, zoomLevel float64) []domain.BoundaryFeature {
	var out []domain.BoundaryFeature
	for _, f := range features {
		if zoomLevel < f.MinZoom {
			continue
		}
		if f.MaxZoom > 0 && zoomLevel > f.MaxZoom {
			continue
		}
		out = append(out, f)
	}
	return out
}

// BoundaryPoints flattens every vertex of the given features, for
// fit-to-view bounds computation.
func BoundaryPoints(features []domain.BoundaryFeature) []domain.GeoPoint {
	var pts []domain.GeoPoint
	for _, f := range features {
		for _, ring := range f.Polygons {
			pts = append(pts, ring...)
		}
		for _, ls := range f.LineStrings {
			pts = append(pts, ls.Coordinates...)
		}
	}
	return pts
}
