package models

import (
	"encoding/json"
	"fmt"
)

// Geometry types accepted for district boundaries.
const (
	GeometryPolygon      = "Polygon"
	GeometryMultiPolygon = "MultiPolygon"
)

// BoundaryGeometry is a district outline in WGS84 lon/lat order.
// Polygon input is normalized to a single-member MultiPolygon so callers only
// deal with one shape: [polygons][rings][points][lon,lat].
type BoundaryGeometry struct {
	Polygons [][][][2]float64
}

// UnmarshalJSON parses a GeoJSON Polygon or MultiPolygon geometry.
func (g *BoundaryGeometry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal boundary geometry: %w", err)
	}

	switch raw.Type {
	case GeometryPolygon:
		var rings [][][2]float64
		if err := json.Unmarshal(raw.Coordinates, &rings); err != nil {
			return fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
		g.Polygons = [][][][2]float64{rings}
	case GeometryMultiPolygon:
		var polygons [][][][2]float64
		if err := json.Unmarshal(raw.Coordinates, &polygons); err != nil {
			return fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
		}
		g.Polygons = polygons
	default:
		return fmt.Errorf("unsupported boundary geometry type %q", raw.Type)
	}
	return nil
}

// MarshalJSON renders the geometry as GeoJSON, collapsing a single polygon
// back to the Polygon type.
func (g BoundaryGeometry) MarshalJSON() ([]byte, error) {
	if len(g.Polygons) == 1 {
		return json.Marshal(struct {
			Type        string         `json:"type"`
			Coordinates [][][2]float64 `json:"coordinates"`
		}{GeometryPolygon, g.Polygons[0]})
	}
	return json.Marshal(struct {
		Type        string           `json:"type"`
		Coordinates [][][][2]float64 `json:"coordinates"`
	}{GeometryMultiPolygon, g.Polygons})
}

// BoundaryFeature is one GeoJSON feature of the ward boundary layer.
type BoundaryFeature struct {
	Type       string           `json:"type"`
	Properties RawRecord        `json:"properties"`
	Geometry   BoundaryGeometry `json:"geometry"`
}

// BoundaryCollection is the GeoJSON FeatureCollection of district boundaries.
type BoundaryCollection struct {
	Type     string            `json:"type"`
	Features []BoundaryFeature `json:"features"`
}

// MapMarker is a point on the map layer, tagged with the containing district
// when boundaries are available.
type MapMarker struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Label     string  `json:"label"`
	Category  string  `json:"category"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	District  *int    `json:"district"`
}
