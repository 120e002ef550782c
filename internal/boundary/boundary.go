// Package boundary locates points inside district boundary polygons.
package boundary

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/stwalsh4118/wardlens/internal/models"
)

// DefaultProperty is the feature property holding the district number.
const DefaultProperty = "WARD"

// ErrNoDistricts is returned when a boundary layer contains no usable features.
var ErrNoDistricts = errors.New("boundary layer has no district features")

type district struct {
	number int
	shape  *geom.MultiPolygon
	bounds *geom.Bounds
}

// Index answers point-in-district queries.
type Index struct {
	districts []district
}

// Parse decodes a GeoJSON FeatureCollection and indexes it by the numeric
// feature property prop.
func Parse(data []byte, prop string) (*Index, error) {
	var fc models.BoundaryCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse boundary layer: %w", err)
	}
	return FromCollection(fc, prop)
}

// FromCollection indexes already decoded features. Features without a
// numeric prop are skipped.
func FromCollection(fc models.BoundaryCollection, prop string) (*Index, error) {
	if prop == "" {
		prop = DefaultProperty
	}

	idx := &Index{}
	for i, f := range fc.Features {
		n, ok := f.Properties.Number(prop)
		if !ok {
			continue
		}
		shape, err := toMultiPolygon(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		idx.districts = append(idx.districts, district{
			number: int(n),
			shape:  shape,
			bounds: shape.Bounds(),
		})
	}

	if len(idx.districts) == 0 {
		return nil, ErrNoDistricts
	}
	sort.SliceStable(idx.districts, func(i, j int) bool { return idx.districts[i].number < idx.districts[j].number })
	return idx, nil
}

func toMultiPolygon(g models.BoundaryGeometry) (*geom.MultiPolygon, error) {
	coords := make([][][]geom.Coord, len(g.Polygons))
	for p, rings := range g.Polygons {
		coords[p] = make([][]geom.Coord, len(rings))
		for r, ring := range rings {
			coords[p][r] = make([]geom.Coord, len(ring))
			for k, pt := range ring {
				coords[p][r][k] = geom.Coord{pt[0], pt[1]}
			}
		}
	}
	mp, err := geom.NewMultiPolygon(geom.XY).SetCoords(coords)
	if err != nil {
		return nil, fmt.Errorf("invalid boundary coordinates: %w", err)
	}
	return mp, nil
}

// Districts returns the indexed district numbers in ascending order.
func (idx *Index) Districts() []int {
	out := make([]int, len(idx.districts))
	for i, d := range idx.districts {
		out[i] = d.number
	}
	return out
}

// Locate returns the district containing the point. A point inside a
// polygon's hole is outside that polygon.
func (idx *Index) Locate(lat, lng float64) (int, bool) {
	if idx == nil {
		return 0, false
	}
	pt := geom.Coord{lng, lat}
	for _, d := range idx.districts {
		if !d.bounds.OverlapsPoint(geom.XY, pt) {
			continue
		}
		if contains(d.shape, pt) {
			return d.number, true
		}
	}
	return 0, false
}

func contains(mp *geom.MultiPolygon, pt geom.Coord) bool {
	for i := 0; i < mp.NumPolygons(); i++ {
		poly := mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if !xy.IsPointInRing(geom.XY, pt, poly.LinearRing(0).FlatCoords()) {
			continue
		}
		inHole := false
		for r := 1; r < poly.NumLinearRings(); r++ {
			if xy.IsPointInRing(geom.XY, pt, poly.LinearRing(r).FlatCoords()) {
				inHole = true
				break
			}
		}
		if !inHole {
			return true
		}
	}
	return false
}
