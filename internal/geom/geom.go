// Package geom normalizes untrusted AOI geometries before they reach storage.
package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds is returned when a coordinate falls outside
// [-180,180] x [-90,90] after normalization.
var ErrOutOfBounds = errors.New("geometry coordinates out of bounds")

type Type string

const (
	TypePoint        Type = "Point"
	TypePolygon      Type = "Polygon"
	TypeMultiPolygon Type = "MultiPolygon"
)

// Geometry is a tagged union over the three supported GeoJSON kinds.
// Exactly one coordinate field is populated, selected by Type.
type Geometry struct {
	Type         Type
	Point        []float64
	Polygon      [][][]float64
	MultiPolygon [][][][]float64
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	var coords any
	switch g.Type {
	case TypePoint:
		coords = g.Point
	case TypePolygon:
		coords = g.Polygon
	case TypeMultiPolygon:
		coords = g.MultiPolygon
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", g.Type)
	}
	return json.Marshal(struct {
		Type        Type `json:"type"`
		Coordinates any  `json:"coordinates"`
	}{g.Type, coords})
}

func (g *Geometry) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse geometry: %w", err)
	}
	switch Type(strings.TrimSpace(raw.Type)) {
	case TypePoint:
		var pt []float64
		if err := json.Unmarshal(raw.Coordinates, &pt); err != nil {
			return fmt.Errorf("parse point coords: %w", err)
		}
		if len(pt) < 2 {
			return errors.New("point must have at least [lng,lat]")
		}
		*g = Geometry{Type: TypePoint, Point: pt}
	case TypePolygon:
		var rings [][][]float64
		if err := json.Unmarshal(raw.Coordinates, &rings); err != nil {
			return fmt.Errorf("parse polygon coords: %w", err)
		}
		if err := checkRings(rings); err != nil {
			return err
		}
		*g = Geometry{Type: TypePolygon, Polygon: rings}
	case TypeMultiPolygon:
		var polys [][][][]float64
		if err := json.Unmarshal(raw.Coordinates, &polys); err != nil {
			return fmt.Errorf("parse multipolygon coords: %w", err)
		}
		if len(polys) == 0 {
			return errors.New("empty multipolygon")
		}
		for _, rings := range polys {
			if err := checkRings(rings); err != nil {
				return err
			}
		}
		*g = Geometry{Type: TypeMultiPolygon, MultiPolygon: polys}
	default:
		return fmt.Errorf("unsupported geometry type %q (must be Point, Polygon or MultiPolygon)", raw.Type)
	}
	return nil
}

func checkRings(rings [][][]float64) error {
	if len(rings) == 0 {
		return errors.New("polygon has no rings")
	}
	for _, ring := range rings {
		if len(ring) < 3 {
			return errors.New("polygon ring has <3 points")
		}
		for _, pt := range ring {
			if len(pt) < 2 {
				return errors.New("coordinate must be [lng,lat]")
			}
		}
	}
	return nil
}

// CloseRings appends a copy of the first point to every unclosed ring.
// Idempotent; Point geometries pass through untouched.
func CloseRings(g Geometry) Geometry {
	switch g.Type {
	case TypePolygon:
		g.Polygon = closePolygon(g.Polygon)
	case TypeMultiPolygon:
		out := make([][][][]float64, len(g.MultiPolygon))
		for i, rings := range g.MultiPolygon {
			out[i] = closePolygon(rings)
		}
		g.MultiPolygon = out
	}
	return g
}

func closePolygon(rings [][][]float64) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, ring := range rings {
		out[i] = closeRing(ring)
	}
	return out
}

func closeRing(ring [][]float64) [][]float64 {
	if len(ring) == 0 || pointsEqual(ring[0], ring[len(ring)-1]) {
		return ring
	}
	closed := make([][]float64, 0, len(ring)+1)
	closed = append(closed, ring...)
	first := make([]float64, len(ring[0]))
	copy(first, ring[0])
	return append(closed, first)
}

func pointsEqual(a, b []float64) bool {
	return len(a) >= 2 && len(b) >= 2 && a[0] == b[0] && a[1] == b[1]
}

// ValidateBounds reports whether every coordinate lies within
// [-180,180] x [-90,90].
func ValidateBounds(g Geometry) bool {
	switch g.Type {
	case TypePoint:
		return inBounds(g.Point)
	case TypePolygon:
		return polygonInBounds(g.Polygon)
	case TypeMultiPolygon:
		for _, rings := range g.MultiPolygon {
			if !polygonInBounds(rings) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func polygonInBounds(rings [][][]float64) bool {
	for _, ring := range rings {
		for _, pt := range ring {
			if !inBounds(pt) {
				return false
			}
		}
	}
	return true
}

func inBounds(pt []float64) bool {
	if len(pt) < 2 {
		return false
	}
	lng, lat := pt[0], pt[1]
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// Normalize runs close -> simplify -> bounds validation and is the only
// entry point request handlers need.
func Normalize(g Geometry, toleranceDeg float64) (Geometry, error) {
	g = CloseRings(g)
	g = Simplify(g, toleranceDeg)
	if !ValidateBounds(g) {
		return Geometry{}, ErrOutOfBounds
	}
	return g, nil
}
