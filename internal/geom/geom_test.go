package geom

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func square() Geometry {
	return Geometry{
		Type: TypePolygon,
		Polygon: [][][]float64{
			{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
		},
	}
}

func TestCloseRings_AppendsFirstPoint(t *testing.T) {
	g := Geometry{
		Type: TypePolygon,
		Polygon: [][][]float64{
			{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		},
	}
	closed := CloseRings(g)
	ring := closed.Polygon[0]
	if len(ring) != 5 {
		t.Fatalf("ring length=%d want 5", len(ring))
	}
	if !pointsEqual(ring[0], ring[len(ring)-1]) {
		t.Fatalf("ring not closed: first=%v last=%v", ring[0], ring[len(ring)-1])
	}
}

func TestCloseRings_Idempotent(t *testing.T) {
	once := CloseRings(square())
	twice := CloseRings(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("closing not idempotent:\n once=%v\n twice=%v", once, twice)
	}
}

func TestCloseRings_MultiPolygon(t *testing.T) {
	g := Geometry{
		Type: TypeMultiPolygon,
		MultiPolygon: [][][][]float64{
			{{{0, 0}, {1, 0}, {1, 1}}},
			{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}},
		},
	}
	closed := CloseRings(g)
	for pi, rings := range closed.MultiPolygon {
		for ri, ring := range rings {
			if !pointsEqual(ring[0], ring[len(ring)-1]) {
				t.Fatalf("polygon %d ring %d not closed", pi, ri)
			}
		}
	}
}

func TestValidateBounds_AcceptsSquare(t *testing.T) {
	if !ValidateBounds(square()) {
		t.Fatal("closed unit square must pass bounds validation")
	}
}

func TestValidateBounds_RejectsOutOfRangeLongitude(t *testing.T) {
	g := Geometry{
		Type: TypePolygon,
		Polygon: [][][]float64{
			{{0, 0}, {200, 10}, {1, 1}, {0, 0}},
		},
	}
	if ValidateBounds(g) {
		t.Fatal("(200,10) must fail bounds validation")
	}
}

func TestValidateBounds_Point(t *testing.T) {
	if !ValidateBounds(Geometry{Type: TypePoint, Point: []float64{18.06, 59.33}}) {
		t.Fatal("valid point rejected")
	}
	if ValidateBounds(Geometry{Type: TypePoint, Point: []float64{0, -91}}) {
		t.Fatal("latitude -91 accepted")
	}
}

func TestNormalize_OutOfBounds(t *testing.T) {
	g := Geometry{
		Type: TypePolygon,
		Polygon: [][][]float64{
			{{0, 0}, {200, 10}, {1, 1}},
		},
	}
	_, err := Normalize(g, DefaultToleranceDeg)
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("err=%v want ErrOutOfBounds", err)
	}
}

func TestNormalize_ClosesAndValidates(t *testing.T) {
	g := Geometry{
		Type: TypePolygon,
		Polygon: [][][]float64{
			{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		},
	}
	out, err := Normalize(g, DefaultToleranceDeg)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ring := out.Polygon[0]
	if !pointsEqual(ring[0], ring[len(ring)-1]) {
		t.Fatal("normalized ring not closed")
	}
}

func TestUnmarshalJSON_TypeChecks(t *testing.T) {
	var g Geometry
	if err := json.Unmarshal([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`), &g); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if g.Type != TypePolygon || len(g.Polygon) != 1 {
		t.Fatalf("bad decode: %+v", g)
	}

	if err := json.Unmarshal([]byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`), &g); err == nil {
		t.Fatal("expected error for unsupported type")
	}

	if err := json.Unmarshal([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0]]]}`), &g); err == nil {
		t.Fatal("expected error for ring with <3 points")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := square()
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Geometry
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch:\n in=%v\n out=%v", in, out)
	}
}
