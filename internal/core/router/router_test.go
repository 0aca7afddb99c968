package router

import (
	"net/http/httptest"
	"testing"

	"github.com/evhagen/aoiview/internal/core/model"
)

func TestParseBBOX_Valid(t *testing.T) {
	bb, err := parseBBOX("11.0,55.0,12.0,56.0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := model.BBox{X1: 11, Y1: 55, X2: 12, Y2: 56}
	if bb != want {
		t.Fatalf("got %+v want %+v", bb, want)
	}
}

func TestParseBBOX_Invalid(t *testing.T) {
	cases := map[string]string{
		"wrong arity":     "11,55,12",
		"lng range":       "181,0,182,1",
		"lat range":       "0,-95,1,-94",
		"inverted":        "12,55,11,56",
		"not a number":    "a,b,c,d",
		"empty":           "",
		"trailing extras": "11,55,12,56,EPSG:4326",
	}
	for name, raw := range cases {
		if _, err := parseBBOX(raw); err == nil {
			t.Fatalf("%s: expected error for %q", name, raw)
		}
	}
}

func TestParseFeatureQuery_Valid(t *testing.T) {
	r := httptest.NewRequest("GET", "/featureinfo?layers=demo:places,demo:roads&bbox=11,55,12,56&width=800&height=600&x=120&y=240", nil)
	q, err := ParseFeatureQuery(r)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(q.Layers) != 2 || q.Layers[0] != "demo:places" {
		t.Fatalf("layers=%v", q.Layers)
	}
	if q.Width != 800 || q.Height != 600 || q.X != 120 || q.Y != 240 {
		t.Fatalf("pixel fields wrong: %+v", q)
	}
}

func TestParseFeatureQuery_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing layers":   "/featureinfo?bbox=11,55,12,56&width=800&height=600&x=1&y=1",
		"bad layer name":   "/featureinfo?layers=demo;drop&bbox=11,55,12,56&width=800&height=600&x=1&y=1",
		"missing bbox":     "/featureinfo?layers=a&width=800&height=600&x=1&y=1",
		"zero width":       "/featureinfo?layers=a&bbox=11,55,12,56&width=0&height=600&x=0&y=1",
		"x out of window":  "/featureinfo?layers=a&bbox=11,55,12,56&width=800&height=600&x=800&y=1",
		"y negative":       "/featureinfo?layers=a&bbox=11,55,12,56&width=800&height=600&x=1&y=-1",
		"x not an integer": "/featureinfo?layers=a&bbox=11,55,12,56&width=800&height=600&x=1.5&y=1",
	}
	for name, target := range cases {
		r := httptest.NewRequest("GET", target, nil)
		if _, err := ParseFeatureQuery(r); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
