package wms

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/evhagen/aoiview/internal/core/model"
	"github.com/evhagen/aoiview/internal/logger"
)

const capsXML = `<?xml version="1.0"?>
<WMT_MS_Capabilities version="1.1.1">
  <Capability>
    <Layer>
      <Title>root</Title>
      <Layer>
        <Name>demo:places</Name>
      </Layer>
      <Layer>
        <Title>group</Title>
        <Layer><Name>demo:roads</Name></Layer>
        <Layer><Name>demo:rivers</Name></Layer>
      </Layer>
    </Layer>
  </Capability>
</WMT_MS_Capabilities>`

func discardLogger() *slog.Logger {
	zl := zerolog.New(io.Discard)
	return logger.NewSlog(&zl)
}

func newTestClient(t *testing.T, upstream http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	c, err := NewClient(discardLogger(), srv.Client(), srv.URL+"/wms", time.Second, time.Minute)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestParseCapabilities_NestedGroups(t *testing.T) {
	names, err := ParseCapabilities([]byte(capsXML))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []string{"demo:places", "demo:roads", "demo:rivers"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("got %v want %v", names, want)
	}
}

func TestLayers_CachedAcrossCalls(t *testing.T) {
	var calls atomic.Int64
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, capsXML)
	}))

	for i := 0; i < 3; i++ {
		names, err := c.Layers(context.Background())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if len(names) != 3 {
			t.Fatalf("call %d: %d layers", i, len(names))
		}
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("upstream called %d times, want 1", n)
	}
}

func TestFetchFeatureInfo_UpstreamStatusError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "exception", http.StatusInternalServerError)
	}))

	_, _, err := c.FetchFeatureInfo(context.Background(), model.FeatureQuery{
		Layers: []string{"a"},
		BBox:   model.BBox{X1: 0, Y1: 0, X2: 1, Y2: 1},
		Width:  10, Height: 10, X: 1, Y: 1,
	})
	if err == nil {
		t.Fatal("expected error for upstream 500")
	}
}

func TestFetchFeatureInfo_ForwardsQuery(t *testing.T) {
	var gotLayers, gotBBox string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLayers = r.URL.Query().Get("query_layers")
		gotBBox = r.URL.Query().Get("bbox")
		fmt.Fprint(w, `{"features":[]}`)
	}))

	body, _, err := c.FetchFeatureInfo(context.Background(), model.FeatureQuery{
		Layers: []string{"demo:places"},
		BBox:   model.BBox{X1: 11, Y1: 55, X2: 12, Y2: 56},
		Width:  800, Height: 600, X: 1, Y: 2,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(body) != `{"features":[]}` {
		t.Fatalf("body=%q", body)
	}
	if gotLayers != "demo:places" {
		t.Fatalf("query_layers=%q", gotLayers)
	}
	if gotBBox != "11.000000,55.000000,12.000000,56.000000" {
		t.Fatalf("bbox=%q", gotBBox)
	}
}
