// Package router parses and validates inbound requests and serves them.
package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/evhagen/aoiview/internal/auth"
	"github.com/evhagen/aoiview/internal/cache"
	"github.com/evhagen/aoiview/internal/core/config"
	"github.com/evhagen/aoiview/internal/core/model"
	"github.com/evhagen/aoiview/internal/core/observability"
	"github.com/evhagen/aoiview/internal/store"
	"github.com/evhagen/aoiview/internal/wms"
)

// Handlers owns the collaborators the HTTP endpoints need. Everything is
// injected at construction so tests can assemble isolated instances.
type Handlers struct {
	logger *slog.Logger
	cfg    config.Config
	store  *store.Store
	cache  cache.Interface
	wms    *wms.Client
	auth   *auth.Manager
}

func New(logger *slog.Logger, cfg config.Config, st *store.Store, c cache.Interface, w *wms.Client, a *auth.Manager) *Handlers {
	return &Handlers{logger: logger, cfg: cfg, store: st, cache: c, wms: w, auth: a}
}

// Instrument wraps a handler with per-route metrics.
func Instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

const (
	maxPixelDim = 8192
	maxLayers   = 16
)

var layerNamePattern = regexp.MustCompile(`^[\w:.\-]+$`)

// ParseFeatureQuery validates the GetFeatureInfo proxy parameters: target
// layers, the rendered window and the clicked pixel.
func ParseFeatureQuery(r *http.Request) (model.FeatureQuery, error) {
	q := r.URL.Query()

	rawLayers := strings.TrimSpace(q.Get("layers"))
	if rawLayers == "" {
		return model.FeatureQuery{}, errors.New("missing required parameter: layers")
	}
	var layers []string
	for _, l := range strings.Split(rawLayers, ",") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if !layerNamePattern.MatchString(l) {
			return model.FeatureQuery{}, fmt.Errorf("invalid layer name %q", l)
		}
		layers = append(layers, l)
	}
	if len(layers) == 0 {
		return model.FeatureQuery{}, errors.New("missing required parameter: layers")
	}
	if len(layers) > maxLayers {
		return model.FeatureQuery{}, fmt.Errorf("too many layers (max %d)", maxLayers)
	}

	bbox, err := parseBBOX(q.Get("bbox"))
	if err != nil {
		return model.FeatureQuery{}, fmt.Errorf("invalid bbox: %w", err)
	}

	width, err := parsePixel(q.Get("width"), 1, maxPixelDim)
	if err != nil {
		return model.FeatureQuery{}, fmt.Errorf("invalid width: %w", err)
	}
	height, err := parsePixel(q.Get("height"), 1, maxPixelDim)
	if err != nil {
		return model.FeatureQuery{}, fmt.Errorf("invalid height: %w", err)
	}
	x, err := parsePixel(q.Get("x"), 0, width-1)
	if err != nil {
		return model.FeatureQuery{}, fmt.Errorf("invalid x: %w", err)
	}
	y, err := parsePixel(q.Get("y"), 0, height-1)
	if err != nil {
		return model.FeatureQuery{}, fmt.Errorf("invalid y: %w", err)
	}

	return model.FeatureQuery{
		Layers: layers,
		BBox:   bbox,
		Width:  width,
		Height: height,
		X:      x,
		Y:      y,
	}, nil
}

func parseBBOX(bboxParam string) (model.BBox, error) {
	parts := strings.Split(strings.TrimSpace(bboxParam), ",")
	if len(parts) != 4 {
		return model.BBox{}, errors.New("expected 4 comma-separated values: x1,y1,x2,y2")
	}
	xMin, err := parseFloat(parts[0])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x1: %w", err)
	}
	yMin, err := parseFloat(parts[1])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y1: %w", err)
	}
	xMax, err := parseFloat(parts[2])
	if err != nil {
		return model.BBox{}, fmt.Errorf("x2: %w", err)
	}
	yMax, err := parseFloat(parts[3])
	if err != nil {
		return model.BBox{}, fmt.Errorf("y2: %w", err)
	}

	if !(xMin >= -180 && xMin <= 180 && xMax >= -180 && xMax <= 180) {
		return model.BBox{}, errors.New("longitude must be in [-180,180]")
	}
	if !(yMin >= -90 && yMin <= 90 && yMax >= -90 && yMax <= 90) {
		return model.BBox{}, errors.New("latitude must be in [-90,90]")
	}
	if xMax <= xMin || yMax <= yMin {
		return model.BBox{}, errors.New("coordinates must satisfy x2>x1 and y2>y1")
	}
	return model.BBox{X1: xMin, Y1: yMin, X2: xMax, Y2: yMax}, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}

func parsePixel(v string, minV, maxV int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("missing")
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse int: %w", err)
	}
	if n < minV || n > maxV {
		return 0, fmt.Errorf("must be in [%d,%d]", minV, maxV)
	}
	return n, nil
}
