package router

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evhagen/aoiview/internal/cache/keys"
	"github.com/evhagen/aoiview/internal/core/model"
	"github.com/evhagen/aoiview/internal/geom"
	"github.com/evhagen/aoiview/internal/logger"
	"github.com/evhagen/aoiview/internal/store"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Token exchanges the configured demo credentials for a bearer token.
func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AuthUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AuthPass)) == 1
	if !userOK || !passOK {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := h.auth.Issue(req.Username)
	if err != nil {
		h.logger.Error("issue token", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CreateAOI normalizes the submitted geometry before it reaches storage.
func (h *Handlers) CreateAOI(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string        `json:"name"`
		Geometry geom.Geometry `json:"geometry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		http.Error(w, "missing required field: name", http.StatusBadRequest)
		return
	}
	if req.Geometry.Type == "" {
		http.Error(w, "missing required field: geometry", http.StatusBadRequest)
		return
	}

	normalized, err := geom.Normalize(req.Geometry, h.cfg.SimplifyToleranceDeg)
	if errors.Is(err, geom.ErrOutOfBounds) {
		http.Error(w, "geometry coordinates out of bounds", http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, "invalid geometry: "+err.Error(), http.StatusBadRequest)
		return
	}

	aoi := model.AOI{
		Name:     name,
		UserID:   logger.UserID(r.Context()),
		Geometry: normalized,
	}
	if err := h.store.Create(r.Context(), &aoi); err != nil {
		h.logger.Error("create aoi", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("aoi created", "id", aoi.ID, "name", aoi.Name)
	writeJSON(w, http.StatusCreated, aoi)
}

func (h *Handlers) ListAOIs(w http.ResponseWriter, r *http.Request) {
	aois, err := h.store.ListByUser(r.Context(), logger.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list aois", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if aois == nil {
		aois = []model.AOI{}
	}
	writeJSON(w, http.StatusOK, aois)
}

func (h *Handlers) GetAOI(w http.ResponseWriter, r *http.Request) {
	id, err := aoiID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	aoi, err := h.store.Get(r.Context(), logger.UserID(r.Context()), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "aoi not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("get aoi", "id", id, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, aoi)
}

func (h *Handlers) DeleteAOI(w http.ResponseWriter, r *http.Request) {
	id, err := aoiID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = h.store.Delete(r.Context(), logger.UserID(r.Context()), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "aoi not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("delete aoi", "id", id, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func aoiID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New("invalid aoi id")
	}
	return uint(n), nil
}

// FeatureInfo probes the cache before calling the upstream WMS. Upstream
// failures propagate as 502 and never populate the cache.
func (h *Handlers) FeatureInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q, err := ParseFeatureQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	key := keys.Key(q.Layers, q.BBox.String(), q.Width, q.Height, q.X, q.Y)

	if body, ok := h.cache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "hit")
		_, _ = w.Write(body)
		h.logger.Debug("featureinfo hit", "key", key, "dur", time.Since(start).String())
		return
	}

	body, _, err := h.wms.FetchFeatureInfo(r.Context(), q)
	if err != nil {
		h.logger.Warn("featureinfo upstream error", "err", err)
		http.Error(w, "upstream error: "+err.Error(), http.StatusBadGateway)
		return
	}
	h.cache.Put(key, body)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	_, _ = w.Write(body)
	h.logger.Debug("featureinfo miss", "key", key, "dur", time.Since(start).String())
}

// Layers serves the layer picker from the capabilities cache.
func (h *Handlers) Layers(w http.ResponseWriter, r *http.Request) {
	names, err := h.wms.Layers(r.Context())
	if err != nil {
		h.logger.Warn("capabilities upstream error", "err", err)
		http.Error(w, "upstream error: "+err.Error(), http.StatusBadGateway)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"layers": names})
}
