package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"polycubes/internal/cache"
	"polycubes/internal/polycube"
)

const (
	defaultCubeLimit = 100
	maxCubeLimit     = 10000
)

// ShapeCount is the number of cubes stored under one shape.
type ShapeCount struct {
	Shape polycube.XYZ `json:"shape"`
	Count int          `json:"count"`
}

// LevelSummary describes one stored level.
type LevelSummary struct {
	Order  int          `json:"order"`
	Count  int          `json:"count"`
	Shapes []ShapeCount `json:"shapes"`
}

// CubePage is a window of cubes from one level.
type CubePage struct {
	Order  int             `json:"order"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Cubes  []polycube.Cube `json:"cubes"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RunStatus lists the levels produced by the current run.
func (s *Server) RunStatus(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusNotFound, "No run in progress")
		return
	}
	writeJSON(w, http.StatusOK, s.stats())
}

// ListLevels lists every stored level.
func (s *Server) ListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("Failed to list levels", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to list levels")
		return
	}
	if levels == nil {
		levels = []cache.LevelInfo{}
	}
	writeJSON(w, http.StatusOK, levels)
}

// GetLevel returns the per-shape breakdown of one level.
func (s *Server) GetLevel(w http.ResponseWriter, r *http.Request) {
	h, ok := s.loadLevel(w, r)
	if !ok {
		return
	}

	summary := LevelSummary{Order: h.Order(), Count: h.Size(), Shapes: []ShapeCount{}}
	for _, shape := range h.Shapes() {
		summary.Shapes = append(summary.Shapes, ShapeCount{Shape: shape, Count: h.BucketSize(shape)})
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListCubes pages through the cubes of one level, optionally restricted to
// one shape. With format=text the cubes are drawn as layers.
func (s *Server) ListCubes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), defaultCubeLimit)
	if err != nil || limit < 1 || limit > maxCubeLimit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxCubeLimit))
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	var shape *polycube.XYZ
	if raw := q.Get("shape"); raw != "" {
		p, err := parseShape(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		shape = &p
	}

	h, ok := s.loadLevel(w, r)
	if !ok {
		return
	}

	var cubes []polycube.Cube
	if shape != nil {
		cubes = h.Cubes(*shape)
	} else {
		cubes = h.Flatten()
	}

	page := CubePage{Order: h.Order(), Total: len(cubes), Offset: offset, Cubes: []polycube.Cube{}}
	if offset < len(cubes) {
		page.Cubes = cubes[offset:min(offset+limit, len(cubes))]
	}

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for i, c := range page.Cubes {
			fmt.Fprintf(w, "# %d %s\n", offset+i, c.Shape())
			if err := polycube.Render(w, c); err != nil {
				s.logger.Warn("Failed to render cube", zap.Error(err))
				return
			}
			fmt.Fprintln(w)
		}
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) loadLevel(w http.ResponseWriter, r *http.Request) (*polycube.Hashy, bool) {
	order, err := strconv.Atoi(chi.URLParam(r, "order"))
	if err != nil || order < 1 {
		writeError(w, http.StatusBadRequest, "Invalid order")
		return nil, false
	}

	h, err := s.store.Load(r.Context(), order)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Order %d is not cached", order))
		return nil, false
	case err != nil:
		s.logger.Error("Failed to load level", zap.Int("order", order), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load level")
		return nil, false
	}
	return h, true
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// parseShape reads "x,y,z".
func parseShape(raw string) (polycube.XYZ, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return polycube.XYZ{}, fmt.Errorf("shape must be x,y,z")
	}
	var p polycube.XYZ
	for i, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 8)
		if err != nil || v < 0 {
			return polycube.XYZ{}, fmt.Errorf("invalid shape component %q", part)
		}
		p[i] = int8(v)
	}
	return p, nil
}
