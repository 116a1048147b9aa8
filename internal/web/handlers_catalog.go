package web

import (
	"net/http"
	"strconv"

	"spa-directory/internal/catalog"
	"spa-directory/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// handleFilters returns the distinct filter facets for the current catalog.
func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.catalog.Snapshot().Facets())
}

// handleListSpas answers a filtered, sorted, paginated listing query.
// Malformed query parameters never produce an error response; they degrade to
// safe defaults inside the query engine.
func (s *Server) handleListSpas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	spec := catalog.QuerySpec{
		Location:  q.Get("location"),
		Treatment: q.Get("treatment"),
		Budget:    q.Get("budget"),
		Search:    q.Get("search"),
		Sort:      q.Get("sort"),
		Page:      parseIntParam(r, "page", 1),
		PageSize:  parseIntParam(r, "pageSize", s.cfg.Catalog.DefaultPageSize),
	}

	render.JSON(w, r, s.catalog.Snapshot().Query(spec))
}

// handleSpaDetail returns a single record by id, or 404.
func (s *Server) handleSpaDetail(w http.ResponseWriter, r *http.Request) {
	spa, ok := s.catalog.Snapshot().FindByID(chi.URLParam(r, "id"))
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "Spa not found"})
		return
	}
	render.JSON(w, r, spa)
}

// handleReloadCatalog re-reads the catalog source and atomically publishes
// the new snapshot. On failure the previous snapshot keeps serving.
func (s *Server) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	if err := s.catalog.Load(s.cfg.Catalog.Path); err != nil {
		logger.Error("catalog reload failed, previous snapshot retained",
			"path", s.cfg.Catalog.Path,
			"error", err,
		)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "catalog reload failed"})
		return
	}

	count := s.catalog.Snapshot().Len()
	logger.Info("catalog reloaded", "path", s.cfg.Catalog.Path, "spas", count)
	render.JSON(w, r, map[string]any{
		"success": true,
		"spas":    count,
	})
}

// parseIntParam parses an integer query parameter with a default value.
// Non-numeric and non-positive values fall back to the default; range
// clamping is the query engine's job.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
