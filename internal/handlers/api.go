package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"marketpulse/internal/cache"
	"marketpulse/internal/errors"
	"marketpulse/internal/models"
	"marketpulse/internal/observability"
	"marketpulse/internal/services"
)

var cacheHeaders = map[string]string{
	"Cache-Control": "public, max-age=300",
}

type APIHandlers struct {
	analytics       *services.Analytics
	snapshots       *cache.SnapshotCache
	logger          *slog.Logger
	defaultLookback int
}

func NewAPIHandlers(analytics *services.Analytics, snapshots *cache.SnapshotCache, logger *slog.Logger, defaultLookback int) *APIHandlers {
	return &APIHandlers{
		analytics:       analytics,
		snapshots:       snapshots,
		logger:          logger,
		defaultLookback: defaultLookback,
	}
}

// parseQuery reads the dashboard parameters. Only a malformed or
// negative days value is an error; category and sort inputs degrade
// inside the pipeline.
func (h *APIHandlers) parseQuery(r *http.Request) (services.SnapshotQuery, error) {
	params := r.URL.Query()

	q := services.SnapshotQuery{
		LookbackDays: h.defaultLookback,
		Category:     params.Get("category"),
		SortBy:       params.Get("sort_by"),
		SortDir:      params.Get("sort_dir"),
	}
	if raw := params.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return q, errors.ValidationWrap(err, "days must be an integer")
		}
		q.LookbackDays = days
	}
	return q, nil
}

func (h *APIHandlers) snapshot(r *http.Request) (*models.AnalyticsSnapshot, error) {
	q, err := h.parseQuery(r)
	if err != nil {
		return nil, err
	}

	key := snapshotKey(q)
	if snap, ok := h.snapshots.Get(key); ok {
		return snap, nil
	}

	snap, err := h.analytics.Snapshot(r.Context(), q)
	if err != nil {
		return nil, err
	}
	h.snapshots.Set(key, snap)
	return snap, nil
}

// snapshotKey normalizes the query so equivalent requests (unknown sort
// keys, odd directions) share a cache entry.
func snapshotKey(q services.SnapshotQuery) string {
	return fmt.Sprintf("days=%d&category=%s&sort_by=%s&sort_dir=%s",
		q.LookbackDays, q.Category, models.ParseSortKey(q.SortBy), models.ParseSortDir(q.SortDir))
}

func (h *APIHandlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, snap, cacheHeaders)
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, snap.Overview, cacheHeaders)
}

func (h *APIHandlers) HandleTrends(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, snap.Trends, cacheHeaders)
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, snap.Categories, cacheHeaders)
}

func (h *APIHandlers) HandleCohorts(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshot(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, snap.Cohorts, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()
	stats["cached_snapshots"] = h.snapshots.Len()
	errors.WriteSuccess(w, stats)
}
