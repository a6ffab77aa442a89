package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"marketpulse/internal/models"
	"marketpulse/internal/services"
)

var overviewTemplate = template.Must(template.New("overview").Parse(`
<div id="overview-content">
<div class="kpi-grid">
<div class="kpi-card"><span class="kpi-label">Revenue</span><strong>${{printf "%.2f" .Overview.TotalRevenue}}</strong>{{with .Overview.RevenueDeltaLabel}}<span class="kpi-delta">{{.}}</span>{{else}}<span class="kpi-delta muted">no prior period</span>{{end}}</div>
<div class="kpi-card"><span class="kpi-label">Active Listings</span><strong>{{.Overview.ActiveListings}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Avg Rating</span><strong>{{printf "%.2f" .Overview.AverageRating}}</strong></div>
<div class="kpi-card"><span class="kpi-label">Satisfaction</span><strong>{{.Overview.SatisfactionScore}}/100</strong></div>
</div>
</div>`))

var categoryTableTemplate = template.Must(template.New("categoryTable").Parse(`
<div id="category-content">
<table class="modern-table">
<thead><tr><th>Category</th><th>Listings</th><th>Revenue</th><th>Avg Price</th><th>Avg Rating</th></tr></thead>
<tbody>
{{range .}}<tr>
<td><span class="category-badge">{{.Category}}</span></td>
<td>{{.Listings}}</td>
<td><strong>${{printf "%.2f" .Revenue}}</strong></td>
<td>${{printf "%.2f" .AvgPrice}}</td>
<td>{{printf "%.2f" .AvgRating}}</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	analytics       *services.Analytics
	logger          *slog.Logger
	defaultLookback int
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger, defaultLookback int) *SSEHandlers {
	return &SSEHandlers{
		analytics:       analytics,
		logger:          logger,
		defaultLookback: defaultLookback,
	}
}

// query mirrors the API parameter contract; live refreshes always
// recompute rather than hitting the snapshot cache.
func (h *SSEHandlers) query(r *http.Request) services.SnapshotQuery {
	params := r.URL.Query()
	q := services.SnapshotQuery{
		LookbackDays: h.defaultLookback,
		Category:     params.Get("category"),
		SortBy:       params.Get("sort_by"),
		SortDir:      params.Get("sort_dir"),
	}
	// SSE patches are fire-and-forget; bad days values keep the default
	// instead of erroring a stream that has no error channel.
	if days, err := strconv.Atoi(params.Get("days")); err == nil && days >= 0 {
		q.LookbackDays = days
	}
	return q
}

func (h *SSEHandlers) renderOverview(snap *models.AnalyticsSnapshot) (string, error) {
	var buf strings.Builder
	err := overviewTemplate.Execute(&buf, snap)
	return buf.String(), err
}

func (h *SSEHandlers) renderCategoryTable(rows []models.CategoryPerformance) (string, error) {
	var buf strings.Builder
	err := categoryTableTemplate.Execute(&buf, rows)
	return buf.String(), err
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	snap, err := h.analytics.Snapshot(r.Context(), h.query(r))
	if err != nil {
		h.logger.Error("compute snapshot", "error", err)
		return
	}

	html, err := h.renderOverview(snap)
	if err != nil {
		h.logger.Error("render overview", "error", err)
		return
	}
	sse.PatchElements(html)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	snap, err := h.analytics.Snapshot(r.Context(), h.query(r))
	if err != nil {
		h.logger.Error("compute snapshot", "error", err)
		return
	}

	overviewHTML, err := h.renderOverview(snap)
	if err != nil {
		h.logger.Error("render overview", "error", err)
		return
	}
	sse.PatchElements(overviewHTML)

	tableHTML, err := h.renderCategoryTable(snap.Categories)
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(tableHTML)

	signals, err := json.Marshal(map[string]any{
		"trendsData":  snap.Trends,
		"cohortsData": snap.Cohorts,
		"categories":  snap.AvailableCategories,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(signals)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
