package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketpulse/internal/cache"
	"marketpulse/internal/models"
	"marketpulse/internal/services"
)

var handlerTestNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func createTestAnalytics() *services.Analytics {
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	daysAgo := func(n int) time.Time { return today.AddDate(0, 0, -n) }

	g := services.NewGenerator(services.DefaultSeed, func() time.Time { return handlerTestNow })
	g.SetDataset(&services.Dataset{
		Sellers: []models.Seller{
			{ID: 1, Name: "Seller 01", SignupDate: daysAgo(45)},
			{ID: 2, Name: "Seller 02", SignupDate: daysAgo(10)},
		},
		Listings: []models.Listing{
			{ID: 1, SellerID: 1, Category: "Electronics", Price: 100, Rating: 4.0, CreatedAt: daysAgo(40)},
			{ID: 2, SellerID: 1, Category: "Home", Price: 50, Rating: 5.0, CreatedAt: daysAgo(40)},
			{ID: 3, SellerID: 2, Category: "Electronics", Price: 200, Rating: 3.0, CreatedAt: daysAgo(8)},
		},
		Sales: []models.Sale{
			{ID: 1, ListingID: 1, Amount: 100, Timestamp: daysAgo(1)},
			{ID: 2, ListingID: 1, Amount: 50, Timestamp: daysAgo(8)},
			{ID: 3, ListingID: 2, Amount: 20, Timestamp: daysAgo(0)},
			{ID: 4, ListingID: 3, Amount: 200, Timestamp: daysAgo(5)},
			{ID: 5, ListingID: 1, Amount: 100, Timestamp: daysAgo(40)},
		},
		GeneratedAt: today,
	})
	return services.NewAnalytics(g, slog.Default())
}

func createAPIHandlers() *APIHandlers {
	return NewAPIHandlers(createTestAnalytics(), cache.New(time.Minute), slog.Default(), 30)
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not a valid envelope: %v\nbody: %s", err, w.Body.String())
	}
	return env
}

func TestAPIHandlers_HandleSnapshot(t *testing.T) {
	h := createAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot?days=30", nil)
	w := httptest.NewRecorder()
	h.HandleSnapshot(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected content-type 'application/json', got %q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); cc != "public, max-age=300" {
		t.Errorf("expected cache-control header, got %q", cc)
	}

	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("expected success=true")
	}

	var snap models.AnalyticsSnapshot
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("data is not a snapshot: %v", err)
	}
	if snap.Overview.TotalRevenue != 370 {
		t.Errorf("total revenue = %v, want 370", snap.Overview.TotalRevenue)
	}
	if len(snap.Trends) != 12 {
		t.Errorf("got %d trend points, want 12", len(snap.Trends))
	}
	if len(snap.AvailableCategories) != 2 {
		t.Errorf("available categories = %v", snap.AvailableCategories)
	}
}

func TestAPIHandlers_HandleSnapshot_CategoryFilter(t *testing.T) {
	h := createAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot?days=30&category=Electronics", nil)
	w := httptest.NewRecorder()
	h.HandleSnapshot(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var snap models.AnalyticsSnapshot
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &snap); err != nil {
		t.Fatal(err)
	}
	if snap.Overview.TotalRevenue != 350 {
		t.Errorf("Electronics revenue = %v, want 350", snap.Overview.TotalRevenue)
	}
	if snap.Overview.ActiveListings != 2 {
		t.Errorf("Electronics listings = %d, want 2", snap.Overview.ActiveListings)
	}
}

func TestAPIHandlers_InvalidDays(t *testing.T) {
	h := createAPIHandlers()

	tests := []struct {
		name string
		url  string
	}{
		{"non-numeric", "/api/snapshot?days=soon"},
		{"negative", "/api/snapshot?days=-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			h.HandleSnapshot(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
			}
			var resp struct {
				Success bool `json:"success"`
				Error   struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("error body is not JSON: %v", err)
			}
			if resp.Success {
				t.Error("expected success=false on validation failure")
			}
		})
	}
}

func TestAPIHandlers_DefaultLookback(t *testing.T) {
	h := createAPIHandlers()

	// No days parameter falls back to the configured default.
	req := httptest.NewRequest(http.MethodGet, "/api/overview", nil)
	w := httptest.NewRecorder()
	h.HandleOverview(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var overview models.OverviewMetrics
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &overview); err != nil {
		t.Fatal(err)
	}
	if overview.TotalRevenue != 370 {
		t.Errorf("default-window revenue = %v, want 370", overview.TotalRevenue)
	}
}

func TestAPIHandlers_SectionEndpoints(t *testing.T) {
	h := createAPIHandlers()

	tests := []struct {
		name    string
		url     string
		handler http.HandlerFunc
		check   func(t *testing.T, data json.RawMessage)
	}{
		{
			name: "trends", url: "/api/trends?days=30", handler: h.HandleTrends,
			check: func(t *testing.T, data json.RawMessage) {
				var trends []models.TrendPoint
				if err := json.Unmarshal(data, &trends); err != nil {
					t.Fatal(err)
				}
				if len(trends) != 12 {
					t.Errorf("got %d trend points, want 12", len(trends))
				}
			},
		},
		{
			name: "categories sorted desc", url: "/api/categories?days=30&sort_by=revenue&sort_dir=desc", handler: h.HandleCategories,
			check: func(t *testing.T, data json.RawMessage) {
				var rows []models.CategoryPerformance
				if err := json.Unmarshal(data, &rows); err != nil {
					t.Fatal(err)
				}
				if len(rows) != 2 || rows[0].Category != "Electronics" {
					t.Errorf("unexpected rows: %+v", rows)
				}
			},
		},
		{
			name: "cohorts", url: "/api/cohorts?days=30", handler: h.HandleCohorts,
			check: func(t *testing.T, data json.RawMessage) {
				var rows []models.CohortRow
				if err := json.Unmarshal(data, &rows); err != nil {
					t.Fatal(err)
				}
				if len(rows) != 2 || rows[0].Cohort != "Mar 2026" {
					t.Errorf("unexpected cohorts: %+v", rows)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()
			tt.handler(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
			}
			tt.check(t, decodeEnvelope(t, w).Data)
		})
	}
}

func TestAPIHandlers_SnapshotCached(t *testing.T) {
	snapshots := cache.New(time.Minute)
	h := NewAPIHandlers(createTestAnalytics(), snapshots, slog.Default(), 30)

	req := httptest.NewRequest(http.MethodGet, "/api/snapshot?days=30", nil)
	w := httptest.NewRecorder()
	h.HandleSnapshot(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if snapshots.Len() != 1 {
		t.Fatalf("cache size = %d, want 1", snapshots.Len())
	}

	// Equivalent queries normalize to the same cache key.
	req = httptest.NewRequest(http.MethodGet, "/api/snapshot?days=30&sort_by=bogus&sort_dir=sideways", nil)
	w = httptest.NewRecorder()
	h.HandleSnapshot(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if snapshots.Len() != 1 {
		t.Errorf("cache size = %d, want 1 after equivalent query", snapshots.Len())
	}

	// A different window is a different entry.
	req = httptest.NewRequest(http.MethodGet, "/api/snapshot?days=7", nil)
	w = httptest.NewRecorder()
	h.HandleSnapshot(w, req)
	if snapshots.Len() != 2 {
		t.Errorf("cache size = %d, want 2 after new window", snapshots.Len())
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	h := createAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var health map[string]string
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", health["status"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	h := createAPIHandlers()

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	var stats map[string]any
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats["sellers"] != float64(2) {
		t.Errorf("sellers = %v, want 2", stats["sellers"])
	}
	if _, ok := stats["cached_snapshots"]; !ok {
		t.Error("stats should report cached_snapshots")
	}
}
