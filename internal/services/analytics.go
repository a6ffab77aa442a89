package services

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"marketpulse/internal/errors"
	"marketpulse/internal/models"
	"marketpulse/internal/observability"
)

const (
	// DefaultLookbackDays is the dashboard's default reporting window.
	DefaultLookbackDays = 30

	// CategoryAll is the sentinel that disables category filtering.
	// Matched case-insensitively, unlike concrete category values.
	CategoryAll = "all"

	trendWeeks      = 12
	trendBucketDays = 7
	cohortMonthDays = 30
)

// SnapshotQuery carries the raw request parameters. SortBy and SortDir
// stay strings here; unknown values degrade to defaults instead of
// erroring, so parsing happens inside the pipeline.
type SnapshotQuery struct {
	LookbackDays int
	Category     string
	SortBy       string
	SortDir      string
}

// Analytics computes reporting snapshots over the generated universe.
// Every call allocates fresh derived data; nothing is shared between
// requests except the read-only dataset.
type Analytics struct {
	gen    *Generator
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalytics wires the service to a generator. The service shares the
// generator's clock so windows and the universe agree on "today".
func NewAnalytics(gen *Generator, logger *slog.Logger) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{gen: gen, logger: logger, now: gen.now}
}

// Snapshot assembles the full dashboard snapshot for one query. The
// only rejected input is a negative lookback; every other odd value
// degrades to a documented default.
func (a *Analytics) Snapshot(ctx context.Context, q SnapshotQuery) (*models.AnalyticsSnapshot, error) {
	if q.LookbackDays < 0 {
		return nil, errors.Validation("lookback days must not be negative")
	}

	ctx, span := observability.StartSpan(ctx, "analytics.snapshot")
	defer span.Finish()
	span.SetTag("lookback_days", strconv.Itoa(q.LookbackDays))
	span.SetTag("category", q.Category)

	data := a.gen.Dataset()

	filtered := filterListings(data.Listings, q.Category)
	listingIDs := make(map[int]bool, len(filtered))
	for _, l := range filtered {
		listingIDs[l.ID] = true
	}

	start, end := resolveWindow(midnightUTC(a.now()), q.LookbackDays)

	// Sales are filtered transitively through the listing set, then by
	// the window (inclusive on both ends).
	var windowSales []models.Sale
	for _, s := range data.Sales {
		if listingIDs[s.ListingID] && !s.Timestamp.Before(start) && !s.Timestamp.After(end) {
			windowSales = append(windowSales, s)
		}
	}

	sortKey := models.ParseSortKey(q.SortBy)
	sortDir := models.ParseSortDir(q.SortDir)

	var (
		overview   models.OverviewMetrics
		trends     []models.TrendPoint
		categories []models.CategoryPerformance
		cohorts    []models.CohortRow
	)

	// The four aggregators are pure functions over immutable inputs,
	// so they fan out safely.
	grp, _ := errgroup.WithContext(ctx)
	grp.Go(func() error {
		overview = buildOverview(windowSales, filtered, data.Sales, listingIDs, start, q.LookbackDays)
		return nil
	})
	grp.Go(func() error {
		trends = buildTrends(windowSales, end)
		return nil
	})
	grp.Go(func() error {
		categories = buildCategoryTable(filtered, windowSales, sortKey, sortDir)
		return nil
	})
	grp.Go(func() error {
		cohorts = buildCohorts(data.Sellers, filtered, windowSales)
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("snapshot computed",
		"lookback_days", q.LookbackDays,
		"category", q.Category,
		"window_sales", len(windowSales),
	)

	return &models.AnalyticsSnapshot{
		Overview:            overview,
		Trends:              trends,
		Categories:          categories,
		Cohorts:             cohorts,
		AvailableCategories: availableCategories(data.Listings),
	}, nil
}

// Stats reports dataset shape for the admin endpoint.
func (a *Analytics) Stats() map[string]any {
	data := a.gen.Dataset()
	return map[string]any{
		"sellers":       len(data.Sellers),
		"listings":      len(data.Listings),
		"sales":         len(data.Sales),
		"generated_for": data.GeneratedAt.Format("2006-01-02"),
	}
}

// resolveWindow maps a lookback length onto [today-days, today]. The
// comparison window callers derive from it is [start-days, start),
// contiguous and non-overlapping with the primary one.
func resolveWindow(today time.Time, days int) (start, end time.Time) {
	return today.AddDate(0, 0, -days), today
}

// filterListings narrows by category. Empty or any-case "all" passes
// everything through in order; anything else is an exact,
// case-sensitive match.
func filterListings(listings []models.Listing, category string) []models.Listing {
	if category == "" || strings.EqualFold(category, CategoryAll) {
		return listings
	}
	var filtered []models.Listing
	for _, l := range listings {
		if l.Category == category {
			filtered = append(filtered, l)
		}
	}
	return filtered
}

func buildOverview(sales []models.Sale, listings []models.Listing, allSales []models.Sale, listingIDs map[int]bool, start time.Time, lookbackDays int) models.OverviewMetrics {
	var total float64
	for _, s := range sales {
		total += s.Amount
	}

	// A listing is "active" by membership in the filtered set; no date
	// window applies to listings themselves.
	active := len(listings)
	var avgRating float64
	if active > 0 {
		var sum float64
		for _, l := range listings {
			sum += l.Rating
		}
		avgRating = sum / float64(active)
	}

	// Prior window of equal length, half-open at its end, over the same
	// category-scoped listing set but ignoring the primary window.
	prevStart := start.AddDate(0, 0, -lookbackDays)
	var prevRevenue float64
	for _, s := range allSales {
		if listingIDs[s.ListingID] && !s.Timestamp.Before(prevStart) && s.Timestamp.Before(start) {
			prevRevenue += s.Amount
		}
	}
	var deltaPct *float64
	if prevRevenue > 0 {
		d := (total - prevRevenue) / prevRevenue * 100
		deltaPct = &d
	}

	return models.OverviewMetrics{
		TotalRevenue:      total,
		RevenueDeltaPct:   deltaPct,
		ActiveListings:    active,
		AverageRating:     avgRating,
		SatisfactionScore: int(math.Round(avgRating * 20)),
	}
}

// buildTrends buckets sales into the 12 trailing 7-day periods ending
// at the window end. The 84-day span is a fixed reporting granularity,
// independent of the caller's lookback. All 12 points are always
// emitted, zero-revenue buckets included.
func buildTrends(sales []models.Sale, end time.Time) []models.TrendPoint {
	var buckets [trendWeeks]float64
	for _, s := range sales {
		daysDiff := daysBetween(s.Timestamp, end)
		if daysDiff >= 0 && daysDiff < trendWeeks*trendBucketDays {
			buckets[trendWeeks-1-daysDiff/trendBucketDays] += s.Amount
		}
	}

	points := make([]models.TrendPoint, 0, trendWeeks)
	for i := range trendWeeks {
		weekStart := end.AddDate(0, 0, -((trendWeeks-1-i)*trendBucketDays + trendBucketDays - 1))
		points = append(points, models.TrendPoint{
			Label:   weekStart.Format("Jan 02"),
			Revenue: round2(buckets[i]),
		})
	}
	return points
}

func buildCategoryTable(listings []models.Listing, sales []models.Sale, key models.SortKey, dir models.SortDir) []models.CategoryPerformance {
	byCategory := make(map[string][]models.Listing)
	for _, l := range listings {
		byCategory[l.Category] = append(byCategory[l.Category], l)
	}

	revenueByListing := make(map[int]float64)
	for _, s := range sales {
		revenueByListing[s.ListingID] += s.Amount
	}

	rows := make([]models.CategoryPerformance, 0, len(byCategory))
	for category, items := range byCategory {
		var revenue, priceSum, ratingSum float64
		for _, item := range items {
			revenue += revenueByListing[item.ID]
			priceSum += item.Price
			ratingSum += item.Rating
		}
		n := float64(len(items))
		rows = append(rows, models.CategoryPerformance{
			Category:  category,
			Listings:  len(items),
			Revenue:   revenue,
			AvgPrice:  priceSum / n,
			AvgRating: ratingSum / n,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if dir == models.SortDesc {
			i, j = j, i
		}
		return lessByKey(rows[i], rows[j], key)
	})
	return rows
}

func lessByKey(a, b models.CategoryPerformance, key models.SortKey) bool {
	switch key {
	case models.SortByCategory:
		return a.Category < b.Category
	case models.SortByListings:
		return a.Listings < b.Listings
	case models.SortByPrice:
		return a.AvgPrice < b.AvgPrice
	case models.SortByRating:
		return a.AvgRating < b.AvgRating
	default:
		return a.Revenue < b.Revenue
	}
}

// buildCohorts groups sellers by signup month and splits their revenue
// into the first and second 30-day periods after signup. Sales outside
// [0,60) days of signup, including pre-signup offsets, count toward
// neither bucket. Zero month-1 revenue maps to 0% retention, not nil.
func buildCohorts(sellers []models.Seller, listings []models.Listing, sales []models.Sale) []models.CohortRow {
	listingSeller := make(map[int]int, len(listings))
	for _, l := range listings {
		listingSeller[l.ID] = l.SellerID
	}
	sellerByID := make(map[int]models.Seller, len(sellers))
	for _, s := range sellers {
		sellerByID[s.ID] = s
	}

	type cohortTotals struct {
		key    string
		month  time.Time
		month1 float64
		month2 float64
	}

	cohorts := make(map[string]*cohortTotals)
	ordered := make([]*cohortTotals, 0, len(sellers))
	for _, seller := range sellers {
		key := seller.SignupDate.Format("Jan 2006")
		if cohorts[key] == nil {
			c := &cohortTotals{
				key:   key,
				month: time.Date(seller.SignupDate.Year(), seller.SignupDate.Month(), 1, 0, 0, 0, 0, time.UTC),
			}
			cohorts[key] = c
			ordered = append(ordered, c)
		}
	}

	for _, sale := range sales {
		sellerID, ok := listingSeller[sale.ListingID]
		if !ok {
			continue
		}
		seller := sellerByID[sellerID]
		totals := cohorts[seller.SignupDate.Format("Jan 2006")]
		offset := daysBetween(seller.SignupDate, sale.Timestamp)
		switch {
		case offset >= 0 && offset < cohortMonthDays:
			totals.month1 += sale.Amount
		case offset >= cohortMonthDays && offset < 2*cohortMonthDays:
			totals.month2 += sale.Amount
		}
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].month.After(ordered[j].month)
	})

	rows := make([]models.CohortRow, 0, len(ordered))
	for _, c := range ordered {
		retention := 0.0
		if c.month1 > 0 {
			retention = c.month2 / c.month1 * 100
		}
		rows = append(rows, models.CohortRow{
			Cohort:        c.key,
			Month1Revenue: c.month1,
			Month2Revenue: c.month2,
			RetentionPct:  retention,
		})
	}
	return rows
}

func availableCategories(listings []models.Listing) []string {
	seen := make(map[string]bool)
	var categories []string
	for _, l := range listings {
		if !seen[l.Category] {
			seen[l.Category] = true
			categories = append(categories, l.Category)
		}
	}
	sort.Strings(categories)
	return categories
}

// daysBetween returns to-from in whole days. All pipeline dates are
// midnight UTC, so the division is exact.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
