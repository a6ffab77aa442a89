package models

import (
	"fmt"
	"time"
)

// Categories is the closed set of listing categories in the marketplace
// universe. The generator draws from it and the dashboard filter UI is
// built from whatever subset actually appears in the data.
var Categories = []string{
	"Home",
	"Electronics",
	"Fashion",
	"Beauty",
	"Sports",
}

// Seller is a marketplace seller. All dates carry midnight UTC and no
// time-of-day component.
type Seller struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	SignupDate time.Time `json:"signup_date"`
}

// Listing belongs to exactly one seller. Rating is generated in
// [3.4, 4.9] but consumers must treat [0, 5] as the valid domain.
type Listing struct {
	ID        int       `json:"id"`
	SellerID  int       `json:"seller_id"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// Sale references exactly one listing. The generator does not order
// sale timestamps after the listing's creation date; downstream math
// must not assume causal ordering.
type Sale struct {
	ID        int       `json:"id"`
	ListingID int       `json:"listing_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// OverviewMetrics are the headline KPIs for the selected window.
// RevenueDeltaPct is nil when the prior window had no revenue, meaning
// "no comparison available" rather than a 0% change.
type OverviewMetrics struct {
	TotalRevenue      float64  `json:"total_revenue"`
	RevenueDeltaPct   *float64 `json:"revenue_delta_pct"`
	ActiveListings    int      `json:"active_listings"`
	AverageRating     float64  `json:"average_rating"`
	SatisfactionScore int      `json:"satisfaction_score"`
}

// RevenueDeltaLabel formats the delta for display; empty when no
// comparison is available.
func (m OverviewMetrics) RevenueDeltaLabel() string {
	if m.RevenueDeltaPct == nil {
		return ""
	}
	return fmt.Sprintf("%+.1f%%", *m.RevenueDeltaPct)
}

// TrendPoint is one 7-day revenue bucket, labelled by its start date.
type TrendPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// CategoryPerformance is one row of the per-category table.
type CategoryPerformance struct {
	Category  string  `json:"category"`
	Listings  int     `json:"listings"`
	Revenue   float64 `json:"revenue"`
	AvgPrice  float64 `json:"avg_price"`
	AvgRating float64 `json:"avg_rating"`
}

// CohortRow summarizes sellers who signed up in the same calendar
// month. RetentionPct is 0 (not nil) when month-1 revenue is zero;
// this deliberately differs from the overview delta policy.
type CohortRow struct {
	Cohort        string  `json:"cohort"`
	Month1Revenue float64 `json:"month1_revenue"`
	Month2Revenue float64 `json:"month2_revenue"`
	RetentionPct  float64 `json:"retention_pct"`
}

// AnalyticsSnapshot is the full reporting result for one query.
// AvailableCategories always reflects the unfiltered universe so the
// dashboard's filter dropdown never shrinks.
type AnalyticsSnapshot struct {
	Overview            OverviewMetrics       `json:"overview"`
	Trends              []TrendPoint          `json:"trends"`
	Categories          []CategoryPerformance `json:"categories"`
	Cohorts             []CohortRow           `json:"cohorts"`
	AvailableCategories []string              `json:"available_categories"`
}
