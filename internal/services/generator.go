package services

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"marketpulse/internal/models"
)

// DefaultSeed is the fixed seed the marketplace universe is drawn from.
const DefaultSeed = 42

const (
	sellerCount        = 12
	signupMonthCycle   = 8
	minListings        = 3
	maxListings        = 6
	minListingPrice    = 15.0
	maxListingPrice    = 250.0
	minRating          = 3.4
	maxRating          = 4.9
	maxCreatedAtOffset = 60
	minSales           = 8
	maxSales           = 16
	maxSaleAgeDays     = 320
	minSaleMultiplier  = 0.8
	maxSaleMultiplier  = 1.4
)

// Dataset is the canonical seller/listing/sale universe. It is built
// once per Generator and must be treated as read-only afterwards.
type Dataset struct {
	Sellers     []models.Seller
	Listings    []models.Listing
	Sales       []models.Sale
	GeneratedAt time.Time
}

// Generator owns lazy, guarded construction of the synthetic dataset.
// The same seed and clock always produce a deeply equal dataset, so the
// dashboard is stable across restarts within the same calendar day.
type Generator struct {
	seed int64
	now  func() time.Time

	mu    sync.RWMutex
	data  *Dataset
	group singleflight.Group
}

// NewGenerator builds a generator for the given seed. A nil clock means
// wall-clock time; tests inject a fixed clock to pin "today".
func NewGenerator(seed int64, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{seed: seed, now: now}
}

// Dataset returns the cached universe, generating it on first use.
// Concurrent first callers collapse into a single generation via
// singleflight; later callers take the fast read path.
func (g *Generator) Dataset() *Dataset {
	g.mu.RLock()
	data := g.data
	g.mu.RUnlock()
	if data != nil {
		return data
	}

	v, _, _ := g.group.Do("dataset", func() (any, error) {
		g.mu.RLock()
		cached := g.data
		g.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		generated := g.generate()
		g.mu.Lock()
		g.data = generated
		g.mu.Unlock()
		return generated, nil
	})
	return v.(*Dataset)
}

// SetDataset replaces the cached universe. Tests use it to substitute a
// hand-built fixture without depending on the seeded generation.
func (g *Generator) SetDataset(data *Dataset) {
	g.mu.Lock()
	g.data = data
	g.mu.Unlock()
}

func (g *Generator) generate() *Dataset {
	rng := rand.New(rand.NewSource(g.seed))
	today := midnightUTC(g.now())

	sellers := make([]models.Seller, 0, sellerCount)
	for id := 1; id <= sellerCount; id++ {
		// Signup dates are a pure function of id and "today", not of
		// the random stream: today - 30*((id mod 8)+1) days.
		signup := today.AddDate(0, 0, -30*(id%signupMonthCycle+1))
		sellers = append(sellers, models.Seller{
			ID:         id,
			Name:       fmt.Sprintf("Seller %02d", id),
			SignupDate: signup,
		})
	}

	var listings []models.Listing
	var sales []models.Sale
	listingID := 1
	saleID := 1
	for _, seller := range sellers {
		listingCount := minListings + rng.Intn(maxListings-minListings+1)
		for range listingCount {
			price := round2(minListingPrice + rng.Float64()*(maxListingPrice-minListingPrice))
			listings = append(listings, models.Listing{
				ID:        listingID,
				SellerID:  seller.ID,
				Category:  models.Categories[rng.Intn(len(models.Categories))],
				Price:     price,
				Rating:    round2(minRating + rng.Float64()*(maxRating-minRating)),
				CreatedAt: seller.SignupDate.AddDate(0, 0, rng.Intn(maxCreatedAtOffset+1)),
			})

			saleCount := minSales + rng.Intn(maxSales-minSales+1)
			for range saleCount {
				daysAgo := rng.Intn(maxSaleAgeDays + 1)
				sales = append(sales, models.Sale{
					ID:        saleID,
					ListingID: listingID,
					Amount:    round2(price * (minSaleMultiplier + rng.Float64()*(maxSaleMultiplier-minSaleMultiplier))),
					Timestamp: today.AddDate(0, 0, -daysAgo),
				})
				saleID++
			}
			listingID++
		}
	}

	return &Dataset{
		Sellers:     sellers,
		Listings:    listings,
		Sales:       sales,
		GeneratedAt: today,
	}
}

// midnightUTC drops the time-of-day component; the whole pipeline works
// in calendar days.
func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
