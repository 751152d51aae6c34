package httpapi

import (
	"time"

	"horse.fit/staylens/internal/analytics"
	"horse.fit/staylens/internal/dataset"
	"horse.fit/staylens/internal/geo"
	"horse.fit/staylens/internal/globaltime"
	"horse.fit/staylens/internal/textstats"
)

// Snapshot is the read-only dashboard state, computed once at startup.
type Snapshot struct {
	LoadedAt time.Time
	DataDir  string
	Warnings []string

	Counts         analytics.Counts
	WeeklyPrices   []analytics.WeeklyPrice
	Prices         []analytics.NeighbourhoodValue
	ReviewScores   []analytics.NeighbourhoodValue
	Markers        []analytics.Marker
	Discounts      []analytics.Discount
	Neighbourhoods *geo.FeatureCollection

	ReviewSource string
	ReviewTexts  []string
	ReviewStats  textstats.Summary
}

// NewSnapshot aggregates data and the host price extracts. reviewSource names the
// file reviewTexts were read from.
func NewSnapshot(data *dataset.Datasets, hostPrices []dataset.HostPrice, reviewTexts []dataset.ReviewText, reviewSource string) *Snapshot {
	snap := &Snapshot{
		LoadedAt:     globaltime.UTC(),
		Counts:       analytics.Overview(data),
		WeeklyPrices: analytics.WeeklyHostPrices(hostPrices),
		ReviewSource: reviewSource,
		ReviewTexts:  make([]string, 0, len(reviewTexts)),
	}
	if data != nil {
		snap.DataDir = data.Dir
		snap.Warnings = append([]string(nil), data.Warnings...)
		snap.Prices = analytics.MeanPriceByNeighbourhood(data.Listings)
		snap.ReviewScores = analytics.ReviewScoresByNeighbourhood(data.Listings, data.Detailed)
		snap.Markers = analytics.ListingMarkers(data.Listings)
		snap.Discounts = analytics.CalendarDiscounts(data.Calendar)
		snap.Neighbourhoods = data.Neighbourhoods
	}
	for _, review := range reviewTexts {
		snap.ReviewTexts = append(snap.ReviewTexts, review.Text)
	}
	snap.ReviewStats = textstats.Summarize(snap.ReviewTexts)
	return snap
}
