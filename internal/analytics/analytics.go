// Package analytics computes the dashboard aggregates from loaded datasets.
package analytics

import (
	"sort"
	"strings"
	"time"

	"horse.fit/staylens/internal/dataset"
)

// WeeklyPrice is the mean price of one host over one week.
type WeeklyPrice struct {
	HostName  string    `json:"host_name"`
	WeekStart time.Time `json:"week_start"`
	MeanPrice float64   `json:"mean_price"`
	Samples   int       `json:"samples"`
}

// NeighbourhoodValue is one aggregated value per neighbourhood.
type NeighbourhoodValue struct {
	Neighbourhood string  `json:"neighbourhood"`
	Value         float64 `json:"value"`
	Count         int     `json:"count"`
}

// Discount is the gap between the listed and the adjusted price of a calendar day.
type Discount struct {
	ListingID     int64     `json:"listing_id"`
	Date          time.Time `json:"date"`
	Price         float64   `json:"price"`
	AdjustedPrice float64   `json:"adjusted_price"`
	Discount      float64   `json:"discount"`
}

// Counts is the overview panel.
type Counts struct {
	Listings         int      `json:"listings"`
	DetailedListings int      `json:"detailed_listings"`
	Reviews          int      `json:"reviews"`
	CalendarDays     int      `json:"calendar_days"`
	Hosts            int      `json:"hosts"`
	Neighbourhoods   int      `json:"neighbourhoods"`
	MeanPrice        *float64 `json:"mean_price,omitempty"`
}

// Marker is one listing on the marker map.
type Marker struct {
	ListingID     int64    `json:"listing_id"`
	Name          string   `json:"name"`
	HostName      string   `json:"host_name"`
	Neighbourhood string   `json:"neighbourhood"`
	RoomType      string   `json:"room_type"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Price         *float64 `json:"price,omitempty"`
}

type meanAcc struct {
	sum   float64
	count int
}

func (a *meanAcc) add(v float64) {
	a.sum += v
	a.count++
}

func (a meanAcc) mean() float64 {
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}

// WeekStart returns midnight UTC of the Monday starting t's ISO week.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeeklyHostPrices averages price_x per host and week. Rows without a date or a
// price are ignored. Output is sorted by host, then week.
func WeeklyHostPrices(rows []dataset.HostPrice) []WeeklyPrice {
	type key struct {
		host string
		week time.Time
	}
	groups := make(map[key]*meanAcc)
	for _, row := range rows {
		if row.Date.IsZero() || row.Price == nil {
			continue
		}
		k := key{host: row.HostName, week: WeekStart(row.Date)}
		acc, ok := groups[k]
		if !ok {
			acc = &meanAcc{}
			groups[k] = acc
		}
		acc.add(*row.Price)
	}

	out := make([]WeeklyPrice, 0, len(groups))
	for k, acc := range groups {
		out = append(out, WeeklyPrice{
			HostName:  k.host,
			WeekStart: k.week,
			MeanPrice: acc.mean(),
			Samples:   acc.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HostName != out[j].HostName {
			return out[i].HostName < out[j].HostName
		}
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out
}

// MeanPriceByNeighbourhood averages listing prices per neighbourhood, sorted by name.
func MeanPriceByNeighbourhood(listings []dataset.Listing) []NeighbourhoodValue {
	groups := make(map[string]*meanAcc)
	for _, listing := range listings {
		name := strings.TrimSpace(listing.Neighbourhood)
		if name == "" || listing.Price == nil {
			continue
		}
		accumulate(groups, name, *listing.Price)
	}
	return flatten(groups)
}

// ReviewScoresByNeighbourhood left-joins detailed listings onto listings by id and
// averages review_scores_location per neighbourhood. Neighbourhoods with no score
// are omitted.
func ReviewScoresByNeighbourhood(listings []dataset.Listing, detailed []dataset.DetailedListing) []NeighbourhoodValue {
	scores := make(map[int64]float64, len(detailed))
	for _, d := range detailed {
		if d.ReviewScoresLocation != nil {
			scores[d.ID] = *d.ReviewScoresLocation
		}
	}

	groups := make(map[string]*meanAcc)
	for _, listing := range listings {
		name := strings.TrimSpace(listing.Neighbourhood)
		score, ok := scores[listing.ID]
		if name == "" || !ok {
			continue
		}
		accumulate(groups, name, score)
	}
	return flatten(groups)
}

// CalendarDiscounts returns price minus adjusted price for every day where both are known.
func CalendarDiscounts(days []dataset.CalendarDay) []Discount {
	out := make([]Discount, 0, len(days))
	for _, day := range days {
		if day.Price == nil || day.AdjustedPrice == nil {
			continue
		}
		out = append(out, Discount{
			ListingID:     day.ListingID,
			Date:          day.Date,
			Price:         *day.Price,
			AdjustedPrice: *day.AdjustedPrice,
			Discount:      *day.Price - *day.AdjustedPrice,
		})
	}
	return out
}

// DiscountSummary aggregates calendar discounts.
type DiscountSummary struct {
	Days         int      `json:"days"`
	Discounted   int      `json:"discounted"`
	MeanDiscount *float64 `json:"mean_discount,omitempty"`
	MaxDiscount  *float64 `json:"max_discount,omitempty"`
}

// SummarizeDiscounts counts the days that were priced below list. The mean covers every day.
func SummarizeDiscounts(discounts []Discount) DiscountSummary {
	summary := DiscountSummary{Days: len(discounts)}
	var acc meanAcc
	for _, d := range discounts {
		acc.add(d.Discount)
		if d.Discount > 0 {
			summary.Discounted++
		}
		if summary.MaxDiscount == nil || d.Discount > *summary.MaxDiscount {
			v := d.Discount
			summary.MaxDiscount = &v
		}
	}
	if acc.count > 0 {
		mean := acc.mean()
		summary.MeanDiscount = &mean
	}
	return summary
}

// FilterDiscounts keeps the days of one listing. A zero listingID keeps every day.
func FilterDiscounts(discounts []Discount, listingID int64) []Discount {
	if listingID == 0 {
		return discounts
	}
	out := make([]Discount, 0)
	for _, d := range discounts {
		if d.ListingID == listingID {
			out = append(out, d)
		}
	}
	return out
}

// LargestDiscounts orders by discount descending, then date and listing, and keeps limit.
func LargestDiscounts(discounts []Discount, limit int) []Discount {
	out := append([]Discount(nil), discounts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Discount != out[j].Discount {
			return out[i].Discount > out[j].Discount
		}
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ListingID < out[j].ListingID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Overview counts the loaded records.
func Overview(data *dataset.Datasets) Counts {
	if data == nil {
		return Counts{}
	}

	counts := Counts{
		Listings:         len(data.Listings),
		DetailedListings: len(data.Detailed),
		Reviews:          len(data.Reviews),
		CalendarDays:     len(data.Calendar),
	}

	hosts := make(map[string]struct{})
	neighbourhoods := make(map[string]struct{})
	var price meanAcc
	for _, listing := range data.Listings {
		if name := strings.TrimSpace(listing.HostName); name != "" {
			hosts[name] = struct{}{}
		}
		if name := strings.TrimSpace(listing.Neighbourhood); name != "" {
			neighbourhoods[name] = struct{}{}
		}
		if listing.Price != nil {
			price.add(*listing.Price)
		}
	}
	counts.Hosts = len(hosts)
	counts.Neighbourhoods = len(neighbourhoods)
	if price.count > 0 {
		mean := price.mean()
		counts.MeanPrice = &mean
	}
	return counts
}

// ListingMarkers returns map points for listings that have coordinates.
func ListingMarkers(listings []dataset.Listing) []Marker {
	out := make([]Marker, 0, len(listings))
	for _, listing := range listings {
		if listing.Latitude == 0 && listing.Longitude == 0 {
			continue
		}
		out = append(out, Marker{
			ListingID:     listing.ID,
			Name:          listing.Name,
			HostName:      listing.HostName,
			Neighbourhood: listing.Neighbourhood,
			RoomType:      listing.RoomType,
			Latitude:      listing.Latitude,
			Longitude:     listing.Longitude,
			Price:         listing.Price,
		})
	}
	return out
}

// TopN returns the n highest values, ties broken by name. n <= 0 returns all of them.
func TopN(values []NeighbourhoodValue, n int) []NeighbourhoodValue {
	ranked := append([]NeighbourhoodValue(nil), values...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Neighbourhood < ranked[j].Neighbourhood
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ValueMap indexes values by neighbourhood for choropleth joins.
func ValueMap(values []NeighbourhoodValue) map[string]float64 {
	out := make(map[string]float64, len(values))
	for _, v := range values {
		out[v.Neighbourhood] = v.Value
	}
	return out
}

func accumulate(groups map[string]*meanAcc, name string, value float64) {
	acc, ok := groups[name]
	if !ok {
		acc = &meanAcc{}
		groups[name] = acc
	}
	acc.add(value)
}

func flatten(groups map[string]*meanAcc) []NeighbourhoodValue {
	out := make([]NeighbourhoodValue, 0, len(groups))
	for name, acc := range groups {
		out = append(out, NeighbourhoodValue{
			Neighbourhood: name,
			Value:         acc.mean(),
			Count:         acc.count,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Neighbourhood < out[j].Neighbourhood
	})
	return out
}
