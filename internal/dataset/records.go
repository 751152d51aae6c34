// Package dataset loads the Inside Airbnb CSV exports into typed records.
package dataset

import "time"

// Listing is one row of listings.csv (the summary export).
type Listing struct {
	ID              int64
	Name            string
	HostID          int64
	HostName        string
	Neighbourhood   string
	Latitude        float64
	Longitude       float64
	RoomType        string
	Price           *float64
	MinimumNights   int
	NumberOfReviews int
}

// DetailedListing is the subset of listings-2.csv (the detailed export) used for scoring.
type DetailedListing struct {
	ID                   int64
	Description          string
	ReviewScoresRating   *float64
	ReviewScoresLocation *float64
}

// Review is one row of reviews-2.csv.
type Review struct {
	ListingID    int64
	ID           int64
	Date         time.Time
	ReviewerName string
	Comments     string
	// Lang is the detected or declared source language, empty when unknown.
	Lang string
}

// CalendarDay is one row of calendar.csv.
type CalendarDay struct {
	ListingID     int64
	Date          time.Time
	Available     bool
	Price         *float64
	AdjustedPrice *float64
	MinimumNights int
}

// HostPrice is one row of a per-host extract (host_<name>.csv).
type HostPrice struct {
	HostName string
	Date     time.Time
	Price    *float64
}

// ReviewText is a review as read back for text analysis, either translated or original.
type ReviewText struct {
	ReviewID int64
	Text     string
}
