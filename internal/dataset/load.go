package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"horse.fit/staylens/internal/geo"
)

const (
	FileListings          = "listings.csv"
	FileDetailedListings  = "listings-2.csv"
	FileReviews           = "reviews-2.csv"
	FileCalendar          = "calendar.csv"
	FileNeighbourhoods    = "neighbourhoods.geojson"
	FileTranslatedReviews = "translated_reviews.csv"

	DefaultReviewSample = 2000
	DefaultSampleSeed   = 42
)

// DefaultDataDirs are tried in order when no data directory is configured.
var DefaultDataDirs = []string{
	"airbnb/data",
	"data",
	"Data",
	".",
	"../data",
	"../airbnb/data",
}

var ErrDataDirNotFound = errors.New("data directory not found")

// Datasets holds everything loaded from one data directory.
type Datasets struct {
	Dir            string
	Listings       []Listing
	Detailed       []DetailedListing
	Reviews        []Review
	Calendar       []CalendarDay
	Neighbourhoods *geo.FeatureCollection
	// Warnings lists files that were missing; they are not fatal.
	Warnings []string
}

// LoadOptions controls LoadAll.
type LoadOptions struct {
	// ReviewSample caps the number of reviews kept; 0 keeps all of them.
	ReviewSample int
	Seed         int64
	SkipCalendar bool
}

// ResolveDataDir returns the configured directory when set, otherwise the first
// existing candidate.
func ResolveDataDir(configured string, candidates []string) (string, error) {
	if dir := strings.TrimSpace(configured); dir != "" {
		if isDir(dir) {
			return dir, nil
		}
		return "", fmt.Errorf("%w: %s", ErrDataDirNotFound, dir)
	}
	if len(candidates) == 0 {
		candidates = DefaultDataDirs
	}
	for _, candidate := range candidates {
		if isDir(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w (looked in: %s)", ErrDataDirNotFound, strings.Join(candidates, ", "))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// LoadAll reads every dataset in dir concurrently.
func LoadAll(ctx context.Context, dir string, opts LoadOptions) (*Datasets, error) {
	out := &Datasets{Dir: dir}
	var warnMu sync.Mutex
	warn := func(name string) {
		warnMu.Lock()
		defer warnMu.Unlock()
		out.Warnings = append(out.Warnings, fmt.Sprintf("file not found: %s", name))
	}

	g, gctx := errgroup.WithContext(ctx)
	load := func(name string, fn func(path string) error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, name)
			err := fn(path)
			if errors.Is(err, fs.ErrNotExist) {
				warn(name)
				return nil
			}
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			return nil
		})
	}

	load(FileListings, func(path string) (err error) {
		out.Listings, err = LoadListings(path)
		return err
	})
	load(FileDetailedListings, func(path string) (err error) {
		out.Detailed, err = LoadDetailedListings(path)
		return err
	})
	load(FileReviews, func(path string) error {
		reviews, err := LoadReviews(path)
		if err != nil {
			return err
		}
		seed := opts.Seed
		if seed == 0 {
			seed = DefaultSampleSeed
		}
		out.Reviews = SampleReviews(reviews, opts.ReviewSample, seed)
		return nil
	})
	if !opts.SkipCalendar {
		load(FileCalendar, func(path string) (err error) {
			out.Calendar, err = LoadCalendar(path)
			return err
		})
	}
	load(FileNeighbourhoods, func(path string) (err error) {
		out.Neighbourhoods, err = geo.LoadFile(path)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(out.Warnings)
	return out, nil
}

// SampleReviews keeps n reviews chosen with a seeded generator, preserving file order.
// n <= 0 or n >= len(reviews) returns the input unchanged.
func SampleReviews(reviews []Review, n int, seed int64) []Review {
	if n <= 0 || n >= len(reviews) {
		return reviews
	}
	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(len(reviews))[:n]
	sort.Ints(picked)

	out := make([]Review, 0, n)
	for _, idx := range picked {
		out = append(out, reviews[idx])
	}
	return out
}

func openAndRead[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return read(f)
}

func LoadListings(path string) ([]Listing, error) {
	return openAndRead(path, ReadListings)
}

func LoadDetailedListings(path string) ([]DetailedListing, error) {
	return openAndRead(path, ReadDetailedListings)
}

func LoadReviews(path string) ([]Review, error) {
	return openAndRead(path, ReadReviews)
}

func LoadCalendar(path string) ([]CalendarDay, error) {
	return openAndRead(path, ReadCalendar)
}

// ReadListings decodes listings.csv.
func ReadListings(r io.Reader) ([]Listing, error) {
	table, err := newCSVTable(r, "id", "host_name", "neighbourhood")
	if err != nil {
		return nil, err
	}

	items := make([]Listing, 0, 1024)
	for {
		row, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := row.id("id")
		if err != nil {
			return nil, err
		}
		item := Listing{
			ID:              id,
			Name:            row.str("name"),
			HostName:        row.str("host_name"),
			Neighbourhood:   row.str("neighbourhood"),
			RoomType:        row.str("room_type"),
			Price:           row.price("price"),
			MinimumNights:   row.optionalInt("minimum_nights"),
			NumberOfReviews: row.optionalInt("number_of_reviews"),
		}
		if table.has("host_id") && row.str("host_id") != "" {
			if item.HostID, err = row.id("host_id"); err != nil {
				return nil, err
			}
		}
		if lat := row.optionalFloat("latitude"); lat != nil {
			item.Latitude = *lat
		}
		if lon := row.optionalFloat("longitude"); lon != nil {
			item.Longitude = *lon
		}
		items = append(items, item)
	}
	return items, nil
}

// ReadDetailedListings decodes listings-2.csv.
func ReadDetailedListings(r io.Reader) ([]DetailedListing, error) {
	table, err := newCSVTable(r, "id")
	if err != nil {
		return nil, err
	}

	items := make([]DetailedListing, 0, 1024)
	for {
		row, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		id, err := row.id("id")
		if err != nil {
			return nil, err
		}
		items = append(items, DetailedListing{
			ID:                   id,
			Description:          row.str("description"),
			ReviewScoresRating:   row.optionalFloat("review_scores_rating"),
			ReviewScoresLocation: row.optionalFloat("review_scores_location"),
		})
	}
	return items, nil
}

// ReadReviews decodes reviews-2.csv. Unparseable dates are left zero.
func ReadReviews(r io.Reader) ([]Review, error) {
	table, err := newCSVTable(r, "listing_id", "id", "comments")
	if err != nil {
		return nil, err
	}

	items := make([]Review, 0, 4096)
	for {
		row, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		listingID, err := row.id("listing_id")
		if err != nil {
			return nil, err
		}
		id, err := row.id("id")
		if err != nil {
			return nil, err
		}
		review := Review{
			ListingID:    listingID,
			ID:           id,
			ReviewerName: row.str("reviewer_name"),
			Comments:     row.str("comments"),
			Lang:         row.str("language"),
		}
		if day, err := row.date("date"); err == nil {
			review.Date = day
		}
		items = append(items, review)
	}
	return items, nil
}

// ReadCalendar decodes calendar.csv.
func ReadCalendar(r io.Reader) ([]CalendarDay, error) {
	table, err := newCSVTable(r, "listing_id", "date")
	if err != nil {
		return nil, err
	}

	items := make([]CalendarDay, 0, 4096)
	for {
		row, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		listingID, err := row.id("listing_id")
		if err != nil {
			return nil, err
		}
		day, err := row.date("date")
		if err != nil {
			return nil, err
		}
		items = append(items, CalendarDay{
			ListingID:     listingID,
			Date:          day,
			Available:     parseBool(row.str("available")),
			Price:         row.price("price"),
			AdjustedPrice: row.price("adjusted_price"),
			MinimumNights: row.optionalInt("minimum_nights"),
		})
	}
	return items, nil
}
