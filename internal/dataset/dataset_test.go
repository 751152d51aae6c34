package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: "$1,234.50", want: 1234.5, ok: true},
		{raw: "£85", want: 85, ok: true},
		{raw: " 42 ", want: 42, ok: true},
		{raw: "", ok: false},
		{raw: "n/a", ok: false},
	}
	for _, tc := range cases {
		got := ParsePrice(tc.raw)
		if !tc.ok {
			if got != nil {
				t.Fatalf("ParsePrice(%q) expected nil, got %v", tc.raw, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Fatalf("ParsePrice(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestReadListings_HeaderQuirks(t *testing.T) {
	t.Parallel()

	input := "\ufeffID,name,Host_Name,neighbourhood,room_type,price,latitude,longitude\n" +
		"1,Flat,Anna,Camden,Entire home/apt,$120.00,51.5,-0.12\n" +
		"2,Room,Ben,Hackney,Private room,,51.6,-0.05\n"

	items, err := ReadListings(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read listings: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(items))
	}
	if items[0].HostName != "Anna" || items[0].Price == nil || *items[0].Price != 120 {
		t.Fatalf("unexpected first listing: %+v", items[0])
	}
	if items[1].Price != nil {
		t.Fatalf("expected blank price to be absent")
	}
	if items[0].Latitude != 51.5 {
		t.Fatalf("unexpected latitude: %v", items[0].Latitude)
	}
}

func TestReadListings_MissingColumn(t *testing.T) {
	t.Parallel()

	_, err := ReadListings(strings.NewReader("id,name\n1,x\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	_, err = ReadListings(strings.NewReader(""))
	if !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
}

func TestReadCalendar(t *testing.T) {
	t.Parallel()

	input := "listing_id,date,available,price,adjusted_price,minimum_nights\n" +
		"7,2024-03-04,t,$100.00,$90.00,2\n" +
		"7,2024-03-05,f,$100.00,$100.00,2\n"
	items, err := ReadCalendar(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read calendar: %v", err)
	}
	if len(items) != 2 || !items[0].Available || items[1].Available {
		t.Fatalf("unexpected availability: %+v", items)
	}
	if *items[0].AdjustedPrice != 90 || items[0].MinimumNights != 2 {
		t.Fatalf("unexpected first day: %+v", items[0])
	}
}

func TestSafeHostName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Anna":          "Anna",
		"Anna & Ben":    "Anna_Ben",
		"José":          "José",
		"Blueground!!":  "Blueground_",
		"Veeve  (Ltd.)": "Veeve_Ltd_",
	}
	for in, want := range cases {
		if got := SafeHostName(in); got != want {
			t.Fatalf("SafeHostName(%q) = %q, want %q", in, got, want)
		}
	}
	if got := HostFileName("Anna & Ben"); got != "host_Anna_Ben.csv" {
		t.Fatalf("unexpected host file name: %s", got)
	}
}

func TestTopHosts_OrdersByCountThenName(t *testing.T) {
	t.Parallel()

	listings := []Listing{
		{HostName: "Cara"}, {HostName: "Anna"}, {HostName: "Cara"},
		{HostName: "Ben"}, {HostName: "Anna"}, {HostName: " "},
	}
	got := TopHosts(listings, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 hosts, got %d", len(got))
	}
	if got[0].HostName != "Anna" || got[1].HostName != "Cara" || got[0].Listings != 2 {
		t.Fatalf("unexpected ranking: %+v", got)
	}
}

func TestDiscoverAndLoadHostPrices(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "date,price_x\n2024-01-01,$50.00\nnot-a-date,$60.00\n2024-01-08,$70.00\n"
	if err := os.WriteFile(filepath.Join(dir, "host_Anna_Ben.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write host file: %v", err)
	}

	files := DiscoverHostFiles(dir, []HostCount{{HostName: "Anna & Ben"}, {HostName: "Missing"}})
	if len(files) != 1 || files[0].HostName != "Anna & Ben" {
		t.Fatalf("unexpected discovered files: %+v", files)
	}

	rows, err := LoadHostPrices(files)
	if err != nil {
		t.Fatalf("load host prices: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected bad date row to be dropped, got %d rows", len(rows))
	}
	if rows[0].HostName != "Anna & Ben" || *rows[1].Price != 70 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestSampleReviews_DeterministicAndOrdered(t *testing.T) {
	t.Parallel()

	reviews := make([]Review, 50)
	for i := range reviews {
		reviews[i] = Review{ID: int64(i)}
	}

	first := SampleReviews(reviews, 10, DefaultSampleSeed)
	second := SampleReviews(reviews, 10, DefaultSampleSeed)
	if len(first) != 10 {
		t.Fatalf("expected 10 reviews, got %d", len(first))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("sampling is not deterministic at %d", i)
		}
		if i > 0 && first[i].ID <= first[i-1].ID {
			t.Fatalf("sample does not preserve file order: %+v", first)
		}
	}
	if got := SampleReviews(reviews, 0, 1); len(got) != len(reviews) {
		t.Fatalf("expected n=0 to keep all reviews")
	}
}

func TestLoadAll_WarnsOnMissingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	listings := "id,host_name,neighbourhood,price\n1,Anna,Camden,$10\n"
	reviews := "listing_id,id,date,reviewer_name,comments\n1,100,2024-02-01,Zoe,Lovely stay\n"
	if err := os.WriteFile(filepath.Join(dir, FileListings), []byte(listings), 0o644); err != nil {
		t.Fatalf("write listings: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileReviews), []byte(reviews), 0o644); err != nil {
		t.Fatalf("write reviews: %v", err)
	}

	data, err := LoadAll(context.Background(), dir, LoadOptions{ReviewSample: DefaultReviewSample})
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(data.Listings) != 1 || len(data.Reviews) != 1 {
		t.Fatalf("unexpected datasets: %+v", data)
	}
	if len(data.Warnings) != 3 {
		t.Fatalf("expected warnings for calendar, detailed listings and geojson, got %v", data.Warnings)
	}
	if data.Neighbourhoods != nil {
		t.Fatalf("expected no neighbourhoods")
	}
}

func TestLoadAll_ReportsCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileListings), []byte("name\nx\n"), 0o644); err != nil {
		t.Fatalf("write listings: %v", err)
	}
	_, err := LoadAll(context.Background(), dir, LoadOptions{SkipCalendar: true})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestResolveDataDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got, err := ResolveDataDir("", []string{filepath.Join(dir, "nope"), dir})
	if err != nil || got != dir {
		t.Fatalf("ResolveDataDir = %q, %v", got, err)
	}
	if _, err := ResolveDataDir(filepath.Join(dir, "nope"), nil); !errors.Is(err, ErrDataDirNotFound) {
		t.Fatalf("expected ErrDataDirNotFound, got %v", err)
	}
}

func TestTranslatedReviews_RoundTrip(t *testing.T) {
	t.Parallel()

	rows := []TranslatedReview{
		{Review: Review{ListingID: 1, ID: 10, Comments: "Très bien"}, SourceLang: "fr", TranslatedText: "Very good"},
		{Review: Review{ListingID: 1, ID: 11, Comments: "Great, \"quiet\" flat"}, SourceLang: "en"},
	}

	var buf bytes.Buffer
	if err := WriteTranslatedReviews(&buf, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	texts, err := ReadReviewTexts(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(texts) != 2 {
		t.Fatalf("expected 2 texts, got %d", len(texts))
	}
	if texts[0].Text != "Very good" {
		t.Fatalf("expected translated text to win, got %q", texts[0].Text)
	}
	if texts[1].Text != "Great, \"quiet\" flat" {
		t.Fatalf("expected fallback to comments, got %q", texts[1].Text)
	}
}

func TestLoadReviewTexts_PrefersTranslatedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := WriteTranslatedReviewsFile(filepath.Join(dir, FileTranslatedReviews), []TranslatedReview{
		{Review: Review{ID: 1, Comments: "Hola"}, TranslatedText: "Hello"},
	}); err != nil {
		t.Fatalf("write translated: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FileReviews), []byte("listing_id,id,comments\n1,1,Hola\n"), 0o644); err != nil {
		t.Fatalf("write reviews: %v", err)
	}

	texts, name, err := LoadReviewTexts(dir)
	if err != nil {
		t.Fatalf("load review texts: %v", err)
	}
	if name != FileTranslatedReviews || len(texts) != 1 || texts[0].Text != "Hello" {
		t.Fatalf("unexpected result: %s %+v", name, texts)
	}
	if _, err := os.Stat(filepath.Join(dir, FileTranslatedReviews+".tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp file to be renamed away")
	}
}
