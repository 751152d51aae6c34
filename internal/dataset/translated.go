package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TranslatedReview pairs a review with its translation.
type TranslatedReview struct {
	Review
	TranslatedText string
	SourceLang     string
}

var translatedHeader = []string{
	"listing_id",
	"id",
	"date",
	"reviewer_name",
	"comments",
	"source_lang",
	"translated_text",
}

// WriteTranslatedReviews writes rows in the translated_reviews.csv layout.
func WriteTranslatedReviews(w io.Writer, rows []TranslatedReview) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(translatedHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		date := ""
		if !row.Date.IsZero() {
			date = row.Date.Format("2006-01-02")
		}
		record := []string{
			strconv.FormatInt(row.ListingID, 10),
			strconv.FormatInt(row.ID, 10),
			date,
			row.ReviewerName,
			row.Comments,
			row.SourceLang,
			row.TranslatedText,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write review %d: %w", row.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTranslatedReviewsFile writes to path through a temp file so a failed run never
// leaves a truncated CSV behind.
func WriteTranslatedReviewsFile(path string, rows []TranslatedReview) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := WriteTranslatedReviews(f, rows); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// ReadReviewTexts reads review text for analysis. translated_text wins over comments
// when the column exists and the value is non-empty.
func ReadReviewTexts(r io.Reader) ([]ReviewText, error) {
	table, err := newCSVTable(r, "id")
	if err != nil {
		return nil, err
	}
	if !table.has("translated_text") && !table.has("comments") {
		return nil, fmt.Errorf("%w: translated_text or comments", ErrMissingColumn)
	}

	items := make([]ReviewText, 0, 1024)
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
		text := row.str("translated_text")
		if text == "" {
			text = row.str("comments")
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		items = append(items, ReviewText{ReviewID: id, Text: text})
	}
	return items, nil
}

// LoadReviewTexts prefers translated_reviews.csv and falls back to reviews-2.csv.
// The returned name is the file that was read.
func LoadReviewTexts(dir string) ([]ReviewText, string, error) {
	for _, name := range []string{FileTranslatedReviews, FileReviews} {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("open %s: %w", path, err)
		}
		items, err := ReadReviewTexts(f)
		_ = f.Close()
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		return items, name, nil
	}
	return nil, "", fmt.Errorf("no review files found in %s", dir)
}
