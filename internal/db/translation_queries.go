package db

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// ReviewTranslationKey identifies one cached translation source: a review and the
// hash of the cleaned text that was sent to the provider.
type ReviewTranslationKey struct {
	ReviewID    int64
	ContentHash [sha256.Size]byte
}

// HashContent returns the cache key hash for a cleaned review text.
func HashContent(text string) [sha256.Size]byte {
	return sha256.Sum256([]byte(text))
}

// CachedReviewTranslation is one cached translation row.
type CachedReviewTranslation struct {
	ReviewTranslationID int64
	ReviewID            int64
	SourceLang          string
	TargetLang          string
	TranslatedText      string
	ProviderName        string
	ModelName           *string
	RunID               *string
	CreatedAt           time.Time
}

// UpsertReviewTranslationParams controls review translation upserts.
type UpsertReviewTranslationParams struct {
	ReviewID       int64
	ContentHash    [sha256.Size]byte
	TargetLang     string
	SourceLang     string
	OriginalText   string
	TranslatedText string
	ProviderName   string
	ModelName      *string
	RunID          *string
	BatchIndex     *int
}

// LookupReviewTranslations returns cached rows for the given keys in one round trip.
func (p *Pool) LookupReviewTranslations(
	ctx context.Context,
	keys []ReviewTranslationKey,
	targetLang string,
) (map[ReviewTranslationKey]CachedReviewTranslation, error) {
	out := make(map[ReviewTranslationKey]CachedReviewTranslation, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	reviewIDs := make([]int64, 0, len(keys))
	hashes := make([][]byte, 0, len(keys))
	for _, key := range keys {
		reviewIDs = append(reviewIDs, key.ReviewID)
		hash := key.ContentHash
		hashes = append(hashes, hash[:])
	}

	const q = `
SELECT
	t.review_translation_id,
	t.review_id,
	t.content_hash,
	t.source_lang,
	t.target_lang,
	t.translated_text,
	t.provider_name,
	t.model_name,
	t.run_id,
	t.created_at
FROM staylens.review_translations t
JOIN unnest($1::bigint[], $2::bytea[]) AS k(review_id, content_hash)
	ON t.review_id = k.review_id
	AND t.content_hash = k.content_hash
WHERE t.target_lang = $3
`

	rows, err := p.Query(ctx, q, reviewIDs, hashes, strings.TrimSpace(targetLang))
	if err != nil {
		return nil, fmt.Errorf("query review translations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row  CachedReviewTranslation
			hash []byte
		)
		if err := rows.Scan(
			&row.ReviewTranslationID,
			&row.ReviewID,
			&hash,
			&row.SourceLang,
			&row.TargetLang,
			&row.TranslatedText,
			&row.ProviderName,
			&row.ModelName,
			&row.RunID,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review translation row: %w", err)
		}
		key := ReviewTranslationKey{ReviewID: row.ReviewID}
		if len(hash) != sha256.Size {
			continue
		}
		copy(key.ContentHash[:], hash)
		out[key] = row
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review translation rows: %w", err)
	}

	return out, nil
}

// UpsertReviewTranslations writes one batch of results in a single transaction.
func (p *Pool) UpsertReviewTranslations(ctx context.Context, items []UpsertReviewTranslationParams) error {
	if len(items) == 0 {
		return nil
	}

	const q = `
INSERT INTO staylens.review_translations (
	review_id,
	content_hash,
	target_lang,
	source_lang,
	original_text,
	translated_text,
	provider_name,
	model_name,
	run_id,
	batch_index
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (review_id, content_hash, target_lang)
DO UPDATE SET
	source_lang = EXCLUDED.source_lang,
	translated_text = EXCLUDED.translated_text,
	provider_name = EXCLUDED.provider_name,
	model_name = EXCLUDED.model_name,
	run_id = EXCLUDED.run_id,
	batch_index = EXCLUDED.batch_index,
	created_at = now()
`

	return p.WithTx(ctx, func(tx Conn) error {
		for _, item := range items {
			hash := item.ContentHash
			sourceLang := strings.TrimSpace(item.SourceLang)
			if sourceLang == "" {
				sourceLang = "und"
			}
			if _, err := tx.Exec(
				ctx,
				q,
				item.ReviewID,
				hash[:],
				item.TargetLang,
				sourceLang,
				item.OriginalText,
				item.TranslatedText,
				item.ProviderName,
				item.ModelName,
				item.RunID,
				item.BatchIndex,
			); err != nil {
				return fmt.Errorf("upsert review translation review_id=%d: %w", item.ReviewID, err)
			}
		}
		return nil
	})
}
