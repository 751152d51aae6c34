package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"horse.fit/staylens/internal/globaltime"
)

// StartTranslationRunParams controls translation run creation.
type StartTranslationRunParams struct {
	RunID        string
	ProviderName string
	TargetLang   string
	DryRun       bool
	StartedAt    time.Time
}

// FinishTranslationRunParams records the outcome of a run.
type FinishTranslationRunParams struct {
	RunID            string
	Status           string
	Total            int
	Translated       int
	Cached           int
	Skipped          int
	Batches          int
	FailedBatchIndex *int
	ErrorMessage     *string
	FinishedAt       time.Time
}

// TranslationRunRow is the read model for the runs command and API.
type TranslationRunRow struct {
	RunID            string     `json:"run_id"`
	ProviderName     string     `json:"provider_name"`
	TargetLang       string     `json:"target_lang"`
	DryRun           bool       `json:"dry_run"`
	Status           string     `json:"status"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	Total            int        `json:"total"`
	Translated       int        `json:"translated"`
	Cached           int        `json:"cached"`
	Skipped          int        `json:"skipped"`
	Batches          int        `json:"batches"`
	FailedBatchIndex *int       `json:"failed_batch_index,omitempty"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
}

// TargetLangCount is the number of cached translations per target language.
type TargetLangCount struct {
	TargetLang   string `json:"target_lang"`
	Translations int64  `json:"translations"`
	Reviews      int64  `json:"reviews"`
}

// TranslationStats summarizes the translation cache.
type TranslationStats struct {
	Targets       []TargetLangCount `json:"targets"`
	Translations  int64             `json:"translations"`
	Runs          int64             `json:"runs"`
	FailedRuns    int64             `json:"failed_runs"`
	LastRunAt     *time.Time        `json:"last_run_at,omitempty"`
	LastRunStatus *string           `json:"last_run_status,omitempty"`
}

const DefaultRunListLimit = 20

func (p *Pool) StartTranslationRun(ctx context.Context, params StartTranslationRunParams) error {
	runID := strings.TrimSpace(params.RunID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}
	startedAt := params.StartedAt
	if startedAt.IsZero() {
		startedAt = globaltime.UTC()
	}

	const q = `
INSERT INTO staylens.translation_runs (
	run_id,
	provider_name,
	target_lang,
	dry_run,
	started_at,
	status
)
VALUES ($1, $2, $3, $4, $5, 'running')
`

	if _, err := p.Exec(ctx, q, runID, params.ProviderName, params.TargetLang, params.DryRun, startedAt.UTC()); err != nil {
		return fmt.Errorf("insert translation run: %w", err)
	}
	return nil
}

func (p *Pool) FinishTranslationRun(ctx context.Context, params FinishTranslationRunParams) error {
	status := strings.TrimSpace(params.Status)
	switch status {
	case RunStatusSucceeded, RunStatusFailed:
	default:
		return fmt.Errorf("invalid run status %q", params.Status)
	}
	finishedAt := params.FinishedAt
	if finishedAt.IsZero() {
		finishedAt = globaltime.UTC()
	}

	const q = `
UPDATE staylens.translation_runs
SET
	status = $2::text::staylens.translation_run_status,
	finished_at = $3,
	total = $4,
	translated = $5,
	cached = $6,
	skipped = $7,
	batches = $8,
	failed_batch_index = $9,
	error_message = $10
WHERE run_id = $1
`

	affected, err := p.Exec(
		ctx,
		q,
		params.RunID,
		status,
		finishedAt.UTC(),
		params.Total,
		params.Translated,
		params.Cached,
		params.Skipped,
		params.Batches,
		params.FailedBatchIndex,
		params.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("update translation run: %w", err)
	}
	if affected == 0 {
		return ErrNoRows
	}
	return nil
}

func (p *Pool) ListTranslationRuns(ctx context.Context, limit int) ([]TranslationRunRow, error) {
	if limit <= 0 {
		limit = DefaultRunListLimit
	}

	const q = `
SELECT
	r.run_id,
	r.provider_name,
	r.target_lang,
	r.dry_run,
	r.status::text,
	r.started_at,
	r.finished_at,
	r.total,
	r.translated,
	r.cached,
	r.skipped,
	r.batches,
	r.failed_batch_index,
	r.error_message
FROM staylens.translation_runs r
ORDER BY r.started_at DESC, r.run_id DESC
LIMIT $1
`

	rows, err := p.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query translation runs: %w", err)
	}
	defer rows.Close()

	items := make([]TranslationRunRow, 0, limit)
	for rows.Next() {
		var row TranslationRunRow
		if err := rows.Scan(
			&row.RunID,
			&row.ProviderName,
			&row.TargetLang,
			&row.DryRun,
			&row.Status,
			&row.StartedAt,
			&row.FinishedAt,
			&row.Total,
			&row.Translated,
			&row.Cached,
			&row.Skipped,
			&row.Batches,
			&row.FailedBatchIndex,
			&row.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan translation run row: %w", err)
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translation run rows: %w", err)
	}

	return items, nil
}

// TranslationStats returns per-target cache counts plus run totals.
func (p *Pool) TranslationStats(ctx context.Context) (*TranslationStats, error) {
	stats := &TranslationStats{Targets: make([]TargetLangCount, 0, 8)}

	const targetsQuery = `
SELECT
	t.target_lang,
	COUNT(*)::BIGINT AS translations,
	COUNT(DISTINCT t.review_id)::BIGINT AS reviews
FROM staylens.review_translations t
GROUP BY t.target_lang
ORDER BY translations DESC, t.target_lang ASC
`

	rows, err := p.Query(ctx, targetsQuery)
	if err != nil {
		return nil, fmt.Errorf("query translation target counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row TargetLangCount
		if err := rows.Scan(&row.TargetLang, &row.Translations, &row.Reviews); err != nil {
			return nil, fmt.Errorf("scan translation target count: %w", err)
		}
		stats.Targets = append(stats.Targets, row)
		stats.Translations += row.Translations
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translation target counts: %w", err)
	}

	const runsQuery = `
SELECT
	COUNT(*)::BIGINT AS runs,
	COUNT(*) FILTER (WHERE r.status = 'failed')::BIGINT AS failed_runs,
	MAX(r.started_at) AS last_run_at,
	(
		SELECT latest.status::text
		FROM staylens.translation_runs latest
		ORDER BY latest.started_at DESC, latest.run_id DESC
		LIMIT 1
	) AS last_run_status
FROM staylens.translation_runs r
`

	if err := p.QueryRow(ctx, runsQuery).Scan(
		&stats.Runs,
		&stats.FailedRuns,
		&stats.LastRunAt,
		&stats.LastRunStatus,
	); err != nil {
		return nil, fmt.Errorf("query translation run totals: %w", err)
	}

	return stats, nil
}
