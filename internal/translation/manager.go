package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"horse.fit/staylens/internal/batch"
	"horse.fit/staylens/internal/dataset"
	"horse.fit/staylens/internal/db"
	"horse.fit/staylens/internal/globaltime"
	"horse.fit/staylens/internal/langdetect"
)

var ErrTargetLangRequired = errors.New("target language is required")

// StoreError is a cache write that failed after the provider translated the batch.
// Translated counts the items translated in the run, the unsaved batch included.
type StoreError struct {
	BatchIndex int
	Translated int
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store batch %d: %v", e.BatchIndex, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Per-review outcomes.
const (
	StatusTranslated   = "translated"
	StatusCached       = "cached"
	StatusSameLanguage = "same_language"
	StatusEmpty        = "empty"
	StatusPlanned      = "planned"
)

// Store is the persistent translation cache. *db.Pool implements it.
type Store interface {
	LookupReviewTranslations(ctx context.Context, keys []db.ReviewTranslationKey, targetLang string) (map[db.ReviewTranslationKey]db.CachedReviewTranslation, error)
	UpsertReviewTranslations(ctx context.Context, items []db.UpsertReviewTranslationParams) error
	StartTranslationRun(ctx context.Context, params db.StartTranslationRunParams) error
	FinishTranslationRun(ctx context.Context, params db.FinishTranslationRunParams) error
}

// RunOptions controls translation execution. Zero limits fall back to the provider's.
type RunOptions struct {
	TargetLang   string
	SourceLang   string
	Provider     string
	MaxChars     int
	MaxBatchSize int
	Force        bool
	DryRun       bool
}

// RunStats reports translation execution counters.
type RunStats struct {
	Total      int `json:"total"`
	Translated int `json:"translated"`
	Cached     int `json:"cached"`
	Skipped    int `json:"skipped"`
	Batches    int `json:"batches"`
}

// ReviewTranslation is the outcome for one input review.
type ReviewTranslation struct {
	ReviewID       int64  `json:"review_id"`
	ListingID      int64  `json:"listing_id"`
	SourceLang     string `json:"source_lang"`
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	Status         string `json:"status"`
}

// RunResult is returned by TranslateReviews. Translations is aligned with the input.
type RunResult struct {
	RunID        string              `json:"run_id"`
	ProviderName string              `json:"provider_name"`
	TargetLang   string              `json:"target_lang"`
	Limits       batch.Limits        `json:"limits"`
	Stats        RunStats            `json:"stats"`
	Translations []ReviewTranslation `json:"translations"`
	// Plan is only set for dry runs.
	Plan []batch.Batch `json:"-"`
}

// Manager coordinates provider calls and persistent translation caching.
type Manager struct {
	store    Store
	registry *Registry
	detect   func(string) string
	logger   zerolog.Logger
}

type ManagerOption func(*Manager)

// WithLogger sets the logger used for run and batch progress.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDetector replaces lingua language detection.
func WithDetector(detect func(string) string) ManagerOption {
	return func(m *Manager) {
		if detect != nil {
			m.detect = detect
		}
	}
}

// NewManager builds a manager. A nil store disables caching and run bookkeeping.
func NewManager(store Store, registry *Registry, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		registry: registry,
		detect:   langdetect.DetectISO6391,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) DefaultProvider() string {
	if m == nil || m.registry == nil {
		return ""
	}
	return m.registry.DefaultProvider()
}

// TranslateReviews cleans, detects, consults the cache and batch-translates review
// comments. Each successful batch is written to the store before the next one is
// sent, so a failed run can be resumed by running it again.
func (m *Manager) TranslateReviews(ctx context.Context, reviews []dataset.Review, opts RunOptions) (*RunResult, error) {
	if m == nil {
		return nil, fmt.Errorf("translation manager is not initialized")
	}
	targetLang := normalizeLangCode(opts.TargetLang)
	if targetLang == "" {
		return nil, ErrTargetLangRequired
	}
	provider, err := m.resolveProvider(opts.Provider)
	if err != nil {
		return nil, err
	}
	limits := opts.limits(provider)
	if err := limits.Validate(); err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:        ulid.Make().String(),
		ProviderName: provider.Name(),
		TargetLang:   targetLang,
		Limits:       limits,
		Translations: make([]ReviewTranslation, len(reviews)),
	}
	logger := m.logger.With().
		Str("run_id", result.RunID).
		Str("provider", result.ProviderName).
		Str("target_lang", targetLang).
		Logger()

	pending := make([]int, 0, len(reviews))
	for idx, review := range reviews {
		result.Stats.Total++
		text := CleanComment(review.Comments)
		row := ReviewTranslation{
			ReviewID:     review.ID,
			ListingID:    review.ListingID,
			OriginalText: text,
		}
		if text == "" {
			row.Status = StatusEmpty
			result.Translations[idx] = row
			result.Stats.Skipped++
			continue
		}

		row.SourceLang = normalizeLangCode(review.Lang)
		if row.SourceLang == "" {
			row.SourceLang = normalizeLangCode(m.detect(text))
		}
		if shouldSkipTranslation(row.SourceLang, targetLang) {
			row.Status = StatusSameLanguage
			row.TranslatedText = text
			result.Translations[idx] = row
			result.Stats.Skipped++
			continue
		}

		result.Translations[idx] = row
		pending = append(pending, idx)
	}

	if m.store != nil && !opts.Force && len(pending) > 0 {
		pending, err = m.applyCache(ctx, result, pending)
		if err != nil {
			return nil, err
		}
	}

	texts := make([]string, len(pending))
	for i, idx := range pending {
		texts[i] = result.Translations[idx].OriginalText
	}

	if opts.DryRun {
		plan, err := batch.Plan(texts, limits)
		if err != nil {
			return nil, err
		}
		for _, idx := range pending {
			result.Translations[idx].Status = StatusPlanned
		}
		result.Plan = plan
		result.Stats.Batches = len(plan)
		logger.Info().
			Int("pending", len(texts)).
			Int("batches", len(plan)).
			Msg("dry run planned")
		return result, nil
	}

	if m.store != nil {
		if err := m.store.StartTranslationRun(ctx, db.StartTranslationRunParams{
			RunID:        result.RunID,
			ProviderName: result.ProviderName,
			TargetLang:   targetLang,
			StartedAt:    globaltime.UTC(),
		}); err != nil {
			return nil, fmt.Errorf("start translation run: %w", err)
		}
	}

	modelName := modelNameFromProvider(provider)
	offset := 0
	call := func(ctx context.Context, index int, items []string) ([]string, error) {
		resp, err := provider.TranslateBatch(ctx, BatchRequest{
			Texts:      items,
			SourceLang: opts.SourceLang,
			TargetLang: targetLang,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Texts) != len(items) {
			return nil, fmt.Errorf("%w: sent %d, got %d", batch.ErrResultCountMismatch, len(items), len(resp.Texts))
		}

		upserts := make([]db.UpsertReviewTranslationParams, 0, len(items))
		for j := range items {
			row := &result.Translations[pending[offset+j]]
			if row.SourceLang == "" && j < len(resp.DetectedLangs) {
				row.SourceLang = resp.DetectedLangs[j]
			}
			batchIndex := index
			runID := result.RunID
			upserts = append(upserts, db.UpsertReviewTranslationParams{
				ReviewID:       row.ReviewID,
				ContentHash:    db.HashContent(row.OriginalText),
				TargetLang:     targetLang,
				SourceLang:     row.SourceLang,
				OriginalText:   row.OriginalText,
				TranslatedText: strings.TrimSpace(resp.Texts[j]),
				ProviderName:   result.ProviderName,
				ModelName:      modelName,
				RunID:          &runID,
				BatchIndex:     &batchIndex,
			})
		}
		if m.store != nil {
			if err := m.store.UpsertReviewTranslations(ctx, upserts); err != nil {
				return nil, &StoreError{BatchIndex: index, Translated: offset + len(items), Err: err}
			}
		}
		offset += len(items)
		return resp.Texts, nil
	}

	observe := func(report batch.Report) {
		result.Stats.Batches++
		logger.Debug().
			Int("batch", report.Index).
			Int("size", report.Size).
			Int("chars", report.Chars).
			Dur("elapsed", report.Elapsed).
			Msg("batch translated")
	}

	translated, err := batch.SubmitWithObserver(ctx, texts, limits, call, observe)
	if err != nil {
		result.Stats.Translated = offset
		// The provider call worked; report the cache failure on its own.
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			result.Stats.Translated = storeErr.Translated
			err = storeErr
		}
		m.finishRun(ctx, logger, result, err)
		return nil, err
	}

	for i, idx := range pending {
		row := &result.Translations[idx]
		row.TranslatedText = strings.TrimSpace(translated[i])
		row.Status = StatusTranslated
	}
	result.Stats.Translated = len(translated)
	m.finishRun(ctx, logger, result, nil)

	logger.Info().
		Int("total", result.Stats.Total).
		Int("translated", result.Stats.Translated).
		Int("cached", result.Stats.Cached).
		Int("skipped", result.Stats.Skipped).
		Int("batches", result.Stats.Batches).
		Msg("translation run finished")
	return result, nil
}

// TranslateTexts batch-translates texts without cache or detection.
func (m *Manager) TranslateTexts(ctx context.Context, texts []string, opts RunOptions) ([]string, RunStats, error) {
	stats := RunStats{Total: len(texts)}
	if m == nil {
		return nil, stats, fmt.Errorf("translation manager is not initialized")
	}
	targetLang := normalizeLangCode(opts.TargetLang)
	if targetLang == "" {
		return nil, stats, ErrTargetLangRequired
	}
	provider, err := m.resolveProvider(opts.Provider)
	if err != nil {
		return nil, stats, err
	}

	call := func(ctx context.Context, _ int, items []string) ([]string, error) {
		resp, err := provider.TranslateBatch(ctx, BatchRequest{
			Texts:      items,
			SourceLang: opts.SourceLang,
			TargetLang: targetLang,
		})
		if err != nil {
			return nil, err
		}
		return resp.Texts, nil
	}
	out, err := batch.SubmitWithObserver(ctx, texts, opts.limits(provider), call, func(batch.Report) {
		stats.Batches++
	})
	if err != nil {
		var remoteErr *batch.RemoteCallError
		if errors.As(err, &remoteErr) {
			stats.Translated = remoteErr.Translated
		}
		return nil, stats, err
	}
	stats.Translated = len(out)
	return out, stats, nil
}

func (m *Manager) applyCache(ctx context.Context, result *RunResult, pending []int) ([]int, error) {
	keys := make([]db.ReviewTranslationKey, 0, len(pending))
	for _, idx := range pending {
		row := result.Translations[idx]
		keys = append(keys, db.ReviewTranslationKey{
			ReviewID:    row.ReviewID,
			ContentHash: db.HashContent(row.OriginalText),
		})
	}

	cached, err := m.store.LookupReviewTranslations(ctx, keys, result.TargetLang)
	if err != nil {
		return nil, fmt.Errorf("lookup cached translations: %w", err)
	}

	remaining := pending[:0]
	for i, idx := range pending {
		hit, ok := cached[keys[i]]
		if !ok {
			remaining = append(remaining, idx)
			continue
		}
		row := &result.Translations[idx]
		row.TranslatedText = hit.TranslatedText
		row.Status = StatusCached
		if row.SourceLang == "" {
			row.SourceLang = hit.SourceLang
		}
		result.Stats.Cached++
	}
	return remaining, nil
}

func (m *Manager) finishRun(ctx context.Context, logger zerolog.Logger, result *RunResult, runErr error) {
	if m.store == nil {
		if runErr != nil {
			logger.Error().Err(runErr).Msg("translation run failed")
		}
		return
	}

	params := db.FinishTranslationRunParams{
		RunID:      result.RunID,
		Status:     db.RunStatusSucceeded,
		Total:      result.Stats.Total,
		Translated: result.Stats.Translated,
		Cached:     result.Stats.Cached,
		Skipped:    result.Stats.Skipped,
		Batches:    result.Stats.Batches,
		FinishedAt: globaltime.UTC(),
	}
	if runErr != nil {
		params.Status = db.RunStatusFailed
		msg := runErr.Error()
		params.ErrorMessage = &msg
		var remoteErr *batch.RemoteCallError
		if errors.As(runErr, &remoteErr) {
			failed := remoteErr.BatchIndex
			params.FailedBatchIndex = &failed
		}
		logger.Error().Err(runErr).Int("translated", result.Stats.Translated).Msg("translation run failed")
	}

	// The run row is still written when the caller's context was cancelled.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := m.store.FinishTranslationRun(finishCtx, params); err != nil {
		if db.IsNoRows(err) {
			logger.Warn().Str("status", params.Status).Msg("translation run row not found; outcome not recorded")
			return
		}
		logger.Error().Err(err).Msg("record translation run outcome")
	}
}

func (m *Manager) resolveProvider(requested string) (Provider, error) {
	if m == nil || m.registry == nil {
		return nil, fmt.Errorf("translation provider registry is not initialized")
	}
	return m.registry.Provider(requested)
}

func (o RunOptions) limits(provider Provider) batch.Limits {
	limits := LimitsFor(provider)
	if o.MaxChars != 0 {
		limits.MaxChars = o.MaxChars
	}
	if o.MaxBatchSize != 0 {
		limits.MaxBatchSize = o.MaxBatchSize
	}
	return limits
}

type modelNameProvider interface {
	ModelName() string
}

func modelNameFromProvider(provider Provider) *string {
	namedProvider, ok := provider.(modelNameProvider)
	if !ok {
		return nil
	}
	model := strings.TrimSpace(namedProvider.ModelName())
	if model == "" {
		return nil
	}
	return &model
}
