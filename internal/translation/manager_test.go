package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/staylens/internal/batch"
	"horse.fit/staylens/internal/dataset"
	"horse.fit/staylens/internal/db"
)

type stubStore struct {
	cached       map[db.ReviewTranslationKey]db.CachedReviewTranslation
	lookupCalls  int
	upsertCalls  [][]db.UpsertReviewTranslationParams
	upsertErr    error
	started      []db.StartTranslationRunParams
	finished     []db.FinishTranslationRunParams
	finishErr    error
	lookupTarget string
}

func (s *stubStore) LookupReviewTranslations(
	_ context.Context,
	keys []db.ReviewTranslationKey,
	targetLang string,
) (map[db.ReviewTranslationKey]db.CachedReviewTranslation, error) {
	s.lookupCalls++
	s.lookupTarget = targetLang
	out := make(map[db.ReviewTranslationKey]db.CachedReviewTranslation)
	for _, key := range keys {
		if row, ok := s.cached[key]; ok {
			out[key] = row
		}
	}
	return out, nil
}

func (s *stubStore) UpsertReviewTranslations(_ context.Context, items []db.UpsertReviewTranslationParams) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upsertCalls = append(s.upsertCalls, items)
	return nil
}

func (s *stubStore) StartTranslationRun(_ context.Context, params db.StartTranslationRunParams) error {
	s.started = append(s.started, params)
	return nil
}

func (s *stubStore) FinishTranslationRun(_ context.Context, params db.FinishTranslationRunParams) error {
	s.finished = append(s.finished, params)
	return s.finishErr
}

// stubProvider upper-cases texts and can fail on a given call.
type stubProvider struct {
	name     string
	limits   batch.Limits
	calls    [][]string
	failCall int
	short    bool
}

func (p *stubProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	resp, err := p.TranslateBatch(ctx, BatchRequest{Texts: []string{req.Text}, TargetLang: req.TargetLang})
	if err != nil {
		return nil, err
	}
	return &TranslateResponse{Text: resp.Texts[0], TargetLang: req.TargetLang, ProviderName: p.name}, nil
}

func (p *stubProvider) TranslateBatch(_ context.Context, req BatchRequest) (*BatchResponse, error) {
	p.calls = append(p.calls, append([]string(nil), req.Texts...))
	if p.failCall > 0 && len(p.calls) == p.failCall {
		return nil, fmt.Errorf("quota exceeded")
	}
	out := make([]string, 0, len(req.Texts))
	for _, text := range req.Texts {
		out = append(out, strings.ToUpper(text))
	}
	if p.short {
		out = out[:len(out)-1]
	}
	return &BatchResponse{Texts: out, ProviderName: p.name}, nil
}

func (p *stubProvider) Name() string {
	return p.name
}

func (p *stubProvider) SupportedLanguages() []string {
	return []string{"en", "fr"}
}

func (p *stubProvider) Limits() batch.Limits {
	return p.limits
}

func newTestManager(t *testing.T, store Store, provider *stubProvider) *Manager {
	t.Helper()

	registry := NewRegistry(provider.name)
	if err := registry.Register(provider); err != nil {
		t.Fatalf("register provider: %v", err)
	}
	detect := func(text string) string {
		if strings.HasPrefix(text, "en:") {
			return "en"
		}
		return ""
	}
	return NewManager(store, registry, WithDetector(detect))
}

func testReviews() []dataset.Review {
	return []dataset.Review{
		{ID: 1, ListingID: 10, Comments: "Très bien<br/>merci", Lang: "fr"},
		{ID: 2, ListingID: 10, Comments: "   "},
		{ID: 3, ListingID: 11, Comments: "en: lovely flat"},
		{ID: 4, ListingID: 11, Comments: "sehr gut", Lang: "de"},
		{ID: 5, ListingID: 12, Comments: "muy bien", Lang: "es"},
	}
}

func TestTranslateReviews_SkipsAndTranslatesInOrder(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 2}}
	manager := newTestManager(t, store, provider)

	result, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en"})
	if err != nil {
		t.Fatalf("translate reviews: %v", err)
	}

	want := RunStats{Total: 5, Translated: 3, Cached: 0, Skipped: 2, Batches: 2}
	if result.Stats != want {
		t.Fatalf("unexpected stats: got %+v want %+v", result.Stats, want)
	}
	if len(result.Translations) != 5 {
		t.Fatalf("translations must align with input, got %d", len(result.Translations))
	}
	if got := result.Translations[0]; got.TranslatedText != "TRÈS BIEN MERCI" || got.Status != StatusTranslated {
		t.Fatalf("unexpected first translation: %+v", got)
	}
	if got := result.Translations[1]; got.Status != StatusEmpty || got.TranslatedText != "" {
		t.Fatalf("unexpected empty review outcome: %+v", got)
	}
	if got := result.Translations[2]; got.Status != StatusSameLanguage || got.TranslatedText != "en: lovely flat" {
		t.Fatalf("unexpected same-language outcome: %+v", got)
	}
	if len(provider.calls) != 2 || len(provider.calls[0]) != 2 || provider.calls[1][0] != "muy bien" {
		t.Fatalf("unexpected provider calls: %v", provider.calls)
	}

	if len(store.upsertCalls) != 2 {
		t.Fatalf("expected one upsert per batch, got %d", len(store.upsertCalls))
	}
	first := store.upsertCalls[0][0]
	if first.ReviewID != 1 || first.ContentHash != db.HashContent("Très bien merci") {
		t.Fatalf("unexpected upsert identity: %+v", first)
	}
	if first.RunID == nil || *first.RunID != result.RunID || first.BatchIndex == nil || *first.BatchIndex != 0 {
		t.Fatalf("unexpected upsert run metadata: %+v", first)
	}
	if len(store.started) != 1 || len(store.finished) != 1 || store.finished[0].Status != db.RunStatusSucceeded {
		t.Fatalf("unexpected run bookkeeping: started=%v finished=%v", store.started, store.finished)
	}
	if len(result.RunID) != 26 {
		t.Fatalf("expected ULID run id, got %q", result.RunID)
	}
}

func TestTranslateReviews_UsesCache(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		cached: map[db.ReviewTranslationKey]db.CachedReviewTranslation{
			{ReviewID: 4, ContentHash: db.HashContent("sehr gut")}: {ReviewID: 4, TranslatedText: "very good", SourceLang: "de"},
		},
	}
	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 10}}
	manager := newTestManager(t, store, provider)

	result, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "EN"})
	if err != nil {
		t.Fatalf("translate reviews: %v", err)
	}
	if result.Stats.Cached != 1 || result.Stats.Translated != 2 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
	if got := result.Translations[3]; got.Status != StatusCached || got.TranslatedText != "very good" {
		t.Fatalf("unexpected cached outcome: %+v", got)
	}
	if store.lookupTarget != "en" {
		t.Fatalf("expected normalized target for lookup, got %q", store.lookupTarget)
	}

	forced, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en", Force: true})
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if forced.Stats.Cached != 0 || forced.Stats.Translated != 3 {
		t.Fatalf("force must bypass the cache: %+v", forced.Stats)
	}
}

func TestTranslateReviews_DryRunPlansWithoutCalls(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 1}}
	manager := newTestManager(t, store, provider)

	result, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en", DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if len(provider.calls) != 0 || len(store.started) != 0 {
		t.Fatalf("dry run must not call the provider or record a run")
	}
	if result.Stats.Batches != 3 || len(result.Plan) != 3 {
		t.Fatalf("unexpected plan: stats=%+v plan=%d", result.Stats, len(result.Plan))
	}
	if result.Translations[0].Status != StatusPlanned {
		t.Fatalf("expected planned status, got %q", result.Translations[0].Status)
	}
}

func TestTranslateReviews_PropagatesRemoteCallError(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 2}, failCall: 2}
	manager := newTestManager(t, store, provider)

	result, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en"})
	if result != nil {
		t.Fatalf("expected no result on failure")
	}
	var remoteErr *batch.RemoteCallError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
	if remoteErr.BatchIndex != 1 || remoteErr.Translated != 2 {
		t.Fatalf("unexpected failure position: %+v", remoteErr)
	}
	if len(store.upsertCalls) != 1 {
		t.Fatalf("the successful batch must be stored, got %d upserts", len(store.upsertCalls))
	}
	if len(store.finished) != 1 || store.finished[0].Status != db.RunStatusFailed {
		t.Fatalf("expected failed run to be recorded: %+v", store.finished)
	}
	if idx := store.finished[0].FailedBatchIndex; idx == nil || *idx != 1 {
		t.Fatalf("unexpected failed batch index: %v", idx)
	}
}

func TestTranslateReviews_MissingRunRowIsLogged(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	store := &stubStore{finishErr: fmt.Errorf("finish run: %w", db.ErrNoRows)}
	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 10}}
	manager := newTestManager(t, store, provider)
	WithLogger(zerolog.New(&logs))(manager)

	result, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en"})
	if err != nil {
		t.Fatalf("a lost run row must not fail the run: %v", err)
	}
	if result.Stats.Translated != 3 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
	out := logs.String()
	if !strings.Contains(out, "translation run row not found") || !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("expected missing run row warning, got %s", out)
	}
	if strings.Contains(out, "record translation run outcome") {
		t.Fatalf("missing row must not be logged as a store error: %s", out)
	}
}

func TestTranslateReviews_StoreFailureIsNotRemoteCallError(t *testing.T) {
	t.Parallel()

	store := &stubStore{upsertErr: errors.New("pq: connection refused")}
	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 1}}
	manager := newTestManager(t, store, provider)

	result, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en"})
	if result != nil {
		t.Fatalf("expected no result on failure")
	}
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	var remoteErr *batch.RemoteCallError
	if errors.As(err, &remoteErr) || errors.Is(err, batch.ErrRemoteCall) {
		t.Fatalf("cache write failure must not be reported as a remote call failure: %v", err)
	}
	if storeErr.BatchIndex != 0 || storeErr.Translated != 1 {
		t.Fatalf("unexpected failure position: %+v", storeErr)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected store cause in message, got %v", err)
	}
	if len(provider.calls) != 1 {
		t.Fatalf("expected the run to stop after the first batch, got %d calls", len(provider.calls))
	}
	if len(store.finished) != 1 || store.finished[0].Status != db.RunStatusFailed {
		t.Fatalf("expected failed run to be recorded: %+v", store.finished)
	}
	if store.finished[0].FailedBatchIndex != nil {
		t.Fatalf("no provider batch failed, got failed batch index %d", *store.finished[0].FailedBatchIndex)
	}
	if store.finished[0].Translated != 1 {
		t.Fatalf("expected the translated batch to be counted, got %d", store.finished[0].Translated)
	}
}

func TestTranslateReviews_ResultCountMismatch(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 5}, short: true}
	manager := newTestManager(t, nil, provider)

	_, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en"})
	if !errors.Is(err, batch.ErrResultCountMismatch) || !errors.Is(err, batch.ErrRemoteCall) {
		t.Fatalf("expected result count mismatch remote error, got %v", err)
	}
}

func TestTranslateReviews_RejectsBadLimits(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 100, MaxBatchSize: 5}}
	manager := newTestManager(t, nil, provider)

	_, err := manager.TranslateReviews(context.Background(), testReviews(), RunOptions{TargetLang: "en", MaxChars: -1})
	if !errors.Is(err, batch.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(provider.calls) != 0 {
		t.Fatalf("did not expect provider calls")
	}
}

func TestTranslateTexts(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{name: "stub", limits: batch.Limits{MaxChars: 5, MaxBatchSize: 10}}
	manager := newTestManager(t, nil, provider)

	out, stats, err := manager.TranslateTexts(context.Background(), []string{"abc", "de", "fghij"}, RunOptions{TargetLang: "fr"})
	if err != nil {
		t.Fatalf("translate texts: %v", err)
	}
	if strings.Join(out, ",") != "ABC,DE,FGHIJ" {
		t.Fatalf("unexpected output: %v", out)
	}
	if stats.Batches != 2 || stats.Translated != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	empty, _, err := manager.TranslateTexts(context.Background(), nil, RunOptions{TargetLang: "fr"})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil output, got %v %v", empty, err)
	}
}

func TestShouldSkipTranslation(t *testing.T) {
	t.Parallel()

	if !shouldSkipTranslation("en", "en") {
		t.Fatalf("expected same language pair to be skipped")
	}
	if shouldSkipTranslation("und", "en") {
		t.Fatalf("did not expect und->en to be skipped")
	}
	if shouldSkipTranslation("", "en") {
		t.Fatalf("did not expect empty source language to be skipped")
	}
}

func TestCleanComment(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Great stay!<br/><br/>Would return":   "Great stay! Would return",
		"  plain   text \n here ":            "plain text here",
		"Tom &amp; Jerry&#39;s <b>place</b>": "Tom & Jerry's place",
		"":                                    "",
	}
	for in, want := range cases {
		if got := CleanComment(in); got != want {
			t.Fatalf("CleanComment(%q) = %q, want %q", in, got, want)
		}
	}
}
