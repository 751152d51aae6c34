package translation

import (
	"context"

	"horse.fit/staylens/internal/batch"
)

// Provider translates free-form text between languages.
type Provider interface {
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	// TranslateBatch returns exactly one text per input, in input order.
	TranslateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
	Name() string
	SupportedLanguages() []string
}

// Limited is implemented by providers with per-call quotas.
type Limited interface {
	Limits() batch.Limits
}

// TranslateRequest describes one translation request.
type TranslateRequest struct {
	Text       string
	SourceLang string // ISO 639-1 (for example: "fr", "en"); empty lets the provider detect
	TargetLang string
}

// TranslateResponse contains translated text and provider metadata.
type TranslateResponse struct {
	Text         string
	SourceLang   string
	TargetLang   string
	ProviderName string
	LatencyMs    int64
}

// BatchRequest is one provider call carrying several texts.
type BatchRequest struct {
	Texts      []string
	SourceLang string
	TargetLang string
}

// BatchResponse mirrors BatchRequest.Texts. DetectedLangs is empty or aligned with Texts.
type BatchResponse struct {
	Texts         []string
	DetectedLangs []string
	ProviderName  string
	LatencyMs     int64
}

// DefaultLimits are used for providers that do not publish their own.
var DefaultLimits = batch.Limits{
	MaxChars:     10000,
	MaxBatchSize: 120,
}

// LimitsFor returns the provider's published limits or DefaultLimits.
func LimitsFor(provider Provider) batch.Limits {
	if limited, ok := provider.(Limited); ok {
		return limited.Limits()
	}
	return DefaultLimits
}
