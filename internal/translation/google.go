package translation

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"horse.fit/staylens/internal/batch"
	"horse.fit/staylens/internal/globaltime"
)

const (
	DefaultGoogleEndpoint = "https://translation.googleapis.com"

	// Per-request quotas of the v2 translate method.
	GoogleMaxSegments = 120
	GoogleMaxChars    = 10000
)

// GoogleOptions configures the Cloud Translation v2 client.
type GoogleOptions struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

// GoogleProvider calls the Cloud Translation v2 REST API.
type GoogleProvider struct {
	apiKey      string
	endpointURL string
	client      *http.Client
}

func NewGoogleProvider(opts GoogleOptions) *GoogleProvider {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &GoogleProvider{
		apiKey:      strings.TrimSpace(opts.APIKey),
		endpointURL: endpoint + "/language/translate/v2",
		client:      client,
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

// SupportedLanguages is left empty; the API accepts far more targets than the
// prompt-based providers and rejects unknown ones itself.
func (p *GoogleProvider) SupportedLanguages() []string {
	return []string{}
}

func (p *GoogleProvider) Limits() batch.Limits {
	return batch.Limits{MaxChars: GoogleMaxChars, MaxBatchSize: GoogleMaxSegments}
}

func (p *GoogleProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	resp, err := p.TranslateBatch(ctx, BatchRequest{
		Texts:      []string{req.Text},
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		return nil, err
	}

	sourceLang := normalizeLangCode(req.SourceLang)
	if len(resp.DetectedLangs) == 1 && resp.DetectedLangs[0] != "" {
		sourceLang = resp.DetectedLangs[0]
	}
	return &TranslateResponse{
		Text:         resp.Texts[0],
		SourceLang:   sourceLang,
		TargetLang:   normalizeLangCode(req.TargetLang),
		ProviderName: resp.ProviderName,
		LatencyMs:    resp.LatencyMs,
	}, nil
}

type googleTranslateRequest struct {
	Q      []string `json:"q"`
	Target string   `json:"target"`
	Source string   `json:"source,omitempty"`
	Format string   `json:"format"`
}

type googleTranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage"`
		} `json:"translations"`
	} `json:"data"`
}

// TranslateBatch sends all texts in one call. The response is positional.
func (p *GoogleProvider) TranslateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("google provider is nil")
	}
	if p.apiKey == "" {
		return nil, fmt.Errorf("google translation API key is not configured")
	}
	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, ErrTargetLangRequired
	}
	if len(req.Texts) == 0 {
		return &BatchResponse{Texts: []string{}, ProviderName: p.Name()}, nil
	}

	payload := googleTranslateRequest{
		Q:      req.Texts,
		Target: targetLang,
		Source: normalizeLangCode(req.SourceLang),
		Format: "text",
	}
	endpoint := p.endpointURL + "?" + url.Values{"key": []string{p.apiKey}}.Encode()

	started := globaltime.Now()
	var parsed googleTranslateResponse
	if err := postJSON(ctx, p.client, "google translate", endpoint, payload, &parsed); err != nil {
		return nil, redactKey(err, p.apiKey)
	}

	translations := parsed.Data.Translations
	out := &BatchResponse{
		Texts:         make([]string, 0, len(translations)),
		DetectedLangs: make([]string, 0, len(translations)),
		ProviderName:  p.Name(),
		LatencyMs:     globaltime.Since(started).Milliseconds(),
	}
	for _, item := range translations {
		// format=text should come back unescaped, but older deployments still
		// return entities for apostrophes.
		out.Texts = append(out.Texts, html.UnescapeString(item.TranslatedText))
		out.DetectedLangs = append(out.DetectedLangs, normalizeLangCode(item.DetectedSourceLanguage))
	}
	return out, nil
}

// redactedError hides the API key in the message and keeps the cause reachable.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string {
	return e.msg
}

func (e *redactedError) Unwrap() error {
	return e.err
}

// redactKey keeps the API key out of url.Error messages.
func redactKey(err error, key string) error {
	if err == nil || key == "" {
		return err
	}
	msg := err.Error()
	if !strings.Contains(msg, key) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(msg, key, "REDACTED"), err: err}
}
