package translation

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"horse.fit/staylens/internal/batch"
	"horse.fit/staylens/internal/globaltime"
)

const (
	// DefaultLocalEndpoint points to a local OpenAI-compatible translation endpoint.
	DefaultLocalEndpoint = "http://127.0.0.1:8845/v1"
	// DefaultLocalModel is the default HY-MT model name.
	DefaultLocalModel = "tencent/HY-MT1.5-7B"

	// One chat completion per review, so batches stay small.
	LocalMaxChars     = 4000
	LocalMaxBatchSize = 16

	defaultLocalTimeout     = 120 * time.Second
	defaultLocalTemperature = 0.2
)

const reviewSystemPrompt = "You translate guest reviews of holiday rentals. Keep the " +
	"reviewer's tone, names of people and places, and emoji. Output only the translation."

// LocalOptions configures the OpenAI-compatible client.
type LocalOptions struct {
	Endpoint    string
	Model       string
	Temperature float64
	Client      *http.Client
}

// LocalProvider translates reviews with a chat-completions endpoint such as a
// vLLM or llama.cpp server running HY-MT.
type LocalProvider struct {
	endpointURL string
	model       string
	temperature float64
	client      *http.Client
}

// NewLocalProvider builds a local provider for the given endpoint and model.
func NewLocalProvider(endpoint, model string) *LocalProvider {
	return NewLocalProviderWithOptions(LocalOptions{Endpoint: endpoint, Model: model})
}

func NewLocalProviderWithOptions(opts LocalOptions) *LocalProvider {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultLocalModel
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultLocalTemperature
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultLocalTimeout}
	}
	return &LocalProvider{
		endpointURL: chatCompletionsURL(opts.Endpoint),
		model:       model,
		temperature: temperature,
		client:      client,
	}
}

func (p *LocalProvider) Name() string {
	return "local"
}

// ModelName returns the configured model identifier.
func (p *LocalProvider) ModelName() string {
	if p == nil {
		return ""
	}
	return p.model
}

func (p *LocalProvider) SupportedLanguages() []string {
	return SupportedTranslationLanguageCodes()
}

func (p *LocalProvider) Limits() batch.Limits {
	return batch.Limits{MaxChars: LocalMaxChars, MaxBatchSize: LocalMaxBatchSize}
}

// TranslateBatch sends one chat completion per text, in order. Blank texts are
// returned blank without a call.
func (p *LocalProvider) TranslateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("local provider is nil")
	}

	started := globaltime.Now()
	out := &BatchResponse{
		Texts:        make([]string, len(req.Texts)),
		ProviderName: p.Name(),
	}
	for idx, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		resp, err := p.Translate(ctx, TranslateRequest{
			Text:       text,
			SourceLang: req.SourceLang,
			TargetLang: req.TargetLang,
		})
		if err != nil {
			return nil, fmt.Errorf("translate item %d: %w", idx, err)
		}
		out.Texts[idx] = resp.Text
	}
	out.LatencyMs = globaltime.Since(started).Milliseconds()
	return out, nil
}

func (p *LocalProvider) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if p == nil {
		return nil, fmt.Errorf("local provider is nil")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	sourceLang := normalizeLangCode(req.SourceLang)
	targetLang := normalizeLangCode(req.TargetLang)
	if targetLang == "" {
		return nil, ErrTargetLangRequired
	}

	payload := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: reviewSystemPrompt},
			{Role: "user", Content: buildHYMTPrompt(text, sourceLang, targetLang)},
		},
		Temperature: p.temperature,
		TopP:        0.6,
	}

	started := globaltime.Now()
	var parsed chatResponse
	if err := postJSON(ctx, p.client, "translation endpoint", p.endpointURL, payload, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("translation response missing choices")
	}
	translated := cleanModelOutput(parsed.Choices[0].Message.Content)
	if translated == "" {
		return nil, fmt.Errorf("translation response was empty")
	}

	return &TranslateResponse{
		Text:         translated,
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		ProviderName: p.Name(),
		LatencyMs:    globaltime.Since(started).Milliseconds(),
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// HY-MT ships one prompt template for pairs involving Chinese and one for the rest.
func buildHYMTPrompt(text, sourceLang, targetLang string) string {
	target := targetLanguageLabel(targetLang)
	if sourceLang == "zh" || targetLang == "zh" {
		return fmt.Sprintf("将以下文本翻译为%s，注意只需要输出翻译后的结果，不要额外解释：\n\n%s", target.chinese, text)
	}
	return fmt.Sprintf("Translate the following segment into %s, without additional explanation.\n\n%s", target.english, text)
}

func targetLanguageLabel(lang string) languageLabel {
	if labels, ok := translationLanguageLabels[normalizeLangCode(lang)]; ok {
		return labels
	}
	fallback := strings.TrimSpace(lang)
	if fallback == "" {
		fallback = "English"
	}
	return languageLabel{english: fallback, chinese: fallback}
}

var modelOutputPrefixes = []string{"Translation:", "Translated text:", "译文：", "翻译："}

// cleanModelOutput drops the label and quotes chat models wrap around a translation.
func cleanModelOutput(raw string) string {
	out := strings.TrimSpace(raw)
	for _, prefix := range modelOutputPrefixes {
		if len(out) >= len(prefix) && strings.EqualFold(out[:len(prefix)], prefix) {
			out = strings.TrimSpace(out[len(prefix):])
			break
		}
	}
	if len(out) >= 2 {
		first, last := out[0], out[len(out)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			out = strings.TrimSpace(out[1 : len(out)-1])
		}
	}
	return out
}

// chatCompletionsURL accepts a host, a base URL or the full completions URL.
func chatCompletionsURL(raw string) string {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		endpoint = DefaultLocalEndpoint
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return DefaultLocalEndpoint + "/chat/completions"
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
	case strings.HasSuffix(path, "/v1"):
		path += "/chat/completions"
	default:
		path += "/v1/chat/completions"
	}
	parsed.Path = path
	return parsed.String()
}
