package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/staylens/internal/auth"
	"horse.fit/staylens/internal/batch"
	"horse.fit/staylens/internal/db"
	"horse.fit/staylens/internal/translation"
)

const maxTranslateBodyBytes = 4 << 20

type translateRequest struct {
	Texts        []string `json:"texts"`
	TargetLang   string   `json:"target_lang"`
	SourceLang   string   `json:"source_lang"`
	Provider     string   `json:"provider"`
	MaxChars     int      `json:"max_chars"`
	MaxBatchSize int      `json:"max_batch_size"`
}

func (s *Server) requireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.opts.APITokenHash == "" {
				return next(c)
			}
			token, ok := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok || !auth.VerifyToken(token, s.opts.APITokenHash) {
				return failUnauthorized(c)
			}
			return next(c)
		}
	}
}

func (s *Server) handleTranslate(c echo.Context) error {
	if s.manager == nil {
		return failUnavailable(c, "Translation is not configured")
	}

	var req translateRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failField(c, "body", err.Error())
	}
	if len(req.Texts) == 0 {
		return failField(c, "texts", "is required")
	}
	if strings.TrimSpace(req.TargetLang) == "" {
		return failField(c, "target_lang", "is required")
	}
	if req.MaxChars < 0 || req.MaxBatchSize < 0 {
		return failField(c, "limits", "must be >= 1 when set")
	}

	texts, stats, err := s.manager.TranslateTexts(c.Request().Context(), req.Texts, translation.RunOptions{
		TargetLang:   req.TargetLang,
		SourceLang:   req.SourceLang,
		Provider:     req.Provider,
		MaxChars:     req.MaxChars,
		MaxBatchSize: req.MaxBatchSize,
	})
	if err != nil {
		return s.translateError(c, err, stats)
	}

	return success(c, map[string]any{
		"texts": texts,
		"stats": stats,
	})
}

func (s *Server) translateError(c echo.Context, err error, stats translation.RunStats) error {
	var configErr *batch.ConfigurationError
	if errors.As(err, &configErr) {
		return failField(c, configErr.Field, configErr.Error())
	}

	var remoteErr *batch.RemoteCallError
	if errors.As(err, &remoteErr) {
		s.logger.Warn().
			Err(remoteErr.Err).
			Int("batch_index", remoteErr.BatchIndex).
			Int("translated", remoteErr.Translated).
			Msg("translate request failed")
		var statusErr *translation.StatusError
		retryable := errors.As(remoteErr, &statusErr) && statusErr.Retryable()
		return failUpstream(c, remoteErr.BatchIndex, remoteErr.Translated, retryable, stats)
	}

	if errors.Is(err, translation.ErrUnknownProvider) {
		return failField(c, "provider", err.Error())
	}
	if errors.Is(err, translation.ErrTargetLangRequired) {
		return failField(c, "target_lang", err.Error())
	}

	s.logger.Error().Err(err).Msg("translate request failed")
	return internalError(c, "Failed to translate texts")
}

func (s *Server) handleLanguages(c echo.Context) error {
	providers := []string{}
	defaultProvider := ""
	if s.registry != nil {
		providers = s.registry.ProviderNames()
		defaultProvider = s.registry.DefaultProvider()
	}
	return success(c, map[string]any{
		"items":            translation.TranslationLanguageOptions(s.registry),
		"providers":        providers,
		"default_provider": defaultProvider,
	})
}

func (s *Server) handleRuns(c echo.Context) error {
	if s.runs == nil {
		return failUnavailable(c, "Translation cache is not configured")
	}
	limit, err := parsePositiveInt(c.QueryParam("limit"), db.DefaultRunListLimit, 1, 500)
	if err != nil {
		return failField(c, "limit", err.Error())
	}

	ctx := c.Request().Context()
	runs, err := s.runs.ListTranslationRuns(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("list translation runs failed")
		return internalError(c, "Failed to load translation runs")
	}
	stats, err := s.runs.TranslationStats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("query translation stats failed")
		return internalError(c, "Failed to load translation stats")
	}
	return success(c, map[string]any{
		"items": runs,
		"stats": stats,
		"limit": limit,
	})
}

func decodeJSONBody(c echo.Context, dest any) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxTranslateBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required")
		}
		return fmt.Errorf("invalid JSON: %v", err)
	}
	if decoder.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}
