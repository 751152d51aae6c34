package httpapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/staylens/internal/analytics"
	"horse.fit/staylens/internal/geo"
	"horse.fit/staylens/internal/textstats"
)

const defaultTopNeighbourhoods = 10

func (s *Server) handleOverview(c echo.Context) error {
	return success(c, map[string]any{
		"counts":        s.snapshot.Counts,
		"review_stats":  s.snapshot.ReviewStats,
		"review_source": s.snapshot.ReviewSource,
	})
}

func (s *Server) handlePriceTrends(c echo.Context) error {
	host := strings.TrimSpace(c.QueryParam("host"))
	items := s.snapshot.WeeklyPrices
	if host != "" {
		filtered := make([]analytics.WeeklyPrice, 0, len(items))
		for _, item := range items {
			if strings.EqualFold(item.HostName, host) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	return success(c, map[string]any{
		"items": items,
		"host":  host,
	})
}

func (s *Server) handleNeighbourhoodPrices(c echo.Context) error {
	return s.choropleth(c, s.snapshot.Prices, geo.YlGn)
}

func (s *Server) handleNeighbourhoodScores(c echo.Context) error {
	return s.choropleth(c, s.snapshot.ReviewScores, geo.ScoreColors)
}

func (s *Server) choropleth(c echo.Context, values []analytics.NeighbourhoodValue, colors []string) error {
	top, err := parsePositiveInt(c.QueryParam("top"), defaultTopNeighbourhoods, 1, 500)
	if err != nil {
		return failField(c, "top", err.Error())
	}
	if s.snapshot.Neighbourhoods == nil {
		return failNotFound(c, "Neighbourhood boundaries are not loaded")
	}

	valueMap := analytics.ValueMap(values)
	data := map[string]any{
		"ranking":   analytics.TopN(values, top),
		"unmatched": geo.Unmatched(s.snapshot.Neighbourhoods, valueMap),
	}
	if len(valueMap) == 0 {
		data["geojson"] = geo.Choropleth(s.snapshot.Neighbourhoods, valueMap, geo.ColorScale{})
		return success(c, data)
	}

	scale, err := geo.ScaleFor(valueMap, colors)
	if err != nil {
		s.logger.Error().Err(err).Msg("build color scale failed")
		return internalError(c, "Failed to build color scale")
	}
	data["geojson"] = geo.Choropleth(s.snapshot.Neighbourhoods, valueMap, scale)
	data["scale"] = map[string]any{"min": scale.Min, "max": scale.Max, "colors": colors}
	return success(c, data)
}

func (s *Server) handleMarkers(c echo.Context) error {
	return success(c, map[string]any{
		"items": s.snapshot.Markers,
	})
}

func (s *Server) handleCalendarDiscounts(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultDiscountLimit, 1, maxDiscountLimit)
	if err != nil {
		return failField(c, "limit", err.Error())
	}
	var listingID int64
	if raw := strings.TrimSpace(c.QueryParam("listing_id")); raw != "" {
		listingID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || listingID < 1 {
			return failField(c, "listing_id", "must be a positive integer")
		}
	}

	discounts := analytics.FilterDiscounts(s.snapshot.Discounts, listingID)
	return success(c, map[string]any{
		"items":      analytics.LargestDiscounts(discounts, limit),
		"summary":    analytics.SummarizeDiscounts(discounts),
		"listing_id": listingID,
	})
}

func (s *Server) handleReviewStats(c echo.Context) error {
	bins, err := parsePositiveInt(c.QueryParam("bins"), textstats.DefaultBins, 1, 500)
	if err != nil {
		return failField(c, "bins", err.Error())
	}

	texts := s.snapshot.ReviewTexts
	return success(c, map[string]any{
		"summary":       s.snapshot.ReviewStats,
		"char_lengths":  textstats.Histogram(textstats.CharLengths(texts), bins),
		"word_counts":   textstats.Histogram(textstats.WordCounts(texts), bins),
		"review_source": s.snapshot.ReviewSource,
	})
}

func (s *Server) handleReviewWords(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultWordLimit, 1, maxWordLimit)
	if err != nil {
		return failField(c, "limit", err.Error())
	}

	stopwords := textstats.DefaultStopwords()
	texts := s.snapshot.ReviewTexts
	return success(c, map[string]any{
		"words":   textstats.WordFrequencies(texts, stopwords, limit),
		"bigrams": textstats.Bigrams(texts, stopwords, limit),
		"limit":   limit,
	})
}
