package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"mining-dispatch/internal/logger"
)

const (
	DefaultHashrateIndexURL = "https://api.hashrateindex.com/v1/hashrateindex"
	hashrateIndexKeyHeader  = "X-Hi-Api-Key"
)

type HashrateIndexConfig struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// APIError represents a non-success answer from the hashprice API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *APIError) Error() string {
	return e.Message
}

// HashrateIndexClient fetches daily hashprice ($/TH/day) from the Hashrate
// Index API.
type HashrateIndexClient struct {
	client  *resty.Client
	apiKey  string
	limiter *rate.Limiter
	cache   *ResponseCache
	log     *logger.Logger
	mu      sync.Mutex
}

func NewHashrateIndexClient(cfg HashrateIndexConfig, log *logger.Logger) *HashrateIndexClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultHashrateIndexURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if log == nil {
		log = logger.Nop()
	}
	perRequest := time.Minute / time.Duration(cfg.RequestsPerMinute)

	return &HashrateIndexClient{
		client: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Every(perRequest), 1),
		cache:   NewResponseCache(cfg.CacheTTL),
		log:     log.With(logger.StringField("component", "hashrateindex")),
	}
}

type hashpriceResponse struct {
	Data []map[string]any `json:"data"`
}

// Hashprice returns one point per day in [start, end] as published by the
// API (7-day SMA, USD, per TH). A 422 for the TH unit is retried once in PH
// and converted.
func (c *HashrateIndexClient) Hashprice(ctx context.Context, start, end time.Time) ([]PricePoint, error) {
	if c.apiKey == "" {
		return nil, &APIError{Code: "MISSING_API_KEY", Message: "hashrate index API key is required"}
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s is before start date %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	startDate := start.UTC().Format("2006-01-02")
	endDate := end.UTC().Format("2006-01-02")
	key := CacheKey("hashprice", startDate, endDate)
	if cached, ok := c.cache.Get(key); ok {
		c.log.InfoContext(ctx, "hashprice cache hit",
			logger.StringField("start", startDate),
			logger.StringField("end", endDate),
			logger.IntField("points", len(cached)))
		return cached, nil
	}

	points, err := c.fetch(ctx, startDate, endDate, "THS")
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnprocessableEntity {
		c.log.WarnContext(ctx, "hashprice rejected for THS, retrying with PH")
		points, err = c.fetch(ctx, startDate, endDate, "PH")
		for i := range points {
			points[i].Value /= 1000
		}
	}
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("hashprice API returned no usable rows for %s..%s", startDate, endDate)
	}

	c.cache.Set(key, points)
	return points, nil
}

func (c *HashrateIndexClient) fetch(ctx context.Context, startDate, endDate, unit string) ([]PricePoint, error) {
	c.mu.Lock()
	if !c.limiter.Allow() {
		c.log.WarnContext(ctx, "hashprice API request limit reached, waiting")
		if err := c.limiter.Wait(ctx); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}
	c.mu.Unlock()

	var body hashpriceResponse
	began := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(hashrateIndexKeyHeader, c.apiKey).
		SetQueryParams(map[string]string{
			"start_date": startDate,
			"end_date":   endDate,
			"currency":   "USD",
			"hashunit":   unit,
			"sma":        "7D",
		}).
		SetResult(&body).
		Get("/hashprice")
	if err != nil {
		c.log.ErrorContext(ctx, "hashprice request failed", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	c.log.InfoContext(ctx, "hashprice response",
		logger.IntField("status", resp.StatusCode()),
		logger.StringField("hashunit", unit),
		logger.DurationField("duration", time.Since(began)))

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Code:       "UNAUTHORIZED",
			Message:    "Unauthorized: invalid hashrate index API key",
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header().Get("Retry-After")
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("hashprice API returned status %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body()))),
		}
	}

	return decodeHashprice(body.Data), nil
}

// decodeHashprice tolerates the field-name variants the API has used.
func decodeHashprice(rows []map[string]any) []PricePoint {
	out := make([]PricePoint, 0, len(rows))
	for _, row := range rows {
		ts, okT := pickTime(row)
		v, okV := pickValue(row)
		if !okT || !okV {
			continue
		}
		out = append(out, PricePoint{Timestamp: ts, Value: v})
	}
	sortPoints(out)
	return out
}

func pickTime(row map[string]any) (time.Time, bool) {
	if s, ok := row["timestamp"].(string); ok {
		return parseTime(s)
	}
	for _, k := range sortedKeys(row) {
		lk := strings.ToLower(k)
		if !strings.Contains(lk, "time") && !strings.Contains(lk, "date") {
			continue
		}
		if s, ok := row[k].(string); ok {
			if t, ok := parseTime(s); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func pickValue(row map[string]any) (float64, bool) {
	if v, ok := toNumber(row["hashprice"]); ok {
		return v, true
	}
	for _, k := range sortedKeys(row) {
		lk := strings.ToLower(k)
		if !strings.Contains(lk, "price") && !strings.Contains(lk, "hash") {
			continue
		}
		if v, ok := toNumber(row[k]); ok {
			return v, true
		}
	}
	return 0, false
}

func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func sortedKeys(row map[string]any) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
