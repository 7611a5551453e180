// Package twse fetches the material-information listing from the exchange
// portal.
package twse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"twse-announcements/pkg/calendar"
	"twse-announcements/pkg/logger"
	"twse-announcements/pkg/utils"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	listingPath = "/mops/web/ajax_t05st02"
	refererPath = "/mops/web/t05st02"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	// ErrUnexpectedStatus is returned when the portal answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status from exchange portal")
	// ErrInvalidDate is returned for dates that are not ISO or predate the local calendar.
	ErrInvalidDate = errors.New("invalid query date")
)

// Config holds the client settings.
type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int
	CacheTTL          time.Duration
}

// Fetcher returns the raw listing document for an ISO date.
type Fetcher interface {
	Fetch(ctx context.Context, date string) (string, error)
}

// Client is the portal's Fetcher. Documents for days before today are
// immutable upstream and are cached.
type Client struct {
	cfg            Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	documents      *cache.Cache
	today          func() time.Time
}

// NewClient creates a rate-limited portal client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 20
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if log == nil {
		log = logger.NewNop()
	}

	secondsPerRequest := time.Minute / time.Duration(cfg.RequestsPerMinute)
	return &Client{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		documents:      cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		today:          utils.TodayTaipei,
	}
}

// FormValues builds the listing form for a Gregorian date: local year and
// zero-padded month and day.
func FormValues(d calendar.Date) (url.Values, error) {
	local, ok := d.ToLocal()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no local-calendar year", ErrInvalidDate, d.ISO())
	}
	return url.Values{
		"encodeURIComponent": {"1"},
		"step":               {"1"},
		"step00":             {"0"},
		"firstin":            {"1"},
		"off":                {"1"},
		"TYPEK":              {"all"},
		"year":               {strconv.Itoa(local.Year)},
		"month":              {fmt.Sprintf("%02d", local.Month)},
		"day":                {fmt.Sprintf("%02d", local.Day)},
	}, nil
}

// Fetch posts the listing form for date and returns the response body.
func (c *Client) Fetch(ctx context.Context, date string) (string, error) {
	d, ok := calendar.ParseISO(date)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	form, err := FormValues(d)
	if err != nil {
		return "", err
	}

	cacheable := c.cfg.CacheTTL > 0 && date < c.today().Format("2006-01-02")
	if cacheable {
		if doc, found := c.documents.Get(date); found {
			c.log.DebugContext(ctx, "Listing served from cache", logger.StringField("date", date))
			return doc.(string), nil
		}
	}

	body, err := c.sendRequest(ctx, form)
	if err != nil {
		return "", err
	}
	if cacheable {
		c.documents.SetDefault(date, body)
	}
	return body, nil
}

func (c *Client) sendRequest(ctx context.Context, form url.Values) (string, error) {
	endpoint := c.cfg.BaseURL + listingPath
	fields := []zap.Field{
		logger.StringField("url", endpoint),
		logger.StringField("year", form.Get("year")),
		logger.StringField("month", form.Get("month")),
		logger.StringField("day", form.Get("day")),
	}

	if err := c.requestLimiter.Wait(ctx); err != nil {
		c.log.ErrorContext(ctx, "Failed to wait for request limit", append(fields, logger.ErrorField(err))...)
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", c.cfg.BaseURL)
	req.Header.Set("Referer", c.cfg.BaseURL+refererPath)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to send request to exchange portal", append(fields, logger.ErrorField(err))...)
		return "", fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read listing: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.ErrorContext(ctx, "Exchange portal returned an error status",
			append(fields, logger.IntField("status", resp.StatusCode))...)
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	c.log.DebugContext(ctx, "Fetched listing", append(fields, logger.IntField("bytes", len(body)))...)
	return string(body), nil
}
