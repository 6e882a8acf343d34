package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/five82/channelsync/internal/state"
)

var (
	// ErrNotFound is returned when the API reports a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCircuitOpen is returned while the breaker rejects requests.
	ErrCircuitOpen = errors.New("remote unavailable: circuit open")
)

const (
	defaultAPIURL    = "127.0.0.1:3000"
	defaultUserAgent = "channelsync/0.1"
	defaultTimeout   = 10 * time.Second
	defaultRetryMax  = 4
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RetryMax  int
	UserAgent string
	Logger    zerolog.Logger
}

// Client talks to the collection HTTP API. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	token     string
	userAgent string
	log       zerolog.Logger
}

// NewClient builds a Client for the API at opts.BaseURL.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retryMax := opts.RetryMax
	if retryMax < 0 {
		retryMax = defaultRetryMax
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := opts.Logger.With().Str("component", "remote").Logger()

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = &retryLogger{log: logger}
	// Hand the final response back so status codes can be mapped below.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL:   base,
		http:      retryClient.StandardClient(),
		breaker:   newBreaker(base.Host, logger),
		token:     strings.TrimSpace(opts.Token),
		userAgent: userAgent,
		log:       logger,
	}, nil
}

func newBreaker(name string, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Missing resources and caller cancellation say nothing about server health.
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
}

// FetchPage retrieves one page of the collection addressed by id.
func (c *Client) FetchPage(ctx context.Context, id state.Identity, page int) (state.Page, error) {
	if c == nil {
		return state.Page{}, fmt.Errorf("client is nil")
	}
	if err := id.Validate(); err != nil {
		return state.Page{}, err
	}
	if page < 1 {
		return state.Page{}, fmt.Errorf("page %d out of range", page)
	}
	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("per", strconv.Itoa(id.PageSize))
	if sort := strings.TrimSpace(id.Sort); sort != "" {
		values.Set("sort", sort)
	}
	if dir := strings.TrimSpace(id.Direction); dir != "" {
		values.Set("direction", dir)
	}
	if typ := strings.TrimSpace(id.TypeFilter); typ != "" {
		values.Set("type", typ)
	}
	if user := strings.TrimSpace(id.UserID); user != "" {
		values.Set("user_id", user)
	}
	rel := &url.URL{
		Path:     "/v2/channels/" + url.PathEscape(id.CollectionID) + "/contents",
		RawQuery: values.Encode(),
	}
	var payload contentsResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return state.Page{}, err
	}
	return state.Page{Items: payload.Items, Count: payload.Count}, nil
}

// FetchOne retrieves the current content of a single item, bypassing any cache.
func (c *Client) FetchOne(ctx context.Context, id, kind string) (*state.Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("item id required")
	}
	values := url.Values{}
	if kind = strings.TrimSpace(kind); kind != "" {
		values.Set("type", kind)
	}
	rel := &url.URL{Path: "/v2/items/" + url.PathEscape(id), RawQuery: values.Encode()}
	var item state.Item
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Reorder moves an item inside its collection.
func (c *Client) Reorder(ctx context.Context, req state.Reorder) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if req.CollectionID == "" || req.ItemID == "" {
		return fmt.Errorf("collection and item id required")
	}
	rel := &url.URL{Path: "/v2/channels/" + url.PathEscape(req.CollectionID) +
		"/items/" + url.PathEscape(req.ItemID) + "/position"}
	body := positionRequest{Type: req.Kind, InsertAt: req.Position}
	return c.doURL(ctx, http.MethodPut, rel, body, nil)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.send(ctx, method, rel, body, dest)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("api %s: %w", rel.Path, ErrCircuitOpen)
	}
	return err
}

func (c *Client) send(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("api %s returned status %d: %w", rel.Path, resp.StatusCode, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// retryLogger implements retryablehttp.LeveledLogger on top of zerolog.
type retryLogger struct {
	log zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Per-request chatter stays at debug.
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Trace().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}
