package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

const maxResponseSize = 1 << 20 // 1MB

// ErrUnauthorized signals that the commerce API rejected the bearer
// credential; the caller's session is over.
var ErrUnauthorized = errors.New("commerce api rejected credentials")

// APIError carries the backend's own message so it can be surfaced to the user.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("commerce api error (status %d)", e.Status)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the single HTTP entry point to the remote commerce API. It
// attaches the caller's bearer credential, funnels every response through the
// envelope normalization, and turns 401 into a session-invalidation signal.
type Client struct {
	base           string
	http           *http.Client
	breaker        *gobreaker.CircuitBreaker[[]byte]
	onUnauthorized func(token string)
	log            zerolog.Logger
}

// New builds a Client. onUnauthorized is invoked with the rejected token
// whenever the backend answers 401; it may be nil.
func New(cfg Config, onUnauthorized func(token string), log zerolog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	c := &Client{
		base: cfg.BaseURL,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		},
		onUnauthorized: onUnauthorized,
		log:            log,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "commerce-api",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Business rejections (4xx) must not trip the breaker; only transport
		// failures and 5xx count as the backend being down.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, ErrUnauthorized) {
				return true
			}
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).
				Msg("circuit breaker state changed")
		},
	})
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodDelete, path, query, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	payload, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, query, body)
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeEnvelope(payload, out)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token := ""
	if sess, ok := session.FromContext(ctx); ok && sess.Token != "" {
		token = sess.Token
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce api unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn().Str("path", path).Msg("credentials rejected, invalidating session")
		if c.onUnauthorized != nil {
			c.onUnauthorized(token)
		}
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{Status: resp.StatusCode, Message: messageFrom(data)}
	}
	return data, nil
}
