package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// StatusError is returned for any non-2xx upstream response.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected status code %s", e.Status)
	}
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

// Transport performs GET requests for one upstream behind its own circuit breaker.
// It never retries: a failure goes straight back to the caller's fallback chain.
type Transport struct {
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
}

// NewTransport wraps client for the named upstream. A nil client yields a
// transport whose requests fail with errNoHTTPClient.
func NewTransport(name string, client *http.Client) *Transport {
	t := &Transport{
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         name,
			MaxRequests:  5,
			Interval:     1 * time.Minute,
			Timeout:      2 * time.Minute,
			IsSuccessful: countsAsHealthy,
		}),
	}
	if client != nil {
		t.client = resty.NewWithClient(client).SetHeader("Accept", "application/json")
	}
	return t
}

// Get issues GET rawURL?params and returns the body of a 2xx response.
func (t *Transport) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	if t == nil || t.client == nil {
		return nil, errNoHTTPClient
	}

	result, err := t.circuit.Execute(func() (interface{}, error) {
		// resty merges params into an existing query string on rawURL.
		resp, execErr := t.client.R().
			SetContext(ctx).
			SetQueryParamsFromValues(params).
			Get(rawURL)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
			return nil, &StatusError{Code: resp.StatusCode(), Status: strings.TrimSpace(resp.Status())}
		}
		return resp.Body(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// countsAsHealthy keeps client errors (unknown city, bad key) and caller
// cancellation from tripping the breaker: only transport errors, 5xx and 429
// count as upstream failures.
func countsAsHealthy(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= 400 && statusErr.Code < 500 && statusErr.Code != http.StatusTooManyRequests
	}
	return false
}

func formatCoord(v float64) string {
	return fmt.Sprintf("%g", v)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimRight(v, "/")
}
