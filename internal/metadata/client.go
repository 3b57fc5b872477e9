package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ClientOptions holds the transport settings shared by the provider clients
type ClientOptions struct {
	BaseURL           string
	Timeout           time.Duration // 0 means no timeout
	RequestsPerSecond float64       // 0 means unlimited
	HTTPClient        *http.Client
}

// httpClient returns the configured client or a new one. No timeout is set unless
// asked for: a stalled provider stalls the caller.
func (o ClientOptions) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: o.Timeout}
}

func (o ClientOptions) limiter() *rate.Limiter {
	if o.RequestsPerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(o.RequestsPerSecond), 1)
}

// getJSON performs a GET and decodes the JSON body into out
func getJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string, out any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
