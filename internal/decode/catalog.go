package decode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// CatalogDecoder resolves a VIN through a remote decode API. The endpoint
// takes the VIN and an account secret as query parameters and answers JSON.
type CatalogDecoder struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries int
	backoff    time.Duration
}

func NewCatalogDecoder(baseURL, secret string, logger *slog.Logger) *CatalogDecoder {
	return &CatalogDecoder{
		baseURL: baseURL,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger:     logger,
		maxRetries: 2,
		backoff:    500 * time.Millisecond,
	}
}

type catalogResponse struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	EngineLitres float64 `json:"engine_volume"`
	Error        string  `json:"error,omitempty"`
}

func (d *CatalogDecoder) Decode(ctx context.Context, vin string) (Vehicle, error) {
	q := url.Values{}
	q.Set("secret", d.secret)
	q.Set("vin", vin)
	reqURL := d.baseURL + "?" + q.Encode()

	body, err := d.fetchWithRetry(ctx, reqURL)
	if err != nil {
		return Vehicle{}, err
	}

	var resp catalogResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		d.logger.Error("catalog decode response is not valid JSON", "error", err)
		return Vehicle{}, fmt.Errorf("%w: bad response body", ErrProviderUnavailable)
	}
	if resp.Error != "" {
		return Vehicle{}, fmt.Errorf("%w: %s", ErrMalformedVIN, resp.Error)
	}
	if resp.Make == "" {
		return Vehicle{}, fmt.Errorf("%w: empty decode result", ErrMalformedVIN)
	}

	return Vehicle{
		Make:         resp.Make,
		Model:        resp.Model,
		Year:         resp.Year,
		EngineLitres: resp.EngineLitres,
		Provenance:   "catalog",
	}, nil
}

// fetchWithRetry retries transient failures (transport errors, 429, 5xx)
// with a flat backoff. Context expiry is reported as a timeout.
func (d *CatalogDecoder) fetchWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrProviderTimeout, ctx.Err())
			case <-time.After(d.backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}

		resp, err := d.httpClient.Do(req)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %v", ErrProviderTimeout, err)
			}
			d.logger.Warn("catalog decode request failed", "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			d.logger.Warn("catalog decode retryable status", "attempt", attempt, "status", resp.StatusCode)
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
}
