package parts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// PRLGClient searches the pr-lg.ru parts API. The API takes the article (or
// a keyword) and the account secret as query parameters and answers JSON.
type PRLGClient struct {
	baseURL     string
	secret      string
	httpClient  *http.Client
	rateLimiter *rateLimiter
	logger      *slog.Logger
}

func NewPRLGClient(secret string, logger *slog.Logger) *PRLGClient {
	return &PRLGClient{
		baseURL: "https://api.pr-lg.ru/search/items",
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter: newRateLimiter(2),
		logger:      logger,
	}
}

type prlgResponse struct {
	Data []struct {
		Article     string `json:"article"`
		Description string `json:"description"`
		Price       string `json:"price"`
		Quantity    string `json:"quantity"`
	} `json:"data"`
}

// Search returns candidates in upstream order. Any transport or parse
// failure is logged and reported as an empty result set.
func (c *PRLGClient) Search(ctx context.Context, vin, query string) ([]Candidate, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, nil
	}

	q := url.Values{}
	q.Set("secret", c.secret)
	q.Set("article", query)
	q.Set("vin", vin)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("pr-lg request failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("pr-lg non-200 response",
			"status", resp.StatusCode,
			"body", shortBody(body),
		)
		return nil, nil
	}

	var parsed prlgResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warn("pr-lg response parse failed", "error", err)
		return nil, nil
	}

	out := make([]Candidate, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		out = append(out, Candidate{
			Article:      item.Article,
			Name:         item.Description,
			Price:        formatPrice(item.Price),
			Availability: item.Quantity,
			Source:       "pr-lg",
		})
	}
	return out, nil
}

func (c *PRLGClient) Close() {
	c.rateLimiter.Stop()
}

func formatPrice(p string) string {
	if p == "" {
		return ""
	}
	return p + " руб."
}

func shortBody(b []byte) string {
	s := string(b)
	if len(s) > 180 {
		return s[:180] + "..."
	}
	return s
}
