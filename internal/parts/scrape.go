package parts

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CatalogScraper searches an HTML parts catalog that has no API: it fetches
// the search results page and pulls candidates out of the markup.
type CatalogScraper struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewCatalogScraper(baseURL string, logger *slog.Logger) *CatalogScraper {
	return &CatalogScraper{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		logger: logger,
	}
}

func (s *CatalogScraper) Search(ctx context.Context, vin, query string) ([]Candidate, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("vin", vin)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; vin-parts-bridge/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("catalog page fetch failed", "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("catalog page non-200", "status", resp.StatusCode)
		return nil, nil
	}

	candidates, err := parseResults(resp.Body)
	if err != nil {
		s.logger.Warn("catalog page parse failed", "error", err)
		return nil, nil
	}
	return candidates, nil
}

// parseResults extracts candidates from a search results page. Catalog
// markup is not stable: any field missing from a row becomes an empty
// string, only rows without even a name are skipped.
func parseResults(r io.Reader) ([]Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	doc.Find(".product-card, .search-result-row, tr.offer").Each(func(_ int, row *goquery.Selection) {
		name := text(row, ".product-name, .name, td.description")
		if name == "" {
			return
		}
		out = append(out, Candidate{
			Article:      text(row, ".article, .sku, td.article"),
			Name:         name,
			Price:        text(row, ".price, td.price"),
			Availability: text(row, ".stock, .availability, td.stock"),
			Source:       "catalog",
		})
	})
	return out, nil
}

func text(row *goquery.Selection, selector string) string {
	return strings.TrimSpace(row.Find(selector).First().Text())
}
