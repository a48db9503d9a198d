package ingest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const ruoniaPageURL = "https://cbr.ru/hd_base/ruonia/"

// RUONIA plausibility bounds. Values outside this range are treated as
// parser breakage, not data.
const (
	ruoniaMinRate = 0.0
	ruoniaMaxRate = 50.0
)

// FetchCurrentRUONIA scrapes the current RUONIA rate from the central
// bank's statistics page. This is a point lookup only; no RUONIA series is
// maintained.
func (c *Client) FetchCurrentRUONIA(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ruoniaURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; credit-engine)")

	raw, err := c.do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching RUONIA page: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("parsing RUONIA page: %w", err)
	}

	rate, err := extractRUONIA(doc)
	if err != nil {
		return 0, err
	}

	c.logger.Info("fetched current RUONIA rate",
		zap.String("op", "ingest.FetchCurrentRUONIA"),
		zap.Float64("rate", rate),
	)
	return rate, nil
}

// extractRUONIA walks the statistics table and returns the first cell that
// parses as a plausible rate. The page layout is outside our control; if
// the structure changes this fails loudly instead of returning a wrong
// number.
func extractRUONIA(doc *html.Node) (float64, error) {
	cells, err := htmlquery.QueryAll(doc, "//table//td")
	if err != nil {
		return 0, fmt.Errorf("querying RUONIA table cells: %w", err)
	}

	for _, cell := range cells {
		text := strings.TrimSpace(htmlquery.InnerText(cell))
		if text == "" || len(text) > 8 {
			continue
		}
		rate, err := parseRateValue(text)
		if err != nil {
			continue
		}
		if rate > ruoniaMinRate && rate < ruoniaMaxRate {
			return rate, nil
		}
	}
	return 0, fmt.Errorf("no plausible RUONIA rate found in page, source structure may have changed")
}
