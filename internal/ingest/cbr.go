// Package ingest refreshes the key-rate series from the central bank's
// official endpoints. Three upstream formats are tried in order; when every
// source fails the refresh surfaces an error rather than substituting
// synthetic values, since fabricated history would silently corrupt
// recalculated schedules.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/finplan/credit-engine/pkg/rateseries"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

const (
	keyRateSOAPURL = "http://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"
	keyRateRESTURL = "https://www.cbr-xml-daily.ru/key-rate"
	keyRateXMLURL  = "http://www.cbr.ru/scripts/XML_key_rate.asp"

	defaultTimeout = 30 * time.Second
)

// Client fetches key-rate history from the central bank.
type Client struct {
	httpClient *http.Client
	soapURL    string
	restURL    string
	xmlURL     string
	ruoniaURL  string
	logger     *zap.Logger
}

// NewClient creates a central-bank client with the official endpoints.
func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		soapURL:    keyRateSOAPURL,
		restURL:    keyRateRESTURL,
		xmlURL:     keyRateXMLURL,
		ruoniaURL:  ruoniaPageURL,
		logger:     logger,
	}
}

// FetchKeyRates tries each official source in order and returns the points
// announced in [from, to]. An error means every source failed; no synthetic
// data is ever returned.
func (c *Client) FetchKeyRates(ctx context.Context, from, to civil.Date) ([]rateseries.RatePoint, error) {
	points, err := c.fetchSOAP(ctx, from, to)
	if err != nil {
		c.logger.Warn("SOAP key-rate source failed, trying REST",
			zap.String("op", "ingest.FetchKeyRates"),
			zap.Error(err),
		)
		points, err = c.fetchREST(ctx)
	}
	if err != nil {
		c.logger.Warn("REST key-rate source failed, trying legacy XML",
			zap.String("op", "ingest.FetchKeyRates"),
			zap.Error(err),
		)
		points, err = c.fetchXML(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("all key-rate sources failed: %w", err)
	}

	return filterAnnounced(points, from, to), nil
}

// fetchSOAP calls the official KeyRateXML operation.
func (c *Client) fetchSOAP(ctx context.Context, from, to civil.Date) ([]rateseries.RatePoint, error) {
	body := fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
               xmlns:xsd="http://www.w3.org/2001/XMLSchema"
               xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <KeyRateXML xmlns="http://web.cbr.ru/">
      <fromDate>%s</fromDate>
      <ToDate>%s</ToDate>
    </KeyRateXML>
  </soap:Body>
</soap:Envelope>`, from.String(), to.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.soapURL, bytes.NewBufferString(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/KeyRateXML")

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return c.parseSOAP(raw)
}

// fetchREST calls the JSON mirror of the key-rate series.
func (c *Client) fetchREST(ctx context.Context) ([]rateseries.RatePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restURL, nil)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return c.parseREST(raw)
}

// fetchXML calls the legacy XML endpoint.
func (c *Client) fetchXML(ctx context.Context) ([]rateseries.RatePoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.xmlURL, nil)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return c.parseXML(raw)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s from %s", resp.Status, req.URL.Host)
	}
	return io.ReadAll(resp.Body)
}

type soapEnvelope struct {
	XMLName xml.Name   `xml:"Envelope"`
	Rates   []soapRate `xml:"Body>KeyRateXMLResponse>KeyRateXMLResult>KeyRate>KR"`
}

type soapRate struct {
	Date string `xml:"DT"`
	Rate string `xml:"Rate"`
}

// decodeXML decodes an XML payload honoring its declared encoding. The
// legacy endpoint serves windows-1251, which xml.Unmarshal rejects outright.
func decodeXML(raw []byte, v interface{}) error {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.CharsetReader = charset.NewReaderLabel
	return decoder.Decode(v)
}

func (c *Client) parseSOAP(raw []byte) ([]rateseries.RatePoint, error) {
	var envelope soapEnvelope
	if err := decodeXML(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parsing SOAP response: %w", err)
	}
	if len(envelope.Rates) == 0 {
		return nil, fmt.Errorf("SOAP response contains no key-rate records")
	}

	points := make([]rateseries.RatePoint, 0, len(envelope.Rates))
	for _, r := range envelope.Rates {
		point, err := parsePoint(r.Date, r.Rate)
		if err != nil {
			c.logger.Warn("skipping unparseable SOAP rate record",
				zap.String("op", "ingest.parseSOAP"),
				zap.String("date", r.Date),
				zap.Error(err),
			)
			continue
		}
		points = append(points, point)
	}
	return points, nil
}

type restRate struct {
	Date string  `json:"Date"`
	Rate float64 `json:"Rate"`
}

func (c *Client) parseREST(raw []byte) ([]rateseries.RatePoint, error) {
	var rates []restRate
	if err := json.Unmarshal(raw, &rates); err != nil {
		return nil, fmt.Errorf("parsing REST response: %w", err)
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("REST response contains no key-rate records")
	}

	points := make([]rateseries.RatePoint, 0, len(rates))
	for _, r := range rates {
		announced, err := parseAnnouncementDate(r.Date)
		if err != nil {
			c.logger.Warn("skipping unparseable REST rate record",
				zap.String("op", "ingest.parseREST"),
				zap.String("date", r.Date),
				zap.Error(err),
			)
			continue
		}
		points = append(points, rateseries.NewRatePoint(announced, r.Rate))
	}
	return points, nil
}

type legacyXMLDocument struct {
	XMLName xml.Name        `xml:"KeyRate"`
	Items   []legacyXMLItem `xml:"item"`
}

type legacyXMLItem struct {
	Date string `xml:"Date"`
	Rate string `xml:"Rate"`
}

func (c *Client) parseXML(raw []byte) ([]rateseries.RatePoint, error) {
	var doc legacyXMLDocument
	if err := decodeXML(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing XML response: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("XML response contains no key-rate records")
	}

	points := make([]rateseries.RatePoint, 0, len(doc.Items))
	for _, item := range doc.Items {
		point, err := parsePoint(item.Date, item.Rate)
		if err != nil {
			c.logger.Warn("skipping unparseable XML rate record",
				zap.String("op", "ingest.parseXML"),
				zap.String("date", item.Date),
				zap.Error(err),
			)
			continue
		}
		points = append(points, point)
	}
	return points, nil
}

func parsePoint(dateStr, rateStr string) (rateseries.RatePoint, error) {
	announced, err := parseAnnouncementDate(dateStr)
	if err != nil {
		return rateseries.RatePoint{}, err
	}
	rate, err := parseRateValue(rateStr)
	if err != nil {
		return rateseries.RatePoint{}, err
	}
	return rateseries.NewRatePoint(announced, rate), nil
}

// parseAnnouncementDate accepts the formats the bank has been observed to
// emit: ISO-8601 with an optional time and timezone suffix, and DD.MM.YYYY.
func parseAnnouncementDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)

	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}

	t, err := time.Parse("02.01.2006", s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("unrecognized date %q", s)
	}
	return civil.DateOf(t), nil
}

// parseRateValue accepts both dot and comma decimal separators.
func parseRateValue(s string) (float64, error) {
	s = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unrecognized rate %q", s)
	}
	if rate < 0 {
		return 0, fmt.Errorf("negative rate %v", rate)
	}
	return rate, nil
}

func filterAnnounced(points []rateseries.RatePoint, from, to civil.Date) []rateseries.RatePoint {
	filtered := make([]rateseries.RatePoint, 0, len(points))
	for _, p := range points {
		if p.AnnouncementDate.Before(from) || p.AnnouncementDate.After(to) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Ingestor refreshes a rate store from the central bank.
type Ingestor struct {
	client *Client
	store  rateseries.Store
	logger *zap.Logger
}

// NewIngestor creates an ingestor writing into the given store.
func NewIngestor(client *Client, store rateseries.Store, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{client: client, store: store, logger: logger}
}

// Refresh fetches the last daysBack days of key-rate history and upserts
// it, returning the number of points affected.
func (i *Ingestor) Refresh(ctx context.Context, daysBack int) (int, error) {
	if daysBack <= 0 {
		daysBack = 365
	}
	to := civil.DateOf(time.Now())
	from := to.AddDays(-daysBack)

	points, err := i.client.FetchKeyRates(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetching key rates: %w", err)
	}

	count, err := i.store.Upsert(points)
	if err != nil {
		return 0, fmt.Errorf("upserting key rates: %w", err)
	}

	i.logger.Info("refreshed key-rate series",
		zap.String("op", "ingest.Refresh"),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
		zap.Int("points", count),
	)
	return count, nil
}
