// Package fred reads Treasury constant-maturity series from the FRED API.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"YieldDesk/internal/domain/models"
	domrepo "YieldDesk/internal/domain/repository"
	"YieldDesk/pkg/config"
	"YieldDesk/pkg/date"
	xhttp "YieldDesk/pkg/http"
	"YieldDesk/pkg/logger"
)

const observationsPath = "/fred/series/observations"

// missingValue marks a day the series was not published.
const missingValue = "."

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

type errorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Client implements repository.MacroProvider.
type Client struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
	log     *logger.Logger
}

var _ domrepo.MacroProvider = (*Client)(nil)

// New builds a FRED client from config.
func New(cfg *config.Config, log *logger.Logger, opts ...xhttp.ClientOption) *Client {
	timeout := cfg.Fred.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	opts = append([]xhttp.ClientOption{xhttp.WithTimeout(timeout)}, opts...)
	return &Client{
		baseURL: strings.TrimRight(cfg.Fred.BaseURL, "/"),
		apiKey:  cfg.Fred.APIKey,
		client:  xhttp.NewClient(opts...),
		log:     log,
	}
}

// GetSeries makes a single attempt to fetch seriesID over r. Non-publication
// days are dropped, so the returned series only holds observed values.
func (c *Client) GetSeries(ctx context.Context, seriesID string, r date.Range) (models.TimeSeries, error) {
	var resp observationsResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + observationsPath,
		QueryParams: map[string][]string{
			"series_id":         {seriesID},
			"api_key":           {c.apiKey},
			"file_type":         {"json"},
			"observation_start": {r.From.String()},
			"observation_end":   {r.To.String()},
		},
	}, &resp)
	if err != nil {
		return models.TimeSeries{}, classify(seriesID, err)
	}

	obs := make([]models.Observation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		if o.Value == missingValue || o.Value == "" {
			continue
		}
		d, err := date.Parse(o.Date)
		if err != nil {
			c.log.Warn("fred: skipping observation with bad date",
				logger.String("series_id", seriesID), logger.String("date", o.Date))
			continue
		}
		v, err := decimal.NewFromString(o.Value)
		if err != nil {
			c.log.Warn("fred: skipping observation with bad value",
				logger.String("series_id", seriesID), logger.String("value", o.Value))
			continue
		}
		obs = append(obs, models.Observation{Date: d, Value: models.Present(v.InexactFloat64())})
	}

	return models.NewTimeSeries(seriesID, obs), nil
}

// classify maps transport and status failures onto the provider error taxonomy.
// FRED answers 400 both for series it does not know and for a bad or missing
// api_key; the latter is an outage on our side, not an unknown series.
func classify(seriesID string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusBadRequest && apiKeyRejected(se.Body):
			return models.NewProviderError(seriesID, models.ErrProviderUnavailable, se)
		case se.StatusCode == http.StatusBadRequest, se.StatusCode == http.StatusNotFound:
			return models.NewProviderError(seriesID, models.ErrUnknownSeries, se)
		default:
			return models.NewProviderError(seriesID, models.ErrProviderUnavailable, se)
		}
	}
	return models.NewProviderError(seriesID, models.ErrProviderUnavailable, fmt.Errorf("fred: %w", err))
}

func apiKeyRejected(body string) bool {
	var resp errorResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(resp.ErrorMessage), "api_key")
}
