package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/internal/domain/models"
	"YieldDesk/pkg/config"
	"YieldDesk/pkg/date"
	"YieldDesk/pkg/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Fred.BaseURL = srv.URL
	cfg.Fred.APIKey = "test-key"
	return New(cfg, logger.NewNop())
}

func TestGetSeries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, observationsPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "DGS10", q.Get("series_id"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "json", q.Get("file_type"))
		assert.Equal(t, "2024-06-03", q.Get("observation_start"))
		assert.Equal(t, "2024-06-07", q.Get("observation_end"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations":[
			{"date":"2024-06-05","value":"4.29"},
			{"date":"2024-06-03","value":"4.41"},
			{"date":"2024-06-04","value":"."},
			{"date":"2024-06-06","value":"abc"},
			{"date":"2024-06-07","value":"4.43"}
		]}`))
	})

	r := date.Range{From: date.MustParse("2024-06-03"), To: date.MustParse("2024-06-07")}
	s, err := c.GetSeries(context.Background(), "DGS10", r)
	require.NoError(t, err)

	assert.Equal(t, "DGS10", s.ID)
	assert.Equal(t, []models.Observation{
		{Date: date.MustParse("2024-06-03"), Value: models.Present(4.41)},
		{Date: date.MustParse("2024-06-05"), Value: models.Present(4.29)},
		{Date: date.MustParse("2024-06-07"), Value: models.Present(4.43)},
	}, s.Observations)
}

func TestGetSeriesErrors(t *testing.T) {
	const unknownSeries = `{"error_code":400,"error_message":"Bad Request.  The series does not exist."}`
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unknown series", http.StatusBadRequest, unknownSeries, models.ErrUnknownSeries},
		{"bad api key", http.StatusBadRequest,
			`{"error_code":400,"error_message":"Bad Request.  The value for variable api_key is not registered."}`,
			models.ErrProviderUnavailable},
		{"missing api key", http.StatusBadRequest,
			`{"error_code":400,"error_message":"Bad Request.  Variable api_key is not set."}`,
			models.ErrProviderUnavailable},
		{"not found", http.StatusNotFound, unknownSeries, models.ErrUnknownSeries},
		{"rate limited", http.StatusTooManyRequests, `{"error_message":"Too Many Requests"}`, models.ErrProviderUnavailable},
		{"server error", http.StatusInternalServerError, "oops", models.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, tt.body, tt.status)
			})
			_, err := c.GetSeries(context.Background(), "DGSX", date.Range{
				From: date.MustParse("2024-06-03"), To: date.MustParse("2024-06-07"),
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var pe *models.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, "DGSX", pe.SeriesID)
			if tt.want == models.ErrProviderUnavailable {
				assert.NotErrorIs(t, err, models.ErrUnknownSeries)
			}
		})
	}
}

func TestGetSeriesTransportError(t *testing.T) {
	cfg := config.Default()
	cfg.Fred.BaseURL = "http://127.0.0.1:1"
	c := New(cfg, logger.NewNop())

	_, err := c.GetSeries(context.Background(), "DGS10", date.Range{
		From: date.MustParse("2024-06-03"), To: date.MustParse("2024-06-07"),
	})
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
}
