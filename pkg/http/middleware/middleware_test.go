package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"YieldDesk/pkg/logger"
)

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestID(), RequestLogging(logger.NewWriter(&buf)))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, RequestIDFrom(c)) })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := rec.Header().Get(echo.HeaderXRequestID)
	require.Len(t, id, 36)
	assert.Equal(t, id, rec.Body.String())
	assert.Contains(t, buf.String(), id)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	assert.Equal(t, "abc-123", serve(e, req).Header().Get(echo.HeaderXRequestID))
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(Recover(logger.NewWriter(&buf)))
	e.GET("/boom", func(echo.Context) error { panic("kaboom") })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "kaboom")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := echo.New()
	e.Use(Metrics(reg, logger.NewNop(), 0))
	e.GET("/api/curve", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/api/fail", func(echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway) })

	serve(e, httptest.NewRequest(http.MethodGet, "/api/curve", nil))
	serve(e, httptest.NewRequest(http.MethodGet, "/api/curve", nil))
	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/fail", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	expected := `
# HELP yielddesk_http_requests_total Total number of HTTP requests
# TYPE yielddesk_http_requests_total counter
yielddesk_http_requests_total{method="GET",route="/api/curve",status="200"} 2
yielddesk_http_requests_total{method="GET",route="/api/fail",status="502"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "yielddesk_http_requests_total"))
}

func TestCORSPreflight(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{AllowOrigins: []string{"*"}, AllowMethods: []string{http.MethodGet}}))
	e.OPTIONS("/api/curve", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/curve", nil)
	req.Header.Set(echo.HeaderOrigin, "https://desk.example")
	rec := serve(e, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://desk.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "GET", rec.Header().Get(echo.HeaderAccessControlAllowMethods))
}
