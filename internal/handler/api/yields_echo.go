package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/domain/models"
	"YieldDesk/internal/service/metrics"
	"YieldDesk/internal/service/ratelimit"
	"YieldDesk/internal/usecase"
	"YieldDesk/pkg/date"
	xhttp "YieldDesk/pkg/http"
	"YieldDesk/pkg/http/middleware"
	xlogger "YieldDesk/pkg/logger"
	"YieldDesk/pkg/util"
)

// YieldsEchoHandler serves the yield curve, history and news endpoints.
type YieldsEchoHandler struct {
	logger  *xlogger.Logger
	catalog *catalog.Catalog
	curve   *usecase.CurveUseCase
	history *usecase.HistoricalUseCase
	news    *usecase.NewsUseCase
	rl      *ratelimit.Limiter
}

func NewYieldsEchoHandler(
	logger *xlogger.Logger,
	cat *catalog.Catalog,
	curve *usecase.CurveUseCase,
	history *usecase.HistoricalUseCase,
	news *usecase.NewsUseCase,
	rl *ratelimit.Limiter,
) *YieldsEchoHandler {
	metrics.Register()
	return &YieldsEchoHandler{logger: logger, catalog: cat, curve: curve, history: history, news: news, rl: rl}
}

func (h *YieldsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/catalog", h.Catalog)

	limited := g.Group("", h.rateLimit)
	limited.GET("/curve", h.Curve)
	limited.GET("/curve/compare", h.Compare)
	limited.GET("/history", h.History)
	limited.GET("/news", h.News)
}

func (h *YieldsEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.rl != nil && !h.rl.Allow(c.RealIP()) {
			h.logger.Warn("rate limited",
				xlogger.String("remote", c.RealIP()),
				xlogger.String("path", c.Path()))
			c.Response().Header().Set("Retry-After", "1")
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
		}
		return next(c)
	}
}

func (h *YieldsEchoHandler) Catalog(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.SuccessResponse(c, h.catalog.Entries())
}

func (h *YieldsEchoHandler) Curve(c echo.Context) error {
	defer observe("curve", time.Now())
	req := &models.CurveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	row, err := h.curve.CrossSection(c.Request().Context(), req.Date, selection(c, "maturities", req.Maturities))
	if err != nil {
		return h.fail(c, "curve", err)
	}
	if req.Format == "csv" {
		return xhttp.CSVResponse(c, fmt.Sprintf("yield_curve_%s.csv", row.Date), row)
	}
	return xhttp.SuccessResponse(c, row)
}

func (h *YieldsEchoHandler) Compare(c echo.Context) error {
	defer observe("compare", time.Now())
	req := &models.CompareRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	cmp, err := h.curve.Compare(c.Request().Context(), req.Date1, req.Date2, selection(c, "maturities", req.Maturities))
	if err != nil {
		return h.fail(c, "compare", err)
	}
	if req.Format == "csv" {
		return xhttp.CSVResponse(c, fmt.Sprintf("yield_curve_%s_vs_%s.csv", cmp.Dates[0], cmp.Dates[1]), cmp)
	}
	return xhttp.SuccessResponse(c, cmp)
}

func (h *YieldsEchoHandler) History(c echo.Context) error {
	defer observe("history", time.Now())
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	r := rangeOf(req)
	table, err := h.history.Join(c.Request().Context(), util.SplitList(req.Labels...), r)
	if err != nil {
		return h.fail(c, "history", err)
	}
	if req.Format == "csv" {
		return xhttp.CSVResponse(c, fmt.Sprintf("history_%s_%s.csv", r.From, r.To), table)
	}
	return xhttp.SuccessResponse(c, table)
}

func (h *YieldsEchoHandler) News(c echo.Context) error {
	defer observe("news", time.Now())
	req := &models.NewsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.news.Search(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "news", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

// fail maps use case errors onto the API error envelope.
func (h *YieldsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	metrics.EndpointErrors.WithLabelValues(endpoint).Inc()
	switch {
	case errors.Is(err, models.ErrInvalidDateRange):
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_INVALID_DATE_RANGE", "", err.Error(), http.StatusBadRequest).WithError(err))
	case errors.Is(err, models.ErrEmptySelection):
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_EMPTY_SELECTION", "", err.Error(), http.StatusBadRequest).WithError(err))
	default:
		h.logger.Error(endpoint+" usecase error",
			xlogger.String("request_id", middleware.RequestIDFrom(c)),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("Something went wrong").WithError(err))
	}
}

// selection flattens a repeated, comma-separated list parameter. A parameter
// that is present but blank is an explicit empty selection; a missing one
// is nil.
func selection(c echo.Context, param string, values []string) []string {
	labels := util.SplitList(values...)
	if labels == nil && c.QueryParams().Has(param) {
		return []string{}
	}
	return labels
}

func rangeOf(req *models.HistoryRequest) date.Range {
	return date.Range{From: req.Start, To: req.End}
}

func observe(endpoint string, start time.Time) {
	metrics.EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
