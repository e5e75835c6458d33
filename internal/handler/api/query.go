package api

import (
	"errors"
	"net/http"

	models "CandleVault/internal/domain/models"
	"CandleVault/internal/usecase"
	xhttp "CandleVault/pkg/http"
	xlogger "CandleVault/pkg/logger"
	"CandleVault/pkg/util"

	"github.com/labstack/echo/v4"
)

// QueryHandler exposes the analytics queries over HTTP.
type QueryHandler struct {
	logger *xlogger.Logger
	engine *usecase.QueryEngine
}

func NewQueryHandler(logger *xlogger.Logger, engine *usecase.QueryEngine) *QueryHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &QueryHandler{logger: logger, engine: engine}
}

func (h *QueryHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api/v1")
	g.GET("/stats/:symbol", h.SymbolStats)
	g.GET("/summary", h.DailySummary)
	g.GET("/range/:symbol", h.DateRange)
	g.GET("/movers", h.TopMovers)
	g.GET("/symbols", h.ListSymbols)
	g.GET("/candles/:symbol", h.CandleSeries)
}

func (h *QueryHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *QueryHandler) SymbolStats(c echo.Context) error {
	req := &models.SymbolStatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, _ := util.ParseDate(req.Date)

	res, err := h.engine.SymbolStats(c.Request().Context(), req.Symbol, date)
	if err != nil {
		return h.queryError(c, "stats", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *QueryHandler) DailySummary(c echo.Context) error {
	req := &models.DailySummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, _ := util.ParseDate(req.Date)

	res, err := h.engine.DailySummary(c.Request().Context(), date)
	if err != nil {
		return h.queryError(c, "summary", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *QueryHandler) DateRange(c echo.Context) error {
	req := &models.DateRangeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	start, _ := util.ParseDate(req.Start)
	end, _ := util.ParseDate(req.End)

	res, err := h.engine.DateRange(c.Request().Context(), req.Symbol, start, end)
	if err != nil {
		return h.queryError(c, "range", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *QueryHandler) TopMovers(c echo.Context) error {
	req := &models.TopMoversRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, _ := util.ParseDate(req.Date)

	res, err := h.engine.TopMovers(c.Request().Context(), date, req.Limit)
	if err != nil {
		return h.queryError(c, "movers", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *QueryHandler) ListSymbols(c echo.Context) error {
	req := &models.ListSymbolsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, _ := util.ParseDate(req.Date)

	symbols, err := h.engine.ListSymbols(c.Request().Context(), date)
	if err != nil {
		return h.queryError(c, "symbols", err)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"date":    req.Date,
		"symbols": symbols,
		"count":   len(symbols),
	})
}

func (h *QueryHandler) CandleSeries(c echo.Context) error {
	req := &models.CandleSeriesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, _ := util.ParseDate(req.Date)

	res, err := h.engine.CandleSeries(c.Request().Context(), req.Symbol, date, req.Interval, req.Limit)
	if err != nil {
		return h.queryError(c, "candles", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// queryError maps domain errors onto HTTP statuses.
func (h *QueryHandler) queryError(c echo.Context, op string, err error) error {
	if errors.Is(err, models.ErrNoData) {
		return xhttp.NotFoundResponse(c, "no data for the requested date")
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_VALIDATION",
			Field:   verr.Field,
			Message: verr.Error(),
		}})
	}

	h.logger.Error(op+" query error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, xhttp.InternalError("query failed").WithError(err))
}
