// Package api exposes the earnings aggregation flows over HTTP.
package api

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"EarnPull/internal/domain/models"
	"EarnPull/internal/service/ratelimit"
	"EarnPull/internal/usecase"
	"EarnPull/pkg/http"
	"EarnPull/pkg/logger"
	"EarnPull/pkg/util"
)

// Per-client token bucket for the API routes. Resolution fans out to
// several upstream providers, so inbound traffic stays well below the
// upstream limits.
const (
	rateCapacity = 10
	rateRefill   = 2 // tokens per second
)

type EarningsHandler struct {
	orch *usecase.Orchestrator
	rl   *ratelimit.Limiter
	log  *logger.Logger
}

func NewEarningsHandler(orch *usecase.Orchestrator, rl *ratelimit.Limiter, log *logger.Logger) *EarningsHandler {
	return &EarningsHandler{orch: orch, rl: rl, log: log}
}

// RegisterRoutes mounts the API routes on the echo instance.
func (h *EarningsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/earnings", h.GetEarnings)
	g.GET("/plays/today", h.GetTodaysPlays)
	g.GET("/strategy/:ticker", h.GetStrategy)
}

// GetEarnings handles GET /api/earnings?date=YYYY-MM-DD&timing=.
func (h *EarningsHandler) GetEarnings(c echo.Context) error {
	if !h.allow(c, "earnings") {
		return http.TooManyRequestsResponse(c)
	}

	var req models.EarningsRequest
	if errs := http.ReadAndValidateRequest(c, &req); errs != nil {
		return http.BadRequestResponse(c, errs)
	}

	result, err := h.orch.ResolveEarnings(c.Request().Context(), req.Date, models.Timing(req.Timing))
	if err != nil {
		h.log.Error("resolve earnings failed", logger.String("date", req.Date), logger.Error(err))
		return http.InternalServerErrorResponse(c)
	}
	return http.SuccessResponse(c, result)
}

// GetTodaysPlays handles GET /api/plays/today.
func (h *EarningsHandler) GetTodaysPlays(c echo.Context) error {
	if !h.allow(c, "plays") {
		return http.TooManyRequestsResponse(c)
	}

	plays, err := h.orch.ResolveTodaysPlays(c.Request().Context())
	if err != nil {
		h.log.Error("resolve todays plays failed", logger.Error(err))
		return http.InternalServerErrorResponse(c)
	}
	return http.SuccessResponse(c, plays)
}

// GetStrategy handles GET /api/strategy/:ticker?date=. The date defaults to
// today when omitted.
func (h *EarningsHandler) GetStrategy(c echo.Context) error {
	if !h.allow(c, "strategy") {
		return http.TooManyRequestsResponse(c)
	}

	var req models.StrategyRequest
	if errs := http.ReadAndValidateRequest(c, &req); errs != nil {
		return http.BadRequestResponse(c, errs)
	}
	ticker := strings.ToUpper(req.Ticker)
	date := req.Date
	if date == "" {
		date = util.FormatDate(time.Now())
	}

	rec, err := h.orch.RecommendTicker(c.Request().Context(), ticker, date)
	if err != nil {
		h.log.Error("recommend failed",
			logger.String("ticker", ticker), logger.String("date", date), logger.Error(err))
		return http.InternalServerErrorResponse(c)
	}
	if rec == nil {
		return http.AppErrorResponse(c, http.NotFoundErrorf("no earnings for %s on %s", ticker, date))
	}
	return http.SuccessResponse(c, rec)
}

func (h *EarningsHandler) allow(c echo.Context, route string) bool {
	key := c.RealIP() + ":" + route
	if h.rl.Allow(key, rateCapacity, rateRefill) {
		return true
	}
	h.log.Warn("rate limited", logger.String("remote", c.RealIP()), logger.String("route", route))
	return false
}
