package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"DipSentinel/internal/collector"
	"DipSentinel/internal/logger"
	"DipSentinel/internal/model"
	"DipSentinel/internal/recorder"
	"DipSentinel/internal/report"

	"github.com/labstack/echo/v4"
)

// SnapshotStore returns the latest published pass.
type SnapshotStore interface {
	Latest() (*model.Snapshot, error)
}

// ChartSource builds candle charts on demand.
type ChartSource interface {
	Chart(ctx context.Context, symbol string, limit int) (*model.Chart, error)
}

// PassTrigger starts a screening pass in the background.
type PassTrigger interface {
	Trigger() bool
}

// Handler serves the screening API.
type Handler struct {
	store   SnapshotStore
	charts  ChartSource
	trigger PassTrigger
	hub     *Hub
	log     *logger.Logger
}

func NewHandler(store SnapshotStore, charts ChartSource, trigger PassTrigger, hub *Hub, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, charts: charts, trigger: trigger, hub: hub, log: log}
}

// RegisterRoutes mounts the API on e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/screen", h.GetScreen)
	api.GET("/screen/highlights", h.GetHighlights)
	api.POST("/screen/run", h.RunScreen)
	api.GET("/chart/:symbol", h.GetChart)

	if h.hub != nil {
		e.GET("/ws", h.hub.ServeWS)
	}
}

// latest resolves the snapshot or writes the 404/503 answer itself.
func (h *Handler) latest(c echo.Context) (*model.Snapshot, bool, error) {
	snap, err := h.store.Latest()
	if errors.Is(err, recorder.ErrNoSnapshot) {
		return nil, false, NotFoundResponse(c, "no screening pass has completed yet")
	}
	if err != nil {
		h.log.Error("load snapshot", logger.Error(err))
		return nil, false, InternalServerErrorResponse(c)
	}
	if snap.Failed() {
		return nil, false, ServiceUnavailableResponse(c, ScreenFailure{
			RunID:      snap.RunID,
			FinishedAt: snap.FinishedAt.Format(time.RFC3339),
			Error:      snap.Error,
		})
	}
	return snap, true, nil
}

// GET /api/screen
func (h *Handler) GetScreen(c echo.Context) error {
	snap, ok, err := h.latest(c)
	if !ok {
		return err
	}
	return SuccessResponse(c, snap)
}

// GET /api/screen/highlights
func (h *Handler) GetHighlights(c echo.Context) error {
	snap, ok, err := h.latest(c)
	if !ok {
		return err
	}
	return SuccessResponse(c, report.Summarize(snap))
}

// POST /api/screen/run
func (h *Handler) RunScreen(c echo.Context) error {
	if !h.trigger.Trigger() {
		return ConflictResponse(c, "a screening pass is already running")
	}
	return AcceptedResponse(c, "screening pass started")
}

// GET /api/chart/:symbol
func (h *Handler) GetChart(c echo.Context) error {
	req := &ChartRequest{}
	if errs := ReadAndValidateRequest(c, req); errs != nil {
		return BadRequestResponse(c, errs)
	}

	symbol := strings.ToUpper(req.Symbol)
	chart, err := h.charts.Chart(c.Request().Context(), symbol, req.Limit)
	if errors.Is(err, collector.ErrDataUnavailable) {
		return NotFoundResponse(c, err.Error())
	}
	if err != nil {
		h.log.Error("build chart", logger.String("symbol", symbol), logger.Error(err))
		return InternalServerErrorResponse(c)
	}
	return SuccessResponse(c, chart)
}
