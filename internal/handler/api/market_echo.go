package api

import (
	"errors"
	"net/http"

	"AgriPulse/internal/domain/models"
	"AgriPulse/internal/jobs"
	"AgriPulse/internal/usecase"
	xhttp "AgriPulse/pkg/http"
	xlogger "AgriPulse/pkg/logger"
	"AgriPulse/pkg/queue"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler exposes the analytics, forecasting and advisory
// operations over HTTP.
type MarketEchoHandler struct {
	logger  *xlogger.Logger
	advisor *usecase.MarketAdvisor
	queue   queue.QueueService
}

func NewMarketEchoHandler(logger *xlogger.Logger, advisor *usecase.MarketAdvisor) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, advisor: advisor}
}

// SetQueue injects the job queue for async retrains.
func (h *MarketEchoHandler) SetQueue(q queue.QueueService) { h.queue = q }

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/prices", h.Prices)
	g.GET("/volatility", h.Volatility)
	g.GET("/trend", h.Trend)
	g.GET("/seasonality", h.Seasonality)
	g.GET("/anomalies", h.Anomalies)
	g.GET("/predict", h.Predict)
	g.GET("/advice", h.Advice)
	g.POST("/train", h.Train)
	g.POST("/train/async", h.TrainAsync)
	g.POST("/train/batch", h.TrainBatch)
	g.POST("/recommend", h.Recommend)
}

func (h *MarketEchoHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	points := h.advisor.Prices(req.Commodity, req.Region, req.Market, req.WindowDays)
	return xhttp.ListResponse(c, points, int64(len(points)))
}

func (h *MarketEchoHandler) Volatility(c echo.Context) error {
	req := &models.VolatilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	return xhttp.SuccessResponse(c, h.advisor.Volatility(req.Commodity, req.Region, req.WindowDays))
}

func (h *MarketEchoHandler) Trend(c echo.Context) error {
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	return xhttp.SuccessResponse(c, h.advisor.Trend(req.Commodity, req.Region, req.WindowDays))
}

func (h *MarketEchoHandler) Seasonality(c echo.Context) error {
	req := &models.SeasonalityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	return xhttp.SuccessResponse(c, h.advisor.Seasonality(req.Commodity, req.Region))
}

func (h *MarketEchoHandler) Anomalies(c echo.Context) error {
	req := &models.AnomaliesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	events := h.advisor.Anomalies(req.Commodity, req.Region, req.WindowDays, req.Sensitivity)
	return xhttp.ListResponse(c, events, int64(len(events)))
}

func (h *MarketEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := models.NewSeriesKey(req.Commodity, req.Region, req.Market)
	fc, err := h.advisor.Predict(c.Request().Context(), key, req.HorizonDays)
	if err != nil {
		return h.mapError(c, "predict", key, err)
	}
	return xhttp.SuccessResponse(c, fc)
}

func (h *MarketEchoHandler) Advice(c echo.Context) error {
	req := &models.AdviceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := models.NewSeriesKey(req.Commodity, req.Region, req.Market)
	advice, err := h.advisor.Advise(c.Request().Context(), key, req.HorizonDays, req.CurrentPrice, req.ReferencePrice)
	if err != nil {
		return h.mapError(c, "advice", key, err)
	}
	return xhttp.SuccessResponse(c, advice)
}

func (h *MarketEchoHandler) Train(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := models.NewSeriesKey(req.Commodity, req.Region, req.Market)
	if err := h.advisor.Train(c.Request().Context(), key, req.WindowDays); err != nil {
		return h.mapError(c, "train", key, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"key": key.String(), "status": "trained"})
}

// TrainAsync enqueues a retrain instead of blocking the request on it.
func (h *MarketEchoHandler) TrainAsync(c echo.Context) error {
	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.queue == nil {
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("job queue is not enabled"))
	}

	key := models.NewSeriesKey(req.Commodity, req.Region, req.Market)
	payload := jobs.TrainPayload{
		Commodity:  req.Commodity,
		Region:     req.Region,
		Market:     req.Market,
		WindowDays: req.WindowDays,
	}
	if err := h.queue.PublishMessage(c.Request().Context(), jobs.TypeTrainSeries, payload); err != nil {
		h.logger.Error("train enqueue error",
			xlogger.String("key", key.String()),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"key": key.String(), "status": "enqueued"})
}

func (h *MarketEchoHandler) TrainBatch(c echo.Context) error {
	req := &models.TrainBatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	keys := make([]models.SeriesKey, len(req.Series))
	for i, s := range req.Series {
		keys[i] = models.NewSeriesKey(s.Commodity, s.Region, s.Market)
	}

	outcomes := h.advisor.TrainBatch(c.Request().Context(), keys, req.WindowDays)
	return xhttp.ListResponse(c, outcomes, int64(len(outcomes)))
}

func (h *MarketEchoHandler) Recommend(c echo.Context) error {
	req := &models.RecommendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec := h.advisor.Recommend(req.CurrentPrice, req.Forecast, req.Volatility, req.ReferencePrice)
	return xhttp.SuccessResponse(c, rec)
}

func (h *MarketEchoHandler) mapError(c echo.Context, op string, key models.SeriesKey, err error) error {
	switch {
	case errors.Is(err, models.ErrModelUnavailable):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no trained model for %s", key.String()).WithError(err))
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableErrorf("not enough observations for %s", key.String()).WithError(err))
	case errors.Is(err, usecase.ErrTrainThrottled):
		appErr := xhttp.NewAppError("ERR_RATE_LIMITED", "", "retrain limit reached, try again later", http.StatusTooManyRequests)
		return xhttp.AppErrorResponse(c, appErr.WithError(err))
	default:
		h.logger.Error(op+" usecase error",
			xlogger.String("key", key.String()),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
