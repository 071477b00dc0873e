package jobs

import (
	"context"
	"errors"
	"fmt"

	"AgriPulse/internal/domain/models"
	"AgriPulse/internal/usecase"
	"AgriPulse/pkg/logger"
	"AgriPulse/pkg/queue"
)

// TypeTrainSeries is the queue message type for single-series retrains.
const TypeTrainSeries = "train_series"

// TrainPayload identifies one series to retrain.
type TrainPayload struct {
	Commodity  string `json:"commodity"`
	Region     string `json:"region"`
	Market     string `json:"market"`
	WindowDays int    `json:"window_days"`
}

// TrainJob retrains one forecast model off the request path.
type TrainJob struct {
	advisor *usecase.MarketAdvisor
	logger  *logger.Logger
}

func NewTrainJob(advisor *usecase.MarketAdvisor, lgr *logger.Logger) *TrainJob {
	return &TrainJob{advisor: advisor, logger: lgr}
}

func (j *TrainJob) Name() string { return "train-job" }
func (j *TrainJob) Type() string { return TypeTrainSeries }

func (j *TrainJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[TrainPayload](payload)
	if err != nil {
		return fmt.Errorf("train payload: %w", err)
	}

	key := models.NewSeriesKey(p.Commodity, p.Region, p.Market)
	err = j.advisor.Train(ctx, key, p.WindowDays)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrInsufficientData):
		// Not retryable, more data has to arrive first.
		j.logger.Warn("train skipped, series too short",
			logger.String("key", key.String()))
		return nil
	case errors.Is(err, usecase.ErrTrainThrottled):
		// Retry picks it up after the limiter refills.
		return err
	default:
		return fmt.Errorf("train %s: %w", key.String(), err)
	}
}

var _ queue.Job = (*TrainJob)(nil)
