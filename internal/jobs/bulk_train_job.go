package jobs

import (
	"context"
	"fmt"

	"AgriPulse/internal/domain/models"
	"AgriPulse/internal/usecase"
	"AgriPulse/pkg/logger"
	"AgriPulse/pkg/queue"
)

// TypeBulkTrain is the queue message type for multi-series retrains.
const TypeBulkTrain = "bulk_train"

// BulkTrainPayload identifies a set of series to retrain together.
type BulkTrainPayload struct {
	Series     []TrainPayload `json:"series"`
	WindowDays int            `json:"window_days"`
}

// BulkTrainJob retrains many forecast models in one pass, typically
// scheduled after a nightly data load.
type BulkTrainJob struct {
	advisor *usecase.MarketAdvisor
	logger  *logger.Logger
}

func NewBulkTrainJob(advisor *usecase.MarketAdvisor, lgr *logger.Logger) *BulkTrainJob {
	return &BulkTrainJob{advisor: advisor, logger: lgr}
}

func (j *BulkTrainJob) Name() string { return "bulk-train-job" }
func (j *BulkTrainJob) Type() string { return TypeBulkTrain }

func (j *BulkTrainJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[BulkTrainPayload](payload)
	if err != nil {
		return fmt.Errorf("bulk train payload: %w", err)
	}
	if len(p.Series) == 0 {
		return nil
	}

	keys := make([]models.SeriesKey, len(p.Series))
	for i, s := range p.Series {
		keys[i] = models.NewSeriesKey(s.Commodity, s.Region, s.Market)
	}

	outcomes := j.advisor.TrainBatch(ctx, keys, p.WindowDays)

	trained, failed := 0, 0
	for _, o := range outcomes {
		if o.OK {
			trained++
			continue
		}
		failed++
		j.logger.Warn("bulk train item failed",
			logger.String("key", o.Key),
			logger.String("reason", o.Reason))
	}

	j.logger.Info("bulk train finished",
		logger.Int("trained", trained),
		logger.Int("failed", failed))
	return nil
}

var _ queue.Job = (*BulkTrainJob)(nil)
