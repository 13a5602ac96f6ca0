package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/toko-ops/toko-ops/internal/jobs"
	"github.com/toko-ops/toko-ops/internal/reporting"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportWarmer is the slice of the reporting service the warmup job needs.
type ReportWarmer interface {
	Refresh(ctx context.Context) error
	SalesSeries(ctx context.Context, filter reporting.SalesFilter) ([]reporting.AggregateBucket, error)
	ProfitReport(ctx context.Context, filter reporting.ProfitFilter) (reporting.ProfitReport, error)
}

// ReportWarmupJob re-reads order data and pre-populates the report caches so
// the next dashboard view is served warm.
type ReportWarmupJob struct {
	Reports ReportWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportWarmupJob wires dependencies for the warmup handler.
func NewReportWarmupJob(reports ReportWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{Reports: reports, Logger: logger, Metrics: metrics}
}

// Handle processes report warmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}
	logger.Info("starting report warmup")

	start := time.Now()
	if err := j.Reports.Refresh(ctx); err != nil {
		resultErr = err
		logger.Error("refresh order set", slog.Any("error", err))
		return resultErr
	}
	if err := j.warm(ctx); err != nil {
		resultErr = err
		logger.Error("warm report caches", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed report warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ReportWarmupJob) warm(ctx context.Context) error {
	channels := []reporting.Channel{reporting.ChannelAll, reporting.ChannelOnline, reporting.ChannelPayLater}
	for _, ch := range channels {
		// Cap each combination so a slow database cannot wedge the worker.
		warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		if _, err := j.Reports.SalesSeries(warmCtx, reporting.SalesFilter{Granularity: reporting.GranularityWeekly, Channel: ch}); err != nil {
			cancel()
			return err
		}
		if _, err := j.Reports.SalesSeries(warmCtx, reporting.SalesFilter{Granularity: reporting.GranularityMonthly, Channel: ch}); err != nil {
			cancel()
			return err
		}
		if _, err := j.Reports.ProfitReport(warmCtx, reporting.ProfitFilter{Channel: ch}); err != nil {
			cancel()
			return err
		}
		cancel()
	}
	return nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
