package metrics

import (
	"context"
	"time"

	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"
)

// StatusCounter counts the stored jobs per status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error)
}

// StatusReporter refreshes the job status gauge on a jittered interval.
type StatusReporter struct {
	counter  StatusCounter
	interval time.Duration
}

func NewStatusReporter(counter StatusCounter, interval time.Duration) *StatusReporter {
	return &StatusReporter{counter: counter, interval: interval}
}

// Run reports once, then on every tick until ctx is done.
func (r *StatusReporter) Run(ctx context.Context) {
	ticker := jitterbug.New(r.interval, &jitterbug.Norm{Stdev: 30 * time.Millisecond, Mean: 0})
	defer ticker.Stop()

	for {
		r.Report(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *StatusReporter) Report(ctx context.Context) {
	counts, err := r.counter.CountByStatus(ctx)
	if err != nil {
		zap.S().Named("status_reporter").Errorf("failed to count jobs by status: %s", err)
		return
	}

	for _, status := range []model.JobStatus{
		model.JobStatusOpen,
		model.JobStatusAssigned,
		model.JobStatusInProgress,
		model.JobStatusCompleted,
		model.JobStatusCancelled,
		model.JobStatusCustomerNoShow,
		model.JobStatusReopened,
	} {
		UpdateJobStatusCountMetric(status.String(), counts[status])
	}
}
