package service

import (
	"context"
	"errors"
	"time"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/dtapi/booking-coordinator/pkg/metrics"
	"go.uber.org/zap"
)

// SessionData is what the translator reports when a job ends.
type SessionData struct {
	SessionTime      time.Duration
	Distance         *float64
	DurationEstimate *time.Duration
}

type LifecycleService struct {
	store    store.Store
	notifier Notifier
}

func NewLifecycleService(store store.Store, notifier Notifier) *LifecycleService {
	return &LifecycleService{store: store, notifier: notifier}
}

type transition struct {
	operation string
	to        model.JobStatus
	allowed   jobRule
	apply     func(job *model.Job, now time.Time)
}

func (l *LifecycleService) StartJob(ctx context.Context, user auth.User, jobID int64) (*model.Job, error) {
	_, job, err := l.transition(ctx, user, jobID, transition{
		operation: "start",
		to:        model.JobStatusInProgress,
		allowed:   canStartJob,
		apply: func(job *model.Job, now time.Time) {
			job.StartedAt = &now
		},
	})
	return job, err
}

func (l *LifecycleService) EndJob(ctx context.Context, user auth.User, jobID int64, data SessionData) (*model.Job, error) {
	_, job, err := l.transition(ctx, user, jobID, transition{
		operation: "end",
		to:        model.JobStatusCompleted,
		allowed:   canEndJob,
		apply: func(job *model.Job, now time.Time) {
			job.SessionTime = data.SessionTime
			if data.Distance != nil {
				job.Distance = *data.Distance
			}
			if data.DurationEstimate != nil {
				job.DurationEstimate = *data.DurationEstimate
			}
			job.EndedAt = &now
			job.ReleaseTranslator()
		},
	})
	return job, err
}

func (l *LifecycleService) CancelJob(ctx context.Context, user auth.User, jobID int64) (*model.Job, error) {
	before, job, err := l.transition(ctx, user, jobID, transition{
		operation: "cancel",
		to:        model.JobStatusCancelled,
		allowed:   canCancelJob,
		apply: func(job *model.Job, now time.Time) {
			job.CancelledAt = &now
			job.ReleaseTranslator()
		},
	})
	if err != nil {
		return nil, err
	}

	if before.TranslatorID != nil {
		publish(ctx, l.notifier, notification.NewEvent(job.ID, notification.JobCancelled, notification.Translator(*before.TranslatorID)))
	}
	return job, nil
}

func (l *LifecycleService) CustomerNotCall(ctx context.Context, user auth.User, jobID int64) (*model.Job, error) {
	_, job, err := l.transition(ctx, user, jobID, transition{
		operation: "customer_not_call",
		to:        model.JobStatusCustomerNoShow,
		allowed:   canReportNoShow,
		apply: func(job *model.Job, now time.Time) {
			job.NoShowAt = &now
			job.ReleaseTranslator()
		},
	})
	return job, err
}

// Reopen puts a cancelled or no-show job back on the market under the same id.
func (l *LifecycleService) Reopen(ctx context.Context, user auth.User, jobID int64) (*model.Job, error) {
	_, job, err := l.transition(ctx, user, jobID, transition{
		operation: "reopen",
		to:        model.JobStatusOpen,
		allowed:   canReopenJob,
		apply: func(job *model.Job, _ time.Time) {
			job.ReleaseTranslator()
			job.ReopenCount++
			job.StartedAt = nil
			job.EndedAt = nil
			job.CancelledAt = nil
			job.NoShowAt = nil
		},
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, l.notifier, notification.NewEvent(job.ID, notification.NewJobAvailable, notification.Broadcast()))
	return job, nil
}

// transition moves the job to t.to with compare-and-swap, re-validating against the fresh state after each conflict.
// It returns the job as it was before and after the write.
func (l *LifecycleService) transition(ctx context.Context, user auth.User, jobID int64, t transition) (before *model.Job, after *model.Job, err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
		}
		metrics.IncreaseTransitionMetric(t.operation, outcome)
	}()

	job, err := l.store.Job().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, NewErrJobNotFound(jobID)
		}
		return nil, nil, err
	}

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		if !t.allowed(user, *job) {
			return nil, nil, NewErrForbidden(user, t.operation+" job")
		}
		if !model.CanTransition(job.Status, t.to) {
			return nil, nil, NewErrInvalidTransition(job.ID, job.Status, t.to)
		}

		updated, err := l.store.Job().CompareAndSwap(ctx, job.ID, job.Version, func(j *model.Job) error {
			j.Status = t.to
			t.apply(j, time.Now().UTC())
			return nil
		})
		if err == nil {
			zap.S().Named("lifecycle").Infow("job transitioned", "job_id", jobID, "operation", t.operation, "from", job.Status, "to", t.to, "version", updated.Version)
			return job, updated, nil
		}

		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, nil, err
		}
		job = updated
	}

	return nil, nil, NewErrTransitionConflict(jobID, t.to)
}
