package service

import (
	"context"
	"errors"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/dtapi/booking-coordinator/pkg/metrics"
	"go.uber.org/zap"
)

// maxCASAttempts bounds the compare-and-swap retries of one operation.
const maxCASAttempts = 3

type AcceptJobForm struct {
	JobID int64
}

type AcceptanceService struct {
	store    store.Store
	matcher  *Matcher
	notifier Notifier
}

func NewAcceptanceService(store store.Store, matcher *Matcher, notifier Notifier) *AcceptanceService {
	return &AcceptanceService{store: store, matcher: matcher, notifier: notifier}
}

func (a *AcceptanceService) AcceptJob(ctx context.Context, user auth.User, form AcceptJobForm) (*model.Job, error) {
	return a.accept(ctx, user, form.JobID)
}

func (a *AcceptanceService) AcceptJobWithID(ctx context.Context, user auth.User, jobID int64) (*model.Job, error) {
	return a.accept(ctx, user, jobID)
}

func (a *AcceptanceService) accept(ctx context.Context, user auth.User, jobID int64) (accepted *model.Job, err error) {
	defer func() {
		metrics.IncreaseAcceptanceMetric(acceptanceOutcome(err))
	}()

	if user.Role != auth.RoleTranslator {
		return nil, NewErrForbidden(user, "accept jobs")
	}
	translatorID := user.ID

	job, err := a.store.Job().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(jobID)
		}
		return nil, err
	}

	translator, err := a.store.Translator().Get(ctx, translatorID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTranslatorNotFound(translatorID)
		}
		return nil, err
	}

	if err := a.matcher.Qualifies(ctx, *translator, *job); err != nil {
		return nil, err
	}

	if !job.Status.IsOpen() {
		return nil, notOpenError(*job, translatorID)
	}

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		updated, err := a.store.Job().CompareAndSwap(ctx, job.ID, job.Version, func(j *model.Job) error {
			j.Status = model.JobStatusAssigned
			j.TranslatorID = &translatorID
			return nil
		})
		if err == nil {
			zap.S().Named("acceptance").Infow("job accepted", "job_id", updated.ID, "translator_id", translatorID, "attempt", attempt)
			publish(ctx, a.notifier, notification.NewEvent(updated.ID, notification.JobAccepted, notification.Translator(translatorID)))
			return updated, nil
		}

		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}

		// someone else wrote the job first
		job = updated
		if !job.Status.IsOpen() {
			return nil, NewErrAlreadyTaken(jobID)
		}
		zap.S().Named("acceptance").Debugw("version conflict on an open job, retrying", "job_id", jobID, "attempt", attempt)
	}

	return nil, NewErrAlreadyTaken(jobID)
}

// notOpenError tells a lost race from a job nobody can take anymore.
func notOpenError(job model.Job, translatorID string) error {
	if job.Status == model.JobStatusCancelled {
		return NewErrNotEligible(job.ID, translatorID, "job is cancelled")
	}
	return NewErrAlreadyTaken(job.ID)
}

func acceptanceOutcome(err error) string {
	var (
		taken       *ErrAlreadyTaken
		notEligible *ErrNotEligible
	)
	switch {
	case err == nil:
		return metrics.AcceptanceAccepted
	case errors.As(err, &taken):
		return metrics.AcceptanceAlreadyTaken
	case errors.As(err, &notEligible):
		return metrics.AcceptanceNotEligible
	default:
		return metrics.AcceptanceError
	}
}
