package service

import (
	"context"
	"errors"
	"time"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"go.uber.org/zap"
)

const (
	operationDistanceTimeOverride = "distance_time_override"
	operationAdminCorrections     = "admin_corrections"
)

type DistanceTimeOverride struct {
	Distance *float64
	Time     *time.Duration
}

type AdminCorrections struct {
	AdminComments   *string
	Flagged         *bool
	SessionTime     *time.Duration
	ManuallyHandled *bool
	ByAdmin         *bool
}

// AdminService writes trusted corrections straight to the job record.
// It never reads or changes the job status and does not go through the lifecycle transitions.
type AdminService struct {
	store store.Store
}

func NewAdminService(store store.Store) *AdminService {
	return &AdminService{store: store}
}

func (a *AdminService) ApplyDistanceAndTimeOverride(ctx context.Context, user auth.User, jobID int64, o DistanceTimeOverride) (*model.Job, error) {
	return a.override(ctx, user, jobID, operationDistanceTimeOverride, model.JobOverride{
		Distance:         o.Distance,
		DurationEstimate: o.Time,
	})
}

func (a *AdminService) ApplyAdminCorrections(ctx context.Context, user auth.User, jobID int64, c AdminCorrections) (*model.Job, error) {
	return a.override(ctx, user, jobID, operationAdminCorrections, model.JobOverride{
		AdminComments:   c.AdminComments,
		Flagged:         c.Flagged,
		SessionTime:     c.SessionTime,
		ManuallyHandled: c.ManuallyHandled,
		ByAdmin:         c.ByAdmin,
	})
}

// override writes the fields of o that differ from the stored job, with one audit row, in one transaction.
// Nothing is written when no field differs.
func (a *AdminService) override(ctx context.Context, user auth.User, jobID int64, operation string, o model.JobOverride) (*model.Job, error) {
	if err := requireAdmin(user, operation); err != nil {
		return nil, err
	}

	ctx, err := a.store.NewTransactionContext(ctx)
	if err != nil {
		return nil, err
	}

	job, err := a.store.Job().Get(ctx, jobID)
	if err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(jobID)
		}
		return nil, err
	}

	effective, changes := diffOverride(*job, o)
	if effective.IsEmpty() {
		_, _ = store.Rollback(ctx)
		return job, nil
	}

	if effective.AdminComments != nil {
		now := time.Now().UTC()
		effective.AdminCommentsAt = &now
		changes["admin_comments_at"] = model.FieldChange{Old: job.AdminCommentsAt, New: now}
	}

	updated, err := a.store.Job().Put(ctx, jobID, effective)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	audit, err := model.NewJobAudit(jobID, user.ID, operation, changes)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}
	if _, err := a.store.Audit().Create(ctx, audit); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	zap.S().Named("admin").Infow("job overridden", "job_id", jobID, "operation", operation, "actor", user.ID, "fields", len(changes))
	return updated, nil
}

// diffOverride keeps only the supplied fields whose value differs from job.
func diffOverride(job model.Job, o model.JobOverride) (model.JobOverride, map[string]model.FieldChange) {
	var effective model.JobOverride
	changes := map[string]model.FieldChange{}

	if o.Distance != nil && *o.Distance != job.Distance {
		effective.Distance = o.Distance
		changes["distance"] = model.FieldChange{Old: job.Distance, New: *o.Distance}
	}
	if o.DurationEstimate != nil && *o.DurationEstimate != job.DurationEstimate {
		effective.DurationEstimate = o.DurationEstimate
		changes["duration_estimate"] = model.FieldChange{Old: job.DurationEstimate.String(), New: o.DurationEstimate.String()}
	}
	if o.SessionTime != nil && *o.SessionTime != job.SessionTime {
		effective.SessionTime = o.SessionTime
		changes["session_time"] = model.FieldChange{Old: job.SessionTime.String(), New: o.SessionTime.String()}
	}
	if o.Flagged != nil && !sameFlag(job.Flagged, *o.Flagged) {
		effective.Flagged = o.Flagged
		changes["flagged"] = model.FieldChange{Old: job.Flagged, New: *o.Flagged}
	}
	if o.ManuallyHandled != nil && !sameFlag(job.ManuallyHandled, *o.ManuallyHandled) {
		effective.ManuallyHandled = o.ManuallyHandled
		changes["manually_handled"] = model.FieldChange{Old: job.ManuallyHandled, New: *o.ManuallyHandled}
	}
	if o.ByAdmin != nil && !sameFlag(job.ByAdmin, *o.ByAdmin) {
		effective.ByAdmin = o.ByAdmin
		changes["by_admin"] = model.FieldChange{Old: job.ByAdmin, New: *o.ByAdmin}
	}
	if o.AdminComments != nil && *o.AdminComments != job.AdminComments {
		effective.AdminComments = o.AdminComments
		changes["admin_comments"] = model.FieldChange{Old: job.AdminComments, New: *o.AdminComments}
	}

	return effective, changes
}

func sameFlag(stored *bool, value bool) bool {
	return stored != nil && *stored == value
}
