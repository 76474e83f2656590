package service

import (
	"context"
	"errors"
	"time"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"go.uber.org/zap"
)

type JobFilter struct {
	Statuses     []model.JobStatus
	CustomerID   string
	TranslatorID string
	Limit        int
	Offset       int
}

type JobFilterFunc func(f *JobFilter)

func NewJobFilter(opts ...JobFilterFunc) *JobFilter {
	f := &JobFilter{}
	for _, o := range opts {
		o(f)
	}
	return f
}

func WithStatus(statuses ...model.JobStatus) JobFilterFunc {
	return func(f *JobFilter) {
		f.Statuses = append(f.Statuses, statuses...)
	}
}

func WithCustomerID(id string) JobFilterFunc {
	return func(f *JobFilter) {
		f.CustomerID = id
	}
}

func WithTranslatorID(id string) JobFilterFunc {
	return func(f *JobFilter) {
		f.TranslatorID = id
	}
}

func WithPage(limit, offset int) JobFilterFunc {
	return func(f *JobFilter) {
		f.Limit = limit
		f.Offset = offset
	}
}

type JobCreateForm struct {
	CustomerID    string
	LanguagePair  string
	ScheduledTime time.Time
	DueWindow     time.Duration
	Distance      float64
}

type JobUpdateForm struct {
	LanguagePair  *string
	ScheduledTime *time.Time
	DueWindow     *time.Duration
}

func (f JobUpdateForm) IsEmpty() bool {
	return f.LanguagePair == nil && f.ScheduledTime == nil && f.DueWindow == nil
}

type JobService struct {
	store    store.Store
	notifier Notifier
}

func NewJobService(store store.Store, notifier Notifier) *JobService {
	return &JobService{store: store, notifier: notifier}
}

// ListJobs lists the jobs visible to user. Only admins may filter on customer or translator.
func (s *JobService) ListJobs(ctx context.Context, user auth.User, filter *JobFilter) (model.JobList, error) {
	if filter == nil {
		filter = NewJobFilter()
	}

	q := store.NewJobQueryFilter()
	switch {
	case user.Role.IsAdmin():
		if filter.CustomerID != "" {
			q = q.ByCustomer(filter.CustomerID)
		}
		if filter.TranslatorID != "" {
			q = q.ByTranslator(filter.TranslatorID)
		}
	case user.Role == auth.RoleCustomer:
		q = q.ByCustomer(user.ID)
	case user.Role == auth.RoleTranslator:
		q = q.ByTranslator(user.ID)
	default:
		return nil, NewErrForbidden(user, "list jobs")
	}

	if len(filter.Statuses) > 0 {
		q = q.ByStatus(filter.Statuses...)
	}

	return s.store.Job().List(ctx, q, pageOptions(store.SortByScheduledTime, filter.Limit, filter.Offset))
}

// GetHistory lists the finished jobs userID took part in. Admins may look at any user.
func (s *JobService) GetHistory(ctx context.Context, user auth.User, userID string, limit, offset int) (model.JobList, error) {
	if userID == "" {
		userID = user.ID
	}
	if userID != user.ID && !user.Role.IsAdmin() {
		return nil, NewErrForbidden(user, "read the history of another user")
	}

	q := store.NewJobQueryFilter().
		ByParticipant(userID).
		ByStatus(model.JobStatusCompleted, model.JobStatusCancelled, model.JobStatusCustomerNoShow)

	return s.store.Job().List(ctx, q, pageOptions(store.SortByUpdatedTime, limit, offset))
}

func (s *JobService) GetJob(ctx context.Context, user auth.User, id int64) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, err
	}

	if !canViewJob(user, *job) {
		return nil, NewErrForbidden(user, "view job")
	}

	return job, nil
}

// CreateJob books a new job and announces it to the eligible translators.
func (s *JobService) CreateJob(ctx context.Context, user auth.User, form JobCreateForm) (*model.Job, error) {
	switch {
	case user.Role == auth.RoleCustomer:
		form.CustomerID = user.ID
	case user.Role.IsAdmin():
		if form.CustomerID == "" {
			return nil, NewErrInvalidRequest("customer_id is required")
		}
	default:
		return nil, NewErrForbidden(user, "create jobs")
	}

	job, err := s.store.Job().Create(ctx, model.Job{
		Status:        model.JobStatusOpen,
		CustomerID:    form.CustomerID,
		LanguagePair:  form.LanguagePair,
		ScheduledTime: form.ScheduledTime.UTC(),
		DueWindow:     form.DueWindow,
		Distance:      form.Distance,
	})
	if err != nil {
		return nil, err
	}

	zap.S().Named("job_service").Infow("job created", "job_id", job.ID, "customer_id", job.CustomerID, "language_pair", job.LanguagePair)
	publish(ctx, s.notifier, notification.NewEvent(job.ID, notification.NewJobAvailable, notification.Broadcast()))

	return job, nil
}

// UpdateJob changes the booking details. Customers may only edit jobs nobody accepted yet.
func (s *JobService) UpdateJob(ctx context.Context, user auth.User, id int64, form JobUpdateForm) (*model.Job, error) {
	job, err := s.GetJob(ctx, user, id)
	if err != nil {
		return nil, err
	}
	if form.IsEmpty() {
		return job, nil
	}

	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		if err := checkEditable(user, *job); err != nil {
			return nil, err
		}

		updated, err := s.store.Job().CompareAndSwap(ctx, id, job.Version, func(j *model.Job) error {
			if form.LanguagePair != nil {
				j.LanguagePair = *form.LanguagePair
			}
			if form.ScheduledTime != nil {
				j.ScheduledTime = form.ScheduledTime.UTC()
			}
			if form.DueWindow != nil {
				j.DueWindow = *form.DueWindow
			}
			return nil
		})
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		job = updated
	}

	return nil, NewErrTransitionConflict(id, job.Status)
}

func checkEditable(user auth.User, job model.Job) error {
	switch {
	case user.Role.IsAdmin():
		if job.Status.IsOpen() || job.Status == model.JobStatusAssigned {
			return nil
		}
	case isOwningCustomer(user, job):
		if job.Status.IsOpen() {
			return nil
		}
	default:
		return NewErrForbidden(user, "update job")
	}
	return NewErrInvalidTransition(job.ID, job.Status, job.Status)
}

func pageOptions(sort store.SortOrder, limit, offset int) *store.JobQueryOptions {
	opts := store.NewJobQueryOptions().WithSortOrder(sort)
	if limit > 0 {
		opts = opts.WithLimit(limit)
	}
	if offset > 0 {
		opts = opts.WithOffset(offset)
	}
	return opts
}
