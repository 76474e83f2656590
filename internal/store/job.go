package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"gorm.io/gorm"
)

type Job interface {
	Get(ctx context.Context, id int64) (*model.Job, error)
	List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error)
	Create(ctx context.Context, job model.Job) (*model.Job, error)
	// CompareAndSwap applies mutator to the stored job and writes its lifecycle and scheduling columns only if the stored
	// version still equals expectedVersion. On success the stored version is expectedVersion+1.
	// On mismatch it returns the current record and ErrVersionConflict. Mutator errors are returned as is.
	CompareAndSwap(ctx context.Context, id int64, expectedVersion int64, mutator func(*model.Job) error) (*model.Job, error)
	// Put writes the override columns unconditionally and bumps the version. It never touches status or assignment.
	Put(ctx context.Context, id int64, override model.JobOverride) (*model.Job, error)
	CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error)
	InitialMigration(ctx context.Context) error
}

type JobStore struct {
	db   *gorm.DB
	node *snowflake.Node
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

func NewJobStore(db *gorm.DB, node *snowflake.Node) Job {
	return &JobStore{db: db, node: node}
}

func (j *JobStore) InitialMigration(ctx context.Context) error {
	return j.getDB(ctx).AutoMigrate(&model.Job{})
}

func (j *JobStore) Get(ctx context.Context, id int64) (*model.Job, error) {
	var job model.Job
	if err := j.getDB(ctx).WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying job: %w", err)
	}
	return &job, nil
}

func (j *JobStore) List(ctx context.Context, filter *JobQueryFilter, opts *JobQueryOptions) (model.JobList, error) {
	var jobs model.JobList
	tx := j.getDB(ctx).WithContext(ctx)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Model(&jobs).Find(&jobs).Error; err != nil {
		return nil, err
	}

	return jobs, nil
}

// Create stores a new job. A zero id is replaced by a generated one and the version starts at 1.
func (j *JobStore) Create(ctx context.Context, job model.Job) (*model.Job, error) {
	if job.ID == 0 {
		job.ID = j.node.Generate().Int64()
	}
	if job.Status == "" {
		job.Status = model.JobStatusOpen
	}
	job.Version = 1

	if err := job.Validate(); err != nil {
		return nil, err
	}

	if err := j.getDB(ctx).WithContext(ctx).Create(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}

	return &job, nil
}

func (j *JobStore) CompareAndSwap(ctx context.Context, id int64, expectedVersion int64, mutator func(*model.Job) error) (*model.Job, error) {
	current, err := j.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return current, ErrVersionConflict
	}

	next := *current
	if err := mutator(&next); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}

	columns := map[string]any{
		"status":                 next.Status,
		"assigned_translator_id": next.TranslatorID,
		"last_translator_id":     next.LastTranslatorID,
		"language_pair":          next.LanguagePair,
		"scheduled_time":         next.ScheduledTime,
		"due_window":             next.DueWindow,
		"distance":               next.Distance,
		"duration_estimate":      next.DurationEstimate,
		"session_time":           next.SessionTime,
		"started_at":             next.StartedAt,
		"ended_at":               next.EndedAt,
		"cancelled_at":           next.CancelledAt,
		"no_show_at":             next.NoShowAt,
		"reopen_count":           next.ReopenCount,
		"version":                expectedVersion + 1,
		"updated_at":             time.Now(),
	}

	result := j.getDB(ctx).WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(columns)
	if result.Error != nil {
		return nil, fmt.Errorf("updating job %d: %w", id, result.Error)
	}

	updated, err := j.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if result.RowsAffected == 0 {
		return updated, ErrVersionConflict
	}

	return updated, nil
}

func (j *JobStore) Put(ctx context.Context, id int64, override model.JobOverride) (*model.Job, error) {
	columns := override.Columns()
	if len(columns) == 0 {
		return j.Get(ctx, id)
	}
	columns["version"] = gorm.Expr("version + 1")
	columns["updated_at"] = time.Now()

	result := j.getDB(ctx).WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return nil, fmt.Errorf("updating job %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}

	return j.Get(ctx, id)
}

func (j *JobStore) CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error) {
	var rows []struct {
		Status model.JobStatus
		Count  int64
	}

	if err := j.getDB(ctx).WithContext(ctx).
		Model(&model.Job{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[model.JobStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}

	return counts, nil
}

func (j *JobStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return j.db
}
