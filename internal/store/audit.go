package store

import (
	"context"

	"github.com/dtapi/booking-coordinator/internal/store/model"
	"gorm.io/gorm"
)

type Audit interface {
	Create(ctx context.Context, audit model.JobAudit) (*model.JobAudit, error)
	List(ctx context.Context, jobID int64) ([]model.JobAudit, error)
	InitialMigration(ctx context.Context) error
}

type AuditStore struct {
	db *gorm.DB
}

var _ Audit = (*AuditStore)(nil)

func NewAuditStore(db *gorm.DB) Audit {
	return &AuditStore{db: db}
}

func (a *AuditStore) InitialMigration(ctx context.Context) error {
	return a.getDB(ctx).AutoMigrate(&model.JobAudit{})
}

func (a *AuditStore) Create(ctx context.Context, audit model.JobAudit) (*model.JobAudit, error) {
	if err := a.getDB(ctx).WithContext(ctx).Create(&audit).Error; err != nil {
		return nil, err
	}
	return &audit, nil
}

// List returns the audit trail of a job, oldest first.
func (a *AuditStore) List(ctx context.Context, jobID int64) ([]model.JobAudit, error) {
	var audits []model.JobAudit
	if err := a.getDB(ctx).WithContext(ctx).Where("job_id = ?", jobID).Order("id").Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}

func (a *AuditStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return a.db
}
