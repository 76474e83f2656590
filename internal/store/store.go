package store

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Job() Job
	Translator() Translator
	Audit() Audit
	InitialMigration(ctx context.Context) error
	Seed(ctx context.Context, translators model.TranslatorList) error
	Close() error
}

type DataStore struct {
	db         *gorm.DB
	job        Job
	translator Translator
	audit      Audit
}

func NewStore(db *gorm.DB, node *snowflake.Node) Store {
	return &DataStore{
		job:        NewJobStore(db, node),
		translator: NewTranslatorStore(db),
		audit:      NewAuditStore(db),
		db:         db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Job() Job {
	return s.job
}

func (s *DataStore) Translator() Translator {
	return s.translator
}

func (s *DataStore) Audit() Audit {
	return s.audit
}

func (s *DataStore) InitialMigration(ctx context.Context) error {
	ctx, err := s.NewTransactionContext(ctx)
	if err != nil {
		return err
	}

	if err := s.Job().InitialMigration(ctx); err != nil {
		_, _ = Rollback(ctx)
		return err
	}

	if err := s.Translator().InitialMigration(ctx); err != nil {
		_, _ = Rollback(ctx)
		return err
	}

	if err := s.Audit().InitialMigration(ctx); err != nil {
		_, _ = Rollback(ctx)
		return err
	}

	_, err = Commit(ctx)
	return err
}

// Seed upserts translator records mirrored from the certification system.
func (s *DataStore) Seed(ctx context.Context, translators model.TranslatorList) error {
	if len(translators) == 0 {
		return nil
	}

	tx, err := newTransaction(s.db.WithContext(ctx))
	if err != nil {
		return err
	}

	for _, t := range translators {
		if err := tx.tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&t).Error; err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
