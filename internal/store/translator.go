package store

import (
	"context"
	"errors"

	"github.com/dtapi/booking-coordinator/internal/store/model"
	"gorm.io/gorm"
)

// Translator gives read access to the translator records mirrored from the certification system.
type Translator interface {
	Get(ctx context.Context, id string) (*model.Translator, error)
	List(ctx context.Context, filter *TranslatorQueryFilter) (model.TranslatorList, error)
	Create(ctx context.Context, translator model.Translator) (*model.Translator, error)
	InitialMigration(ctx context.Context) error
}

type TranslatorStore struct {
	db *gorm.DB
}

var _ Translator = (*TranslatorStore)(nil)

func NewTranslatorStore(db *gorm.DB) Translator {
	return &TranslatorStore{db: db}
}

func (t *TranslatorStore) InitialMigration(ctx context.Context) error {
	return t.getDB(ctx).AutoMigrate(&model.Translator{}, &model.Certification{})
}

func (t *TranslatorStore) Get(ctx context.Context, id string) (*model.Translator, error) {
	var translator model.Translator
	if err := t.getDB(ctx).WithContext(ctx).Preload("Certifications").First(&translator, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &translator, nil
}

func (t *TranslatorStore) List(ctx context.Context, filter *TranslatorQueryFilter) (model.TranslatorList, error) {
	var translators model.TranslatorList
	tx := t.getDB(ctx).WithContext(ctx)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Preload("Certifications").Order("id").Find(&translators).Error; err != nil {
		return nil, err
	}

	return translators, nil
}

func (t *TranslatorStore) Create(ctx context.Context, translator model.Translator) (*model.Translator, error) {
	if err := t.getDB(ctx).WithContext(ctx).Create(&translator).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, err
	}
	return &translator, nil
}

func (t *TranslatorStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return t.db
}
