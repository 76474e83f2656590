package store

import (
	"time"

	"github.com/dtapi/booking-coordinator/internal/store/model"
	"gorm.io/gorm"
)

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByID
	SortByScheduledTime
	SortByUpdatedTime
	SortByCreatedTime
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type JobQueryFilter BaseQuerier

func NewJobQueryFilter() *JobQueryFilter {
	return &JobQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *JobQueryFilter) ByID(ids ...int64) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id IN ?", ids)
	})
	return qf
}

func (qf *JobQueryFilter) ByStatus(statuses ...model.JobStatus) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		values := make([]string, 0, len(statuses))
		for _, s := range statuses {
			values = append(values, string(s))
		}
		return tx.Where("status IN ?", values)
	})
	return qf
}

func (qf *JobQueryFilter) ByTranslator(translatorIDs ...string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("assigned_translator_id IN ?", translatorIDs)
	})
	return qf
}

// ByParticipant keeps the jobs userID booked, holds or last held.
func (qf *JobQueryFilter) ByParticipant(userID string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("customer_id = ? OR assigned_translator_id = ? OR last_translator_id = ?", userID, userID, userID)
	})
	return qf
}

func (qf *JobQueryFilter) ByCustomer(customerID string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("customer_id = ?", customerID)
	})
	return qf
}

func (qf *JobQueryFilter) ByLanguagePair(pairs ...string) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("language_pair IN ?", pairs)
	})
	return qf
}

// ScheduledBetween keeps the jobs scheduled inside [from, until]. A zero bound is ignored.
func (qf *JobQueryFilter) ScheduledBetween(from, until time.Time) *JobQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if !from.IsZero() {
			tx = tx.Where("scheduled_time >= ?", from)
		}
		if !until.IsZero() {
			tx = tx.Where("scheduled_time <= ?", until)
		}
		return tx
	})
	return qf
}

type JobQueryOptions BaseQuerier

func NewJobQueryOptions() *JobQueryOptions {
	return &JobQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *JobQueryOptions) WithSortOrder(sort SortOrder) *JobQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByID:
			return tx.Order("id")
		case SortByScheduledTime:
			return tx.Order("scheduled_time")
		case SortByUpdatedTime:
			return tx.Order("updated_at")
		case SortByCreatedTime:
			return tx.Order("created_at")
		default:
			return tx
		}
	})
	return o
}

func (o *JobQueryOptions) WithLimit(limit int) *JobQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit)
	})
	return o
}

func (o *JobQueryOptions) WithOffset(offset int) *JobQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(offset)
	})
	return o
}

type TranslatorQueryFilter BaseQuerier

func NewTranslatorQueryFilter() *TranslatorQueryFilter {
	return &TranslatorQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *TranslatorQueryFilter) ByID(ids ...string) *TranslatorQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("id IN ?", ids)
	})
	return qf
}

// ByLanguagePair keeps the translators holding a certification for pair.
func (qf *TranslatorQueryFilter) ByLanguagePair(pair string) *TranslatorQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		certified := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.Certification{}).
			Select("translator_id").
			Where("language_pair = ?", pair)
		return tx.Where("id IN (?)", certified)
	})
	return qf
}
