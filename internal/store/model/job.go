package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type Job struct {
	ID               int64         `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Status           JobStatus     `gorm:"type:VARCHAR(32);not null;index" json:"status"`
	CustomerID       string        `gorm:"not null;index" json:"customer_id"`
	TranslatorID     *string       `gorm:"column:assigned_translator_id;index" json:"assigned_translator_id"`
	LastTranslatorID *string       `json:"last_translator_id,omitempty"`
	LanguagePair     string        `gorm:"type:VARCHAR(16);not null;index" json:"language_pair"`
	ScheduledTime    time.Time     `gorm:"not null" json:"scheduled_time"`
	DueWindow        time.Duration `json:"due_window"`
	Distance         float64       `gorm:"type:double precision" json:"distance"`
	DurationEstimate time.Duration `json:"duration_estimate"`
	SessionTime      time.Duration `json:"session_time"`
	Flagged          *bool         `json:"flagged"`
	ManuallyHandled  *bool         `json:"manually_handled"`
	ByAdmin          *bool         `json:"by_admin"`
	AdminComments    string        `json:"admin_comments"`
	AdminCommentsAt  *time.Time    `json:"admin_comments_at,omitempty"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	EndedAt          *time.Time    `json:"ended_at,omitempty"`
	CancelledAt      *time.Time    `json:"cancelled_at,omitempty"`
	NoShowAt         *time.Time    `json:"no_show_at,omitempty"`
	ReopenCount      int           `gorm:"not null;default:0" json:"reopen_count"`
	Version          int64         `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type JobList []Job

func (j Job) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

// Window returns the interval during which the job may take place.
func (j Job) Window() (time.Time, time.Time) {
	return j.ScheduledTime.Add(-j.DueWindow), j.ScheduledTime.Add(j.DueWindow)
}

// Overlaps reports whether the windows of both jobs intersect.
func (j Job) Overlaps(other Job) bool {
	start, end := j.Window()
	otherStart, otherEnd := other.Window()
	return !start.After(otherEnd) && !otherStart.After(end)
}

func (j Job) IsAssignedTo(translatorID string) bool {
	return j.TranslatorID != nil && *j.TranslatorID == translatorID
}

// Validate checks the invariants that must hold before the job is persisted.
func (j Job) Validate() error {
	if !j.Status.IsValid() {
		return fmt.Errorf("job %d: unknown status %q", j.ID, j.Status)
	}
	if j.Status.IsActive() && j.TranslatorID == nil {
		return fmt.Errorf("job %d: status %s requires an assigned translator", j.ID, j.Status)
	}
	if !j.Status.IsActive() && j.TranslatorID != nil {
		return fmt.Errorf("job %d: status %s must not have an assigned translator", j.ID, j.Status)
	}
	return nil
}

// ReleaseTranslator clears the assignment, remembering who held the job.
func (j *Job) ReleaseTranslator() {
	if j.TranslatorID != nil {
		last := *j.TranslatorID
		j.LastTranslatorID = &last
	}
	j.TranslatorID = nil
}

// JobOverride holds the columns the admin path may write. Nil fields are left untouched.
type JobOverride struct {
	Distance         *float64
	DurationEstimate *time.Duration
	SessionTime      *time.Duration
	Flagged          *bool
	ManuallyHandled  *bool
	ByAdmin          *bool
	AdminComments    *string
	AdminCommentsAt  *time.Time
}

func (o JobOverride) IsEmpty() bool {
	return len(o.Columns()) == 0
}

// Columns returns the column assignments of the override.
func (o JobOverride) Columns() map[string]any {
	columns := map[string]any{}
	if o.Distance != nil {
		columns["distance"] = *o.Distance
	}
	if o.DurationEstimate != nil {
		columns["duration_estimate"] = *o.DurationEstimate
	}
	if o.SessionTime != nil {
		columns["session_time"] = *o.SessionTime
	}
	if o.Flagged != nil {
		columns["flagged"] = *o.Flagged
	}
	if o.ManuallyHandled != nil {
		columns["manually_handled"] = *o.ManuallyHandled
	}
	if o.ByAdmin != nil {
		columns["by_admin"] = *o.ByAdmin
	}
	if o.AdminComments != nil {
		columns["admin_comments"] = *o.AdminComments
	}
	if o.AdminCommentsAt != nil {
		columns["admin_comments_at"] = *o.AdminCommentsAt
	}
	return columns
}
