package model

import (
	"encoding/json"
	"time"
)

type JobAudit struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	JobID     int64           `gorm:"not null;index" json:"job_id"`
	Actor     string          `gorm:"not null" json:"actor"`
	Operation string          `gorm:"not null" json:"operation"`
	Changes   json.RawMessage `gorm:"type:jsonb" json:"changes"`
	CreatedAt time.Time       `json:"created_at"`
}

type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

func NewJobAudit(jobID int64, actor, operation string, changes map[string]FieldChange) (JobAudit, error) {
	data, err := json.Marshal(changes)
	if err != nil {
		return JobAudit{}, err
	}
	return JobAudit{
		JobID:     jobID,
		Actor:     actor,
		Operation: operation,
		Changes:   data,
	}, nil
}
