package v1

import (
	"net/http"
	"time"
)

type JobCreateRequest struct {
	CustomerID       string    `json:"customer_id" validate:"omitempty,max=64"`
	LanguagePair     string    `json:"language_pair" validate:"required,language_pair"`
	ScheduledTime    time.Time `json:"scheduled_time" validate:"required,future"`
	DueWindowMinutes int       `json:"due_window_minutes" validate:"gte=0,lte=1440"`
	Distance         float64   `json:"distance" validate:"gte=0"`
}

type JobUpdateRequest struct {
	LanguagePair     *string    `json:"language_pair" validate:"omitempty,language_pair"`
	ScheduledTime    *time.Time `json:"scheduled_time" validate:"omitempty,future"`
	DueWindowMinutes *int       `json:"due_window_minutes" validate:"omitempty,gte=0,lte=1440"`
}

type AcceptJobRequest struct {
	JobID int64 `json:"job_id,string" validate:"required,gt=0"`
}

type EndJobRequest struct {
	SessionTimeMinutes int      `json:"session_time_minutes" validate:"gte=0"`
	Distance           *float64 `json:"distance" validate:"omitempty,gte=0"`
	DurationMinutes    *int     `json:"duration_minutes" validate:"omitempty,gte=0"`
}

type DistanceOverrideRequest struct {
	Distance    *float64 `json:"distance" validate:"omitempty,gte=0"`
	TimeMinutes *int     `json:"time_minutes" validate:"omitempty,gte=0"`
}

type CorrectionsRequest struct {
	AdminComments      *string `json:"admin_comments" validate:"omitempty,max=2000"`
	Flagged            *bool   `json:"flagged"`
	SessionTimeMinutes *int    `json:"session_time_minutes" validate:"omitempty,gte=0"`
	ManuallyHandled    *bool   `json:"manually_handled"`
	ByAdmin            *bool   `json:"by_admin"`
}

type ListJobsQuery struct {
	Status       []string `json:"status" validate:"dive,job_status"`
	CustomerID   string   `json:"customer_id" validate:"omitempty,max=64"`
	TranslatorID string   `json:"translator_id" validate:"omitempty,max=64"`
	Limit        int      `json:"limit" validate:"gte=0,lte=500"`
	Offset       int      `json:"offset" validate:"gte=0"`
}

type JobReply struct {
	ID                      string     `json:"id"`
	Status                  string     `json:"status"`
	CustomerID              string     `json:"customer_id"`
	TranslatorID            *string    `json:"translator_id,omitempty"`
	LastTranslatorID        *string    `json:"last_translator_id,omitempty"`
	LanguagePair            string     `json:"language_pair"`
	ScheduledTime           time.Time  `json:"scheduled_time"`
	DueWindowMinutes        int        `json:"due_window_minutes"`
	Distance                float64    `json:"distance"`
	DurationEstimateMinutes int        `json:"duration_estimate_minutes"`
	SessionTimeMinutes      int        `json:"session_time_minutes"`
	Flagged                 bool       `json:"flagged"`
	ManuallyHandled         bool       `json:"manually_handled"`
	ByAdmin                 bool       `json:"by_admin"`
	AdminComments           string     `json:"admin_comments,omitempty"`
	AdminCommentsAt         *time.Time `json:"admin_comments_at,omitempty"`
	StartedAt               *time.Time `json:"started_at,omitempty"`
	EndedAt                 *time.Time `json:"ended_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
	NoShowAt                *time.Time `json:"no_show_at,omitempty"`
	ReopenCount             int        `json:"reopen_count"`
	Version                 int64      `json:"version"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

type JobListReply struct {
	Jobs []JobReply `json:"jobs"`
}

type DispatchReply struct {
	EventID string   `json:"event_id"`
	Targets int      `json:"targets"`
	Pushed  []string `json:"pushed"`
	SMS     []string `json:"sms"`
	Failed  []string `json:"failed"`
}

type ErrorReply struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	status    int
}

func (j JobReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (j JobListReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (d DispatchReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
