package mappers

import (
	"strconv"
	"time"

	"github.com/dtapi/booking-coordinator/internal/store/model"
)

// Job is the wire form of a job. Durations are whole minutes and the id is a string.
type Job struct {
	ID                      string
	Status                  string
	CustomerID              string
	TranslatorID            *string
	LastTranslatorID        *string
	LanguagePair            string
	ScheduledTime           time.Time
	DueWindowMinutes        int
	Distance                float64
	DurationEstimateMinutes int
	SessionTimeMinutes      int
	Flagged                 bool
	ManuallyHandled         bool
	ByAdmin                 bool
	AdminComments           string
	AdminCommentsAt         *time.Time
	StartedAt               *time.Time
	EndedAt                 *time.Time
	CancelledAt             *time.Time
	NoShowAt                *time.Time
	ReopenCount             int
	Version                 int64
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func JobToApi(j model.Job) Job {
	return Job{
		ID:                      strconv.FormatInt(j.ID, 10),
		Status:                  j.Status.String(),
		CustomerID:              j.CustomerID,
		TranslatorID:            j.TranslatorID,
		LastTranslatorID:        j.LastTranslatorID,
		LanguagePair:            j.LanguagePair,
		ScheduledTime:           j.ScheduledTime,
		DueWindowMinutes:        int(j.DueWindow / time.Minute),
		Distance:                j.Distance,
		DurationEstimateMinutes: int(j.DurationEstimate / time.Minute),
		SessionTimeMinutes:      int(j.SessionTime / time.Minute),
		Flagged:                 isSet(j.Flagged),
		ManuallyHandled:         isSet(j.ManuallyHandled),
		ByAdmin:                 isSet(j.ByAdmin),
		AdminComments:           j.AdminComments,
		AdminCommentsAt:         j.AdminCommentsAt,
		StartedAt:               j.StartedAt,
		EndedAt:                 j.EndedAt,
		CancelledAt:             j.CancelledAt,
		NoShowAt:                j.NoShowAt,
		ReopenCount:             j.ReopenCount,
		Version:                 j.Version,
		CreatedAt:               j.CreatedAt,
		UpdatedAt:               j.UpdatedAt,
	}
}

func JobListToApi(jobs model.JobList) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, JobToApi(j))
	}
	return out
}

func isSet(b *bool) bool {
	return b != nil && *b
}
