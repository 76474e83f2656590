package mappers

import (
	"time"

	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/dtapi/booking-coordinator/internal/store/model"
)

func minutes(m int) time.Duration {
	return time.Duration(m) * time.Minute
}

func minutesPtr(m *int) *time.Duration {
	if m == nil {
		return nil
	}
	d := minutes(*m)
	return &d
}

func JobCreateFormApi(customerID, languagePair string, scheduled time.Time, dueWindowMinutes int, distance float64) service.JobCreateForm {
	return service.JobCreateForm{
		CustomerID:    customerID,
		LanguagePair:  languagePair,
		ScheduledTime: scheduled,
		DueWindow:     minutes(dueWindowMinutes),
		Distance:      distance,
	}
}

func JobUpdateFormApi(languagePair *string, scheduled *time.Time, dueWindowMinutes *int) service.JobUpdateForm {
	return service.JobUpdateForm{
		LanguagePair:  languagePair,
		ScheduledTime: scheduled,
		DueWindow:     minutesPtr(dueWindowMinutes),
	}
}

func SessionDataApi(sessionMinutes int, distance *float64, durationMinutes *int) service.SessionData {
	return service.SessionData{
		SessionTime:      minutes(sessionMinutes),
		Distance:         distance,
		DurationEstimate: minutesPtr(durationMinutes),
	}
}

func DistanceTimeOverrideApi(distance *float64, timeMinutes *int) service.DistanceTimeOverride {
	return service.DistanceTimeOverride{
		Distance: distance,
		Time:     minutesPtr(timeMinutes),
	}
}

func AdminCorrectionsApi(comments *string, flagged *bool, sessionMinutes *int, manuallyHandled, byAdmin *bool) service.AdminCorrections {
	return service.AdminCorrections{
		AdminComments:   comments,
		Flagged:         flagged,
		SessionTime:     minutesPtr(sessionMinutes),
		ManuallyHandled: manuallyHandled,
		ByAdmin:         byAdmin,
	}
}

func JobFilterApi(statuses []string, customerID, translatorID string, limit, offset int) *service.JobFilter {
	opts := []service.JobFilterFunc{
		service.WithCustomerID(customerID),
		service.WithTranslatorID(translatorID),
		service.WithPage(limit, offset),
	}
	for _, s := range statuses {
		opts = append(opts, service.WithStatus(model.JobStatus(s)))
	}
	return service.NewJobFilter(opts...)
}
