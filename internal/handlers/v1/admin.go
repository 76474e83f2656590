package v1

import (
	"context"
	"net/http"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/handlers/v1/mappers"
	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/go-chi/render"
)

// (POST /api/v1/admin/jobs/{id}/distance)
func (s *ServiceHandler) ApplyDistanceAndTimeOverride(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(r)
	if !ok {
		badRequest(w, r, "invalid job id")
		return
	}

	var form DistanceOverrideRequest
	if !s.decode(w, r, &form) {
		return
	}

	job, err := s.adminSrv.ApplyDistanceAndTimeOverride(r.Context(), auth.MustHaveUser(r.Context()), id,
		mappers.DistanceTimeOverrideApi(form.Distance, form.TimeMinutes))
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobReply(*job))
}

// (POST /api/v1/admin/jobs/{id}/corrections)
func (s *ServiceHandler) ApplyAdminCorrections(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(r)
	if !ok {
		badRequest(w, r, "invalid job id")
		return
	}

	var form CorrectionsRequest
	if !s.decode(w, r, &form) {
		return
	}

	job, err := s.adminSrv.ApplyAdminCorrections(r.Context(), auth.MustHaveUser(r.Context()), id,
		mappers.AdminCorrectionsApi(form.AdminComments, form.Flagged, form.SessionTimeMinutes, form.ManuallyHandled, form.ByAdmin))
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobReply(*job))
}

// (POST /api/v1/admin/jobs/{id}/notifications/push)
func (s *ServiceHandler) ResendNotifications(w http.ResponseWriter, r *http.Request) {
	s.resend(w, r, s.notificationSrv.ResendNotifications)
}

// (POST /api/v1/admin/jobs/{id}/notifications/sms)
func (s *ServiceHandler) ResendSMSNotifications(w http.ResponseWriter, r *http.Request) {
	s.resend(w, r, s.notificationSrv.ResendSMSNotifications)
}

type resendFunc func(ctx context.Context, user auth.User, jobID int64) (notification.DispatchResult, error)

func (s *ServiceHandler) resend(w http.ResponseWriter, r *http.Request, send resendFunc) {
	id, ok := jobIDParam(r)
	if !ok {
		badRequest(w, r, "invalid job id")
		return
	}

	result, err := send(r.Context(), auth.MustHaveUser(r.Context()), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, DispatchReply{
		EventID: result.EventID,
		Targets: result.Targets,
		Pushed:  nonNil(result.Pushed),
		SMS:     nonNil(result.SMS),
		Failed:  nonNil(result.Failed),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
