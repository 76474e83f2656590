package v1

import (
	"context"
	"net/http"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/handlers/v1/mappers"
	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/go-chi/render"
)

// (POST /api/v1/jobs/accept)
func (s *ServiceHandler) AcceptJob(w http.ResponseWriter, r *http.Request) {
	var form AcceptJobRequest
	if !s.decode(w, r, &form) {
		return
	}

	job, err := s.acceptanceSrv.AcceptJob(r.Context(), auth.MustHaveUser(r.Context()), service.AcceptJobForm{JobID: form.JobID})
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobReply(*job))
}

// (POST /api/v1/jobs/{id}/accept)
func (s *ServiceHandler) AcceptJobWithID(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.acceptanceSrv.AcceptJobWithID)
}

// (POST /api/v1/jobs/{id}/start)
func (s *ServiceHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.lifecycleSrv.StartJob)
}

// (POST /api/v1/jobs/{id}/end)
func (s *ServiceHandler) EndJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(r)
	if !ok {
		badRequest(w, r, "invalid job id")
		return
	}

	var form EndJobRequest
	if !s.decode(w, r, &form) {
		return
	}

	job, err := s.lifecycleSrv.EndJob(r.Context(), auth.MustHaveUser(r.Context()), id,
		mappers.SessionDataApi(form.SessionTimeMinutes, form.Distance, form.DurationMinutes))
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobReply(*job))
}

// (POST /api/v1/jobs/{id}/cancel)
func (s *ServiceHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.lifecycleSrv.CancelJob)
}

// (POST /api/v1/jobs/{id}/customer-not-call)
func (s *ServiceHandler) CustomerNotCall(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.lifecycleSrv.CustomerNotCall)
}

// (POST /api/v1/jobs/{id}/reopen)
func (s *ServiceHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	s.jobAction(w, r, s.lifecycleSrv.Reopen)
}

type jobActionFunc func(ctx context.Context, user auth.User, jobID int64) (*model.Job, error)

// jobAction runs a bodyless operation on the job named in the path.
func (s *ServiceHandler) jobAction(w http.ResponseWriter, r *http.Request, action jobActionFunc) {
	id, ok := jobIDParam(r)
	if !ok {
		badRequest(w, r, "invalid job id")
		return
	}

	job, err := action(r.Context(), auth.MustHaveUser(r.Context()), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobReply(*job))
}
