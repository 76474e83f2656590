package v1

import (
	"net/http"
	"strconv"

	"github.com/dtapi/booking-coordinator/internal/handlers/validator"
	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ServiceHandler struct {
	jobSrv          *service.JobService
	matcher         *service.Matcher
	acceptanceSrv   *service.AcceptanceService
	lifecycleSrv    *service.LifecycleService
	adminSrv        *service.AdminService
	notificationSrv *service.NotificationService
	validator       *validator.Validator
}

func NewServiceHandler(
	jobService *service.JobService,
	matcher *service.Matcher,
	acceptanceService *service.AcceptanceService,
	lifecycleService *service.LifecycleService,
	adminService *service.AdminService,
	notificationService *service.NotificationService,
) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewJobValidationRules()...)

	return &ServiceHandler{
		jobSrv:          jobService,
		matcher:         matcher,
		acceptanceSrv:   acceptanceService,
		lifecycleSrv:    lifecycleService,
		adminSrv:        adminService,
		notificationSrv: notificationService,
		validator:       v,
	}
}

// Routes mounts the API on r. The caller must have authenticated the request.
func (s *ServiceHandler) Routes(r chi.Router) {
	r.Route("/api/v1/jobs", func(r chi.Router) {
		r.Get("/", s.ListJobs)
		r.Post("/", s.CreateJob)
		r.Get("/history", s.GetHistory)
		r.Get("/potential", s.GetPotentialJobs)
		r.Post("/accept", s.AcceptJob)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetJob)
			r.Put("/", s.UpdateJob)
			r.Post("/accept", s.AcceptJobWithID)
			r.Post("/start", s.StartJob)
			r.Post("/end", s.EndJob)
			r.Post("/cancel", s.CancelJob)
			r.Post("/customer-not-call", s.CustomerNotCall)
			r.Post("/reopen", s.Reopen)
		})
	})

	r.Route("/api/v1/admin/jobs/{id}", func(r chi.Router) {
		r.Post("/distance", s.ApplyDistanceAndTimeOverride)
		r.Post("/corrections", s.ApplyAdminCorrections)
		r.Post("/notifications/push", s.ResendNotifications)
		r.Post("/notifications/sms", s.ResendSMSNotifications)
	})
}

func jobIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// decode reads the JSON body into form and validates it.
func (s *ServiceHandler) decode(w http.ResponseWriter, r *http.Request, form any) bool {
	if err := render.DecodeJSON(r.Body, form); err != nil {
		badRequest(w, r, "malformed body: "+err.Error())
		return false
	}
	if err := s.validator.Struct(form); err != nil {
		renderError(w, r, err)
		return false
	}
	return true
}
