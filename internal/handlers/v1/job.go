package v1

import (
	"net/http"
	"strconv"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/handlers/v1/mappers"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/go-chi/render"
)

// (GET /api/v1/jobs)
func (s *ServiceHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := ListJobsQuery{
		Status:       q["status"],
		CustomerID:   q.Get("customer_id"),
		TranslatorID: q.Get("translator_id"),
	}
	var ok bool
	if query.Limit, ok = intParam(w, r, "limit"); !ok {
		return
	}
	if query.Offset, ok = intParam(w, r, "offset"); !ok {
		return
	}
	if err := s.validator.Struct(query); err != nil {
		renderError(w, r, err)
		return
	}

	user := auth.MustHaveUser(r.Context())
	filter := mappers.JobFilterApi(query.Status, query.CustomerID, query.TranslatorID, query.Limit, query.Offset)
	jobs, err := s.jobSrv.ListJobs(r.Context(), user, filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobListReply(jobs))
}

// (GET /api/v1/jobs/history)
func (s *ServiceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, ok := intParam(w, r, "limit")
	if !ok {
		return
	}
	offset, ok := intParam(w, r, "offset")
	if !ok {
		return
	}

	user := auth.MustHaveUser(r.Context())
	jobs, err := s.jobSrv.GetHistory(r.Context(), user, r.URL.Query().Get("user_id"), limit, offset)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobListReply(jobs))
}

// (GET /api/v1/jobs/potential)
func (s *ServiceHandler) GetPotentialJobs(w http.ResponseWriter, r *http.Request) {
	user := auth.MustHaveUser(r.Context())

	translatorID := r.URL.Query().Get("translator_id")
	if translatorID == "" {
		translatorID = user.ID
	}

	jobs, err := s.matcher.PotentialJobs(r.Context(), user, translatorID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobListReply(jobs))
}

// (GET /api/v1/jobs/{id})
func (s *ServiceHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(r)
	if !ok {
		badRequest(w, r, "invalid job id")
		return
	}

	job, err := s.jobSrv.GetJob(r.Context(), auth.MustHaveUser(r.Context()), id)
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobReply(*job))
}

// (POST /api/v1/jobs)
func (s *ServiceHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var form JobCreateRequest
	if !s.decode(w, r, &form) {
		return
	}

	job, err := s.jobSrv.CreateJob(r.Context(), auth.MustHaveUser(r.Context()),
		mappers.JobCreateFormApi(form.CustomerID, form.LanguagePair, form.ScheduledTime, form.DueWindowMinutes, form.Distance))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, jobReply(*job))
}

// (PUT /api/v1/jobs/{id})
func (s *ServiceHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(r)
	if !ok {
		badRequest(w, r, "invalid job id")
		return
	}

	var form JobUpdateRequest
	if !s.decode(w, r, &form) {
		return
	}

	job, err := s.jobSrv.UpdateJob(r.Context(), auth.MustHaveUser(r.Context()), id,
		mappers.JobUpdateFormApi(form.LanguagePair, form.ScheduledTime, form.DueWindowMinutes))
	if err != nil {
		renderError(w, r, err)
		return
	}

	_ = render.Render(w, r, jobReply(*job))
}

func jobReply(j model.Job) JobReply {
	return JobReply(mappers.JobToApi(j))
}

func jobListReply(jobs model.JobList) JobListReply {
	out := make([]JobReply, 0, len(jobs))
	for _, j := range mappers.JobListToApi(jobs) {
		out = append(out, JobReply(j))
	}
	return JobListReply{Jobs: out}
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(w, r, name+" must be an integer")
		return 0, false
	}
	return v, true
}
