package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dtapi/booking-coordinator/internal/auth"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
)

// Matcher computes which open jobs a translator may take. It only reads the store
// and holds no state between calls.
type Matcher struct {
	store store.Store
}

func NewMatcher(store store.Store) *Matcher {
	return &Matcher{store: store}
}

// PotentialJobs lists the open jobs translatorID qualifies for, earliest first.
func (m *Matcher) PotentialJobs(ctx context.Context, user auth.User, translatorID string) (model.JobList, error) {
	if !user.Role.IsAdmin() && (user.Role != auth.RoleTranslator || user.ID != translatorID) {
		return nil, NewErrForbidden(user, "list potential jobs")
	}

	translator, err := m.store.Translator().Get(ctx, translatorID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrTranslatorNotFound(translatorID)
		}
		return nil, err
	}

	return m.potentialJobs(ctx, *translator)
}

func (m *Matcher) potentialJobs(ctx context.Context, translator model.Translator) (model.JobList, error) {
	pairs := translator.LanguagePairs()
	if len(pairs) == 0 {
		return model.JobList{}, nil
	}

	open, err := m.store.Job().List(ctx,
		store.NewJobQueryFilter().ByStatus(model.JobStatusOpen, model.JobStatusReopened).ByLanguagePair(pairs...),
		store.NewJobQueryOptions().WithSortOrder(store.SortByScheduledTime))
	if err != nil {
		return nil, err
	}

	active, err := m.activeJobs(ctx, translator.ID)
	if err != nil {
		return nil, err
	}

	jobs := make(model.JobList, 0, len(open))
	for _, job := range open {
		if m.qualifies(translator, job, active[translator.ID]) == "" {
			jobs = append(jobs, job)
		}
	}

	return jobs, nil
}

// Qualifies checks certification, availability and conflicting assignments. It ignores the job status.
func (m *Matcher) Qualifies(ctx context.Context, translator model.Translator, job model.Job) error {
	active, err := m.activeJobs(ctx, translator.ID)
	if err != nil {
		return err
	}

	if reason := m.qualifies(translator, job, active[translator.ID]); reason != "" {
		return NewErrNotEligible(job.ID, translator.ID, reason)
	}
	return nil
}

// EligibleTranslators lists the translators a broadcast for job should reach. It is empty once the job is no longer open.
func (m *Matcher) EligibleTranslators(ctx context.Context, job model.Job) (model.TranslatorList, error) {
	if !job.Status.IsOpen() {
		return model.TranslatorList{}, nil
	}

	candidates, err := m.store.Translator().List(ctx, store.NewTranslatorQueryFilter().ByLanguagePair(job.LanguagePair))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return model.TranslatorList{}, nil
	}

	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	active, err := m.activeJobs(ctx, ids...)
	if err != nil {
		return nil, err
	}

	eligible := make(model.TranslatorList, 0, len(candidates))
	for _, c := range candidates {
		if m.qualifies(c, job, active[c.ID]) == "" {
			eligible = append(eligible, c)
		}
	}

	return eligible, nil
}

// activeJobs returns the assigned and in progress jobs of each translator.
func (m *Matcher) activeJobs(ctx context.Context, translatorIDs ...string) (map[string]model.JobList, error) {
	jobs, err := m.store.Job().List(ctx,
		store.NewJobQueryFilter().ByStatus(model.JobStatusAssigned, model.JobStatusInProgress).ByTranslator(translatorIDs...),
		nil)
	if err != nil {
		return nil, err
	}

	active := make(map[string]model.JobList, len(translatorIDs))
	for _, j := range jobs {
		active[*j.TranslatorID] = append(active[*j.TranslatorID], j)
	}
	return active, nil
}

// qualifies returns why translator cannot take job, or an empty string.
func (m *Matcher) qualifies(translator model.Translator, job model.Job, active model.JobList) string {
	if !translator.IsCertifiedFor(job.LanguagePair) {
		return fmt.Sprintf("not certified for %s", job.LanguagePair)
	}

	if from, until := job.Window(); !translator.IsAvailable(from, until) {
		return "not available during the job window"
	}

	for _, other := range active {
		if other.ID != job.ID && other.Overlaps(job) {
			return fmt.Sprintf("already assigned to overlapping job %d", other.ID)
		}
	}

	return ""
}
