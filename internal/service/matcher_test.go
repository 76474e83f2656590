package service_test

import (
	"context"
	"time"

	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("matcher", Ordered, func() {
	var (
		s        store.Store
		gormdb   *gorm.DB
		matcher  *service.Matcher
		tomorrow time.Time
	)

	BeforeAll(func() {
		s, gormdb = newTestStore()
		tomorrow = time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

		busy := certified("tr-busy", "en-fr")
		away := certified("tr-away", "en-fr")
		away.AvailableFrom = tomorrow.Add(72 * time.Hour)

		Expect(s.Seed(context.TODO(), model.TranslatorList{
			certified("tr-fr", "en-fr", "en-es"),
			certified("tr-de", "en-de"),
			busy,
			away,
		})).To(Succeed())
		matcher = service.NewMatcher(s)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM jobs;")
	})

	It("lists only the open jobs for the translator's certifications", func() {
		fr := newOpenJob(s, "en-fr", tomorrow)
		es := newOpenJob(s, "en-es", tomorrow.Add(4*time.Hour))
		newOpenJob(s, "en-de", tomorrow)
		taken := newOpenJob(s, "en-fr", tomorrow.Add(8*time.Hour))
		other := "tr-busy"
		_, err := s.Job().CompareAndSwap(context.TODO(), taken.ID, taken.Version, func(j *model.Job) error {
			j.Status = model.JobStatusAssigned
			j.TranslatorID = &other
			return nil
		})
		Expect(err).To(BeNil())

		jobs, err := matcher.PotentialJobs(context.TODO(), translatorUser("tr-fr"), "tr-fr")
		Expect(err).To(BeNil())
		Expect(jobs).To(HaveLen(2))
		Expect(jobs[0].ID).To(Equal(fr.ID))
		Expect(jobs[1].ID).To(Equal(es.ID))
	})

	It("hides jobs overlapping an assignment and jobs outside the availability", func() {
		held := newOpenJob(s, "en-fr", tomorrow)
		busy := "tr-busy"
		_, err := s.Job().CompareAndSwap(context.TODO(), held.ID, held.Version, func(j *model.Job) error {
			j.Status = model.JobStatusAssigned
			j.TranslatorID = &busy
			return nil
		})
		Expect(err).To(BeNil())
		overlapping := newOpenJob(s, "en-fr", tomorrow.Add(20*time.Minute))
		later := newOpenJob(s, "en-fr", tomorrow.Add(6*time.Hour))

		jobs, err := matcher.PotentialJobs(context.TODO(), admin, "tr-busy")
		Expect(err).To(BeNil())
		Expect(jobs).To(HaveLen(1))
		Expect(jobs[0].ID).To(Equal(later.ID))

		jobs, err = matcher.PotentialJobs(context.TODO(), admin, "tr-away")
		Expect(err).To(BeNil())
		Expect(jobs).To(BeEmpty())

		eligible, err := matcher.EligibleTranslators(context.TODO(), *overlapping)
		Expect(err).To(BeNil())
		ids := []string{}
		for _, t := range eligible {
			ids = append(ids, t.ID)
		}
		Expect(ids).To(ConsistOf("tr-fr"))
	})

	It("never offers a job to an uncertified translator", func() {
		job := newOpenJob(s, "en-fr", tomorrow)
		translator, err := s.Translator().Get(context.TODO(), "tr-de")
		Expect(err).To(BeNil())

		err = matcher.Qualifies(context.TODO(), *translator, *job)
		_, notEligible := err.(*service.ErrNotEligible)
		Expect(notEligible).To(BeTrue())

		jobs, err := matcher.PotentialJobs(context.TODO(), translatorUser("tr-de"), "tr-de")
		Expect(err).To(BeNil())
		Expect(jobs).To(BeEmpty())
	})

	It("returns nothing to broadcast once the job left open", func() {
		job := newOpenJob(s, "en-fr", tomorrow)
		job.Status = model.JobStatusCancelled

		eligible, err := matcher.EligibleTranslators(context.TODO(), *job)
		Expect(err).To(BeNil())
		Expect(eligible).To(BeEmpty())
	})

	It("forbids looking at another translator", func() {
		_, err := matcher.PotentialJobs(context.TODO(), translatorUser("tr-fr"), "tr-de")
		_, forbidden := err.(*service.ErrForbidden)
		Expect(forbidden).To(BeTrue())
	})
})
