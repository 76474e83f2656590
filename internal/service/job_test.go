package service_test

import (
	"context"
	"time"

	"github.com/dtapi/booking-coordinator/internal/notification"
	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("job service", Ordered, func() {
	var (
		s        store.Store
		gormdb   *gorm.DB
		notifier *recordingNotifier
		srv      *service.JobService
		tomorrow time.Time
	)

	BeforeAll(func() {
		s, gormdb = newTestStore()
		Expect(s.Seed(context.TODO(), model.TranslatorList{certified("tr-1", "en-fr")})).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		notifier = &recordingNotifier{}
		srv = service.NewJobService(s, notifier)
		tomorrow = time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM jobs;")
	})

	assign := func(job *model.Job, translatorID string) *model.Job {
		updated, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, func(j *model.Job) error {
			j.Status = model.JobStatusAssigned
			j.TranslatorID = &translatorID
			return nil
		})
		Expect(err).To(BeNil())
		return updated
	}

	Context("create", func() {
		It("books an open job for the customer and announces it", func() {
			job, err := srv.CreateJob(context.TODO(), customer, service.JobCreateForm{
				CustomerID:    "someone-else",
				LanguagePair:  "en-fr",
				ScheduledTime: tomorrow,
				DueWindow:     time.Hour,
			})
			Expect(err).To(BeNil())
			Expect(job.ID).ToNot(BeZero())
			Expect(job.CustomerID).To(Equal(customer.ID))
			Expect(job.Status).To(Equal(model.JobStatusOpen))
			Expect(job.Version).To(Equal(int64(1)))

			events := notifier.Events()
			Expect(events).To(HaveLen(1))
			Expect(events[0].Type).To(Equal(notification.NewJobAvailable))
			Expect(events[0].Target.IsBroadcast()).To(BeTrue())
		})

		It("requires a customer when an admin books", func() {
			_, err := srv.CreateJob(context.TODO(), admin, service.JobCreateForm{LanguagePair: "en-fr", ScheduledTime: tomorrow})
			_, invalid := err.(*service.ErrInvalidRequest)
			Expect(invalid).To(BeTrue())

			job, err := srv.CreateJob(context.TODO(), admin, service.JobCreateForm{CustomerID: "customer-9", LanguagePair: "en-fr", ScheduledTime: tomorrow})
			Expect(err).To(BeNil())
			Expect(job.CustomerID).To(Equal("customer-9"))
		})

		It("forbids translators", func() {
			_, err := srv.CreateJob(context.TODO(), translatorUser("tr-1"), service.JobCreateForm{LanguagePair: "en-fr", ScheduledTime: tomorrow})
			_, forbidden := err.(*service.ErrForbidden)
			Expect(forbidden).To(BeTrue())
		})
	})

	Context("list", func() {
		It("scopes the result to the caller", func() {
			mine := newOpenJob(s, "en-fr", tomorrow)
			_, err := s.Job().Create(context.TODO(), model.Job{CustomerID: "customer-2", LanguagePair: "en-fr", ScheduledTime: tomorrow})
			Expect(err).To(BeNil())
			assign(mine, "tr-1")

			all, err := srv.ListJobs(context.TODO(), admin, nil)
			Expect(err).To(BeNil())
			Expect(all).To(HaveLen(2))

			own, err := srv.ListJobs(context.TODO(), customer, service.NewJobFilter(service.WithCustomerID("customer-2")))
			Expect(err).To(BeNil())
			Expect(own).To(HaveLen(1))
			Expect(own[0].ID).To(Equal(mine.ID))

			assigned, err := srv.ListJobs(context.TODO(), translatorUser("tr-1"), nil)
			Expect(err).To(BeNil())
			Expect(assigned).To(HaveLen(1))

			open, err := srv.ListJobs(context.TODO(), admin, service.NewJobFilter(service.WithStatus(model.JobStatusOpen)))
			Expect(err).To(BeNil())
			Expect(open).To(HaveLen(1))
			Expect(open[0].CustomerID).To(Equal("customer-2"))
		})

		It("pages", func() {
			for i := 0; i < 5; i++ {
				newOpenJob(s, "en-fr", tomorrow.Add(time.Duration(i)*time.Hour))
			}

			page, err := srv.ListJobs(context.TODO(), admin, service.NewJobFilter(service.WithPage(2, 3)))
			Expect(err).To(BeNil())
			Expect(page).To(HaveLen(2))
			Expect(page[0].ScheduledTime).To(BeTemporally("==", tomorrow.Add(3*time.Hour)))
		})
	})

	Context("get", func() {
		It("lets any translator see an open job but not a job held by someone else", func() {
			job := newOpenJob(s, "en-fr", tomorrow)

			_, err := srv.GetJob(context.TODO(), translatorUser("tr-2"), job.ID)
			Expect(err).To(BeNil())

			assign(job, "tr-1")
			_, err = srv.GetJob(context.TODO(), translatorUser("tr-2"), job.ID)
			_, forbidden := err.(*service.ErrForbidden)
			Expect(forbidden).To(BeTrue())

			_, err = srv.GetJob(context.TODO(), translatorUser("tr-1"), job.ID)
			Expect(err).To(BeNil())
		})

		It("returns not found", func() {
			_, err := srv.GetJob(context.TODO(), admin, 12)
			_, notFound := err.(*service.ErrResourceNotFound)
			Expect(notFound).To(BeTrue())
		})
	})

	Context("update", func() {
		It("lets the customer move an open job", func() {
			job := newOpenJob(s, "en-fr", tomorrow)
			later := tomorrow.Add(2 * time.Hour)

			updated, err := srv.UpdateJob(context.TODO(), customer, job.ID, service.JobUpdateForm{ScheduledTime: &later})
			Expect(err).To(BeNil())
			Expect(updated.ScheduledTime).To(BeTemporally("==", later))
			Expect(updated.Version).To(Equal(job.Version + 1))
		})

		It("refuses the customer once the job is assigned", func() {
			job := newOpenJob(s, "en-fr", tomorrow)
			assign(job, "tr-1")
			pair := "en-de"

			_, err := srv.UpdateJob(context.TODO(), customer, job.ID, service.JobUpdateForm{LanguagePair: &pair})
			_, invalid := err.(*service.ErrInvalidTransition)
			Expect(invalid).To(BeTrue())

			updated, err := srv.UpdateJob(context.TODO(), admin, job.ID, service.JobUpdateForm{LanguagePair: &pair})
			Expect(err).To(BeNil())
			Expect(updated.LanguagePair).To(Equal("en-de"))
			Expect(updated.Status).To(Equal(model.JobStatusAssigned))
		})
	})

	Context("history", func() {
		It("lists the finished jobs of the caller", func() {
			done := newOpenJob(s, "en-fr", tomorrow)
			done = assign(done, "tr-1")
			_, err := s.Job().CompareAndSwap(context.TODO(), done.ID, done.Version, func(j *model.Job) error {
				j.Status = model.JobStatusCompleted
				j.ReleaseTranslator()
				return nil
			})
			Expect(err).To(BeNil())
			newOpenJob(s, "en-fr", tomorrow)

			history, err := srv.GetHistory(context.TODO(), translatorUser("tr-1"), "", 0, 0)
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(1))
			Expect(history[0].ID).To(Equal(done.ID))

			history, err = srv.GetHistory(context.TODO(), customer, "", 0, 0)
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(1))

			history, err = srv.GetHistory(context.TODO(), admin, "tr-1", 0, 0)
			Expect(err).To(BeNil())
			Expect(history).To(HaveLen(1))

			_, err = srv.GetHistory(context.TODO(), customer, "tr-1", 0, 0)
			_, forbidden := err.(*service.ErrForbidden)
			Expect(forbidden).To(BeTrue())
		})
	})
})
