package service_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dtapi/booking-coordinator/internal/service"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("admin service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.AdminService
		job    *model.Job
	)

	BeforeAll(func() {
		s, gormdb = newTestStore()
		Expect(s.Seed(context.TODO(), model.TranslatorList{certified("tr-1", "en-fr")})).To(Succeed())
		srv = service.NewAdminService(s)
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		job = newOpenJob(s, "en-fr", time.Now().UTC().Add(24*time.Hour))
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM job_audits;")
		gormdb.Exec("DELETE FROM jobs;")
	})

	Context("distance and time", func() {
		It("writes the values and one audit row", func() {
			distance := 42.0
			duration := 2 * time.Hour

			updated, err := srv.ApplyDistanceAndTimeOverride(context.TODO(), admin, job.ID, service.DistanceTimeOverride{
				Distance: &distance,
				Time:     &duration,
			})
			Expect(err).To(BeNil())
			Expect(updated.Distance).To(Equal(42.0))
			Expect(updated.DurationEstimate).To(Equal(2 * time.Hour))
			Expect(updated.Version).To(Equal(job.Version + 1))
			Expect(updated.Status).To(Equal(job.Status))

			audits, err := s.Audit().List(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(audits).To(HaveLen(1))
			Expect(audits[0].Actor).To(Equal(admin.ID))
			Expect(audits[0].Operation).To(Equal("distance_time_override"))

			changes := map[string]model.FieldChange{}
			Expect(json.Unmarshal(audits[0].Changes, &changes)).To(Succeed())
			Expect(changes).To(HaveKey("distance"))
			Expect(changes).To(HaveKey("duration_estimate"))
		})

		It("is a no-op when applied twice", func() {
			distance := 7.5
			override := service.DistanceTimeOverride{Distance: &distance}

			first, err := srv.ApplyDistanceAndTimeOverride(context.TODO(), admin, job.ID, override)
			Expect(err).To(BeNil())

			second, err := srv.ApplyDistanceAndTimeOverride(context.TODO(), admin, job.ID, override)
			Expect(err).To(BeNil())
			Expect(second.Version).To(Equal(first.Version))
			Expect(second.Distance).To(Equal(first.Distance))

			audits, err := s.Audit().List(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(audits).To(HaveLen(1))
		})

		It("never changes the status of an assigned job", func() {
			tr := "tr-1"
			assigned, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, func(j *model.Job) error {
				j.Status = model.JobStatusAssigned
				j.TranslatorID = &tr
				return nil
			})
			Expect(err).To(BeNil())

			distance := 3.0
			updated, err := srv.ApplyDistanceAndTimeOverride(context.TODO(), admin, job.ID, service.DistanceTimeOverride{Distance: &distance})
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.JobStatusAssigned))
			Expect(*updated.TranslatorID).To(Equal("tr-1"))
			Expect(updated.Version).To(Equal(assigned.Version + 1))
		})
	})

	Context("corrections", func() {
		It("stamps comments", func() {
			comment := "called the customer"
			flagged := true

			updated, err := srv.ApplyAdminCorrections(context.TODO(), admin, job.ID, service.AdminCorrections{
				AdminComments: &comment,
				Flagged:       &flagged,
			})
			Expect(err).To(BeNil())
			Expect(updated.AdminComments).To(Equal(comment))
			Expect(updated.AdminCommentsAt).ToNot(BeNil())
			Expect(*updated.Flagged).To(BeTrue())
		})

		It("writes nothing when no field is given", func() {
			updated, err := srv.ApplyAdminCorrections(context.TODO(), admin, job.ID, service.AdminCorrections{})
			Expect(err).To(BeNil())
			Expect(updated.Version).To(Equal(job.Version))

			audits, err := s.Audit().List(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(audits).To(BeEmpty())
		})
	})

	It("is reserved to admins", func() {
		distance := 1.0
		_, err := srv.ApplyDistanceAndTimeOverride(context.TODO(), customer, job.ID, service.DistanceTimeOverride{Distance: &distance})
		_, forbidden := err.(*service.ErrForbidden)
		Expect(forbidden).To(BeTrue())

		_, err = srv.ApplyAdminCorrections(context.TODO(), translatorUser("tr-1"), job.ID, service.AdminCorrections{})
		_, forbidden = err.(*service.ErrForbidden)
		Expect(forbidden).To(BeTrue())
	})

	It("returns not found for an unknown job", func() {
		distance := 1.0
		_, err := srv.ApplyDistanceAndTimeOverride(context.TODO(), admin, 1, service.DistanceTimeOverride{Distance: &distance})
		_, notFound := err.(*service.ErrResourceNotFound)
		Expect(notFound).To(BeTrue())
	})
})
