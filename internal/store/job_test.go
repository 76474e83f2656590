package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	st "github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertJobStm         = "INSERT INTO jobs (id, status, customer_id, language_pair, scheduled_time, created_at, updated_at, due_window, reopen_count, version) VALUES (%[1]d, '%[2]s', '%[3]s', '%[4]s', '%[5]s', '%[5]s', '%[5]s', 0, 0, %[6]d);"
	insertAssignedJobStm = "INSERT INTO jobs (id, status, customer_id, assigned_translator_id, language_pair, scheduled_time, created_at, updated_at, due_window, reopen_count, version) VALUES (%[1]d, '%[2]s', '%[3]s', '%[4]s', '%[5]s', '%[6]s', '%[6]s', '%[6]s', 0, 0, %[7]d);"
)

var _ = Describe("job store", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
		when   string
	)

	BeforeAll(func() {
		db, err := newTestDB()
		Expect(err).To(BeNil())
		gormdb = db

		node, err := snowflake.NewNode(2)
		Expect(err).To(BeNil())

		s = st.NewStore(db, node)
		Expect(s.InitialMigration(context.TODO())).To(BeNil())

		when = time.Now().UTC().Format("2006-01-02 15:04:05")
	})

	AfterAll(func() {
		s.Close()
	})

	Context("create and get", func() {
		It("generates an id and starts at version 1", func() {
			job, err := s.Job().Create(context.TODO(), model.Job{
				CustomerID:    "customer-1",
				LanguagePair:  "en-de",
				ScheduledTime: time.Now().UTC(),
				DueWindow:     time.Hour,
			})
			Expect(err).To(BeNil())
			Expect(job.ID).ToNot(BeZero())
			Expect(job.Version).To(Equal(int64(1)))
			Expect(job.Status).To(Equal(model.JobStatusOpen))

			stored, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(stored.CustomerID).To(Equal("customer-1"))
			Expect(stored.DueWindow).To(Equal(time.Hour))
			Expect(stored.TranslatorID).To(BeNil())
		})

		It("refuses a job breaking the assignment invariant", func() {
			_, err := s.Job().Create(context.TODO(), model.Job{
				Status:       model.JobStatusAssigned,
				CustomerID:   "customer-1",
				LanguagePair: "en-de",
			})
			Expect(err).ToNot(BeNil())
		})

		It("returns ErrRecordNotFound for an unknown job", func() {
			_, err := s.Job().Get(context.TODO(), 42)
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("refuses a duplicated id", func() {
			_, err := s.Job().Create(context.TODO(), model.Job{ID: 7, CustomerID: "c", LanguagePair: "en-de"})
			Expect(err).To(BeNil())
			_, err = s.Job().Create(context.TODO(), model.Job{ID: 7, CustomerID: "c", LanguagePair: "en-de"})
			Expect(err).To(MatchError(st.ErrDuplicateKey))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM jobs;")
		})
	})

	Context("list", func() {
		BeforeEach(func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, 1, "open", "customer-1", "en-fr", when, 1)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, 2, "open", "customer-2", "en-de", when, 1)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignedJobStm, 3, "assigned", "customer-1", "tr-1", "en-fr", when, 2)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, 4, "cancelled", "customer-2", "en-fr", when, 3)).Error).To(BeNil())
		})

		It("lists all the jobs -- without filter and options", func() {
			jobs, err := s.Job().List(context.TODO(), st.NewJobQueryFilter(), st.NewJobQueryOptions())
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(4))
		})

		It("lists jobs by status", func() {
			jobs, err := s.Job().List(context.TODO(), st.NewJobQueryFilter().ByStatus(model.JobStatusOpen), st.NewJobQueryOptions().WithSortOrder(st.SortByID))
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].ID).To(Equal(int64(1)))
			Expect(jobs[1].ID).To(Equal(int64(2)))
		})

		It("lists jobs by translator", func() {
			jobs, err := s.Job().List(context.TODO(), st.NewJobQueryFilter().ByTranslator("tr-1"), nil)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(*jobs[0].TranslatorID).To(Equal("tr-1"))
			Expect(jobs[0].Status).To(Equal(model.JobStatusAssigned))
		})

		It("lists jobs by participant", func() {
			jobs, err := s.Job().List(context.TODO(), st.NewJobQueryFilter().ByParticipant("tr-1"), nil)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal(int64(3)))

			jobs, err = s.Job().List(context.TODO(), st.NewJobQueryFilter().ByParticipant("customer-1").ByStatus(model.JobStatusOpen), nil)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal(int64(1)))
		})

		It("lists jobs by customer and language pair", func() {
			jobs, err := s.Job().List(context.TODO(), st.NewJobQueryFilter().ByCustomer("customer-2").ByLanguagePair("en-fr"), nil)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
			Expect(jobs[0].ID).To(Equal(int64(4)))
		})

		It("pages the result", func() {
			jobs, err := s.Job().List(context.TODO(), nil, st.NewJobQueryOptions().WithSortOrder(st.SortByID).WithLimit(2).WithOffset(1))
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].ID).To(Equal(int64(2)))
			Expect(jobs[1].ID).To(Equal(int64(3)))
		})

		It("counts jobs by status", func() {
			counts, err := s.Job().CountByStatus(context.TODO())
			Expect(err).To(BeNil())
			Expect(counts).To(HaveKeyWithValue(model.JobStatusOpen, int64(2)))
			Expect(counts).To(HaveKeyWithValue(model.JobStatusAssigned, int64(1)))
			Expect(counts).To(HaveKeyWithValue(model.JobStatusCancelled, int64(1)))
			Expect(counts).ToNot(HaveKey(model.JobStatusCompleted))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM jobs;")
		})
	})

	Context("compare and swap", func() {
		var job *model.Job

		assign := func(translatorID string) func(*model.Job) error {
			return func(j *model.Job) error {
				j.Status = model.JobStatusAssigned
				j.TranslatorID = &translatorID
				return nil
			}
		}

		BeforeEach(func() {
			var err error
			job, err = s.Job().Create(context.TODO(), model.Job{
				CustomerID:    "customer-1",
				LanguagePair:  "en-fr",
				ScheduledTime: time.Now().UTC(),
			})
			Expect(err).To(BeNil())
		})

		It("assigns the job when the version matches", func() {
			updated, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, assign("tr-1"))
			Expect(err).To(BeNil())
			Expect(updated.Version).To(Equal(job.Version + 1))
			Expect(updated.Status).To(Equal(model.JobStatusAssigned))
			Expect(*updated.TranslatorID).To(Equal("tr-1"))
		})

		It("returns the current record on a stale version", func() {
			_, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, assign("tr-1"))
			Expect(err).To(BeNil())

			called := false
			current, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, func(j *model.Job) error {
				called = true
				return assign("tr-2")(j)
			})
			Expect(err).To(MatchError(st.ErrVersionConflict))
			Expect(called).To(BeFalse())
			Expect(current).ToNot(BeNil())
			Expect(*current.TranslatorID).To(Equal("tr-1"))
			Expect(current.Version).To(Equal(job.Version + 1))
		})

		It("clears the assignment", func() {
			assigned, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, assign("tr-1"))
			Expect(err).To(BeNil())

			updated, err := s.Job().CompareAndSwap(context.TODO(), job.ID, assigned.Version, func(j *model.Job) error {
				j.Status = model.JobStatusCancelled
				j.ReleaseTranslator()
				return nil
			})
			Expect(err).To(BeNil())
			Expect(updated.TranslatorID).To(BeNil())
			Expect(*updated.LastTranslatorID).To(Equal("tr-1"))
			Expect(updated.Version).To(Equal(job.Version + 2))
		})

		It("returns ErrRecordNotFound for an unknown job", func() {
			_, err := s.Job().CompareAndSwap(context.TODO(), 99, 1, assign("tr-1"))
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		It("returns the mutator error without writing", func() {
			boom := errors.New("boom")
			_, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, func(*model.Job) error { return boom })
			Expect(err).To(MatchError(boom))

			stored, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Version).To(Equal(job.Version))
		})

		It("refuses a state breaking the assignment invariant", func() {
			_, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, func(j *model.Job) error {
				j.Status = model.JobStatusAssigned
				return nil
			})
			Expect(err).ToNot(BeNil())

			stored, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Version).To(Equal(job.Version))
		})

		It("lets exactly one of many concurrent writers win", func() {
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				winners []string
			)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(id string) {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := s.Job().CompareAndSwap(context.TODO(), job.ID, job.Version, assign(id))
					if err == nil {
						mu.Lock()
						winners = append(winners, id)
						mu.Unlock()
						return
					}
					Expect(err).To(MatchError(st.ErrVersionConflict))
				}(fmt.Sprintf("tr-%d", i))
			}
			wg.Wait()

			Expect(winners).To(HaveLen(1))
			stored, err := s.Job().Get(context.TODO(), job.ID)
			Expect(err).To(BeNil())
			Expect(*stored.TranslatorID).To(Equal(winners[0]))
			Expect(stored.Version).To(Equal(job.Version + 1))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM jobs;")
		})
	})

	Context("put", func() {
		It("writes only the override columns and bumps the version", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertAssignedJobStm, 10, "assigned", "customer-1", "tr-1", "en-fr", when, 4)).Error).To(BeNil())

			flagged := true
			comments := "checked by phone"
			updated, err := s.Job().Put(context.TODO(), 10, model.JobOverride{Flagged: &flagged, AdminComments: &comments})
			Expect(err).To(BeNil())
			Expect(updated.Version).To(Equal(int64(5)))
			Expect(*updated.Flagged).To(BeTrue())
			Expect(updated.AdminComments).To(Equal("checked by phone"))
			Expect(updated.Status).To(Equal(model.JobStatusAssigned))
			Expect(*updated.TranslatorID).To(Equal("tr-1"))
		})

		It("returns the job untouched for an empty override", func() {
			Expect(gormdb.Exec(fmt.Sprintf(insertJobStm, 11, "open", "customer-1", "en-fr", when, 1)).Error).To(BeNil())

			job, err := s.Job().Put(context.TODO(), 11, model.JobOverride{})
			Expect(err).To(BeNil())
			Expect(job.Version).To(Equal(int64(1)))
		})

		It("returns ErrRecordNotFound for an unknown job", func() {
			distance := 3.5
			_, err := s.Job().Put(context.TODO(), 12, model.JobOverride{Distance: &distance})
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE FROM jobs;")
		})
	})
})
