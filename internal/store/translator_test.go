package store_test

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	st "github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("translator store", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := newTestDB()
		Expect(err).To(BeNil())
		gormdb = db

		node, err := snowflake.NewNode(3)
		Expect(err).To(BeNil())

		s = st.NewStore(db, node)
		Expect(s.InitialMigration(context.TODO())).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		now := time.Now().UTC()
		_, err := s.Translator().Create(context.TODO(), model.Translator{
			ID:             "tr-1",
			Name:           "Ana",
			AvailableFrom:  now,
			AvailableUntil: now.Add(8 * time.Hour),
			Certifications: []model.Certification{{LanguagePair: "en-fr"}, {LanguagePair: "en-de"}},
		})
		Expect(err).To(BeNil())
		_, err = s.Translator().Create(context.TODO(), model.Translator{
			ID:             "tr-2",
			Name:           "Bo",
			Certifications: []model.Certification{{LanguagePair: "en-de"}},
		})
		Expect(err).To(BeNil())
		_, err = s.Translator().Create(context.TODO(), model.Translator{ID: "tr-3", Name: "Cy"})
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM certifications;")
		gormdb.Exec("DELETE FROM translators;")
	})

	It("gets a translator with its certifications", func() {
		t, err := s.Translator().Get(context.TODO(), "tr-1")
		Expect(err).To(BeNil())
		Expect(t.Name).To(Equal("Ana"))
		Expect(t.LanguagePairs()).To(ConsistOf("en-fr", "en-de"))
		Expect(t.IsCertifiedFor("en-fr")).To(BeTrue())
		Expect(t.IsCertifiedFor("fr-it")).To(BeFalse())
	})

	It("returns ErrRecordNotFound for an unknown translator", func() {
		_, err := s.Translator().Get(context.TODO(), "nobody")
		Expect(err).To(MatchError(st.ErrRecordNotFound))
	})

	It("lists every translator", func() {
		translators, err := s.Translator().List(context.TODO(), nil)
		Expect(err).To(BeNil())
		Expect(translators).To(HaveLen(3))
		Expect(translators[0].ID).To(Equal("tr-1"))
	})

	It("lists the translators certified for a language pair", func() {
		translators, err := s.Translator().List(context.TODO(), st.NewTranslatorQueryFilter().ByLanguagePair("en-de"))
		Expect(err).To(BeNil())
		Expect(translators).To(HaveLen(2))
		Expect(translators[0].ID).To(Equal("tr-1"))
		Expect(translators[1].ID).To(Equal("tr-2"))

		translators, err = s.Translator().List(context.TODO(), st.NewTranslatorQueryFilter().ByLanguagePair("en-fr").ByID("tr-2", "tr-3"))
		Expect(err).To(BeNil())
		Expect(translators).To(BeEmpty())
	})

	It("refuses a duplicated translator", func() {
		_, err := s.Translator().Create(context.TODO(), model.Translator{ID: "tr-3"})
		Expect(err).To(MatchError(st.ErrDuplicateKey))
	})
})

var _ = Describe("audit store", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := newTestDB()
		Expect(err).To(BeNil())
		gormdb = db

		node, err := snowflake.NewNode(4)
		Expect(err).To(BeNil())

		s = st.NewStore(db, node)
		Expect(s.InitialMigration(context.TODO())).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM job_audits;")
	})

	It("lists the audit trail of a job in creation order", func() {
		first, err := model.NewJobAudit(1, "admin-1", "update", map[string]model.FieldChange{"flagged": {Old: nil, New: true}})
		Expect(err).To(BeNil())
		second, err := model.NewJobAudit(1, "admin-2", "update", map[string]model.FieldChange{"distance": {Old: 0.0, New: 12.5}})
		Expect(err).To(BeNil())
		other, err := model.NewJobAudit(2, "admin-1", "update", map[string]model.FieldChange{"by_admin": {Old: nil, New: true}})
		Expect(err).To(BeNil())

		for _, a := range []model.JobAudit{first, second, other} {
			_, err := s.Audit().Create(context.TODO(), a)
			Expect(err).To(BeNil())
		}

		audits, err := s.Audit().List(context.TODO(), 1)
		Expect(err).To(BeNil())
		Expect(audits).To(HaveLen(2))
		Expect(audits[0].Actor).To(Equal("admin-1"))
		Expect(audits[1].Actor).To(Equal("admin-2"))
		Expect(string(audits[1].Changes)).To(MatchJSON(`{"distance":{"old":0,"new":12.5}}`))
	})

	It("returns an empty trail for a job without overrides", func() {
		audits, err := s.Audit().List(context.TODO(), 3)
		Expect(err).To(BeNil())
		Expect(audits).To(BeEmpty())
	})
})
