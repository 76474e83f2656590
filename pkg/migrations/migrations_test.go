package migrations_test

import (
	"github.com/dtapi/booking-coordinator/internal/config"
	"github.com/dtapi/booking-coordinator/internal/store"
	"github.com/dtapi/booking-coordinator/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("migrations", Ordered, func() {
	var gormdb *gorm.DB

	BeforeAll(func() {
		cfg, err := config.New()
		Expect(err).To(BeNil())
		if cfg.Database.Type != "pgsql" {
			Skip("schema migrations run against postgres only")
		}

		gormdb, err = store.InitDB(cfg)
		Expect(err).To(BeNil())
	})

	AfterAll(func() {
		if gormdb == nil {
			return
		}
		sqlDB, err := gormdb.DB()
		Expect(err).To(BeNil())
		_ = sqlDB.Close()
	})

	It("creates the job tables", func() {
		Expect(migrations.MigrateStore(gormdb)).To(Succeed())

		for _, table := range []string{"jobs", "translators", "certifications", "job_audits"} {
			Expect(gormdb.Migrator().HasTable(table)).To(BeTrue(), table)
		}

		version, err := migrations.Version(gormdb)
		Expect(err).To(BeNil())
		Expect(version).To(Equal(int64(20260301100200)))
	})

	It("is idempotent", func() {
		Expect(migrations.MigrateStore(gormdb)).To(Succeed())
	})
})
