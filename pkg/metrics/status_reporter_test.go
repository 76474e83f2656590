package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/dtapi/booking-coordinator/pkg/metrics"
	"github.com/go-chi/chi/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeCounter struct {
	calls  atomic.Int32
	counts map[model.JobStatus]int64
	err    error
}

func (f *fakeCounter) CountByStatus(ctx context.Context) (map[model.JobStatus]int64, error) {
	f.calls.Add(1)
	return f.counts, f.err
}

var _ = Describe("status reporter", func() {
	gaugeValue := func(status string) float64 {
		families, err := prometheus.DefaultGatherer.Gather()
		Expect(err).To(BeNil())
		for _, f := range families {
			if f.GetName() != "booking_"+metrics.JobStatusCount {
				continue
			}
			for _, m := range f.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "status" && l.GetValue() == status {
						return m.GetGauge().GetValue()
					}
				}
			}
		}
		return -1
	}

	It("publishes the count of every status", func() {
		counter := &fakeCounter{counts: map[model.JobStatus]int64{model.JobStatusOpen: 4, model.JobStatusAssigned: 2}}
		metrics.NewStatusReporter(counter, time.Minute).Report(context.TODO())

		Expect(gaugeValue("open")).To(Equal(4.0))
		Expect(gaugeValue("assigned")).To(Equal(2.0))
		Expect(gaugeValue("completed")).To(Equal(0.0))
	})

	It("keeps the previous values when counting fails", func() {
		metrics.NewStatusReporter(&fakeCounter{counts: map[model.JobStatus]int64{model.JobStatusCancelled: 3}}, time.Minute).Report(context.TODO())
		metrics.NewStatusReporter(&fakeCounter{err: errors.New("db down")}, time.Minute).Report(context.TODO())

		Expect(gaugeValue("cancelled")).To(Equal(3.0))
	})

	It("reports on every tick until the context is done", func() {
		counter := &fakeCounter{counts: map[model.JobStatus]int64{}}
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			metrics.NewStatusReporter(counter, 100*time.Millisecond).Run(ctx)
			close(done)
		}()

		Eventually(func() int32 { return counter.calls.Load() }).WithTimeout(3 * time.Second).Should(BeNumerically(">=", 2))
		cancel()
		Eventually(done).Should(BeClosed())
	})
})

var _ = Describe("chi middleware", func() {
	It("counts requests by route pattern", func() {
		m := metrics.NewMiddleware("booking-test")
		reg := prometheus.NewRegistry()
		m.MustRegister(reg)

		router := chi.NewRouter()
		router.Use(m.Handler)
		router.Get("/api/v1/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		for _, id := range []string{"1", "2"} {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+id, nil))
			Expect(rec.Code).To(Equal(http.StatusNoContent))
		}

		families, err := reg.Gather()
		Expect(err).To(BeNil())

		var total float64
		for _, f := range families {
			if f.GetName() != metrics.RequestsCollectorName {
				continue
			}
			for _, m := range f.GetMetric() {
				labels := map[string]string{}
				for _, l := range m.GetLabel() {
					labels[l.GetName()] = l.GetValue()
				}
				Expect(labels).To(HaveKeyWithValue("path", "/api/v1/jobs/{id}"))
				Expect(labels).To(HaveKeyWithValue("code", "204"))
				total += m.GetCounter().GetValue()
			}
		}
		Expect(total).To(Equal(2.0))
	})
})
