package probe_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skarras/circuitguard/circuitbreaker"
	"github.com/skarras/circuitguard/internal/probe"
	"github.com/skarras/circuitguard/internal/target"
)

func newTarget(rawURL string, threshold int) *target.Target {
	cb, err := circuitbreaker.New(
		circuitbreaker.WithName("probe-test"),
		circuitbreaker.WithFailureThreshold(threshold),
		circuitbreaker.WithRecoveryTimeout(30*time.Second),
		circuitbreaker.WithExpectedFailure(probe.ErrFailed),
		circuitbreaker.WithRegistry(circuitbreaker.NewRegistry()),
	)
	Expect(err).NotTo(HaveOccurred())

	u, err := url.Parse(rawURL)
	Expect(err).NotTo(HaveOccurred())

	return target.New("probe-test", u, cb)
}

var _ = Describe("Once", func() {
	var (
		ctx    context.Context
		client *http.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &http.Client{Timeout: 1 * time.Second}
	})

	Context("with a healthy upstream", func() {
		It("should succeed and record the probe", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			t := newTarget(server.URL, 1)
			Expect(probe.Once(ctx, client, t)).To(Succeed())

			status, at := t.LastProbe()
			Expect(status).To(Equal(http.StatusOK))
			Expect(at).NotTo(BeZero())
			Expect(t.Breaker().Closed()).To(BeTrue())
		})

		It("should treat client errors as success, the upstream answered", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			t := newTarget(server.URL, 1)
			Expect(probe.Once(ctx, client, t)).To(Succeed())
			Expect(t.Breaker().Closed()).To(BeTrue())
		})
	})

	Context("with a failing upstream", func() {
		It("should classify 5xx responses as probe failures", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			t := newTarget(server.URL, 2)
			err := probe.Once(ctx, client, t)
			Expect(errors.Is(err, probe.ErrFailed)).To(BeTrue())
			Expect(t.Breaker().FailureCount()).To(Equal(1))
			Expect(t.Breaker().Closed()).To(BeTrue())
		})

		It("should classify transport errors as probe failures", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			server.Close() // nothing is listening anymore

			t := newTarget(server.URL, 2)
			err := probe.Once(ctx, client, t)
			Expect(errors.Is(err, probe.ErrFailed)).To(BeTrue())
			Expect(t.Breaker().FailureCount()).To(Equal(1))
		})

		It("should trip the breaker at the threshold and keep probes off the wire", func() {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusInternalServerError)
			}))
			defer server.Close()

			t := newTarget(server.URL, 2)
			probe.Once(ctx, client, t)
			probe.Once(ctx, client, t)
			Expect(t.Breaker().Opened()).To(BeTrue())
			Expect(hits.Load()).To(Equal(int32(2)))

			err := probe.Once(ctx, client, t)
			Expect(errors.Is(err, circuitbreaker.ErrOpen)).To(BeTrue())
			Expect(hits.Load()).To(Equal(int32(2)))
		})
	})
})

var _ = Describe("Run", func() {
	It("should stop when the context is cancelled", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		t := newTarget(server.URL, 1)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			defer close(done)
			probe.Run(ctx, t, 10*time.Millisecond, 1*time.Second, discardLogger())
		}()

		Eventually(func() int {
			status, _ := t.LastProbe()
			return status
		}).Should(Equal(http.StatusOK))

		cancel()
		Eventually(done).Should(BeClosed())
	})
})
