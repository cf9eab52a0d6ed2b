/*
Copyright 2026 the MediaWiki api-testing Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package suites

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/fake"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/wiki"
	"github.com/wikimedia/mediawiki-tools-api-testing/test/api"
)

var _ = Describe("Job Queue", func() {
	Context("When the queue is empty", func() {
		It("should drain in a single batch", func() {
			api.RunAllJobs(ctx, fixture.Wiki)

			requests := fixture.Fake.Requests()
			Expect(requests).To(HaveLen(1))
			Expect(requests[0].Method).To(Equal(http.MethodPost))
			Expect(requests[0].Path).To(Equal("/index.php"))
			Expect(requests[0].Params.Get("title")).To(Equal(jobs.RunJobsPage))
			Expect(requests[0].Params.Get("maxjobs")).To(Equal("10"))
			Expect(requests[0].Params.Get("maxtime")).To(Equal("100"))
			Expect(requests[0].Params).To(HaveKey("signature"))
		})

		It("should report no work from a single batch", func() {
			n, err := fixture.Wiki.RunJobs(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Context("When jobs are queued", func() {
		BeforeEach(func() {
			for range 25 {
				fixture.Queue.Push("refreshLinks")
			}
		})

		It("should run batches until none are ready", func() {
			api.RunAllJobs(ctx, fixture.Wiki)

			Expect(fixture.Queue.Pending()).To(BeZero())
			Expect(fixture.Queue.Ran()).To(Equal(25))
			Expect(fixture.Fake.Requests()).To(HaveLen(3))
			Expect(testutil.ToFloat64(fixture.Metrics.JobsTotal)).To(BeNumerically("==", 25))
			Expect(testutil.ToFloat64(fixture.Metrics.BatchesTotal.WithLabelValues("ran"))).To(BeNumerically("==", 2))
			Expect(testutil.ToFloat64(fixture.Metrics.BatchesTotal.WithLabelValues("none_ready"))).To(BeNumerically("==", 1))
		})

		It("should report work remaining without a queue depth", func() {
			n, err := fixture.Wiki.RunJobs(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(100))
			Expect(fixture.Queue.Pending()).To(Equal(24))
		})

		It("should drain eventually while jobs keep arriving", func() {
			queue := fixture.Queue
			stop := make(chan struct{})
			DeferCleanup(func() { close(stop) })

			go func() {
				defer GinkgoRecover()

				for range 5 {
					select {
					case <-stop:
						return
					case <-time.After(10 * time.Millisecond):
						queue.Push("htmlCacheUpdate", "cirrusSearchLinksUpdate")
					}
				}
			}()

			api.WaitForQueueDrained(ctx, fixture.Wiki, 10*time.Second, 50*time.Millisecond)
			Expect(fixture.Queue.Ran()).To(BeNumerically(">=", 25))
		})

		It("should stop at the batch limit when one is set", func() {
			w, err := wiki.New(fixture.Config, &jobs.Options{BatchSize: 5, MaxBatches: 2}, GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.RunAllJobs(ctx)).To(MatchError(jobs.ErrQueueNotDrained))
			Expect(fixture.Queue.Pending()).To(Equal(15))
		})
	})

	Context("When the secret key is wrong", func() {
		It("should fail with a transport error", func() {
			cfg := *fixture.Config
			cfg.SecretKey = "not-the-secret"

			w, err := wiki.New(&cfg, nil, GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.RunAllJobs(ctx)).To(MatchError(jobs.ErrTransport))
		})
	})

	Context("When no secret key is configured", func() {
		It("should fail without contacting the wiki", func() {
			cfg := *fixture.Config
			cfg.SecretKey = ""

			w, err := wiki.New(&cfg, nil, GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())

			Expect(w.RunAllJobs(ctx)).To(MatchError(jobs.ErrConfiguration))
			Expect(fixture.Fake.Requests()).To(BeEmpty())
		})
	})

	Context("When the wiki misbehaves", func() {
		It("should reject a response without a reached status", func() {
			fixture.Fake.Mock().Page(jobs.RunJobsPage, func(_ *fake.Request) (interface{}, error) {
				return map[string]interface{}{"jobs": []interface{}{}}, nil
			})

			Expect(fixture.Wiki.RunAllJobs(ctx)).To(MatchError(jobs.ErrProtocol))
		})

		It("should reject a batch that claims progress but ran nothing", func() {
			fixture.Fake.Mock().Page(jobs.RunJobsPage, func(_ *fake.Request) (interface{}, error) {
				return map[string]interface{}{"reached": "time-limit", "jobs": []interface{}{}}, nil
			})

			Expect(fixture.Wiki.RunAllJobs(ctx)).To(MatchError(jobs.ErrProtocol))
			Expect(fixture.Fake.Requests()).To(HaveLen(1))
		})

		It("should not retry a failed batch", func() {
			fixture.Fake.Mock().Page(jobs.RunJobsPage, func(_ *fake.Request) (interface{}, error) {
				return nil, &fake.StatusError{Status: http.StatusServiceUnavailable, Message: "read only"}
			})

			Expect(fixture.Wiki.RunAllJobs(ctx)).To(MatchError(jobs.ErrTransport))
			Expect(fixture.Fake.Requests()).To(HaveLen(1))
		})
	})

	Context("When the configuration sends extra parameters", func() {
		It("should send them unsigned alongside the job runner parameters", func() {
			cfg := *fixture.Config
			cfg.ExtraParameters = map[string]interface{}{"formatversion": 2}

			w, err := wiki.New(&cfg, nil, GinkgoLogr)
			Expect(err).NotTo(HaveOccurred())

			api.RunAllJobs(ctx, w)

			params := fixture.Fake.Requests()[0].Params
			Expect(params.Get("formatversion")).To(Equal("2"))
			Expect(params.Get("format")).To(Equal("json"))
		})
	})
})
