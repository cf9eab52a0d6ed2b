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
package api

import (
	"context"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/client"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/config"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/fake"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/util"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/wiki"
)

// FakeSecretKey is the job runner key the fake wiki fixture enforces.
const FakeSecretKey = "fake-wiki-secret"

// FakeWikiFixture is a fake wiki served for the duration of one spec.
type FakeWikiFixture struct {
	Fake    *fake.Wiki
	Queue   *fake.JobQueue
	Config  *config.Config
	Wiki    *wiki.Wiki
	Metrics *jobs.Metrics
}

// NewFakeWiki starts a fake wiki with a job queue behind Special:RunJobs
// and schedules its shutdown.
func NewFakeWiki(options *jobs.Options) *FakeWikiFixture {
	queue := fake.NewJobQueue()

	f := fake.New().WithSecretKey(FakeSecretKey).WithLogger(GinkgoLogr.WithName("fake"))
	f.Mock().Page(jobs.RunJobsPage, queue.Handler)

	server := httptest.NewServer(f)
	DeferCleanup(server.Close)

	cfg := config.Default()
	cfg.BaseURI = server.URL + "/"
	cfg.SecretKey = FakeSecretKey

	metrics := jobs.NewMetrics()

	w, err := wiki.New(cfg, options, GinkgoLogr)
	Expect(err).NotTo(HaveOccurred())

	GinkgoWriter.Printf("Started fake wiki at %s\n", server.URL)

	return &FakeWikiFixture{
		Fake:    f,
		Queue:   queue,
		Config:  cfg,
		Wiki:    w.WithMetrics(metrics),
		Metrics: metrics,
	}
}

// Anon returns the fixture's shared anonymous action client.
func (f *FakeWikiFixture) Anon() *client.ActionClient {
	anon, err := f.Wiki.Anon()
	Expect(err).NotTo(HaveOccurred())

	return anon
}

// REST returns a REST client on a new session.
func (f *FakeWikiFixture) REST(prefix string) *client.RESTClient {
	rest, err := f.Wiki.REST(prefix)
	Expect(err).NotTo(HaveOccurred())

	return rest
}

// RunAllJobs drains the wiki's job queue, failing the test on error.
func RunAllJobs(ctx context.Context, w *wiki.Wiki) {
	GinkgoHelper()

	Expect(w.RunAllJobs(ctx)).To(Succeed())
}

// WaitForQueueDrained runs batches until the wiki reports none ready.
// Unlike RunAllJobs it tolerates failed batches, as seen while a wiki is
// still starting.
func WaitForQueueDrained(ctx context.Context, w *wiki.Wiki, timeout, polling time.Duration) {
	GinkgoHelper()

	Eventually(func(ctx context.Context) (int, error) {
		n, err := w.RunJobs(ctx, jobs.DefaultBatchSize)
		if err != nil {
			GinkgoWriter.Printf("Job runner batch failed, retrying: %v\n", err)
		}

		return n, err
	}).WithContext(ctx).WithTimeout(timeout).WithPolling(polling).Should(BeZero())
}

// UniqueTitle returns a page title no other spec will use.
func UniqueTitle(prefix string) string {
	return util.Title(prefix)
}
