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
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/wiki"
	"github.com/wikimedia/mediawiki-tools-api-testing/test/api"
)

var _ = Describe("Live Wiki", Label("integration"), func() {
	var (
		config *api.TestConfig
		w      *wiki.Wiki
	)

	BeforeEach(func() {
		c, err := api.LoadTestConfig()
		if err != nil {
			Skip(err.Error())
		}

		if c.SkipIntegration {
			Skip("SKIP_INTEGRATION is set")
		}

		config = c

		w, err = wiki.New(config.Wiki, jobs.DefaultOptions(), GinkgoLogr)
		Expect(err).NotTo(HaveOccurred())

		GinkgoWriter.Printf("Testing %s using %s\n", config.Wiki.BaseURI, config.Wiki.Source)
	})

	It("should answer the action API", func() {
		anon, err := w.Anon()
		Expect(err).NotTo(HaveOccurred())

		general, err := anon.Meta(ctx, "siteinfo", nil, "general")
		Expect(err).NotTo(HaveOccurred())
		Expect(general).To(HaveKey("sitename"))
	})

	It("should drain the job queue", func() {
		if config.Wiki.SecretKey == "" {
			Skip("secret_key is not configured")
		}

		api.WaitForQueueDrained(ctx, w, config.TestTimeout, config.PollInterval)
	})
})
