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
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/client"
)

var _ = Describe("Client Factory", func() {
	It("should share a session between REST and action clients", func() {
		action, err := fixture.Wiki.Action(nil)
		Expect(err).NotTo(HaveOccurred())

		action.Session().Username = "Alice"
		action.Session().UserID = 123

		rest := client.NewRESTClient(action.Session(), "")
		Expect(rest.Session()).To(BeIdenticalTo(action.Session()))
		Expect(rest.Session().Username).To(Equal("Alice"))
		Expect(rest.Session().UserID).To(Equal(123))

		fromREST, err := fixture.Wiki.Action(rest.Session())
		Expect(err).NotTo(HaveOccurred())
		Expect(fromREST.Session()).To(BeIdenticalTo(action.Session()))
	})

	It("should return anonymous clients when no session is given", func() {
		rest := fixture.REST("")
		Expect(rest.Session().Username).To(Equal(client.AnonymousUser))
		Expect(rest.Session().UserID).To(BeZero())

		action, err := fixture.Wiki.Action(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(action.Session().Username).To(Equal(client.AnonymousUser))
		Expect(action.Session().UserID).To(BeZero())
	})

	It("should return a REST client for a specific prefix", func() {
		Expect(fixture.REST("/some/path").PathPrefix()).To(Equal("/some/path"))
	})

	It("should return an HTTP client with an empty cookie jar", func() {
		session, err := fixture.Wiki.NewSession()
		Expect(err).NotTo(HaveOccurred())

		base, err := url.Parse(fixture.Config.BaseURI)
		Expect(err).NotTo(HaveOccurred())

		Expect(session.HTTPClient().Jar.Cookies(base)).To(BeEmpty())
	})

	It("should return an HTTP client sharing the session's cookie jar", func() {
		anon := fixture.Anon()

		base, err := url.Parse(fixture.Config.BaseURI)
		Expect(err).NotTo(HaveOccurred())

		anon.Session().Jar().SetCookies(base, []*http.Cookie{{Name: "wikiSession", Value: "abc", Path: "/"}})

		Expect(anon.Session().HTTPClient().Jar).To(BeIdenticalTo(anon.Session().Jar()))
		Expect(anon.Session().HTTPClient().Jar.Cookies(base)).To(ContainElement(HaveField("Name", "wikiSession")))
	})
})
