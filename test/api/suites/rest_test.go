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
	"encoding/json"
	"net/http"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/client"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/fake"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/matchers"
)

var _ = Describe("REST API", func() {
	var rest *client.RESTClient

	BeforeEach(func() {
		rest = fixture.REST("")
	})

	Context("When requesting the default route", func() {
		It("should return the mocked result", func() {
			response, err := rest.Get(ctx, "/test", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(response.StatusCode).To(Equal(http.StatusOK))
			Expect(response).To(matchers.HaveContentType(MatchRegexp(`^application/json`)))

			body, err := response.Object()
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(HaveKeyWithValue("test", HaveKeyWithValue("result", "ok")))
		})
	})

	Context("When sending parameters", func() {
		received := func() *fake.Request {
			requests := fixture.Fake.Requests()
			Expect(requests).To(HaveLen(1))

			return requests[0]
		}

		BeforeEach(func() {
			fixture.Fake.Mock().Path("/v1/page/Main_Page", func(_ *fake.Request) (interface{}, error) {
				return map[string]interface{}{"title": "Main Page"}, nil
			})
		})

		It("should send GET parameters in the query string", func() {
			_, err := rest.Get(ctx, "page/Main_Page", url.Values{"redirect": {"no"}}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(received().Method).To(Equal(http.MethodGet))
			Expect(received().Params.Get("redirect")).To(Equal("no"))
		})

		It("should send PUT parameters as a JSON body", func() {
			_, err := rest.Put(ctx, "/page/Main_Page", map[string]interface{}{"source": "Hello", "comment": "test"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(received().Method).To(Equal(http.MethodPut))
			Expect(received().Header).To(matchers.HaveContentType("application/json"))

			var body map[string]interface{}
			Expect(json.Unmarshal(received().Body, &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("source", "Hello"))
		})

		It("should send form bodies when asked to", func() {
			header := http.Header{"Content-Type": {"application/x-www-form-urlencoded"}}

			_, err := rest.Post(ctx, "/page/Main_Page", url.Values{"source": {"Hello"}}.Encode(), header)
			Expect(err).NotTo(HaveOccurred())
			Expect(received().Method).To(Equal(http.MethodPost))
			Expect(received().Params.Get("source")).To(Equal("Hello"))
		})

		It("should send DELETE requests", func() {
			_, err := rest.Delete(ctx, "/page/Main_Page", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(received().Method).To(Equal(http.MethodDelete))
		})
	})

	Context("When using an unsupported method", func() {
		It("should fail before sending anything", func() {
			_, err := rest.Request(ctx, "/test", "PATCH", nil, nil)
			Expect(err).To(MatchError(client.ErrUnsupportedMethod))
			Expect(fixture.Fake.Requests()).To(BeEmpty())
		})
	})

	Context("When the route is not mocked", func() {
		It("should pass the server error through", func() {
			response, err := rest.Get(ctx, "/does/not/exist", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(response.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(response.Text()).To(ContainSubstring("/v1/does/not/exist"))
		})
	})
})
