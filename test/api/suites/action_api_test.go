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
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/client"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/fake"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/matchers"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/util"
	"github.com/wikimedia/mediawiki-tools-api-testing/test/api"
)

// tagStore backs mocked managetags and list=tags handlers.
type tagStore struct {
	lock sync.Mutex
	tags map[string]string
}

func (s *tagStore) manage(r *fake.Request) (interface{}, error) {
	if r.Params.Get("token") != fake.Token {
		return map[string]interface{}{"error": map[string]interface{}{"code": "badtoken", "info": "Invalid CSRF token."}}, nil
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	name := r.Params.Get("tag")

	switch r.Params.Get("operation") {
	case "create":
		s.tags[name] = "<i>TestTagDisplay</i>"
	case "delete":
		if _, ok := s.tags[name]; !ok {
			return map[string]interface{}{"error": map[string]interface{}{"code": "tags-delete-not-found", "info": fmt.Sprintf("Tag %q does not exist.", name)}}, nil
		}

		delete(s.tags, name)
	}

	return map[string]interface{}{"managetags": map[string]interface{}{"tag": name}}, nil
}

func (s *tagStore) list(_ *fake.Request) (interface{}, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	names := make([]string, 0, len(s.tags))
	for name := range s.tags {
		names = append(names, name)
	}

	sort.Strings(names)

	tags := make([]interface{}, 0, len(names))
	for _, name := range names {
		tags = append(tags, map[string]interface{}{"name": name, "displayname": s.tags[name]})
	}

	return map[string]interface{}{"tags": tags}, nil
}

var _ = Describe("Action API", func() {
	var anon *client.ActionClient

	BeforeEach(func() {
		anon = fixture.Anon()
	})

	Context("When calling a mocked action", func() {
		It("should return the result", func() {
			result, err := anon.Action(ctx, "test", nil, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("test", HaveKeyWithValue("result", "Success")))
		})

		It("should return the original error text if something goes wrong", func() {
			fixture.Fake.Mock().Action("fail", func(_ *fake.Request) (interface{}, error) {
				return nil, errors.New("something went wrong")
			})

			_, err := anon.Action(ctx, "fail", nil, false)
			Expect(err).To(MatchError(client.ErrUnexpectedStatus))
			Expect(err).To(MatchError(ContainSubstring("something went wrong")))
		})

		It("should send the response as JSON", func() {
			response, err := anon.Request(ctx, url.Values{"action": {"test"}}, false, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(response).To(matchers.HaveContentType(HavePrefix("application/json")))
		})
	})

	Context("When managing tags", func() {
		var store *tagStore

		BeforeEach(func() {
			store = &tagStore{tags: map[string]string{}}

			fixture.Fake.Mock().
				Action("managetags", store.manage).
				List("tags", store.list)
		})

		It("should create a tag and list it", func() {
			token, err := anon.Token(ctx, "")
			Expect(err).NotTo(HaveOccurred())

			name := api.UniqueTitle("api-test-tag")

			_, err = anon.Action(ctx, "managetags", url.Values{"operation": {"create"}, "tag": {name}, "token": {token}}, true)
			Expect(err).NotTo(HaveOccurred())

			tags, err := anon.List(ctx, "tags", url.Values{"tglimit": {"50"}, "tgprop": {"displayname"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(tags).To(ContainElement(And(
				HaveKeyWithValue("name", name),
				HaveKeyWithValue("displayname", "<i>TestTagDisplay</i>"),
			)))
		})

		It("should handle deleting a non-existent tag gracefully", func() {
			token, err := anon.Token(ctx, "csrf")
			Expect(err).NotTo(HaveOccurred())

			apiErr, err := anon.ActionError(ctx, "managetags", url.Values{"operation": {"delete"}, "tag": {"SomeNonexistentTag"}, "token": {token}}, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(apiErr.Code).To(Equal("tags-delete-not-found"))

			result, err := anon.ActionWithErrors(ctx, "managetags", url.Values{"operation": {"delete"}, "tag": {"SomeNonexistentTag"}, "token": {token}}, true, "tags-delete-not-found")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKey("error"))
		})

		It("should reject a missing token", func() {
			_, err := anon.Action(ctx, "managetags", url.Values{"operation": {"create"}, "tag": {"x"}}, true)
			Expect(err).To(MatchError(client.ErrAction))
			Expect(err).To(MatchError(ContainSubstring("badtoken")))
		})
	})

	Context("When querying page properties", func() {
		It("should key pages by the requested titles", func() {
			title := api.UniqueTitle("Api_test")

			fixture.Fake.Mock().Prop("info", func(r *fake.Request) (interface{}, error) {
				requested := r.Params.Get("titles")
				normalized := strings.ReplaceAll(requested, "_", " ")

				return map[string]interface{}{
					"normalized": []interface{}{map[string]interface{}{"from": requested, "to": normalized}},
					"pages":      map[string]interface{}{"-1": map[string]interface{}{"title": normalized, "missing": ""}},
				}, nil
			})

			pages, err := anon.Prop(ctx, []string{"info"}, []string{title}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveKey(title))
			Expect(pages[title]).To(HaveKey("missing"))
		})

		It("should compare titles regardless of underscores", func() {
			title := api.UniqueTitle("Api test")

			fixture.Fake.Mock().Prop("info", func(r *fake.Request) (interface{}, error) {
				return map[string]interface{}{
					"pages": []interface{}{map[string]interface{}{"title": util.DBKey(r.Params.Get("titles")), "pageid": 1}},
				}, nil
			})

			pages, err := anon.Prop(ctx, []string{"info"}, []string{title}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(pages).To(HaveLen(1))

			for key, page := range pages {
				Expect(key).NotTo(Equal(title))
				Expect(key).To(matchers.BeSameTitle(title))
				Expect(page["title"]).To(matchers.BeSameTitle(title))
			}
		})
	})
})
