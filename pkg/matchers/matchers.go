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

// Package matchers provides Gomega matchers for wiki titles and HTTP
// responses.
package matchers

import (
	"fmt"
	"net/http"

	"github.com/onsi/gomega"
	"github.com/onsi/gomega/gcustom"
	"github.com/onsi/gomega/types"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/client"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/util"
)

// BeSameTitle succeeds when the actual title names the same page as
// title, ignoring the difference between spaces and underscores.
func BeSameTitle(title string) types.GomegaMatcher {
	return gcustom.MakeMatcher(func(actual string) (bool, error) {
		return util.SameTitle(actual, title), nil
	}).WithTemplate("Expected:\n{{.FormattedActual}}\n{{.To}} be the same title as\n{{format .Data 1}}", title)
}

// header extracts the headers from a response.
func header(actual interface{}) (http.Header, error) {
	switch a := actual.(type) {
	case *client.Response:
		return a.Header, nil
	case *http.Response:
		return a.Header, nil
	case http.Header:
		return a, nil
	default:
		return nil, fmt.Errorf("expected a *client.Response, *http.Response or http.Header, got %T", actual)
	}
}

// HaveHeader succeeds when the named header of a response matches
// expected, either a string that must be equal or a matcher such as
// MatchRegexp.
func HaveHeader(name string, expected interface{}) types.GomegaMatcher {
	matcher, ok := expected.(types.GomegaMatcher)
	if !ok {
		matcher = gomega.Equal(expected)
	}

	return gomega.WithTransform(func(actual interface{}) (string, error) {
		h, err := header(actual)
		if err != nil {
			return "", err
		}

		return h.Get(name), nil
	}, matcher)
}

// HaveContentType succeeds when the response's content type matches
// expected.
func HaveContentType(expected interface{}) types.GomegaMatcher {
	return HaveHeader("Content-Type", expected)
}
