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

package fake

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
)

// Handler answers a mocked request. A string result is sent as text, any
// other as JSON. An error is sent as text with status 500, or with its own
// status if it is a *StatusError.
type Handler func(r *Request) (interface{}, error)

// StatusError lets a handler fail with a specific HTTP status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Mock holds the handlers the fake wiki dispatches to.
type Mock struct {
	lock sync.RWMutex

	actions map[string]Handler
	lists   map[string]Handler
	metas   map[string]Handler
	props   map[string]Handler
	paths   map[string]Handler
	pages   map[string]Handler
}

// NewMock returns a mock with the default handlers installed.
func NewMock() *Mock {
	m := &Mock{
		actions: map[string]Handler{},
		lists:   map[string]Handler{},
		metas:   map[string]Handler{},
		props:   map[string]Handler{},
		paths:   map[string]Handler{},
		pages:   map[string]Handler{},
	}

	m.actions["test"] = testAction
	m.actions["query"] = m.queryAction
	m.actions["login"] = loginAction
	m.actions["createaccount"] = createAccountAction
	m.actions["edit"] = editAction
	m.metas["tokens"] = tokensQuery
	m.paths["/v1/test"] = testPath
	m.pages[jobs.RunJobsPage] = NoneReady

	return m
}

func set(lock *sync.RWMutex, handlers map[string]Handler, name string, h Handler) {
	lock.Lock()
	defer lock.Unlock()

	if h == nil {
		delete(handlers, name)
		return
	}

	handlers[name] = h
}

func get(lock *sync.RWMutex, handlers map[string]Handler, name string) (Handler, bool) {
	lock.RLock()
	defer lock.RUnlock()

	h, ok := handlers[name]

	return h, ok
}

// Action sets the handler for an api.php action, nil removes it.
func (m *Mock) Action(name string, h Handler) *Mock {
	set(&m.lock, m.actions, name, h)
	return m
}

// List sets the handler for a list query. Its result becomes the query
// member of the response.
func (m *Mock) List(name string, h Handler) *Mock {
	set(&m.lock, m.lists, name, h)
	return m
}

// Meta sets the handler for a meta query.
func (m *Mock) Meta(name string, h Handler) *Mock {
	set(&m.lock, m.metas, name, h)
	return m
}

// Prop sets the handler for a prop query, keyed by the prop parameter as
// sent.
func (m *Mock) Prop(name string, h Handler) *Mock {
	set(&m.lock, m.props, name, h)
	return m
}

// Path sets the handler for a REST route, relative to rest.php.
func (m *Mock) Path(path string, h Handler) *Mock {
	set(&m.lock, m.paths, path, h)
	return m
}

// Page sets the handler for an index.php title.
func (m *Mock) Page(title string, h Handler) *Mock {
	set(&m.lock, m.pages, title, h)
	return m
}

func (m *Mock) action(name string) (Handler, bool) {
	return get(&m.lock, m.actions, name)
}

func (m *Mock) path(path string) (Handler, bool) {
	return get(&m.lock, m.paths, path)
}

func (m *Mock) page(title string) (Handler, bool) {
	return get(&m.lock, m.pages, title)
}

func missingMock(format string, a ...interface{}) map[string]interface{} {
	return apiError("missing_mock", fmt.Sprintf(format, a...))
}

func apiError(code, info string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"code": code,
			"info": info,
		},
	}
}

// queryAction delegates to the list, meta or prop handler named by the
// request.
func (m *Mock) queryAction(r *Request) (interface{}, error) {
	var (
		kind     string
		name     string
		handlers map[string]Handler
	)

	switch {
	case r.Params.Has("list"):
		kind, name, handlers = "list", r.Params.Get("list"), m.lists
	case r.Params.Has("meta"):
		kind, name, handlers = "meta", r.Params.Get("meta"), m.metas
	case r.Params.Has("prop"):
		kind, name, handlers = "prop", r.Params.Get("prop"), m.props
	default:
		return apiError("bad_requests", fmt.Sprintf("can't determine query type for %q", r.Params.Encode())), nil
	}

	h, ok := get(&m.lock, handlers, name)
	if !ok {
		return missingMock("no %s query function for %q", kind, name), nil
	}

	result, err := h(r)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"query":         result,
		"batchcomplete": "",
	}, nil
}

func testAction(_ *Request) (interface{}, error) {
	return map[string]interface{}{
		"test": map[string]interface{}{
			"result": "Success",
		},
	}, nil
}

func editAction(_ *Request) (interface{}, error) {
	return map[string]interface{}{
		"edit": map[string]interface{}{
			"result": "Success",
		},
	}, nil
}

func loginAction(r *Request) (interface{}, error) {
	return map[string]interface{}{
		"login": map[string]interface{}{
			"result":     "Success",
			"lgusername": r.Params.Get("lgname"),
			"lguserid":   123,
		},
	}, nil
}

func createAccountAction(r *Request) (interface{}, error) {
	return map[string]interface{}{
		"createaccount": map[string]interface{}{
			"status":   "PASS",
			"username": r.Params.Get("username"),
		},
	}, nil
}

// Token is the value of every token the default tokens query returns.
const Token = "!token!"

func tokensQuery(r *Request) (interface{}, error) {
	types := r.Params.Get("type")
	if types == "" {
		types = "csrf"
	}

	tokens := map[string]interface{}{}

	for _, t := range strings.Split(types, "|") {
		tokens[t+"token"] = Token
	}

	return map[string]interface{}{
		"tokens": tokens,
	}, nil
}

func testPath(_ *Request) (interface{}, error) {
	return map[string]interface{}{
		"test": map[string]interface{}{
			"result": "ok",
		},
	}, nil
}

// NoneReady reports an empty job queue.
func NoneReady(_ *Request) (interface{}, error) {
	return map[string]interface{}{
		"reached": jobs.NoneReady,
		"jobs":    []interface{}{},
	}, nil
}

// Request is a request received by the fake wiki.
type Request struct {
	Method string
	// Path is the request path, for REST requests relative to rest.php.
	Path   string
	Params url.Values
	Header http.Header
	Body   []byte
}
