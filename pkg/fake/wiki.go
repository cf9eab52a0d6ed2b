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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/util"
)

// Wiki is an in-process stand in for a wiki, serving api.php, index.php
// and rest.php from a Mock.
type Wiki struct {
	router chi.Router

	lock      sync.Mutex
	mock      *Mock
	requests  []*Request
	secretKey string
	now       func() time.Time
	logger    logr.Logger
}

// New returns a fake wiki with the default mock installed.
func New() *Wiki {
	w := &Wiki{
		mock:   NewMock(),
		now:    time.Now,
		logger: logr.Discard(),
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.HandleFunc("/api.php", w.handleAction)
	router.HandleFunc("/index.php", w.handlePage)
	router.HandleFunc("/rest.php/*", w.handleREST)

	w.router = router

	return w
}

// WithSecretKey makes Special:RunJobs reject requests not signed with key.
func (w *Wiki) WithSecretKey(key string) *Wiki {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.secretKey = key

	return w
}

// WithClock replaces the clock used to check signature expiry.
func (w *Wiki) WithClock(now func() time.Time) *Wiki {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.now = now

	return w
}

// WithLogger logs each request the wiki serves to logger.
func (w *Wiki) WithLogger(logger logr.Logger) *Wiki {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.logger = logger

	return w
}

// Mock returns the installed mock.
func (w *Wiki) Mock() *Mock {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.mock
}

// NewMock installs and returns a fresh mock with the default handlers.
func (w *Wiki) NewMock() *Mock {
	m := NewMock()

	w.lock.Lock()
	defer w.lock.Unlock()

	w.mock = m

	return m
}

// Requests returns the requests received so far, oldest first.
func (w *Wiki) Requests() []*Request {
	w.lock.Lock()
	defer w.lock.Unlock()

	return append([]*Request(nil), w.requests...)
}

// ResetRequests forgets all received requests.
func (w *Wiki) ResetRequests() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.requests = nil
}

func (w *Wiki) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.router.ServeHTTP(rw, r)
}

// record reads the request parameters, from both the query string and a
// form body, and keeps a copy of the request.
func (w *Wiki) record(r *http.Request, path string) (*Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body = io.NopCloser(bytes.NewReader(body))

	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req := &Request{
		Method: r.Method,
		Path:   path,
		Params: r.Form,
		Header: r.Header.Clone(),
		Body:   body,
	}

	w.lock.Lock()
	w.requests = append(w.requests, req)
	logger := w.logger
	w.lock.Unlock()

	logger.V(1).Info("request", "method", r.Method, "path", path, "params", r.Form.Encode())

	return req, nil
}

func (w *Wiki) respond(rw http.ResponseWriter, data interface{}, err error) {
	if err != nil {
		status := http.StatusInternalServerError

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			status = statusErr.Status
		}

		http.Error(rw, err.Error(), status)

		return
	}

	if text, ok := data.(string); ok {
		rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(rw, text)

		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = rw.Write(body)
}

func (w *Wiki) handleAction(rw http.ResponseWriter, r *http.Request) {
	req, err := w.record(r, r.URL.Path)
	if err != nil {
		w.respond(rw, nil, &StatusError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	name := req.Params.Get("action")

	h, ok := w.Mock().action(name)
	if !ok {
		w.respond(rw, missingMock("no action function for %q", name), nil)
		return
	}

	data, err := h(req)
	w.respond(rw, data, err)
}

func (w *Wiki) handleREST(rw http.ResponseWriter, r *http.Request) {
	path := util.AddLeadingSlash(chi.URLParam(r, "*"))

	req, err := w.record(r, path)
	if err != nil {
		w.respond(rw, nil, &StatusError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	h, ok := w.Mock().path(path)
	if !ok {
		w.respond(rw, nil, fmt.Errorf("no route handler function for %q", path))
		return
	}

	data, err := h(req)
	w.respond(rw, data, err)
}

func (w *Wiki) handlePage(rw http.ResponseWriter, r *http.Request) {
	req, err := w.record(r, r.URL.Path)
	if err != nil {
		w.respond(rw, nil, &StatusError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	title := req.Params.Get("title")

	if title == jobs.RunJobsPage {
		if err := w.verify(req); err != nil {
			w.respond(rw, nil, &StatusError{Status: http.StatusBadRequest, Message: err.Error()})
			return
		}
	}

	h, ok := w.Mock().page(title)
	if !ok {
		w.respond(rw, fmt.Sprintf("no page function for %q", title), nil)
		return
	}

	data, err := h(req)
	w.respond(rw, data, err)
}

func (w *Wiki) verify(req *Request) error {
	w.lock.Lock()
	key, now := w.secretKey, w.now
	w.lock.Unlock()

	if key == "" {
		return nil
	}

	return jobs.Verify(key, req.Params, now())
}
