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

// Package client provides HTTP clients for a wiki's action API and REST API.
//
// A Session acts like a browser session: it holds the wiki's base URL and a
// cookie jar. Action and REST clients built on the same Session behave as
// the same user on both APIs. Until a session is attached to an account it
// is anonymous; note that all anonymous sessions share the client's IP
// address, so the wiki treats them as the same user in some respects.
package client

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/net/publicsuffix"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/config"
)

const (
	// AnonymousUser is the user name of a session not attached to an account.
	AnonymousUser = "<anon>"

	tracestate = "test-automation=api-testing"
)

var ErrUnexpectedStatus = errors.New("unexpected status code")

// Session is an HTTP session with a wiki.
type Session struct {
	baseURL *url.URL
	client  *http.Client
	config  *config.Config
	logger  logr.Logger

	// Username is the account the session is logged in as.
	Username string
	// UserID is the account's id, zero for anonymous sessions.
	UserID int
}

// NewSession creates an anonymous session with an empty cookie jar.
func NewSession(cfg *config.Config, logger logr.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(cfg.BaseURI)
	if err != nil {
		return nil, err
	}

	// Relative endpoints resolve against the script directory.
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	s := &Session{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Jar:     jar,
		},
		config:   cfg,
		logger:   logger,
		Username: AnonymousUser,
	}

	return s, nil
}

// Config returns the configuration the session was created with.
func (s *Session) Config() *config.Config {
	return s.config
}

// Jar returns the session's cookie jar.
func (s *Session) Jar() http.CookieJar {
	return s.client.Jar
}

// HTTPClient returns a client for absolute URLs that shares the session's
// cookie jar.
func (s *Session) HTTPClient() *http.Client {
	return &http.Client{
		Timeout: s.client.Timeout,
		Jar:     s.client.Jar,
	}
}

// URL resolves an endpoint against the base URL.
func (s *Session) URL(endpoint string) string {
	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}

	return s.baseURL.ResolveReference(ref).String()
}

// generateTraceID creates a new W3C trace ID, one per request, so a failure
// can be found in the wiki's logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// request describes a single HTTP exchange.
type request struct {
	method   string
	endpoint string
	query    url.Values
	body     io.Reader
	header   http.Header
	// expectedStatus is checked when non-zero.
	expectedStatus int
}

//nolint:cyclop
func (s *Session) do(ctx context.Context, r *request) (*Response, error) {
	fullURL := s.URL(r.endpoint)
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, r.body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range r.header {
		req.Header[k] = v
	}

	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", tracestate)

	log := s.logger.WithValues("method", r.method, "endpoint", r.endpoint, "traceparent", traceParent)

	start := time.Now()
	resp, err := s.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		log.Error(err, "http request failed", "duration", duration)
		return nil, fmt.Errorf("http request failed (trace ID: %s): %w", extractTraceID(traceParent), err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(err, "reading response body", "duration", duration, "status", resp.StatusCode)
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if s.config.LogRequests {
		log.Info("request", "status", resp.StatusCode, "duration", duration)
	}

	if s.config.LogResponses && len(body) > 0 {
		log.Info("response", "body", string(body))
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		TraceID:    extractTraceID(traceParent),
	}

	if r.expectedStatus > 0 && resp.StatusCode != r.expectedStatus {
		log.Info("unexpected status", "expected", r.expectedStatus, "status", resp.StatusCode, "body", string(body))
		return response, fmt.Errorf("%w: expected %d, got %d, body: %s (trace ID: %s)", ErrUnexpectedStatus, r.expectedStatus, resp.StatusCode, string(body), response.TraceID)
	}

	return response, nil
}
