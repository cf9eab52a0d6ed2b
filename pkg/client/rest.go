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

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RESTClient makes requests to the REST API (rest.php).
type RESTClient struct {
	session    *Session
	endpoints  *Endpoints
	pathPrefix string
}

// NewRESTClient creates a REST client whose routes are relative to
// pathPrefix, typically DefaultRESTPrefix.
func NewRESTClient(session *Session, pathPrefix string) *RESTClient {
	return &RESTClient{
		session:    session,
		endpoints:  NewEndpoints(),
		pathPrefix: pathPrefix,
	}
}

// Session returns the session the client uses.
func (c *RESTClient) Session() *Session {
	return c.session
}

// PathPrefix returns the prefix routes are resolved against.
func (c *RESTClient) PathPrefix() string {
	return c.pathPrefix
}

// toQuery renders GET and DELETE parameters.
func toQuery(params interface{}) (url.Values, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case url.Values:
		return p, nil
	case map[string]string:
		values := url.Values{}
		for k, v := range p {
			values.Set(k, v)
		}

		return values, nil
	default:
		return nil, fmt.Errorf("%w: %T cannot be used as a query", ErrUnsupportedParams, params)
	}
}

// toBody renders POST and PUT parameters. Strings, byte slices and readers
// are sent as is, anything else is encoded as JSON.
func toBody(params interface{}) (io.Reader, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(p), nil
	case []byte:
		return bytes.NewReader(p), nil
	case io.Reader:
		return p, nil
	default:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		return bytes.NewReader(data), nil
	}
}

// Request sends a request to a REST route and returns the response whatever
// its status. GET and DELETE send params as a query string, POST and PUT
// send them as the body.
func (c *RESTClient) Request(ctx context.Context, route, method string, params interface{}, header http.Header) (*Response, error) {
	r := &request{
		method:   strings.ToUpper(method),
		endpoint: c.endpoints.REST(c.pathPrefix, route),
		header:   header.Clone(),
	}

	if r.header == nil {
		r.header = http.Header{}
	}

	var err error

	switch r.method {
	case http.MethodGet, http.MethodDelete:
		if r.query, err = toQuery(params); err != nil {
			return nil, err
		}
	case http.MethodPost, http.MethodPut:
		if r.body, err = toBody(params); err != nil {
			return nil, err
		}

		if r.header.Get("Content-Type") == "" {
			r.header.Set("Content-Type", "application/json")
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	return c.session.do(ctx, r)
}

// Get sends a GET request with query as the query string.
func (c *RESTClient) Get(ctx context.Context, route string, query url.Values, header http.Header) (*Response, error) {
	return c.Request(ctx, route, http.MethodGet, query, header)
}

// Post sends body to a route with POST.
func (c *RESTClient) Post(ctx context.Context, route string, body interface{}, header http.Header) (*Response, error) {
	return c.Request(ctx, route, http.MethodPost, body, header)
}

// Put sends body to a route with PUT.
func (c *RESTClient) Put(ctx context.Context, route string, body interface{}, header http.Header) (*Response, error) {
	return c.Request(ctx, route, http.MethodPut, body, header)
}

// Delete sends a DELETE request with query as the query string.
func (c *RESTClient) Delete(ctx context.Context, route string, query url.Values, header http.Header) (*Response, error) {
	return c.Request(ctx, route, http.MethodDelete, query, header)
}
