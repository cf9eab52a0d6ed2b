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
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

// ActionClient makes requests to the action API (api.php).
type ActionClient struct {
	session   *Session
	endpoints *Endpoints
	tokens    map[string]string
}

// NewActionClient creates an action API client on the given session.
func NewActionClient(session *Session) *ActionClient {
	return &ActionClient{
		session:   session,
		endpoints: NewEndpoints(),
		tokens:    map[string]string{},
	}
}

// Session returns the session the client uses.
func (c *ActionClient) Session() *Session {
	return c.session
}

// merge returns a new set of values, later sets overriding earlier ones.
func merge(sets ...url.Values) url.Values {
	values := url.Values{}

	for _, set := range sets {
		for k, v := range set {
			values[k] = slices.Clone(v)
		}
	}

	return values
}

func (c *ActionClient) request(ctx context.Context, params url.Values, post bool, endpoint string, expectedStatus int) (*Response, error) {
	if endpoint == "" {
		endpoint = c.endpoints.API()
	}

	defaults := url.Values{
		"format": {"json"},
	}

	values := merge(defaults, c.session.config.ExtraValues(), params)

	r := &request{
		endpoint:       endpoint,
		expectedStatus: expectedStatus,
	}

	if post {
		r.method = http.MethodPost
		r.body = strings.NewReader(values.Encode())
		r.header = http.Header{
			"Content-Type": {"application/x-www-form-urlencoded"},
		}
	} else {
		r.method = http.MethodGet
		r.query = values
	}

	return c.session.do(ctx, r)
}

// Request sends params to the given endpoint, api.php if empty, and returns
// the response whatever its status. format=json and the configured extra
// parameters are added unless params overrides them. POST requests are
// form encoded.
func (c *ActionClient) Request(ctx context.Context, params url.Values, post bool, endpoint string) (*Response, error) {
	return c.request(ctx, params, post, endpoint, 0)
}

func (c *ActionClient) action(ctx context.Context, name string, params url.Values, post bool) (map[string]interface{}, error) {
	resp, err := c.request(ctx, merge(params, url.Values{"action": {name}}), post, "", http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("user %q: action %q: %w", c.session.Username, name, err)
	}

	body, err := resp.Object()
	if err != nil {
		return nil, fmt.Errorf("user %q: action %q: %w", c.session.Username, name, err)
	}

	return body, nil
}

// ActionWithErrors executes an action and returns the parsed body. The call
// fails if the status is not 200, or if the body carries an error code that
// is not listed in allowErrors.
func (c *ActionClient) ActionWithErrors(ctx context.Context, name string, params url.Values, post bool, allowErrors ...string) (map[string]interface{}, error) {
	body, err := c.action(ctx, name, params, post)
	if err != nil {
		return nil, err
	}

	if apiErr := errorStanza(body); apiErr != nil {
		if slices.Contains(allowErrors, apiErr.Code) {
			return body, nil
		}

		return nil, fmt.Errorf("%w: user %q: action %q returned error code %q: %s", ErrAction, c.session.Username, name, apiErr.Code, apiErr.Info)
	}

	return body, nil
}

// Action executes an action and returns the parsed body, failing on any
// error code.
func (c *ActionClient) Action(ctx context.Context, name string, params url.Values, post bool) (map[string]interface{}, error) {
	return c.ActionWithErrors(ctx, name, params, post)
}

// ActionError executes an action that is expected to fail and returns its
// error stanza. It is an error for the response not to contain one.
func (c *ActionClient) ActionError(ctx context.Context, name string, params url.Values, post bool) (*APIError, error) {
	body, err := c.action(ctx, name, params, post)
	if err != nil {
		return nil, err
	}

	apiErr := errorStanza(body)
	if apiErr == nil {
		return nil, fmt.Errorf("%w: action %q", ErrNoErrorStanza, name)
	}

	return apiErr, nil
}

// query runs a query action and returns its "query" member.
func (c *ActionClient) query(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	body, err := c.Action(ctx, "query", params, false)
	if err != nil {
		return nil, err
	}

	query, ok := body["query"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: query result missing", ErrUnexpectedBody)
	}

	return query, nil
}

// Prop executes a prop query and returns the pages keyed by the titles as
// requested, undoing any normalization the wiki applied.
func (c *ActionClient) Prop(ctx context.Context, props, titles []string, params url.Values) (map[string]map[string]interface{}, error) {
	defaults := url.Values{
		"prop":   {strings.Join(props, "|")},
		"titles": {strings.Join(titles, "|")},
	}

	query, err := c.query(ctx, merge(defaults, params))
	if err != nil {
		return nil, err
	}

	names := map[string]string{}

	if normalized, ok := query["normalized"].([]interface{}); ok {
		for _, e := range normalized {
			if entry, ok := e.(map[string]interface{}); ok {
				to, _ := entry["to"].(string)
				from, _ := entry["from"].(string)
				names[to] = from
			}
		}
	}

	var entries []interface{}

	// formatversion=1 keys pages by id, formatversion=2 returns a list.
	switch pages := query["pages"].(type) {
	case map[string]interface{}:
		for _, page := range pages {
			entries = append(entries, page)
		}
	case []interface{}:
		entries = pages
	}

	result := map[string]map[string]interface{}{}

	for _, e := range entries {
		page, ok := e.(map[string]interface{})
		if !ok {
			continue
		}

		title, _ := page["title"].(string)
		if from, ok := names[title]; ok {
			title = from
		}

		result[title] = page
	}

	return result, nil
}

// List executes a list query and returns its entries.
func (c *ActionClient) List(ctx context.Context, list string, params url.Values) ([]map[string]interface{}, error) {
	query, err := c.query(ctx, merge(url.Values{"list": {list}}, params))
	if err != nil {
		return nil, err
	}

	raw, ok := query[list].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: list %q missing from query result", ErrUnexpectedBody, list)
	}

	entries := make([]map[string]interface{}, 0, len(raw))

	for _, e := range raw {
		entry, ok := e.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: list %q has a non-object entry", ErrUnexpectedBody, list)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Meta executes a meta query and returns the query member named field, or
// meta if field is empty.
func (c *ActionClient) Meta(ctx context.Context, meta string, params url.Values, field string) (map[string]interface{}, error) {
	query, err := c.query(ctx, merge(url.Values{"meta": {meta}}, params))
	if err != nil {
		return nil, err
	}

	key := field
	if key == "" {
		key = meta
	}

	result, ok := query[key].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %q missing from query result", ErrUnexpectedBody, key)
	}

	return result, nil
}

func (c *ActionClient) fetchTokens(ctx context.Context, types string) (map[string]string, error) {
	raw, err := c.Meta(ctx, "tokens", url.Values{"type": {types}}, "")
	if err != nil {
		return nil, err
	}

	tokens := make(map[string]string, len(raw))

	for k, v := range raw {
		if s, ok := v.(string); ok {
			tokens[k] = s
		}
	}

	return tokens, nil
}

// LoadTokens fetches the given token types, replacing any cached tokens.
func (c *ActionClient) LoadTokens(ctx context.Context, types []string) (map[string]string, error) {
	tokens, err := c.fetchTokens(ctx, strings.Join(types, "|"))
	if err != nil {
		return nil, err
	}

	c.tokens = tokens

	return tokens, nil
}

// Token returns a token of the given type, csrf if empty. Tokens are cached
// and only fetched when missing.
func (c *ActionClient) Token(ctx context.Context, tokenType string) (string, error) {
	if tokenType == "" {
		tokenType = "csrf"
	}

	name := tokenType + "token"

	if token := c.tokens[name]; token != "" {
		return token, nil
	}

	tokens, err := c.fetchTokens(ctx, tokenType)
	if err != nil {
		return "", err
	}

	for k, v := range tokens {
		c.tokens[k] = v
	}

	token := c.tokens[name]
	if token == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingToken, name)
	}

	return token, nil
}

// ResetTokens discards all cached tokens, as needed when the session
// changes user.
func (c *ActionClient) ResetTokens() {
	c.tokens = map[string]string{}
}
