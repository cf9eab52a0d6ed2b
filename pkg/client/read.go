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
	"net/url"
	"regexp"
	"strconv"
)

const (
	revisionProps    = "ids|user|comment|content|timestamp|flags|contentmodel"
	logEntryProps    = "ids|title|type|user|timestamp|comment"
	changeEntryProps = "ids|flags|user|comment|timestamp|title"
)

var htmlComment = regexp.MustCompile(`<!--[\s\S]*?-->`)

// Revision returns the main slot revision record revID of a page, or its
// latest revision if revID is 0.
func (c *ActionClient) Revision(ctx context.Context, title string, revID int) (map[string]interface{}, error) {
	params := url.Values{
		"rvslots": {"main"},
		"rvprop":  {revisionProps},
	}

	var page map[string]interface{}

	if revID > 0 {
		params.Set("prop", "revisions")
		params.Set("revids", strconv.Itoa(revID))

		query, err := c.query(ctx, params)
		if err != nil {
			return nil, err
		}

		page = firstPage(query["pages"])
	} else {
		params.Set("rvlimit", "1")

		pages, err := c.Prop(ctx, []string{"revisions"}, []string{title}, params)
		if err != nil {
			return nil, err
		}

		page = pages[title]
	}

	if page == nil {
		return nil, fmt.Errorf("%w: page %q", ErrNotFound, title)
	}

	revisions, _ := page["revisions"].([]interface{})
	if len(revisions) == 0 {
		return nil, fmt.Errorf("%w: revision of %q", ErrNotFound, title)
	}

	revision, ok := revisions[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: revision of %q is not an object", ErrUnexpectedBody, title)
	}

	return revision, nil
}

func firstPage(pages interface{}) map[string]interface{} {
	switch pages := pages.(type) {
	case map[string]interface{}:
		for _, page := range pages {
			if page, ok := page.(map[string]interface{}); ok {
				return page
			}
		}
	case []interface{}:
		if len(pages) > 0 {
			page, _ := pages[0].(map[string]interface{})

			return page
		}
	}

	return nil
}

// newest returns the first entry of a list query limited to one result.
func (c *ActionClient) newest(ctx context.Context, list string, defaults, params url.Values) (map[string]interface{}, error) {
	entries, err := c.List(ctx, list, merge(defaults, params))
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no %s entry", ErrNotFound, list)
	}

	return entries[0], nil
}

// LogEntry returns the newest log entry matching params.
func (c *ActionClient) LogEntry(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	return c.newest(ctx, "logevents", url.Values{"leprop": {logEntryProps}, "lelimit": {"1"}}, params)
}

// ChangeEntry returns the newest recent changes entry matching params.
func (c *ActionClient) ChangeEntry(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	return c.newest(ctx, "recentchanges", url.Values{"rcprop": {changeEntryProps}, "rclimit": {"1"}}, params)
}

// HTML returns the parsed HTML of a page with comments stripped.
func (c *ActionClient) HTML(ctx context.Context, title string) (string, error) {
	body, err := c.Action(ctx, "parse", url.Values{"page": {title}}, false)
	if err != nil {
		return "", err
	}

	parse, _ := body["parse"].(map[string]interface{})
	text, _ := parse["text"].(map[string]interface{})

	html, ok := text["*"].(string)
	if !ok {
		return "", fmt.Errorf("%w: parse result has no text", ErrUnexpectedBody)
	}

	return htmlComment.ReplaceAllString(html, ""), nil
}
