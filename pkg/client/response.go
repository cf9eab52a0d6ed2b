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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// TraceID identifies the request in the wiki's logs.
	TraceID string
}

// JSON decodes the body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unmarshaling response (status %d, content type %q): %w", r.StatusCode, r.Header.Get("Content-Type"), err)
	}

	return nil
}

// Object decodes the body as a JSON object.
func (r *Response) Object() (map[string]interface{}, error) {
	var object map[string]interface{}
	if err := r.JSON(&object); err != nil {
		return nil, err
	}

	if object == nil {
		return nil, fmt.Errorf("%w: response body is not a JSON object", ErrUnexpectedBody)
	}

	return object, nil
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
