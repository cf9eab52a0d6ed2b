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
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedBody is returned when a response cannot be interpreted.
	ErrUnexpectedBody = errors.New("unexpected response body")

	// ErrAction is returned when the action API reports an error code the
	// caller did not allow.
	ErrAction = errors.New("action failed")

	// ErrNoErrorStanza is returned when an error was expected but the
	// response does not contain one.
	ErrNoErrorStanza = errors.New("response has no error stanza")

	// ErrMissingToken is returned when the wiki does not hand out a
	// requested token type.
	ErrMissingToken = errors.New("token not returned")

	// ErrNotFound is returned when a lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrUnsupportedMethod is returned for HTTP methods the REST client
	// does not implement.
	ErrUnsupportedMethod = errors.New("unsupported method")

	// ErrUnsupportedParams is returned when request parameters cannot be
	// rendered as a query string.
	ErrUnsupportedParams = errors.New("unsupported parameters")
)

// APIError is the error stanza of an action API response.
type APIError struct {
	Code string
	Info string
	// Raw is the complete stanza, which may carry more fields.
	Raw map[string]interface{}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Info)
}

// errorStanza extracts the error stanza of a response body, if any.
func errorStanza(body map[string]interface{}) *APIError {
	raw, ok := body["error"].(map[string]interface{})
	if !ok {
		return nil
	}

	code, _ := raw["code"].(string)
	info, _ := raw["info"].(string)

	return &APIError{
		Code: code,
		Info: info,
		Raw:  raw,
	}
}
