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
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/util"
)

const (
	// DefaultRESTPrefix is the path of the REST API's v1 routes.
	DefaultRESTPrefix = "rest.php/v1"
)

// Endpoints contains the wiki's entry points, relative to its script path.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// API is the action API entry point.
func (e *Endpoints) API() string {
	return "api.php"
}

// Index is the entry point for page views and special pages.
func (e *Endpoints) Index() string {
	return "index.php"
}

// REST joins a REST route onto a REST prefix.
func (e *Endpoints) REST(prefix, route string) string {
	return util.NormalizePath(prefix, route)
}
