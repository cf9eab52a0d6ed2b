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

// Package config defines the api-testing configuration and how it is
// discovered on disk and in the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"
)

const (
	// DefaultBaseURI is a placeholder that fails loudly when used.
	DefaultBaseURI = "https://base_uri_not_set/"

	// NotSet marks required string values that have not been configured.
	NotSet = "NOT SET"

	// DefaultRequestTimeout bounds a single HTTP round trip.
	DefaultRequestTimeout = 30 * time.Second
)

var ErrInvalidBaseURI = errors.New("invalid base URI")

// User holds credentials for a wiki account.
type User struct {
	Name     string `json:"name" yaml:"name"`
	Password string `json:"password" yaml:"password"`
}

// Config is the api-testing configuration. The JSON and YAML keys match the
// .api-testing.config.json format.
type Config struct {
	// BaseURI is the wiki's script path, e.g. http://localhost:8080/w/.
	BaseURI string `json:"base_uri" yaml:"base_uri"`
	// MainPage is the title of the wiki's main page.
	MainPage string `json:"main_page" yaml:"main_page"`
	// RootUser is an account with administrative rights.
	RootUser User `json:"root_user" yaml:"root_user"`
	// SecretKey is the wiki's $wgSecretKey, used to sign job runner requests.
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	// ExtraParameters are added to every action API request.
	ExtraParameters map[string]interface{} `json:"extra_parameters" yaml:"extra_parameters"`

	RequestTimeout time.Duration `json:"-" yaml:"-"`
	LogRequests    bool          `json:"-" yaml:"-"`
	LogResponses   bool          `json:"-" yaml:"-"`

	// Source is the file the configuration was read from, empty when it
	// came from the environment alone.
	Source string `json:"-" yaml:"-"`
}

// Default returns a configuration with placeholder values. It is usable
// against a fake wiki once BaseURI is replaced.
func Default() *Config {
	return &Config{
		BaseURI:  DefaultBaseURI,
		MainPage: NotSet,
		RootUser: User{
			Name:     NotSet,
			Password: NotSet,
		},
		ExtraParameters: map[string]interface{}{},
		RequestTimeout:  DefaultRequestTimeout,
	}
}

// Validate checks the base URI is an absolute URL.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURI)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURI, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURI, c.BaseURI)
	}

	return nil
}

// ExtraValues renders the extra parameters as form values.
func (c *Config) ExtraValues() url.Values {
	values := url.Values{}

	keys := make([]string, 0, len(c.ExtraParameters))
	for k := range c.ExtraParameters {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		values.Set(k, fmt.Sprint(c.ExtraParameters[k]))
	}

	return values
}
