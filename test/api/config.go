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

package api

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/config"
)

const (
	// defaultBaseDir is the repository root relative to test/api/suites.
	defaultBaseDir = "../../.."
)

type TestConfig struct {
	// Wiki is the live wiki configuration, nil when none was found.
	Wiki            *config.Config
	BaseDir         string
	TestTimeout     time.Duration
	PollInterval    time.Duration
	SkipIntegration bool
}

// LoadTestConfig loads the suite settings from the environment. The live
// wiki configuration is discovered from API_TESTING_BASE_DIR as the
// library would; failing to find one is returned alongside a usable
// configuration so fake-backed suites can still run.
func LoadTestConfig() (*TestConfig, error) {
	baseDir := os.Getenv("API_TESTING_BASE_DIR")
	if baseDir == "" {
		baseDir = defaultBaseDir
	}

	c := &TestConfig{
		BaseDir:         baseDir,
		TestTimeout:     getDurationWithDefault("TEST_TIMEOUT", 5*time.Minute),
		PollInterval:    getDurationWithDefault("POLL_INTERVAL", time.Second),
		SkipIntegration: getBoolWithDefault("SKIP_INTEGRATION", false),
	}

	wiki, err := config.Load(baseDir)
	if err != nil {
		return c, fmt.Errorf("loading wiki configuration: %w", err)
	}

	c.Wiki = wiki

	return c, nil
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}
