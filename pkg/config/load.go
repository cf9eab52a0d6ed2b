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

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigFile names a config file, either a path or a file name
	// inside the configs directory.
	EnvConfigFile = "API_TESTING_CONFIG_FILE"
	// EnvRESTBaseURL bypasses config files and sets only the base URI.
	EnvRESTBaseURL = "REST_BASE_URL"
	// EnvSecretKey overrides secret_key so it need not live in a file.
	EnvSecretKey = "API_TESTING_SECRET_KEY"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvLogRequests    = "LOG_REQUESTS"
	EnvLogResponses   = "LOG_RESPONSES"

	// LocalConfigFile is looked up in the base directory when no config
	// file is named in the environment.
	LocalConfigFile = ".api-testing.config.json"
	// ConfigsDir holds named config files, relative to the base directory.
	ConfigsDir = "configs"
	// EnvFile supplies environment variables not set in the process.
	EnvFile = ".env"
)

var ErrConfigNotFound = errors.New("configuration not found")

// environment looks variables up in the process first, then in the .env
// file. The process environment is never modified.
type environment struct {
	dotenv map[string]string
}

func loadEnvironment(baseDir string) (*environment, error) {
	path := filepath.Join(baseDir, EnvFile)

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Not having a .env is normal in CI where variables are set directly.
			return &environment{}, nil
		}

		return nil, err
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &environment{dotenv: values}, nil
}

func (e *environment) get(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return e.dotenv[key]
}

// getDurationWithDefault gets a duration from the environment or returns default.
func (e *environment) getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := e.get(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from the environment or returns default.
func (e *environment) getBoolWithDefault(key string, defaultValue bool) bool {
	value := e.get(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// Load discovers and reads the configuration relative to baseDir.
//
// If REST_BASE_URL is set, the defaults are used with that base URI.
// Otherwise API_TESTING_CONFIG_FILE names the file, as a path or as a name
// within the configs directory. Failing both, .api-testing.config.json in
// baseDir is required.
func Load(baseDir string) (*Config, error) {
	env, err := loadEnvironment(baseDir)
	if err != nil {
		return nil, err
	}

	var config *Config

	if baseURL := env.get(EnvRESTBaseURL); baseURL != "" {
		config = Default()
		config.BaseURI = baseURL
	} else {
		path, err := locate(baseDir, env.get(EnvConfigFile))
		if err != nil {
			return nil, err
		}

		if config, err = decodeFile(path); err != nil {
			return nil, err
		}
	}

	env.apply(config)

	return config, nil
}

// LoadFile reads the configuration from the given file, applying process
// environment overrides.
func LoadFile(path string) (*Config, error) {
	config, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	(&environment{}).apply(config)

	return config, nil
}

// Locate returns the config file Load would read from baseDir.
func Locate(baseDir string) (string, error) {
	env, err := loadEnvironment(baseDir)
	if err != nil {
		return "", err
	}

	return locate(baseDir, env.get(EnvConfigFile))
}

func locate(baseDir, configFile string) (string, error) {
	if configFile != "" {
		if exists(configFile) {
			return configFile, nil
		}

		// Was it just the file name without the configs directory?
		named := filepath.Join(baseDir, ConfigsDir, configFile)
		if exists(named) {
			return named, nil
		}

		return "", fmt.Errorf("%w: %s was set but neither '%s' nor '%s' exist", ErrConfigNotFound, EnvConfigFile, configFile, named)
	}

	local := filepath.Join(baseDir, LocalConfigFile)
	if !exists(local) {
		return "", fmt.Errorf("%w: missing local config, please create %s", ErrConfigNotFound, local)
	}

	return local, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// decodeFile overlays the file's values on the defaults.
func decodeFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Default()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if config.ExtraParameters == nil {
		config.ExtraParameters = map[string]interface{}{}
	}

	config.Source = path

	return config, nil
}

func (e *environment) apply(config *Config) {
	if secretKey := e.get(EnvSecretKey); secretKey != "" {
		config.SecretKey = secretKey
	}

	config.RequestTimeout = e.getDurationWithDefault(EnvRequestTimeout, DefaultRequestTimeout)
	config.LogRequests = e.getBoolWithDefault(EnvLogRequests, false)
	config.LogResponses = e.getBoolWithDefault(EnvLogResponses, false)
}
