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

// Package wiki binds a configuration to the clients and the job runner
// used to test a wiki.
package wiki

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/client"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/config"
	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
)

// Wiki creates sessions and clients for one configured wiki.
type Wiki struct {
	config  *config.Config
	options *jobs.Options
	logger  logr.Logger
	metrics *jobs.Metrics

	lock sync.Mutex
	anon *client.ActionClient
}

// New validates the configuration and returns a wiki. Options control
// RunAllJobs and may be nil.
func New(cfg *config.Config, options *jobs.Options, logger logr.Logger) (*Wiki, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if options == nil {
		options = jobs.DefaultOptions()
	}

	w := &Wiki{
		config:  cfg,
		options: options,
		logger:  logger,
	}

	return w, nil
}

// WithMetrics records job runner activity in m.
func (w *Wiki) WithMetrics(m *jobs.Metrics) *Wiki {
	w.metrics = m

	return w
}

// Config returns the wiki's configuration.
func (w *Wiki) Config() *config.Config {
	return w.config
}

// NewSession returns an anonymous session with an empty cookie jar.
func (w *Wiki) NewSession() (*client.Session, error) {
	return client.NewSession(w.config, w.logger)
}

// Action returns an action API client on session, or on a new anonymous
// session if session is nil.
func (w *Wiki) Action(session *client.Session) (*client.ActionClient, error) {
	if session == nil {
		s, err := w.NewSession()
		if err != nil {
			return nil, err
		}

		session = s
	}

	return client.NewActionClient(session), nil
}

// Anon returns the shared anonymous action API client, creating it on
// first use.
func (w *Wiki) Anon() (*client.ActionClient, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.anon != nil {
		return w.anon, nil
	}

	anon, err := w.Action(nil)
	if err != nil {
		return nil, err
	}

	w.anon = anon

	return anon, nil
}

// REST returns a REST client on a new anonymous session. An empty prefix
// means client.DefaultRESTPrefix.
func (w *Wiki) REST(prefix string) (*client.RESTClient, error) {
	session, err := w.NewSession()
	if err != nil {
		return nil, err
	}

	if prefix == "" {
		prefix = client.DefaultRESTPrefix
	}

	return client.NewRESTClient(session, prefix), nil
}

// Drainer returns a job runner signing with the configured secret key and
// sending through the anonymous client.
func (w *Wiki) Drainer() (*jobs.Drainer, error) {
	anon, err := w.Anon()
	if err != nil {
		return nil, err
	}

	d := jobs.New(anon, w.config.SecretKey, w.options).WithLogger(w.logger.WithName("jobs"))

	if w.metrics != nil {
		d.WithMetrics(w.metrics)
	}

	return d, nil
}

// RunJobs runs a single batch of up to n jobs, see jobs.Drainer.RunBatch.
func (w *Wiki) RunJobs(ctx context.Context, n int) (int, error) {
	d, err := w.Drainer()
	if err != nil {
		return 0, err
	}

	return d.RunBatch(ctx, n)
}

// RunAllJobs runs jobs until the wiki reports its queue empty.
func (w *Wiki) RunAllJobs(ctx context.Context) error {
	d, err := w.Drainer()
	if err != nil {
		return err
	}

	return d.DrainAll(ctx)
}
