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

package jobs

//go:generate mockgen -source=drainer.go -destination=mock/interfaces.go -package=mock

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-logr/logr"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/client"
)

// moreWork is returned by RunBatch when jobs ran. It is not a queue depth.
const moreWork = 100

// Transport posts form parameters to an endpoint relative to the wiki's
// base URL. It is satisfied by client.ActionClient.
type Transport interface {
	Request(ctx context.Context, params url.Values, post bool, endpoint string) (*client.Response, error)
}

// Drainer runs jobs on a remote wiki until its queue is empty.
type Drainer struct {
	transport Transport
	secretKey string
	options   *Options
	endpoints client.Endpoints
	logger    logr.Logger
	metrics   *Metrics
	now       func() time.Time
}

// New returns a drainer that signs its requests with secretKey.
func New(transport Transport, secretKey string, options *Options) *Drainer {
	if options == nil {
		options = DefaultOptions()
	}

	return &Drainer{
		transport: transport,
		secretKey: secretKey,
		options:   options,
		logger:    logr.Discard(),
		now:       time.Now,
	}
}

// WithLogger sets the logger used to report batches.
func (d *Drainer) WithLogger(logger logr.Logger) *Drainer {
	d.logger = logger

	return d
}

// WithMetrics records batches and drains in m.
func (d *Drainer) WithMetrics(m *Metrics) *Drainer {
	d.metrics = m

	return d
}

// WithClock replaces the clock used for signature expiry.
func (d *Drainer) WithClock(now func() time.Time) *Drainer {
	d.now = now

	return d
}

// RunBatch asks the wiki to run up to maxJobs jobs. It returns 0 once the
// wiki reports none are ready, and a positive value when jobs ran and more
// may remain.
func (d *Drainer) RunBatch(ctx context.Context, maxJobs int) (int, error) {
	if d.secretKey == "" {
		return 0, fmt.Errorf("%w: secret_key must be set to run jobs", ErrConfiguration)
	}

	if maxJobs <= 0 {
		return 0, fmt.Errorf("%w: maxjobs must be positive, got %d", ErrConfiguration, maxJobs)
	}

	params := NewRunRequest(maxJobs, d.now()).Signed(d.secretKey)

	log := d.logger.WithValues("maxjobs", maxJobs)

	start := time.Now()
	n, jobs, err := d.runBatch(ctx, params)
	seconds := time.Since(start).Seconds()

	if err != nil {
		d.metrics.recordBatch(resultError, seconds, 0)
		log.Error(err, "job runner batch failed")

		return 0, err
	}

	if n == 0 {
		d.metrics.recordBatch(resultNoneReady, seconds, jobs)
		log.V(1).Info("job queue empty", "jobs", jobs)

		return 0, nil
	}

	d.metrics.recordBatch(resultRan, seconds, jobs)
	log.V(1).Info("ran jobs", "jobs", jobs)

	return n, nil
}

func (d *Drainer) runBatch(ctx context.Context, params url.Values) (int, int, error) {
	response, err := d.transport.Request(ctx, params, true, d.endpoints.Index())
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if response.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("%w: status %d, body: %s", ErrTransport, response.StatusCode, response.Text())
	}

	var result RunResponse

	if err := response.JSON(&result); err != nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	if result.Reached == nil {
		return 0, 0, fmt.Errorf("%w: missing reached field, body: %s", ErrProtocol, response.Text())
	}

	// The batch that empties the queue reports none-ready with its jobs.
	if *result.Reached == NoneReady {
		return 0, len(result.Jobs), nil
	}

	if len(result.Jobs) == 0 {
		return 0, 0, fmt.Errorf("%w: reached %q with no jobs run", ErrProtocol, *result.Reached)
	}

	return moreWork, len(result.Jobs), nil
}

// DrainAll runs batches until the wiki reports the queue empty. With no
// MaxBatches it will keep going for as long as jobs keep running.
func (d *Drainer) DrainAll(ctx context.Context) error {
	err := d.drainAll(ctx)

	d.metrics.recordDrain(err)

	return err
}

func (d *Drainer) drainAll(ctx context.Context) error {
	batchSize := d.options.batchSize()
	limit := d.options.maxBatches()

	for batches := 0; limit == 0 || batches < limit; batches++ {
		n, err := d.RunBatch(ctx, batchSize)
		if err != nil {
			return err
		}

		if n == 0 {
			d.logger.Info("job queue drained", "batches", batches+1)

			return nil
		}
	}

	return fmt.Errorf("%w: still running after %d batches", ErrQueueNotDrained, limit)
}
