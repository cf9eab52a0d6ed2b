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

import (
	"github.com/spf13/pflag"
)

const (
	// DefaultBatchSize is how many jobs each drain batch asks for.
	DefaultBatchSize = 10
)

// Options control how a queue is drained.
type Options struct {
	// BatchSize is the maxjobs of each batch.
	BatchSize int
	// MaxBatches bounds a drain, zero means keep going until the queue
	// is empty.
	MaxBatches int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		BatchSize: DefaultBatchSize,
	}
}

// AddFlags registers the job runner flags with f.
func (o *Options) AddFlags(f *pflag.FlagSet) {
	f.IntVar(&o.BatchSize, "batch-size", DefaultBatchSize, "Jobs to run per batch when draining the job queue")
	f.IntVar(&o.MaxBatches, "max-batches", 0, "Maximum batches to run before giving up on a drain, 0 for no limit")
}

func (o *Options) batchSize() int {
	if o == nil || o.BatchSize <= 0 {
		return DefaultBatchSize
	}

	return o.BatchSize
}

func (o *Options) maxBatches() int {
	if o == nil || o.MaxBatches < 0 {
		return 0
	}

	return o.MaxBatches
}
