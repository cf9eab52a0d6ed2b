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

package fake

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/wikimedia/mediawiki-tools-api-testing/pkg/jobs"
)

// JobQueue simulates the wiki's job queue behind Special:RunJobs.
type JobQueue struct {
	lock    sync.Mutex
	pending []string
	ran     int
}

// NewJobQueue returns an empty queue.
func NewJobQueue() *JobQueue {
	return &JobQueue{}
}

// Push enqueues jobs of the given types.
func (q *JobQueue) Push(types ...string) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.pending = append(q.pending, types...)
}

// Pending returns the number of jobs still queued.
func (q *JobQueue) Pending() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return len(q.pending)
}

// Ran returns the number of jobs run so far.
func (q *JobQueue) Ran() int {
	q.lock.Lock()
	defer q.lock.Unlock()

	return q.ran
}

// Handler runs up to maxjobs jobs. The job limit is checked after each job,
// so a batch that runs exactly maxjobs reports job-limit and the next call
// reports none-ready. A shorter batch that empties the queue reports
// none-ready along with the jobs it ran.
func (q *JobQueue) Handler(r *Request) (interface{}, error) {
	maxJobs, err := strconv.Atoi(r.Params.Get("maxjobs"))
	if err != nil || maxJobs <= 0 {
		return nil, &StatusError{Status: http.StatusBadRequest, Message: "invalid maxjobs"}
	}

	q.lock.Lock()
	defer q.lock.Unlock()

	n := min(maxJobs, len(q.pending))

	ran := make([]interface{}, 0, n)

	for _, t := range q.pending[:n] {
		ran = append(ran, map[string]interface{}{
			"type":   t,
			"status": "ok",
			"error":  nil,
			"time":   1,
		})
	}

	q.pending = q.pending[n:]
	q.ran += n

	reached := "job-limit"
	if n < maxJobs {
		reached = jobs.NoneReady
	}

	return map[string]interface{}{
		"reached": reached,
		"jobs":    ran,
	}, nil
}
