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
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // the wiki verifies HMAC-SHA1
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"time"
)

const (
	// RunJobsPage is the special page that runs jobs on request.
	RunJobsPage = "Special:RunJobs"

	// SignatureParam carries the request signature.
	SignatureParam = "signature"

	// NoneReady is the reached status of an empty queue.
	NoneReady = "none-ready"

	// minMaxTime is the smallest time budget, in seconds, given to a batch.
	minMaxTime = 60

	// maxTimePerJob is the time budget, in seconds, allowed per requested job.
	maxTimePerJob = 10

	// signatureTTL is how long a signed request stays valid.
	signatureTTL = time.Hour
)

var (
	// ErrInvalidSignature is returned by Verify when a request is unsigned
	// or its signature does not match.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrSignatureExpired is returned by Verify when sigexpiry has passed.
	ErrSignatureExpired = errors.New("signature expired")
)

// signedParams are the job runner parameters a signature covers. Anything
// else on the request, such as format, is ignored when verifying.
//
//nolint:gochecknoglobals
var signedParams = []string{"title", "maxjobs", "maxtime", "async", "stats", "tasks", "sigexpiry"}

// RunRequest asks the wiki to run a batch of jobs.
type RunRequest struct {
	// MaxJobs is the most jobs to run in this batch.
	MaxJobs int
	// MaxTime is the batch's time budget in seconds.
	MaxTime int
	// Async asks the wiki to run the jobs after responding.
	Async bool
	// Stats asks for the run statistics in the response.
	Stats bool
	// Tasks is sent verbatim. Its meaning is undocumented and it is
	// always empty.
	Tasks string
	// SignatureExpiry is the Unix time after which the signature is rejected.
	SignatureExpiry int64
}

// NewRunRequest builds a synchronous request for maxJobs jobs whose
// signature is valid for an hour from now.
func NewRunRequest(maxJobs int, now time.Time) *RunRequest {
	return &RunRequest{
		MaxJobs:         maxJobs,
		MaxTime:         max(maxJobs*maxTimePerJob, minMaxTime),
		Stats:           true,
		SignatureExpiry: ceilUnix(now.Add(signatureTTL)),
	}
}

// ceilUnix rounds up to a whole second.
func ceilUnix(t time.Time) int64 {
	seconds := t.Unix()
	if t.Nanosecond() > 0 {
		seconds++
	}

	return seconds
}

// flag renders a boolean the way the wiki reads it: empty is false.
func flag(b bool) string {
	if b {
		return "1"
	}

	return ""
}

// Values returns the unsigned wire parameters.
func (r *RunRequest) Values() url.Values {
	return url.Values{
		"title":     {RunJobsPage},
		"maxjobs":   {strconv.Itoa(r.MaxJobs)},
		"maxtime":   {strconv.Itoa(r.MaxTime)},
		"async":     {flag(r.Async)},
		"stats":     {flag(r.Stats)},
		"tasks":     {r.Tasks},
		"sigexpiry": {strconv.FormatInt(r.SignatureExpiry, 10)},
	}
}

// Signed returns the wire parameters with their signature added.
func (r *RunRequest) Signed(secretKey string) url.Values {
	values := r.Values()
	values.Set(SignatureParam, Sign(secretKey, values))

	return values
}

// signature computes the HMAC-SHA1 of the values, encoded with keys in
// sorted order.
func signature(secretKey string, values url.Values) []byte {
	mac := hmac.New(sha1.New, []byte(secretKey))
	_, _ = io.WriteString(mac, values.Encode())

	return mac.Sum(nil)
}

// Sign returns the lowercase hex signature of all values except any
// existing signature.
func Sign(secretKey string, values url.Values) string {
	unsigned := url.Values{}

	for k, v := range values {
		if k != SignatureParam {
			unsigned[k] = v
		}
	}

	return hex.EncodeToString(signature(secretKey, unsigned))
}

// Verify checks a signed job runner request the way the wiki does: only
// the job runner parameters present are covered, and the expiry must not
// have passed.
func Verify(secretKey string, values url.Values, now time.Time) error {
	expected, err := hex.DecodeString(values.Get(SignatureParam))
	if err != nil || len(expected) == 0 {
		return ErrInvalidSignature
	}

	expiry, err := strconv.ParseInt(values.Get("sigexpiry"), 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}

	if now.Unix() > expiry {
		return ErrSignatureExpired
	}

	covered := url.Values{}

	for _, k := range signedParams {
		if v, ok := values[k]; ok {
			covered[k] = v
		}
	}

	if !hmac.Equal(expected, signature(secretKey, covered)) {
		return ErrInvalidSignature
	}

	return nil
}

// RunResponse is the wiki's report of a batch.
type RunResponse struct {
	// Reached is why the batch stopped, nil if the wiki did not say.
	Reached *string `json:"reached"`
	// Jobs describes the jobs run in this batch.
	Jobs []json.RawMessage `json:"jobs"`
}
