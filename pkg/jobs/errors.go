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
	"errors"
)

var (
	// ErrConfiguration is raised when the drainer cannot sign requests or
	// is asked for an impossible batch.
	ErrConfiguration = errors.New("job runner misconfigured")

	// ErrProtocol is raised when the wiki's response cannot be understood.
	ErrProtocol = errors.New("unexpected job runner response")

	// ErrTransport is raised when the request fails or the status is not OK.
	ErrTransport = errors.New("job runner request failed")

	// ErrQueueNotDrained is raised when the batch limit is hit before the
	// queue reports empty.
	ErrQueueNotDrained = errors.New("job queue not drained")
)
