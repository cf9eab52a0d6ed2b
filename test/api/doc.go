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

// Package api provides the Ginkgo fixtures used to test a wiki through its
// action and REST APIs.
//
// # Fake and live wikis
//
// Most suites run against a fake wiki served in process by httptest, with
// mocked actions, routes and a simulated job queue. Suites labelled
// "integration" run against the wiki described by the api-testing
// configuration and are skipped when there is none.
//
// # Job queue
//
// Many wiki operations, such as link table updates, are deferred to the
// job queue. Tests that depend on their effects drain the queue first with
// RunAllJobs, or wait for it with WaitForQueueDrained.
package api
