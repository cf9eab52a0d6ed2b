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

// Package util provides small helpers for naming and path handling in
// wiki API tests.
package util

import (
	"math/rand/v2"
	"strings"
)

const (
	// DefaultUniqLength is the length of strings returned by Uniq when
	// no positive length is requested.
	DefaultUniqLength = 10

	uniqCharacters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Uniq returns a string of n random alphanumeric characters.
func Uniq(n int) string {
	if n <= 0 {
		n = DefaultUniqLength
	}

	var b strings.Builder

	b.Grow(n)

	for range n {
		//nolint:gosec
		b.WriteByte(uniqCharacters[rand.IntN(len(uniqCharacters))])
	}

	return b.String()
}

// Title returns a unique page or user name with the given prefix.
func Title(prefix string) string {
	return prefix + Uniq(DefaultUniqLength)
}

// DBKey converts a title to DB key form by replacing spaces with underscores.
func DBKey(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}

// SameTitle reports whether two titles are equal once normalized to DB keys.
func SameTitle(a, b string) bool {
	return DBKey(a) == DBKey(b)
}

// AddLeadingSlash adds a leading slash to the path, if not present.
func AddLeadingSlash(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}

	return "/" + path
}

// TrimTrailingSlash removes a single trailing slash, if present.
func TrimTrailingSlash(path string) string {
	return strings.TrimSuffix(path, "/")
}

// NormalizePath ensures the path has a leading slash and no trailing slash.
// If suffix is not empty it is appended with a single separating slash, and
// any trailing slash on the suffix is kept.
func NormalizePath(path, suffix string) string {
	if path == "" {
		return AddLeadingSlash(suffix)
	}

	path = TrimTrailingSlash(AddLeadingSlash(path))

	if suffix != "" {
		path += AddLeadingSlash(suffix)
	}

	if path == "" {
		return "/"
	}

	return path
}
