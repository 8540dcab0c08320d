// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package timeutil

import "time"

// Now returns the current UTC time.
//
// Packages should use this instead of time.Now so that log lines and rate
// limiters agree on the time zone.
func Now() time.Time {
	return time.Now().UTC()
}
