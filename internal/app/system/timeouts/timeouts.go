// internal/app/system/timeouts/timeouts.go

// Package timeouts provides the shared context timeout tiers used with
// context.WithTimeout across the HTTP handlers, stores, and background
// workers.
//
// Guidelines for choosing a tier:
//   - Ping: health checks verifying Mongo connectivity
//   - Short: single-document reads (user or gang lookups by id)
//   - Medium: list queries (leaderboards, activity feeds, gang member lists)
//   - Long: multi-document writes (point awards, gang switches, rollup
//     recomputes)
//   - Batch: the weekly reset sweep across every user and gang
package timeouts

import "time"

const (
	ping   = 2 * time.Second
	short  = 5 * time.Second
	medium = 10 * time.Second
	long   = 30 * time.Second
	batch  = 2 * time.Minute
)

// Ping returns the timeout for health checks and connectivity verification.
func Ping() time.Duration { return ping }

// Short returns the timeout for single-document reads.
func Short() time.Duration { return short }

// Medium returns the timeout for list queries and feeds.
func Medium() time.Duration { return medium }

// Long returns the timeout for writes that touch a user, its gang's
// rollup, and the activity log in one request.
func Long() time.Duration { return long }

// Batch returns the timeout for the weekly reset sweep, which rewrites
// every user document and every gang rollup.
func Batch() time.Duration { return batch }
