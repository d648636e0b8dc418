package repository

import "context"

// Repository defines persistence for rate-limit counters. One row exists per
// (client address, endpoint) pair.
//
// Upsert records a hit at now (unix seconds) and returns whether the request
// is limited. The whole decision (create, window reset, increment, or reject
// without increment) must execute atomically against the store so that
// concurrent requests for the same pair cannot race past the limit check.
type Repository interface {
	Upsert(ctx context.Context, clientAddr, endpoint string, now, windowSeconds int64, maxRequests int) (limited bool, err error)
	// DeleteExpired removes rows whose last hit is strictly before cutoff
	// (unix seconds) and returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff int64) (int64, error)
}
