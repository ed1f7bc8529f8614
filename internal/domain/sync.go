package domain

import "time"

// SyncResult holds the outcome of one sync pass for one user.
type SyncResult struct {
	UserID   string
	Fetched  int
	New      int
	Existing int
	// Failures lists identifiers of items whose individual upsert failed.
	// A failed item does not block its siblings.
	Failures []string
	Duration time.Duration
}
