package domain

import "time"

// Sermon processing states. A sermon is created in processing and moves
// exactly once to ready or failed; terminal states never transition.
const (
	StatusProcessing = "processing"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// Placeholder values written when a sermon row is created ahead of the
// processing pipeline (write-ahead pattern: a failed run must leave a
// visible failed row, never an orphaned processing one).
const (
	TitleProcessing = "Processing notes..."
	TitleFailed     = "Processing failed"
	PlaceholderURL  = "#"
)

// StalledAfter is how long a sermon may sit in processing before read
// paths flag it as stalled. Longer than any possible pipeline run
// (generation polling alone is bounded at ~60s).
const StalledAfter = 10 * time.Minute

// IsTerminal reports whether a status permits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusReady || status == StatusFailed
}
