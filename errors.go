package termcore

import "errors"

// Error kinds the core distinguishes at its public boundaries. Internal
// inconsistencies are programmer errors and panic; these sentinels cover
// the recoverable cases that propagate up to the Session.
var (
	// ErrInvalidParameter is returned when a public API call received
	// out-of-range arguments, e.g. a resize to zero columns. No partial
	// state change happens before it is returned.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrStorage wraps a history backend's failure to write (disk full,
	// file vanished). The Session degrades history writes to no-ops and
	// surfaces a one-shot warning.
	ErrStorage = errors.New("history storage error")

	// ErrPty wraps a PTY read or write failure. A read error finishes
	// the Session with exit-status unknown; a write error is reported
	// and retried at most once.
	ErrPty = errors.New("pty error")

	// ErrChildStart is returned when the child process could not be
	// started (binary not found, fork failed). The Session transitions
	// from New directly to Finished with failure status.
	ErrChildStart = errors.New("child start failure")
)
