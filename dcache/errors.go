package dcache

import "errors"

var (
	// ErrSuperseded is the cancellation cause given to a generation's
	// upstream subscription when a newer generation replaces it.
	ErrSuperseded = errors.New("generation superseded")

	// ErrRefreshEnded is the cancellation cause given to the active generation's
	// upstream subscription when the refresh source completes or fails.
	ErrRefreshEnded = errors.New("refresh source ended")

	// ErrNoSource is reported to consumers that attach
	// before [*Multicaster.Apply] assigned an upstream.
	ErrNoSource = errors.New("no upstream source applied")
)
