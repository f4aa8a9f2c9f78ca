package dcache

import (
	"time"

	"github.com/gordian-engine/dstream"
	"github.com/gordian-engine/dstream/dops"
)

// Policy decides when the cached upstream is subscribed again.
//
// The set of policies is closed:
// use [RefreshAfter], [RefreshOn], or a [Refresh] record.
// A nil Policy means buffered values never expire.
type Policy interface {
	resolve() resolvedPolicy
}

// resolvedPolicy is the single shape every Policy reduces to.
type resolvedPolicy struct {
	// Nil when there is no eager refresh source.
	refresh dstream.Observable[struct{}]

	// Zero when there is no lazy expiry.
	after time.Duration

	// Zero when the policy does not set a buffer length.
	bufferLen int
}

func (p resolvedPolicy) expires() bool {
	return p.refresh != nil || p.after > 0
}

// RefreshAfter returns a Policy with lazy expiry:
// once a generation has completed and its newest value is older than d,
// the next consumer to attach starts a new generation.
func RefreshAfter(d time.Duration) Policy {
	return afterPolicy(d)
}

type afterPolicy time.Duration

func (p afterPolicy) resolve() resolvedPolicy {
	return resolvedPolicy{after: max(time.Duration(p), 0)}
}

// RefreshOn returns a Policy with eager refresh:
// every value emitted by src immediately starts a new generation.
func RefreshOn[S any](src dstream.Observable[S]) Policy {
	return Refresh{Source: signal(src)}
}

// Refresh combines both expiry policies and sets the buffer length.
// Either or both of Source and After may be set.
type Refresh struct {
	// Each emission starts a new generation.
	Source dstream.Observable[struct{}]

	// Lazy expiry window, checked when consumers attach.
	After time.Duration

	// Number of values retained for replay.
	// If zero, [Config.BufferLen] is used.
	BufferLen int
}

func (r Refresh) resolve() resolvedPolicy {
	return resolvedPolicy{
		refresh:   r.Source,
		after:     max(r.After, 0),
		bufferLen: r.BufferLen,
	}
}

// signal erases the value type of a refresh source.
func signal[S any](src dstream.Observable[S]) dstream.Observable[struct{}] {
	if s, ok := any(src).(dstream.Observable[struct{}]); ok {
		return s
	}
	return dops.Map(func(S) struct{} { return struct{}{} })(src)
}
