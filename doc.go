// Package dstream contains the core contracts for push-based event streams.
//
// An [Observable] delivers zero or more values to an [Observer],
// followed by at most one terminal notification (an error or completion).
// Cancelling the context passed to [Observable.Subscribe]
// detaches the observer.
//
// Subpackages build on these contracts:
// [github.com/gordian-engine/dstream/dcache] provides the replaying, expiring multicast cache,
// [github.com/gordian-engine/dstream/dsubject] provides multicast subjects,
// and [github.com/gordian-engine/dstream/dops] provides general operators.
package dstream
