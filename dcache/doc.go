// Package dcache contains the replaying, expiring multicast cache.
//
// A [Multicaster] sits between one upstream producer and any number of consumers.
// It subscribes upstream on demand, keeps the last few timestamped values
// in a bounded buffer, fans live values out to consumers,
// and replays still-fresh buffered values to consumers that arrive later,
// including after the upstream has completed.
//
// Two independent expiry policies decide when the upstream is subscribed again.
// A refresh duration ([RefreshAfter]) is checked lazily:
// a completed generation whose newest value is older than the duration
// is only replaced when a new consumer attaches.
// A refresh source ([RefreshOn]) is eager:
// each of its emissions immediately starts a new generation.
// [Refresh] combines both and sets the buffer length.
//
// There is no background timer.
// A cache that nobody attaches to keeps its stale values
// until the next refresh signal or until its context ends.
package dcache
