// Package dsubject contains multicast subjects:
// values that are both an Observer, fed by a single producer,
// and an Observable, fanning every notification out to current subscribers.
//
// [TakeSubject] is a subject that terminates itself after a fixed number of values,
// which makes it a convenient stop signal for [github.com/gordian-engine/dstream/dops.TakeUntil].
package dsubject
