// Package dpubsub adapts push-based observables
// to goroutines that prefer to pull values at their own pace.
//
// The [Stream] type is a single-writer, many-reader linked list:
// [Subscribe] writes an Observable's notifications into it,
// and any number of readers walk it independently.
package dpubsub
