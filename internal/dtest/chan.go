package dtest

import (
	"testing"
	"time"
)

// ScheduleDuration is how long the "Soon" helpers wait
// before deciding that a channel operation is not going to happen.
const ScheduleDuration = 2 * time.Second

// ReceiveSoon receives a value from ch,
// failing the test if no value arrives within [ScheduleDuration].
func ReceiveSoon[T any](t testing.TB, ch <-chan T) T {
	t.Helper()

	timer := time.NewTimer(ScheduleDuration)
	defer timer.Stop()

	select {
	case v := <-ch:
		return v
	case <-timer.C:
		t.Fatalf("did not receive value within %s", ScheduleDuration)
	}

	panic("unreachable")
}

// SendSoon sends v on ch,
// failing the test if the send does not complete within [ScheduleDuration].
func SendSoon[T any](t testing.TB, ch chan<- T, v T) {
	t.Helper()

	timer := time.NewTimer(ScheduleDuration)
	defer timer.Stop()

	select {
	case ch <- v:
		// Okay.
	case <-timer.C:
		t.Fatalf("could not send value within %s", ScheduleDuration)
	}
}

// IsSending asserts that a receive from ch is immediately ready,
// which for a signal channel means it has been closed.
func IsSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		// Okay.
	default:
		t.Fatal("channel should have been ready to receive")
	}
}

// NotSending asserts that a receive from ch is not immediately ready.
func NotSending[T any](t testing.TB, ch <-chan T) {
	t.Helper()

	select {
	case <-ch:
		t.Fatal("channel should not have been ready to receive")
	default:
		// Okay.
	}
}
