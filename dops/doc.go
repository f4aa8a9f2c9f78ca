// Package dops contains general-purpose operators
// over [github.com/gordian-engine/dstream.Observable] values.
package dops
