// Package analytics derives risk metrics from a snapshot of PTT topics.
//
// Every function in this package is a pure transform of its arguments: the
// topic slice is never modified, no clock is read (callers pass "now" or an
// as-of date), and nothing is cached between calls. Functions are safe for
// concurrent use on a shared slice.
package analytics
