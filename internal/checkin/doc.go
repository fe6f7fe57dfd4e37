// Package checkin turns a raw submission into a Record and a Verdict.
//
// Everything here is pure: the current instant is passed in, the registry is
// read-only, and no I/O happens. Missing submission fields fall back to
// defaults through ordered rule lists instead of failing.
package checkin
