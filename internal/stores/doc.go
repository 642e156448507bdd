// Package stores provides the redis-backed credential store.
//
// # Design
//
// One redis hash per normalized email. Both mutating operations are single
// HSETNX commands, so uniqueness of accounts and exactly-once assignment of
// the MFA secret are enforced by redis itself rather than by application-level
// check-then-write.
//
// # What this package must NOT do
//
//   - Normalize emails (the gateway normalizes once, before any store call).
//   - Hash passwords or interpret secrets.
//   - Import the root package or any sibling.
package stores
