// Package store persists the client's current session record — the
// last-known bearer token and the identity hint — across process
// restarts.
//
// The record is a single value, not a table: the client owns exactly one
// session at a time and every Save replaces the previous record whole.
// Implementations must make Save/Load/Delete safe for concurrent use.
package store
