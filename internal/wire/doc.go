// Package wire defines the typed payload shapes exchanged with the Ebina
// management API and validates them at the decode boundary.
//
// Every server response that drives a control-flow decision (login method
// selection, step-up challenges, ceremony failures) is decoded into a
// tagged variant here. Nothing downstream of this package touches raw
// JSON maps.
//
// # What this package must NOT do
//
//   - Perform network I/O.
//   - Import the root ebina package or any sibling package.
//   - Accept a payload it cannot fully classify; unknown tags are errors.
package wire
