// Package services defines shared utilities consumed by the domain services
// and transport layers.
//
// Key responsibilities:
//   - Context helpers that stamp tree record IDs, acting users, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification consistent: a scan that cannot be understood, a record
//     that does not exist, and a store that cannot be reached are distinct
//     outcomes and callers branch on them.
//
// Use these helpers when wiring new service logic so operational behaviour
// (error handling, observability) stays uniform across the system.
package services
