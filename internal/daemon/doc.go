// Package daemon coordinates the long-running Green Sprint process: it
// enforces single-instance execution with a file lock, owns the record store
// and the domain services, serves the HTTP API, and runs the background
// importer and campaign milestone checker.
//
// # Lifecycle
//
// New wires the services around one shared store and notifier. Start acquires
// the lock, runs preflight, binds the API listener, and launches the
// background loops. Stop tears the loops down in reverse order and releases
// the lock. Close also closes the store.
//
// # Control surface
//
// The exported methods on Daemon (Scan, RegisterTree, NearbyTrees, ...) are
// the single entry point for both the IPC service and the HTTP handlers, so
// the two transports cannot drift apart.
package daemon
