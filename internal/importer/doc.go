// Package importer ingests bulk tree registrations from CSV files dropped
// into the configured import directory.
//
// Files are picked up two ways: a filesystem watcher reacts to new and
// rewritten files after a short settle delay, and a periodic rescan sweeps
// anything the watcher missed (files present before startup, network mounts
// without inotify). Processed files move to a processed/ subdirectory;
// files that yield nothing move to failed/ with a .error report alongside.
package importer
