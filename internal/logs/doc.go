// Package logs reads daemon log files for CLI display.
//
// It locates the active run log inside the configured log directory, returns
// the last N lines with bounded memory, and resumes from byte offsets so
// `greensprint logs --follow` can poll for new output without re-reading the
// whole file. A missing log file is treated as empty rather than an error so
// callers can start tailing before the daemon writes anything.
package logs
