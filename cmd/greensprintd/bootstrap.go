package main

import (
	"greensprint/internal/config"
	"greensprint/internal/daemonrun"
)

// resolveOptions derives runtime options for the service binary. The socket
// path is pinned here so the CLI and the daemon agree on it even if the
// fallback inside daemonrun changes.
func resolveOptions(cfg *config.Config) daemonrun.Options {
	if cfg == nil {
		return daemonrun.Options{}
	}
	return daemonrun.Options{
		LogLevel:   cfg.Logging.Level,
		SocketPath: cfg.SocketPath(),
	}
}
