package preflight

import (
	"context"

	"greensprint/internal/config"
)

// minFreeDataMB is the smallest amount of free space on the data volume
// considered healthy. The database and scan history grow slowly; running
// dry mid-write corrupts nothing but fails every request.
const minFreeDataMB = 64

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Data and log directories (always checked)
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckDiskSpace("Data volume", cfg.Paths.DataDir, minFreeDataMB))

	// Import directory (when imports are enabled)
	if cfg.Import.Enabled && cfg.Paths.ImportDir != "" {
		results = append(results, CheckDirectoryAccess("Import directory", cfg.Paths.ImportDir))
	}

	// API bind address (when the HTTP API is configured)
	if cfg.Paths.APIBind != "" {
		results = append(results, CheckBindAddress(cfg.Paths.APIBind))
	}

	// ntfy endpoint (when push notifications are configured)
	if cfg.Notifications.NtfyTopic != "" {
		results = append(results, CheckNtfy(ctx, cfg.Notifications.NtfyTopic))
	}

	return results
}

// AllPassed reports whether every result in the set passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
