package preflight

import (
	"context"
	"strings"

	"greensprint/internal/config"
)

// CheckNtfyFromConfig evaluates push notification status from config and
// connectivity.
func CheckNtfyFromConfig(cfg *config.Config) Result {
	const name = "ntfy"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	check := CheckNtfy(context.Background(), cfg.Notifications.NtfyTopic)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// CheckImportFromConfig evaluates bulk import readiness from config and the
// import directory's state.
func CheckImportFromConfig(cfg *config.Config) Result {
	const name = "Imports"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Import.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	if strings.TrimSpace(cfg.Paths.ImportDir) == "" {
		return Result{Name: name, Detail: "Missing import directory"}
	}
	check := CheckDirectoryAccess(name, cfg.Paths.ImportDir)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}
