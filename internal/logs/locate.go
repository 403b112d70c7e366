package logs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	currentLogName = "greensprint.log"
	runLogPattern  = "greensprint-*.log"
)

// CurrentPath returns the daemon log file to read inside logDir. The
// greensprint.log pointer the daemon maintains wins; otherwise the newest
// run-scoped log is used. Run logs embed a UTC timestamp in the name, so the
// lexicographically largest match is the most recent. Returns "" when no log
// has been written yet.
func CurrentPath(logDir string) string {
	logDir = strings.TrimSpace(logDir)
	if logDir == "" {
		return ""
	}

	pointer := filepath.Join(logDir, currentLogName)
	if info, err := os.Stat(pointer); err == nil && !info.IsDir() {
		return pointer
	}

	matches, err := filepath.Glob(filepath.Join(logDir, runLogPattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[len(matches)-1]
}
