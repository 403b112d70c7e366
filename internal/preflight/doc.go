// Package preflight provides readiness checks for the directories and
// external services Green Sprint depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and refuses to serve when a
//     required check fails, so a misconfigured install dies loudly
//     instead of limping.
//   - The CLI "greensprint daemon status" command uses individual check
//     functions to display readiness alongside runtime state.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
