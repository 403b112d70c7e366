// Package notify delivers push notifications about community activity via
// ntfy. When no topic is configured a no-op service is returned, so callers
// publish unconditionally and never check configuration themselves.
package notify
