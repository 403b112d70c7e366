// Package config loads, normalizes, and validates Green Sprint configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GREENSPRINT_NTFY_TOPIC. The Config type centralizes every knob the daemon
// and CLI need, allowing data/import directories, the API bind address, and
// push notification credentials to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
