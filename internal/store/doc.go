// Package store manages record persistence backed by SQLite.
//
// One Store owns the greensprint.db database holding trees, campaigns,
// users, scan events, posts, notification rows, and achievement awards.
// Schema changes ship as embedded migrations applied on open inside a
// transaction, tracked in schema_migrations.
//
// Lookup conventions: a miss is (nil, nil), never an error, so callers can
// tell "no such record" apart from a failing database. Coordinates are
// nullable pairs; a record with either half missing is unmapped and excluded
// from geographic queries. Timestamps are stored as RFC3339Nano UTC text.
package store
