// Package scan turns raw QR scan text into resolved tree records.
//
// Classify is a pure function that sorts input into one of the closed
// identifier kinds (structured payload, native code, locator URL, raw UUID,
// unrecognized) without touching I/O. Candidates expands a classification
// into the ordered, deduplicated (field, value) pairs worth trying against
// the store, and Resolver walks that list sequentially, short-circuiting on
// the first hit.
//
// Keeping classification and candidate ordering separate from the store
// lookup lets the priority policy be tested on its own, and lets the resolver
// run against any finder implementation.
package scan
