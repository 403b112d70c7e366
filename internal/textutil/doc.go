// Package textutil provides text normalization helpers shared by the
// registration, import, and CLI layers.
//
// The primary use cases are:
//   - Normalizing free-form species names into a canonical display form
//   - Converting arbitrary strings into lowercase tokens safe for usernames
//   - Small generic conditionals used by table rendering
package textutil
