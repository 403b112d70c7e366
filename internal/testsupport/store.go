package testsupport

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"greensprint/internal/config"
	"greensprint/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewUser creates a user for tests using the provided store.
func NewUser(t testing.TB, st *store.Store, username string) *store.User {
	t.Helper()

	user, err := st.EnsureUser(context.Background(), uuid.NewString(), username, "")
	if err != nil {
		t.Fatalf("store.EnsureUser: %v", err)
	}
	return user
}

// NewTree creates an unmapped tree for tests using the provided store.
func NewTree(t testing.TB, st *store.Store, species, code string) *store.Tree {
	t.Helper()

	tree, err := st.InsertTree(context.Background(), &store.Tree{
		ID:      uuid.NewString(),
		Code:    code,
		Species: species,
	})
	if err != nil {
		t.Fatalf("store.InsertTree: %v", err)
	}
	return tree
}

// NewMappedTree creates a tree with coordinates for tests.
func NewMappedTree(t testing.TB, st *store.Store, species, code string, lat, lng float64) *store.Tree {
	t.Helper()

	tree, err := st.InsertTree(context.Background(), &store.Tree{
		ID:      uuid.NewString(),
		Code:    code,
		Species: species,
		Lat:     &lat,
		Lng:     &lng,
	})
	if err != nil {
		t.Fatalf("store.InsertTree: %v", err)
	}
	return tree
}
