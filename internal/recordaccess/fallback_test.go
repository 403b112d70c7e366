package recordaccess_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"greensprint/internal/ipc"
	"greensprint/internal/recordaccess"
	"greensprint/internal/store"
	"greensprint/internal/testsupport"
)

func TestOpenWithFallbackUsesStoreWhenDaemonIsDown(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	dial := func() (*ipc.Client, error) {
		return ipc.Dial(filepath.Join(cfg.Paths.LogDir, "missing.sock"))
	}
	session, err := recordaccess.OpenWithFallback(cfg, dial, func() (*store.Store, error) {
		return store.Open(cfg)
	})
	if err != nil {
		t.Fatalf("OpenWithFallback failed: %v", err)
	}
	t.Cleanup(func() {
		if err := session.Close(); err != nil {
			t.Errorf("session close: %v", err)
		}
	})

	ctx := context.Background()
	tree, err := session.Access.RegisterTree(ctx, ipc.TreeRegisterRequest{
		Species: "Silver Birch",
		Planter: "robin",
	})
	if err != nil {
		t.Fatalf("RegisterTree failed: %v", err)
	}
	if tree.ID == "" || tree.Code == "" {
		t.Fatalf("expected persisted tree, got %#v", tree)
	}

	trees, err := session.Access.ListTrees(ctx, ipc.TreeListRequest{})
	if err != nil {
		t.Fatalf("ListTrees failed: %v", err)
	}
	if len(trees) != 1 {
		t.Fatalf("expected 1 tree, got %d", len(trees))
	}

	summary, err := session.Access.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Trees != 1 || summary.Users != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}

func TestOpenWithFallbackRequiresStoreOpener(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	_, err := recordaccess.OpenWithFallback(cfg, nil, nil)
	if err == nil {
		t.Fatal("expected error without store opener")
	}

	wantErr := errors.New("db locked elsewhere")
	_, err = recordaccess.OpenWithFallback(cfg, nil, func() (*store.Store, error) {
		return nil, wantErr
	})
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped opener error, got %v", err)
	}
}
