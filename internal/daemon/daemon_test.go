package daemon_test

import (
	"context"
	"testing"
	"time"

	"greensprint/internal/daemon"
	"greensprint/internal/logging"
	"greensprint/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithImports(false))
	st := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { d.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected running status after Start")
	}
	if status.PID <= 0 {
		t.Fatalf("expected a PID, got %d", status.PID)
	}
	if len(status.Checks) == 0 {
		t.Fatal("expected preflight checks in status")
	}

	if err := d.Start(ctx); err == nil {
		t.Fatal("expected error starting an already-running daemon")
	}

	d.Stop()
	if d.Status(ctx).Running {
		t.Fatal("expected stopped status after Stop")
	}
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithImports(false))
	st := testsupport.MustOpenStore(t, cfg)

	first, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { first.Stop() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}

	second, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("second daemon.New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to fail the lock")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second Start after release failed: %v", err)
	}
	second.Stop()
}

func TestDaemonTestNotificationUnconfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithImports(false))
	st := testsupport.MustOpenStore(t, cfg)

	d, err := daemon.New(cfg, st, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification errored: %v", err)
	}
	if sent {
		t.Fatal("expected not-sent without a configured topic")
	}
	if message == "" {
		t.Fatal("expected an explanatory message")
	}
}
