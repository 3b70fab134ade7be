package fs

import (
	"cemeterycore/internal/localstore/core"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "data")
	s, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Driver() != core.DriverFilesystem || s.Root() != root {
		t.Fatalf("unexpected driver/root %s %s", s.Driver(), s.Root())
	}
	if _, ok, err := s.Load(ctx, "graveyard_payments"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, "graveyard_payments", []byte("[1]")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "graveyard_payments", []byte("[1,2]")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, ok, err := s.Load(ctx, "graveyard_payments")
	if err != nil || !ok || string(data) != "[1,2]" {
		t.Fatalf("unexpected load %q ok=%v err=%v", data, ok, err)
	}
	if _, err := os.Stat(filepath.Join(root, "graveyard_payments.json")); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
	if err := s.Remove(ctx, "graveyard_payments"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Remove(ctx, "graveyard_payments"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestFilesystemStoreNestedKeys(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Save(ctx, "tenants/north/currentUser", []byte("{}")); err != nil {
		t.Fatalf("save nested: %v", err)
	}
	if _, ok, err := s.Load(ctx, "tenants/north/currentUser"); err != nil || !ok {
		t.Fatalf("expected nested key, ok=%v err=%v", ok, err)
	}
}

func TestSanitizeKeyRejectsEscapes(t *testing.T) {
	for _, key := range []string{"", "   ", "../secrets", "a/../../b", "/etc/passwd"} {
		if _, err := sanitizeKey(key); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("expected %q to be rejected, got %v", key, err)
		}
	}
	if got, err := sanitizeKey("a//b"); err != nil || got != "a/b" {
		t.Fatalf("expected cleaned key, got %q err=%v", got, err)
	}
}

func TestFilesystemStoreHonoursContext(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation on save, got %v", err)
	}
	if _, _, err := s.Load(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation on load, got %v", err)
	}
	if err := s.Remove(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation on remove, got %v", err)
	}
}

func TestNewFailsWhenRootIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(filepath.Join(file, "sub")); err == nil {
		t.Fatalf("expected error when root parent is a file")
	}
}
