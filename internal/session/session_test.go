package session

import (
	"cemeterycore/internal/localstore"
	"cemeterycore/pkg/domain"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 10, 1, 9, 0, 0, 0, time.UTC)
	s := NewStore(localstore.NewMemory(), func() time.Time { return fixed })

	if _, ok, err := s.Current(ctx); err != nil || ok {
		t.Fatalf("expected no session, ok=%v err=%v", ok, err)
	}
	if _, err := s.Require(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	u, err := s.Start(ctx, " admin ", "admin@example.com", "Admin")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if u.ID == "" || u.Username != "admin" || u.Role != domain.RoleAdmin || !u.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected user %+v", u)
	}
	got, err := s.Require(ctx)
	if err != nil || got.ID != u.ID || got.Email != u.Email || !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("expected current user %+v, got %+v err=%v", u, got, err)
	}

	if err := s.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, ok, _ := s.Current(ctx); ok {
		t.Fatalf("expected session removed")
	}
	if err := s.End(ctx); err != nil {
		t.Fatalf("expected ending twice to succeed, got %v", err)
	}
}

func TestSessionStartRejectsBadInput(t *testing.T) {
	s := NewStore(localstore.NewMemory(), nil)
	if _, err := s.Start(context.Background(), "  ", "", domain.RoleStaff); err == nil {
		t.Fatalf("expected blank username rejected")
	}
	if _, err := s.Start(context.Background(), "eve", "", "root"); err == nil {
		t.Fatalf("expected unknown role rejected")
	}
	if _, ok, _ := s.Current(context.Background()); ok {
		t.Fatalf("expected no session after rejected starts")
	}
}

func TestSessionSurvivesReopenOnDisk(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "state")
	first, err := localstore.Open(ctx, localstore.Config{Driver: localstore.DriverFilesystem, FSRoot: root})
	if err != nil {
		t.Fatalf("open fs: %v", err)
	}
	u, err := NewStore(first, nil).Start(ctx, "clerk", "clerk@example.com", domain.RoleStaff)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	second, err := localstore.Open(ctx, localstore.Config{Driver: localstore.DriverFilesystem, FSRoot: root})
	if err != nil {
		t.Fatalf("reopen fs: %v", err)
	}
	got, ok, err := NewStore(second, nil).Current(ctx)
	if err != nil || !ok || got.ID != u.ID || got.Role != domain.RoleStaff || !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("expected session to survive reopen, got %+v ok=%v err=%v", got, ok, err)
	}
}

func TestSessionCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := localstore.NewMemory()
	if err := store.Save(ctx, StorageKey, []byte("nope")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, _, err := NewStore(store, nil).Current(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
}
