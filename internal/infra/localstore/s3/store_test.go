package s3

import (
	"cemeterycore/internal/localstore/core"
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestMockStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != core.DriverS3 || s.Bucket() != "mock-bucket" {
		t.Fatalf("unexpected driver/bucket %s %s", s.Driver(), s.Bucket())
	}
	if _, ok, err := s.Load(ctx, "graveyard_payments"); err != nil || ok {
		t.Fatalf("expected missing object, ok=%v err=%v", ok, err)
	}
	if err := s.Save(ctx, "graveyard_payments", []byte(`[{"id":"1"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, "graveyard_payments", []byte(`[{"id":"2"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, ok, err := s.Load(ctx, "graveyard_payments")
	if err != nil || !ok || string(data) != `[{"id":"2"}]` {
		t.Fatalf("unexpected load %q ok=%v err=%v", data, ok, err)
	}
	if err := s.Remove(ctx, "graveyard_payments"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "graveyard_payments"); ok {
		t.Fatalf("expected object removed")
	}
}

func TestMockStoreAppliesPrefix(t *testing.T) {
	ctx := context.Background()
	s, rt := newMock("/tenants/north/")
	if err := s.Save(ctx, "currentUser", []byte(`{}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := rt.object("tenants/north/currentUser"); !ok {
		t.Fatalf("expected prefixed object key, state=%v", rt.state)
	}
}

func TestStoreSurfacesBackendErrors(t *testing.T) {
	ctx := context.Background()
	s, rt := newMock("")
	rt.failWith = http.StatusForbidden
	if _, _, err := s.Load(ctx, "k"); err == nil {
		t.Fatalf("expected load error")
	}
	if err := s.Save(ctx, "k", []byte("x")); err == nil {
		t.Fatalf("expected save error")
	}
	if err := s.Remove(ctx, "k"); err == nil {
		t.Fatalf("expected remove error")
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	s := NewMockForTests()
	if err := s.Save(context.Background(), " ", nil); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected invalid key, got %v", err)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
	s, err := New(context.Background(), Config{
		Bucket:          "cemetery",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		PathStyle:       true,
		Prefix:          "snapshots",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.prefix != "snapshots/" {
		t.Fatalf("unexpected prefix %q", s.prefix)
	}
}

func TestDecodeChunkedLite(t *testing.T) {
	if got, ok := decodeChunkedLite([]byte("5\r\nhello\r\n0\r\n\r\n")); !ok || string(got) != "hello" {
		t.Fatalf("unexpected decode %q ok=%v", got, ok)
	}
	if _, ok := decodeChunkedLite([]byte("plain body")); ok {
		t.Fatalf("expected plain body to be left alone")
	}
	if _, err := parseHex("zz"); err == nil {
		t.Fatalf("expected invalid hex error")
	}
}
