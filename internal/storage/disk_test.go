package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestSaveAndURL(t *testing.T) {
	s := newTestStore(t)

	ref, err := s.Save(context.Background(), "listings/abc/img.jpg", strings.NewReader("bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if ref != "listings/abc/img.jpg" {
		t.Errorf("ref = %q", ref)
	}
	if got := s.URL(ref); got != "/uploads/listings/abc/img.jpg" {
		t.Errorf("url = %q", got)
	}

	b, err := os.ReadFile(filepath.Join(s.Dir, "listings", "abc", "img.jpg"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "bytes" {
		t.Errorf("content = %q", b)
	}
}

// 路径穿越被钳制在存储目录内
func TestSave_CleansTraversal(t *testing.T) {
	s := newTestStore(t)

	ref, err := s.Save(context.Background(), "../../etc/passwd", strings.NewReader("x"), "text/plain")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	full := filepath.Join(s.Dir, filepath.FromSlash(ref))
	rel, err := filepath.Rel(s.Dir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		t.Errorf("ref %q escapes the store dir", ref)
	}
}

func TestURL_TrailingSlashes(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := s.URL("/a/b.png"); got != "/uploads/a/b.png" {
		t.Errorf("url = %q", got)
	}
}
