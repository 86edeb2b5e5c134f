package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/files/")
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	url, err := store.Put(context.Background(), "resumes/acme/E001.pdf", "application/pdf", []byte("pdf bytes"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if url != "/files/resumes/acme/E001.pdf" {
		t.Errorf("Put() url = %q, want /files/resumes/acme/E001.pdf", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "resumes", "acme", "E001.pdf"))
	if err != nil {
		t.Fatalf("reading stored blob: %v", err)
	}
	if string(data) != "pdf bytes" {
		t.Errorf("stored content = %q, want %q", data, "pdf bytes")
	}
}

func TestDiskStore_Put_TraversalKey(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "blobs"), "/files")
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	url, err := store.Put(context.Background(), "../../escape.txt", "text/plain", []byte("x"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	// The cleaned key must stay inside the store directory.
	if url != "/files/escape.txt" {
		t.Errorf("Put() url = %q, want /files/escape.txt", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err == nil {
		t.Error("traversal key escaped the store directory")
	}
	if _, err := os.Stat(filepath.Join(dir, "blobs", "escape.txt")); err != nil {
		t.Errorf("cleaned blob not written inside store: %v", err)
	}
}

func TestDiskStore_Put_EmptyKey(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	if _, err := store.Put(context.Background(), "", "text/plain", []byte("x")); err == nil {
		t.Error("Put() expected error for empty key")
	}
	if _, err := store.Put(context.Background(), "..", "text/plain", []byte("x")); err == nil {
		t.Error("Put() expected error for dot-dot key")
	}
}

func TestDiskStore_Put_CancelledContext(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/files")
	if err != nil {
		t.Fatalf("NewDiskStore() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Put(ctx, "a.txt", "text/plain", []byte("x")); err == nil {
		t.Error("Put() expected error for cancelled context")
	}
}

func TestSafeKey(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"a/b/c.pdf", "a/b/c.pdf", false},
		{"/a/b.pdf", "a/b.pdf", false},
		{"a/../b.pdf", "b.pdf", false},
		{"../../etc/passwd", "etc/passwd", false},
		{"", "", true},
		{".", "", true},
	}

	for _, tt := range tests {
		got, err := safeKey(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("safeKey(%q) = %q, want error", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("safeKey(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("safeKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
