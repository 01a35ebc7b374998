package internal

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenView_ReadsWholeFile(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "a.txt")
	content := []byte("first\r\nsecond\nthird")
	if err := os.WriteFile(fp, content, 0644); err != nil {
		t.Fatal(err)
	}

	v, err := OpenView(fp)
	if err != nil {
		t.Fatalf("OpenView: %v", err)
	}
	if v.Len() != len(content) || !bytes.Equal(v.Bytes(), content) {
		t.Fatalf("unexpected view content %q", v.Bytes())
	}
	if err := v.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if v.Bytes() != nil {
		t.Fatal("closed view must not expose bytes")
	}
}

func TestOpenView_EmptyFile(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(fp, nil, 0644); err != nil {
		t.Fatal(err)
	}
	v, err := OpenView(fp)
	if err != nil {
		t.Fatalf("OpenView: %v", err)
	}
	defer v.Close()
	if v.Len() != 0 {
		t.Fatalf("expected empty view, got %d bytes", v.Len())
	}
}

func TestOpenView_Failures(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{filepath.Join(dir, "missing.txt"), dir} {
		if _, err := OpenView(p); !errors.Is(err, ErrOpen) {
			t.Errorf("OpenView(%s): expected ErrOpen, got %v", p, err)
		}
	}
}
