package kv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSlot_EmptyGet(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "bookmarklets.json"))
	if err != nil {
		t.Fatalf("NewFileSlot() error = %v", err)
	}

	value, found, err := slot.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Errorf("Get() before first Set found = true, want false")
	}
	if value != nil {
		t.Errorf("Get() before first Set value = %q, want nil", value)
	}
}

func TestFileSlot_SetGet(t *testing.T) {
	slot, err := NewFileSlot(filepath.Join(t.TempDir(), "bookmarklets.json"))
	if err != nil {
		t.Fatalf("NewFileSlot() error = %v", err)
	}

	first := []byte(`[{"id":"a"}]`)
	if err := slot.Set(first); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, found, err := slot.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false after Set")
	}
	if !bytes.Equal(value, first) {
		t.Errorf("Get() = %q, want %q", value, first)
	}

	second := []byte(`[]`)
	if err := slot.Set(second); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	value, _, err = slot.Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(value, second) {
		t.Errorf("Get() after overwrite = %q, want %q", value, second)
	}
}

func TestFileSlot_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "bookmarklets.json")

	slot, err := NewFileSlot(path)
	if err != nil {
		t.Fatalf("NewFileSlot() error = %v", err)
	}
	if err := slot.Set([]byte("x")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("slot file not created at %s: %v", path, err)
	}
}

func TestFileSlot_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(filepath.Join(dir, "bookmarklets.json"))
	if err != nil {
		t.Fatalf("NewFileSlot() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := slot.Set([]byte(`[]`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestFileSlot_RejectsSymlinkDestination(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.json")
	if err := os.WriteFile(target, []byte("precious"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	link := filepath.Join(dir, "bookmarklets.json")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("cannot create symlink: %v", err)
	}

	slot, err := NewFileSlot(link)
	if err != nil {
		t.Fatalf("NewFileSlot() error = %v", err)
	}
	if err := slot.Set([]byte("overwrite attempt")); err == nil {
		t.Error("Set() through symlink succeeded, want error")
	}

	// Target must be untouched
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "precious" {
		t.Errorf("symlink target modified: %q", data)
	}
}
