package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markletdev/marklet/internal/config"
	"github.com/markletdev/marklet/internal/errors"
)

func TestExportJSON(t *testing.T) {
	s := newTestStore(t)
	s.Create("Word count", "counts words", "alert(1)")

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	body := string(data)
	if !strings.HasPrefix(body, "[\n") {
		t.Errorf("export should be a pretty-printed array, got prefix %q", body[:min(len(body), 10)])
	}
	if !strings.HasSuffix(body, "\n") {
		t.Error("export should end with a trailing newline")
	}
	for _, field := range []string{`"id"`, `"name"`, `"description"`, `"code"`, `"createdAt"`, `"updatedAt"`} {
		if !strings.Contains(body, field) {
			t.Errorf("export missing field %s", field)
		}
	}
}

func TestExportJSON_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	if string(data) != "[]\n" {
		t.Errorf("ExportJSON() = %q, want %q", data, "[]\n")
	}
}

func TestExportJSON_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	s.Create("A", "first", "alert(1)")
	s.Create("B", "second", "alert(2)")

	data, err := s.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	restored := newTestStore(t)
	imported, err := restored.ImportJSON(data)
	if err != nil {
		t.Fatalf("ImportJSON() of export error = %v", err)
	}
	if len(imported) != 2 {
		t.Fatalf("imported %d records, want 2", len(imported))
	}

	want := s.List()
	got := restored.List()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExportFile_JSON(t *testing.T) {
	tmpDir := t.TempDir()
	s := newTestStore(t)
	s.Create("Word count", "", "alert(1)")

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	path := filepath.Join(tmpDir, "backup.json")
	out, err := s.ExportFile(cfg, ExportInput{Path: path})
	if err != nil {
		t.Fatalf("ExportFile() error = %v", err)
	}

	if out.Count != 1 {
		t.Errorf("Count = %d, want 1", out.Count)
	}
	if out.Path != path {
		t.Errorf("Path = %q, want %q", out.Path, path)
	}
	if out.ExportedAt <= 0 {
		t.Errorf("ExportedAt = %d, want positive ms timestamp", out.ExportedAt)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `"Word count"`) {
		t.Errorf("exported file missing record, got: %s", data)
	}

	// No stray temp files from the atomic write
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("export dir contains %v, want only backup.json", names)
	}
}

func TestExportFile_HTML(t *testing.T) {
	tmpDir := t.TempDir()
	s := newTestStore(t)
	s.Create("Word <count>", "", "alert('x & y')")

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	path := filepath.Join(tmpDir, "bookmarks.html")
	if _, err := s.ExportFile(cfg, ExportInput{Path: path, Format: FormatHTML}); err != nil {
		t.Fatalf("ExportFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	body := string(data)

	if !strings.Contains(body, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("HTML export missing Netscape doctype")
	}
	if !strings.Contains(body, `HREF="javascript:`) {
		t.Error("HTML export missing javascript: link")
	}
	if !strings.Contains(body, "Word &lt;count&gt;") {
		t.Error("HTML export should escape the record name")
	}
	if strings.Contains(body, "Word <count>") {
		t.Error("HTML export contains unescaped record name")
	}
	if !strings.Contains(body, "&amp;") {
		t.Error("HTML export should escape & in code")
	}
}

func TestExportFile_FormatValidation(t *testing.T) {
	tmpDir := t.TempDir()
	s := newTestStore(t)

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	_, err := s.ExportFile(cfg, ExportInput{
		Path:   filepath.Join(tmpDir, "out.json"),
		Format: "pdf",
	})
	if err == nil {
		t.Fatal("ExportFile() error = nil, want INVALID_REQUEST for unknown format")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("ExportFile() error = %v, want INVALID_REQUEST", err)
	}
}

func TestExportFile_ExtensionMustMatchFormat(t *testing.T) {
	tmpDir := t.TempDir()
	s := newTestStore(t)

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	_, err := s.ExportFile(cfg, ExportInput{
		Path:   filepath.Join(tmpDir, "backup.html"),
		Format: FormatJSON,
	})
	if err == nil {
		t.Fatal("ExportFile() error = nil, want INVALID_REQUEST for extension mismatch")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("ExportFile() error = %v, want INVALID_REQUEST", err)
	}
}

func TestExportFile_PathOutsideAllowedDirs(t *testing.T) {
	tmpDir := t.TempDir()
	s := newTestStore(t)

	// tmpDir deliberately NOT added to AllowedPaths
	cfg := config.DefaultConfig()

	_, err := s.ExportFile(cfg, ExportInput{Path: filepath.Join(tmpDir, "backup.json")})
	if err == nil {
		t.Fatal("ExportFile() error = nil, want INVALID_REQUEST for disallowed path")
	}
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("ExportFile() error = %v, want INVALID_REQUEST", err)
	}
}
