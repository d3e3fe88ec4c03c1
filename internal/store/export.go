package store

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/markletdev/marklet/internal/bookmarklet"
	"github.com/markletdev/marklet/internal/config"
	"github.com/markletdev/marklet/internal/errors"
)

// ExportFormat selects the export file format.
type ExportFormat string

const (
	// FormatJSON is the interchange format: a pretty-printed array of
	// records that ImportFile reads back.
	FormatJSON ExportFormat = "json"

	// FormatHTML is a Netscape bookmark file; importing it into a
	// browser installs every bookmarklet onto the bookmarks bar.
	FormatHTML ExportFormat = "html"
)

const (
	extJSON = ".json"
	extHTML = ".html"
)

func (f ExportFormat) extension() string {
	if f == FormatHTML {
		return extHTML
	}
	return extJSON
}

// ExportInput contains parameters for the ExportFile operation.
type ExportInput struct {
	Path   string       // optional, default: ~/.marklet/exports/bookmarklets-<timestamp>.<ext>
	Format ExportFormat // optional, default: json
}

// ExportOutput contains the result of the ExportFile operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// ExportFile writes the collection to a file.
func (s *Store) ExportFile(cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	format := input.Format
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatHTML {
		return nil, errors.NewInvalidRequest("format must be one of: json, html")
	}

	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = defaultExportPath(now, format)
		if err != nil {
			return nil, err
		}
	}

	// Validate all paths (user-provided and default) before writing
	if err := ValidatePath(exportPath, PathCheckWrite, format.extension(), cfg); err != nil {
		return nil, err
	}

	// Ensure parent directory exists
	dir := filepath.Dir(exportPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	records := s.List()
	body, err := renderExport(records, format)
	if err != nil {
		return nil, err
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	// Clean up temp file on failure (original file is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(body); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// Finalize export by renaming temp file into place.
	//
	// Note: On Windows, os.Rename fails if the destination exists. We intentionally
	// fail safely (preserving the existing file) instead of doing a non-atomic
	// delete+rename that could lose the original if rename fails.
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(records),
		ExportedAt: now.UnixMilli(),
	}, nil
}

// renderExport produces the file body for a format.
func renderExport(records []bookmarklet.Record, format ExportFormat) ([]byte, error) {
	if format == FormatHTML {
		return renderNetscape(records), nil
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return append(data, '\n'), nil
}

// renderNetscape renders a Netscape bookmark file. Each entry's HREF
// is the bookmarklet code itself, so browsers install the collection
// directly. ADD_DATE is Unix seconds per the format.
func renderNetscape(records []bookmarklet.Record) []byte {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarklets</TITLE>
<H1>Bookmarklets</H1>
<DL><p>
`)
	for _, rec := range records {
		fmt.Fprintf(&b, "    <DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			html.EscapeString(rec.Code),
			rec.CreatedAt/1000,
			html.EscapeString(rec.Name))
	}
	b.WriteString("</DL><p>\n")
	return []byte(b.String())
}

// defaultExportPath generates the default export path.
// Format: ~/.marklet/exports/bookmarklets-<timestamp>.<ext>
func defaultExportPath(now time.Time, format ExportFormat) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}

	timestamp := now.Format("2006-01-02T150405")
	filename := fmt.Sprintf("bookmarklets-%s%s", timestamp, format.extension())
	return filepath.Join(homeDir, ".marklet", "exports", filename), nil
}
