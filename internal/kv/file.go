package kv

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// FileSlot stores the slot value as a single flat file. It is the
// storage="file" alternative to the SQLite slot for setups that want
// the collection greppable on disk.
type FileSlot struct {
	path string
}

// NewFileSlot prepares a slot backed by the file at path, creating
// parent directories as needed.
func NewFileSlot(path string) (*FileSlot, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}
	_ = os.Chmod(dir, 0700)
	return &FileSlot{path: path}, nil
}

// Get returns the file contents, or found=false before the first Set.
func (s *FileSlot) Get() ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot file: %w", err)
	}
	return data, true, nil
}

// Set writes to a temp file and renames it into place, so a crash
// mid-write preserves the previous value.
func (s *FileSlot) Set(value []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tempPath := s.path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp slot file: %w", err)
	}

	// Clean up temp file on failure (previous value is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(value); err != nil {
		return fmt.Errorf("failed to write slot file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync slot file: %w", err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close slot file: %w", err)
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(s.path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("slot path is a symlink")
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to replace slot file: %w", err)
	}
	success = true
	return nil
}

// Close is a no-op; the file is not held open between operations.
func (s *FileSlot) Close() error {
	return nil
}
