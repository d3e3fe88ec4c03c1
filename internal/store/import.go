package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/markletdev/marklet/internal/bookmarklet"
	"github.com/markletdev/marklet/internal/config"
	"github.com/markletdev/marklet/internal/errors"
)

// DefaultName is given to imported records that arrive without one.
const DefaultName = "Untitled"

// maxImportBytes caps how much of an import file is read. Collections
// are small; anything larger is not a bookmarklet export.
const maxImportBytes = 16 << 20

// importItem is the lenient decode target for one imported element.
// Pointer fields distinguish absent from empty; json.Unmarshal fills
// what it can and defaulting covers the rest.
type importItem struct {
	ID          *string `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Code        *string `json:"code"`
	CreatedAt   *int64  `json:"createdAt"`
	UpdatedAt   *int64  `json:"updatedAt"`
}

// ImportJSON merges records parsed from data into the collection. The
// top level must be a JSON array; anything else rejects the whole
// import with an IMPORT error and no state change. Individual elements
// are never rejected: malformed ones are defaulted instead. The batch
// is prepended in input order and persisted with a single write.
func (s *Store) ImportJSON(data []byte) ([]bookmarklet.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.NewImport("import data must be a JSON array of records")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, errors.NewImport(fmt.Sprintf("invalid JSON: %v", err))
	}

	now := bookmarklet.NowMilli()
	batch := make([]bookmarklet.Record, 0, len(items))
	for _, raw := range items {
		var item importItem
		// Partial fills are fine; whatever did not decode gets defaulted.
		_ = json.Unmarshal(raw, &item)
		batch = append(batch, recordFromItem(item, now))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]bookmarklet.Record, 0, len(batch)+len(s.records))
	next = append(next, batch...)
	next = append(next, s.records...)

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next
	return batch, nil
}

// ImportShare stores a decoded share payload as a new record, using
// the same defaulting as file import so a nameless payload lands as
// "Untitled" instead of failing validation.
func (s *Store) ImportShare(p bookmarklet.SharePayload) (*bookmarklet.Record, error) {
	item := importItem{Name: &p.Name, Description: &p.Description, Code: &p.Code}
	rec := recordFromItem(item, bookmarklet.NowMilli())

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]bookmarklet.Record, 0, len(s.records)+1)
	next = append(next, rec)
	next = append(next, s.records...)

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next
	return &rec, nil
}

// ImportInput contains parameters for the ImportFile operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the ImportFile operation.
type ImportOutput struct {
	Path     string `json:"path"`
	Imported int    `json:"imported"`
}

// ImportFile reads a JSON export file and merges its records.
func (s *Store) ImportFile(cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if err := ValidatePath(input.Path, PathCheckRead, extJSON, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		return nil, errors.NewImport(fmt.Sprintf("failed to read file: %v", err))
	}

	imported, err := s.ImportJSON(data)
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Path: input.Path, Imported: len(imported)}, nil
}

// recordFromItem applies import defaulting: fresh ULID when the id is
// missing or blank, "Untitled" name, empty description, normalized
// code (an absent code wraps to an empty bookmarklet), and now for
// missing or non-positive timestamps.
func recordFromItem(item importItem, now int64) bookmarklet.Record {
	rec := bookmarklet.Record{
		ID:        bookmarklet.NewID(),
		Name:      DefaultName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if item.ID != nil && strings.TrimSpace(*item.ID) != "" {
		rec.ID = strings.TrimSpace(*item.ID)
	}
	if item.Name != nil && strings.TrimSpace(*item.Name) != "" {
		rec.Name = strings.TrimSpace(*item.Name)
	}
	if item.Description != nil {
		rec.Description = strings.TrimSpace(*item.Description)
	}

	code := ""
	if item.Code != nil {
		code = *item.Code
	}
	rec.Code = bookmarklet.Normalize(code)

	if item.CreatedAt != nil && *item.CreatedAt > 0 {
		rec.CreatedAt = *item.CreatedAt
	}
	if item.UpdatedAt != nil && *item.UpdatedAt > 0 {
		rec.UpdatedAt = *item.UpdatedAt
	}
	return rec
}
