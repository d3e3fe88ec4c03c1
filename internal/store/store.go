// Package store owns the bookmarklet collection: CRUD, search, and
// import/export over a single persistence slot. The whole collection
// lives in memory and is rewritten to the slot on every mutation;
// operations serialize on an internal mutex so each one runs to
// completion before the next begins.
package store

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/markletdev/marklet/internal/bookmarklet"
	"github.com/markletdev/marklet/internal/errors"
	"github.com/markletdev/marklet/internal/kv"
)

// Store is an explicit handle to the collection. Callers construct one
// with Open and pass it around; there is no package-level singleton.
type Store struct {
	mu      sync.Mutex
	slot    kv.Slot
	records []bookmarklet.Record
}

// Open reads the collection out of the slot once. The returned store
// is always usable: an unreadable or unparseable stored value yields
// an empty store together with a STORAGE_CORRUPT error, so callers can
// warn and continue instead of refusing to start.
func Open(slot kv.Slot) (*Store, error) {
	s := &Store{slot: slot}

	data, found, err := slot.Get()
	if err != nil {
		return s, errors.NewStorageCorrupt(err)
	}
	if !found {
		return s, nil
	}

	var records []bookmarklet.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return s, errors.NewStorageCorrupt(err)
	}
	s.records = records
	return s, nil
}

// Create validates input, normalizes the code, and prepends a new
// record. Blank name or code (pre-normalization) is a VALIDATION error
// with no state change.
func (s *Store) Create(name, description, rawCode string) (*bookmarklet.Record, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("name")
	}
	if strings.TrimSpace(rawCode) == "" {
		return nil, errors.NewValidation("code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := bookmarklet.NowMilli()
	rec := bookmarklet.Record{
		ID:          bookmarklet.NewID(),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Code:        bookmarklet.Normalize(rawCode),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := make([]bookmarklet.Record, 0, len(s.records)+1)
	next = append(next, rec)
	next = append(next, s.records...)

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next
	return &rec, nil
}

// Update replaces the editable fields of an existing record and
// refreshes updatedAt. Unknown ids are a NOT_FOUND error; validation
// and lookup failures leave the collection untouched.
func (s *Store) Update(id, name, description, rawCode string) (*bookmarklet.Record, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.NewValidation("name")
	}
	if strings.TrimSpace(rawCode) == "" {
		return nil, errors.NewValidation("code")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, errors.NewNotFound(id)
	}

	next := make([]bookmarklet.Record, len(s.records))
	copy(next, s.records)

	rec := next[idx]
	rec.Name = strings.TrimSpace(name)
	rec.Description = strings.TrimSpace(description)
	rec.Code = bookmarklet.Normalize(rawCode)
	rec.UpdatedAt = bookmarklet.NowMilli()
	next[idx] = rec

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.records = next
	return &rec, nil
}

// Delete removes a record. Deleting an unknown id is a no-op rather
// than an error; the bool reports whether anything was removed.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := make([]bookmarklet.Record, 0, len(s.records)-1)
	next = append(next, s.records[:idx]...)
	next = append(next, s.records[idx+1:]...)

	if err := s.persist(next); err != nil {
		return false, err
	}
	s.records = next
	return true, nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (*bookmarklet.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, errors.NewNotFound(id)
	}
	rec := s.records[idx]
	return &rec, nil
}

// List returns a snapshot of the collection, most recent first.
func (s *Store) List() []bookmarklet.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]bookmarklet.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Search returns records whose name or description contains the query,
// case-insensitively. A blank query matches everything.
func (s *Store) Search(query string) []bookmarklet.Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.List()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]bookmarklet.Record, 0)
	for _, rec := range s.records {
		haystack := strings.ToLower(rec.Name + " " + rec.Description)
		if strings.Contains(haystack, q) {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of records in the collection.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// ExportJSON renders the full collection as a pretty-printed JSON
// array, the interchange format shared by file export and import.
func (s *Store) ExportJSON() ([]byte, error) {
	return renderExport(s.List(), FormatJSON)
}

// ExportHTML renders the full collection as a Netscape bookmarks file
// that browsers import directly.
func (s *Store) ExportHTML() ([]byte, error) {
	return renderExport(s.List(), FormatHTML)
}

// indexOf returns the position of id, or -1. Duplicate ids (tolerated
// after import) resolve to the most recent record. Called with s.mu
// held.
func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// persist writes the full collection to the slot. Called with s.mu
// held; callers assign the new slice only after persist succeeds, so a
// failed write leaves memory matching disk.
func (s *Store) persist(records []bookmarklet.Record) error {
	if records == nil {
		records = []bookmarklet.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.slot.Set(data); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
