// Package kv provides single-slot persistence for the bookmarklet
// collection. A slot holds one opaque value; the store serializes the
// entire collection into it on every mutation and reads it back once
// at startup.
package kv

// DefaultKey names the slot holding the bookmarklet collection.
const DefaultKey = "bookmarklets"

// Slot is a single-key persistence slot.
type Slot interface {
	// Get returns the stored value. found is false when nothing has
	// been stored yet; that is not an error.
	Get() (value []byte, found bool, err error)

	// Set overwrites the stored value.
	Set(value []byte) error

	// Close releases underlying resources.
	Close() error
}
