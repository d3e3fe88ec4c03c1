package bookmarklet

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record represents a stored bookmarklet.
type Record struct {
	// ID is a ULID that uniquely identifies this bookmarklet
	ID string `json:"id"`

	// Name is a short human-readable label; never empty for stored records
	Name string `json:"name"`

	// Description is optional free text; markdown renders on the detail page
	Description string `json:"description"`

	// Code is the snippet in normalized executable form (javascript: prefix)
	Code string `json:"code"`

	// CreatedAt is the creation time in milliseconds since the Unix epoch
	CreatedAt int64 `json:"createdAt"`

	// UpdatedAt is the last-edit time in milliseconds since the Unix epoch
	UpdatedAt int64 `json:"updatedAt"`
}

// SharePayload is the transient shape carried inside a share token.
// It is the record minus identity and timestamps; the receiving side
// assigns its own.
type SharePayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Code        string `json:"code"`
}

// Payload returns the shareable subset of a record.
func (r Record) Payload() SharePayload {
	return SharePayload{Name: r.Name, Description: r.Description, Code: r.Code}
}

// NewID generates a ULID for a new record.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NowMilli returns the current time in milliseconds since the Unix epoch.
func NowMilli() int64 {
	return time.Now().UnixMilli()
}
