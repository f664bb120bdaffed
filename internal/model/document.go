package model

import "time"

// StoredDocument describes a generated document tracked by the document
// registry. It is a pure domain model shared across layers; persistence
// details (where the registry entry itself lives) stay out of it.
type StoredDocument struct {
	// Name is the caller-supplied logical identifier, normalized to a safe
	// filename without the .docx extension.
	Name string `json:"name"`
	// StorageKey is the opaque locator of the document bytes in the object
	// store. It is fresh per creation and never derived from another
	// document's key.
	StorageKey  string        `json:"storage_key"`
	SizeBytes   int64         `json:"size_bytes"`
	ContentHash string        `json:"content_hash"`
	CreatedAt   time.Time     `json:"created_at"`
	TTL         time.Duration `json:"ttl"`
}

// ExpiresAt returns the instant after which the document is treated as gone.
func (d *StoredDocument) ExpiresAt() time.Time {
	return d.CreatedAt.Add(d.TTL)
}

// Expired reports whether the document's lifetime has elapsed at now.
// TTL is fixed at creation; edits never refresh it, so storage stays bounded.
func (d *StoredDocument) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt())
}
