// Package registry tracks generated documents and stored templates. Both
// registries are stateless views over the object store, which is the single
// source of truth: there is no database and no in-process cache, so every
// call reflects the store's current snapshot.
package registry

import (
	"errors"
	"strings"
)

// Entity-level error taxonomy. The registries translate blob-level errors
// from the storage adapter into these based on TTL bookkeeping.
var (
	// ErrNotFound means no entry exists for the requested identifier.
	ErrNotFound = errors.New("entry not found")
	// ErrAlreadyExists means the identifier resolves to a live entry and
	// overwrite was not requested.
	ErrAlreadyExists = errors.New("entry already exists")
	// ErrExpired means the entry's TTL has elapsed; it is treated the same
	// as deleted even if the sweeper has not removed it yet.
	ErrExpired = errors.New("entry expired")
	// ErrInvalidTemplate means the supplied bytes do not parse as a
	// well-formed document.
	ErrInvalidTemplate = errors.New("invalid template")
	// ErrInvalidName means a name or category is empty or contains a path
	// separator. Categories are always passed separately and never embedded
	// in names.
	ErrInvalidName = errors.New("invalid name")
)

const docExtension = ".docx"

// cleanName normalizes a caller-supplied logical name: the fixed extension is
// stripped if present, and names carrying path separators or traversal are
// rejected rather than parsed.
func cleanName(name string) (string, error) {
	name = strings.TrimSuffix(name, docExtension)
	if name == "" {
		return "", errors.Join(ErrInvalidName, errors.New("name is required"))
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", errors.Join(ErrInvalidName, errors.New("name must not contain path separators"))
	}
	return name, nil
}

// metaValue looks up a user-metadata key tolerating the header
// canonicalization and X-Amz-Meta prefixing S3 clients apply on the way back.
func metaValue(m map[string]string, key string) string {
	for k, v := range m {
		k = strings.ToLower(k)
		k = strings.TrimPrefix(k, "x-amz-meta-")
		if k == key {
			return v
		}
	}
	return ""
}
