package registry

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"wordvault/internal/config"
	"wordvault/internal/docx"
	"wordvault/internal/model"
	"wordvault/internal/storage"
)

// DocumentRegistry tracks generated documents: logical name to storage key,
// creation time, TTL and content hash. Entries live as small JSON objects in
// the store next to the blobs they reference; write ordering is always
// storage-then-register so a failed write never yields a dangling entry.
type DocumentRegistry interface {
	// NewStorageKey returns a fresh blob key for a document about to be
	// created. Keys are never reused across creations of the same name.
	NewStorageKey() string
	// Register records a document under name. It fails with ErrAlreadyExists
	// when the name resolves to a live entry and overwrite is false. The blob
	// at storageKey must already be written.
	Register(ctx context.Context, name, storageKey string, size int64, hash string, ttl time.Duration, overwrite bool) (*model.StoredDocument, error)
	// Resolve returns the entry for name, failing with ErrNotFound or
	// ErrExpired. Expired entries are indistinguishable from deleted ones.
	Resolve(ctx context.Context, name string) (*model.StoredDocument, error)
	// Open resolves name and fetches the document bytes.
	Open(ctx context.Context, name string) ([]byte, *model.StoredDocument, error)
	// Touch re-uploads edited content to the same storage key and re-registers
	// the entry with its original creation time. The TTL is fixed at creation
	// and is deliberately not refreshed, so documents have a bounded lifetime
	// regardless of activity.
	Touch(ctx context.Context, name string, data []byte) (*model.StoredDocument, error)
	// List returns the live (non-expired) entries whose name starts with
	// prefix. Expired entries are filtered lazily at read time even if the
	// sweeper has not run.
	List(ctx context.Context, prefix string) ([]model.StoredDocument, error)
	// ListStale returns the entries whose TTL has elapsed, for the sweeper.
	ListStale(ctx context.Context) ([]model.StoredDocument, error)
	// Remove deletes the entry and its backing blob. Removing a missing
	// entry is not an error.
	Remove(ctx context.Context, name string) error
	// URL returns a temporary download URL and its expiry instant. The URL
	// never outlives the document's own TTL.
	URL(ctx context.Context, name string, validFor time.Duration) (string, time.Time, error)
}

// documentEntry is the persisted registry record.
type documentEntry struct {
	Name        string    `json:"name"`
	StorageKey  string    `json:"storage_key"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	TTLSeconds  int64     `json:"ttl_seconds"`
}

func (e *documentEntry) model() *model.StoredDocument {
	return &model.StoredDocument{
		Name:        e.Name,
		StorageKey:  e.StorageKey,
		SizeBytes:   e.SizeBytes,
		ContentHash: e.ContentHash,
		CreatedAt:   e.CreatedAt,
		TTL:         time.Duration(e.TTLSeconds) * time.Second,
	}
}

type documentRegistry struct {
	store      storage.Storage
	prefix     string
	metaPrefix string
	now        func() time.Time
}

// NewDocumentRegistry constructs a document registry over the given store.
func NewDocumentRegistry(store storage.Storage, cfg config.DocumentConfig) DocumentRegistry {
	return &documentRegistry{
		store:      store,
		prefix:     cfg.Prefix,
		metaPrefix: cfg.MetaPrefix,
		now:        time.Now,
	}
}

func (r *documentRegistry) NewStorageKey() string {
	return r.prefix + "/" + uuid.NewString() + docx.Extension
}

func (r *documentRegistry) metaKey(name string) string {
	return r.metaPrefix + "/" + name + ".json"
}

// ContentHash returns the hex SHA-256 of document bytes, used for integrity
// checks and idempotence detection.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (r *documentRegistry) Register(ctx context.Context, name, storageKey string, size int64, hash string, ttl time.Duration, overwrite bool) (*model.StoredDocument, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	// Check-then-put: a live name must not be silently overwritten. Without
	// conditional writes on the backend two concurrent registrations of a
	// brand-new name can both pass this check; last write wins on the entry
	// and no document bytes are ever corrupted since blob keys are fresh.
	prev, err := r.load(ctx, name)
	switch {
	case err == nil:
		if !prev.model().Expired(r.now()) && !overwrite {
			return nil, fmt.Errorf("%w: document %q", ErrAlreadyExists, name)
		}
	case errors.Is(err, ErrNotFound):
		prev = nil
	default:
		return nil, err
	}

	entry := &documentEntry{
		Name:        name,
		StorageKey:  storageKey,
		SizeBytes:   size,
		ContentHash: hash,
		CreatedAt:   r.now().UTC(),
		TTLSeconds:  int64(ttl / time.Second),
	}
	if err := r.save(ctx, entry); err != nil {
		return nil, err
	}

	// The replaced entry's blob is unreachable now; drop it so storage does
	// not accumulate unreferenced objects. Best effort.
	if prev != nil && prev.StorageKey != storageKey {
		_ = r.store.Delete(ctx, prev.StorageKey)
	}
	return entry.model(), nil
}

func (r *documentRegistry) Resolve(ctx context.Context, name string) (*model.StoredDocument, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	entry, err := r.load(ctx, name)
	if err != nil {
		return nil, err
	}
	doc := entry.model()
	if doc.Expired(r.now()) {
		return nil, fmt.Errorf("%w: document %q", ErrExpired, name)
	}
	return doc, nil
}

func (r *documentRegistry) Open(ctx context.Context, name string) ([]byte, *model.StoredDocument, error) {
	doc, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	data, _, err := storage.GetBytes(ctx, r.store, doc.StorageKey)
	if err != nil {
		// The entry exists but its blob is gone: surface as not found
		// rather than leaking a storage-level error.
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: document %q content missing", ErrNotFound, name)
		}
		return nil, nil, err
	}
	return data, doc, nil
}

func (r *documentRegistry) Touch(ctx context.Context, name string, data []byte) (*model.StoredDocument, error) {
	doc, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	// Re-upload wholesale to the same key; the format has no incremental
	// patch model.
	if _, err := r.store.Put(ctx, doc.StorageKey, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: docx.ContentType,
	}); err != nil {
		return nil, err
	}

	entry := &documentEntry{
		Name:        doc.Name,
		StorageKey:  doc.StorageKey,
		SizeBytes:   int64(len(data)),
		ContentHash: ContentHash(data),
		CreatedAt:   doc.CreatedAt, // unchanged: edits never extend the TTL
		TTLSeconds:  int64(doc.TTL / time.Second),
	}
	if err := r.save(ctx, entry); err != nil {
		return nil, err
	}
	return entry.model(), nil
}

func (r *documentRegistry) List(ctx context.Context, prefix string) ([]model.StoredDocument, error) {
	return r.list(ctx, prefix, false)
}

func (r *documentRegistry) ListStale(ctx context.Context) ([]model.StoredDocument, error) {
	return r.list(ctx, "", true)
}

func (r *documentRegistry) list(ctx context.Context, prefix string, stale bool) ([]model.StoredDocument, error) {
	objs, err := r.store.List(ctx, r.metaPrefix+"/"+prefix)
	if err != nil {
		return nil, err
	}
	now := r.now()
	docs := make([]model.StoredDocument, 0, len(objs))
	for _, obj := range objs {
		data, _, err := storage.GetBytes(ctx, r.store, obj.Key)
		if err != nil {
			// Raced with a concurrent remove; the listing is a snapshot
			// with no cross-mutation consistency guarantee.
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		var entry documentEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue // unreadable entry, skip rather than fail the listing
		}
		doc := entry.model()
		if doc.Expired(now) == stale {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (r *documentRegistry) Remove(ctx context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	entry, err := r.load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil // removing what is already gone is a success
	}
	if err != nil {
		return err
	}
	// Blob first, then entry: a crash in between leaves an entry whose blob
	// is gone, which reads as not found, never a dangling blob.
	if err := r.store.Delete(ctx, entry.StorageKey); err != nil {
		return err
	}
	return r.store.Delete(ctx, r.metaKey(name))
}

// minURLValidity floors presigned URL lifetimes; signing backends reject
// zero or negative expiries.
const minURLValidity = time.Second

func (r *documentRegistry) URL(ctx context.Context, name string, validFor time.Duration) (string, time.Time, error) {
	doc, err := r.Resolve(ctx, name)
	if err != nil {
		return "", time.Time{}, err
	}
	// A capability URL must not outlive the document itself.
	if remaining := doc.ExpiresAt().Sub(r.now()); remaining < validFor {
		validFor = remaining
	}
	// At the exact expiry instant Resolve still succeeds and the cap above
	// can reach zero, which the presign layer rejects. Grant the floor
	// instead of failing a document that is live by contract.
	if validFor < minURLValidity {
		validFor = minURLValidity
	}
	u, err := r.store.PresignGet(ctx, doc.StorageKey, validFor)
	if err != nil {
		return "", time.Time{}, err
	}
	return u, r.now().Add(validFor), nil
}

func (r *documentRegistry) load(ctx context.Context, name string) (*documentEntry, error) {
	data, _, err := storage.GetBytes(ctx, r.store, r.metaKey(name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: document %q", ErrNotFound, name)
		}
		return nil, err
	}
	var entry documentEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode registry entry %q: %w", name, err)
	}
	return &entry, nil
}

func (r *documentRegistry) save(ctx context.Context, entry *documentEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode registry entry %q: %w", entry.Name, err)
	}
	_, err = r.store.Put(ctx, r.metaKey(entry.Name), bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: "application/json",
	})
	return err
}
