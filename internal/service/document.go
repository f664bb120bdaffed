package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"wordvault/internal/docx"
	"wordvault/internal/model"
	"wordvault/internal/registry"
	"wordvault/internal/storage"
)

// DocumentService defines the lifecycle use cases for generated documents.
type DocumentService interface {
	// Create makes a new empty document with the given core properties and
	// registers it. A live name fails with registry.ErrAlreadyExists unless
	// overwrite is requested; ttl <= 0 uses the configured default.
	Create(ctx context.Context, name, title, author string, ttl time.Duration, overwrite bool) (*model.StoredDocument, error)

	// List returns the live documents whose name starts with prefix.
	List(ctx context.Context, prefix string) ([]model.StoredDocument, error)

	// URL returns a temporary download URL and its expiry; the URL never
	// outlives the document's TTL.
	URL(ctx context.Context, name string) (string, time.Time, error)

	// Exists reports whether name resolves to a live document. Expired and
	// missing are both false, never an error.
	Exists(ctx context.Context, name string) (bool, error)

	// Delete removes a document and its content. Deleting a missing or
	// already-expired document is a success.
	Delete(ctx context.Context, name string) error

	// CleanupExpired sweeps the registry and removes every entry whose TTL
	// has elapsed, returning how many were removed. Running it twice in a
	// row removes nothing the second time.
	CleanupExpired(ctx context.Context) (int, error)

	// Copy duplicates a live document under a new name with a fresh storage
	// key. An empty destination derives one from the source name. The copy
	// keeps the source's TTL duration, measured from its own creation.
	Copy(ctx context.Context, source, destination string, overwrite bool) (*model.StoredDocument, error)

	// Text returns the document's plain body text.
	Text(ctx context.Context, name string) (string, error)

	// Outline reports the document's body structure: paragraphs with styles
	// and previews, tables with dimensions.
	Outline(ctx context.Context, name string) (*docx.Outline, error)

	// ReplaceText substitutes every literal occurrence of find across the
	// document and persists the result in place. The document's TTL is not
	// refreshed by the edit. Returns the number of replacements.
	ReplaceText(ctx context.Context, name, find, replace string) (int, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store      storage.Storage
	docs       registry.DocumentRegistry
	defaultTTL time.Duration
	urlTTL     time.Duration
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, docs registry.DocumentRegistry, defaultTTL, urlTTL time.Duration) DocumentService {
	return &documentService{store: store, docs: docs, defaultTTL: defaultTTL, urlTTL: urlTTL}
}

func (s *documentService) Create(ctx context.Context, name, title, author string, ttl time.Duration, overwrite bool) (*model.StoredDocument, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	doc, err := docx.New(title, author)
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}

	return s.persistNew(ctx, name, data, ttl, overwrite)
}

// persistNew writes document bytes under a fresh storage key and registers
// them. Storage is written before the registry so a failure never leaves a
// dangling entry; if registration fails the orphaned blob is deleted.
func (s *documentService) persistNew(ctx context.Context, name string, data []byte, ttl time.Duration, overwrite bool) (*model.StoredDocument, error) {
	key := s.docs.NewStorageKey()
	if _, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: docx.ContentType,
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.docs.Register(ctx, name, key, int64(len(data)), registry.ContentHash(data), ttl, overwrite)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("register failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return stored, nil
}

func (s *documentService) List(ctx context.Context, prefix string) ([]model.StoredDocument, error) {
	return s.docs.List(ctx, prefix)
}

func (s *documentService) URL(ctx context.Context, name string) (string, time.Time, error) {
	return s.docs.URL(ctx, name, s.urlTTL)
}

func (s *documentService) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.docs.Resolve(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, registry.ErrNotFound), errors.Is(err, registry.ErrExpired):
		return false, nil
	default:
		return false, err
	}
}

func (s *documentService) Delete(ctx context.Context, name string) error {
	return s.docs.Remove(ctx, name)
}

func (s *documentService) CleanupExpired(ctx context.Context) (int, error) {
	stale, err := s.docs.ListStale(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, doc := range stale {
		if err := s.docs.Remove(ctx, doc.Name); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (s *documentService) Copy(ctx context.Context, source, destination string, overwrite bool) (*model.StoredDocument, error) {
	if destination == "" {
		destination = source + "_copy"
	}
	data, src, err := s.docs.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.persistNew(ctx, destination, data, src.TTL, overwrite)
}

func (s *documentService) Outline(ctx context.Context, name string) (*docx.Outline, error) {
	data, _, err := s.docs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse document %q: %w", name, err)
	}
	outline := doc.Outline()
	return &outline, nil
}

func (s *documentService) Text(ctx context.Context, name string) (string, error) {
	data, _, err := s.docs.Open(ctx, name)
	if err != nil {
		return "", err
	}
	doc, err := docx.Parse(data)
	if err != nil {
		return "", fmt.Errorf("parse document %q: %w", name, err)
	}
	return doc.Text(), nil
}

func (s *documentService) ReplaceText(ctx context.Context, name, find, replace string) (int, error) {
	if find == "" {
		return 0, nil
	}
	data, _, err := s.docs.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	doc, err := docx.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("parse document %q: %w", name, err)
	}

	count := doc.ReplaceAll(find, replace)
	if count == 0 {
		return 0, nil
	}

	out, err := doc.Bytes()
	if err != nil {
		return 0, fmt.Errorf("serialize document %q: %w", name, err)
	}
	if _, err := s.docs.Touch(ctx, name, out); err != nil {
		return 0, err
	}
	return count, nil
}
