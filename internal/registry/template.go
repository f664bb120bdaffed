package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"wordvault/internal/config"
	"wordvault/internal/docx"
	"wordvault/internal/model"
	"wordvault/internal/storage"
)

// TemplateRegistry tracks document templates, namespaced one level deep by
// category. A template's bytes live at templates/<category>/<name>.docx and
// its descriptive metadata rides as out-of-band object tags, never embedded
// in the bytes.
type TemplateRegistry interface {
	// Add stores a template. Bytes that do not parse as a well-formed
	// document are rejected with ErrInvalidTemplate before anything is
	// written; an existing (category, name) fails with ErrAlreadyExists
	// unless overwrite is requested.
	Add(ctx context.Context, category, name string, data []byte, meta model.TemplateMeta, overwrite bool) (*model.Template, error)
	// Resolve returns the template descriptor, failing with ErrNotFound.
	Resolve(ctx context.Context, category, name string) (*model.Template, error)
	// Fetch returns the template bytes alongside its descriptor.
	Fetch(ctx context.Context, category, name string) ([]byte, *model.Template, error)
	// List returns templates, optionally filtered to one category, sorted by
	// category then name.
	List(ctx context.Context, category string) ([]model.Template, error)
	// Remove deletes a template. A missing template fails with ErrNotFound.
	Remove(ctx context.Context, category, name string) error
}

type templateRegistry struct {
	store  storage.Storage
	prefix string
	now    func() time.Time
}

// NewTemplateRegistry constructs a template registry over the given store.
func NewTemplateRegistry(store storage.Storage, cfg config.TemplateConfig) TemplateRegistry {
	return &templateRegistry{
		store:  store,
		prefix: cfg.Prefix,
		now:    time.Now,
	}
}

// cleanCategory applies the same policy as names: the category is a separate
// one-level namespace and must never carry separators of its own.
func cleanCategory(category string) (string, error) {
	if category == "" {
		return "", errors.Join(ErrInvalidName, errors.New("category is required"))
	}
	if strings.ContainsAny(category, `/\`) || strings.Contains(category, "..") {
		return "", errors.Join(ErrInvalidName, errors.New("category must not contain path separators"))
	}
	return category, nil
}

func (r *templateRegistry) key(category, name string) string {
	return r.prefix + "/" + category + "/" + name + docExtension
}

func (r *templateRegistry) Add(ctx context.Context, category, name string, data []byte, meta model.TemplateMeta, overwrite bool) (*model.Template, error) {
	category, err := cleanCategory(category)
	if err != nil {
		return nil, err
	}
	name, err = cleanName(name)
	if err != nil {
		return nil, err
	}

	// Reject corrupt uploads before anything is written, so a failed add
	// leaves the registry unchanged.
	if _, err := docx.Parse(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}

	key := r.key(category, name)
	if !overwrite {
		_, err := r.store.Stat(ctx, key)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: template %s/%s", ErrAlreadyExists, category, name)
		case errors.Is(err, storage.ErrNotFound):
		default:
			return nil, err
		}
	}

	created := r.now().UTC()
	_, err = r.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: docx.ContentType,
		Metadata: map[string]string{
			"description": meta.Description,
			"author":      meta.Author,
			"created-at":  created.Format(time.RFC3339),
			"category":    category,
		},
	})
	if err != nil {
		return nil, err
	}

	return &model.Template{
		Category:    category,
		Name:        name,
		StorageKey:  key,
		Description: meta.Description,
		Author:      meta.Author,
		SizeBytes:   int64(len(data)),
		CreatedAt:   created,
	}, nil
}

func (r *templateRegistry) Resolve(ctx context.Context, category, name string) (*model.Template, error) {
	category, name, err := r.cleanPair(category, name)
	if err != nil {
		return nil, err
	}
	info, err := r.store.Stat(ctx, r.key(category, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: template %s/%s", ErrNotFound, category, name)
		}
		return nil, err
	}
	return r.template(category, name, info), nil
}

func (r *templateRegistry) Fetch(ctx context.Context, category, name string) ([]byte, *model.Template, error) {
	category, name, err := r.cleanPair(category, name)
	if err != nil {
		return nil, nil, err
	}
	data, info, err := storage.GetBytes(ctx, r.store, r.key(category, name))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: template %s/%s", ErrNotFound, category, name)
		}
		return nil, nil, err
	}
	return data, r.template(category, name, info), nil
}

func (r *templateRegistry) List(ctx context.Context, category string) ([]model.Template, error) {
	prefix := r.prefix + "/"
	if category != "" {
		c, err := cleanCategory(category)
		if err != nil {
			return nil, err
		}
		prefix += c + "/"
	}

	objs, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	templates := make([]model.Template, 0, len(objs))
	for _, obj := range objs {
		cat, name, ok := r.parseKey(obj.Key)
		if !ok {
			continue // not following the category/name.docx layout
		}
		templates = append(templates, *r.template(cat, name, obj))
	}
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Category != templates[j].Category {
			return templates[i].Category < templates[j].Category
		}
		return templates[i].Name < templates[j].Name
	})
	return templates, nil
}

func (r *templateRegistry) Remove(ctx context.Context, category, name string) error {
	category, name, err := r.cleanPair(category, name)
	if err != nil {
		return err
	}
	key := r.key(category, name)
	if _, err := r.store.Stat(ctx, key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: template %s/%s", ErrNotFound, category, name)
		}
		return err
	}
	return r.store.Delete(ctx, key)
}

func (r *templateRegistry) cleanPair(category, name string) (string, string, error) {
	category, err := cleanCategory(category)
	if err != nil {
		return "", "", err
	}
	name, err = cleanName(name)
	if err != nil {
		return "", "", err
	}
	return category, name, nil
}

// parseKey extracts (category, name) from templates/<category>/<name>.docx.
func (r *templateRegistry) parseKey(key string) (string, string, bool) {
	rest, found := strings.CutPrefix(key, r.prefix+"/")
	if !found || !strings.HasSuffix(rest, docExtension) {
		return "", "", false
	}
	parts := strings.Split(strings.TrimSuffix(rest, docExtension), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (r *templateRegistry) template(category, name string, info storage.ObjectInfo) *model.Template {
	created := info.LastModified
	if v := metaValue(info.Metadata, "created-at"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			created = t
		}
	}
	return &model.Template{
		Category:    category,
		Name:        name,
		StorageKey:  info.Key,
		Description: metaValue(info.Metadata, "description"),
		Author:      metaValue(info.Metadata, "author"),
		SizeBytes:   info.Size,
		CreatedAt:   created,
	}
}
