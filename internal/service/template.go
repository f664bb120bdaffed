package service

import (
	"context"
	"fmt"
	"time"

	"wordvault/internal/docx"
	"wordvault/internal/model"
	"wordvault/internal/registry"
	"wordvault/internal/storage"
)

// InstantiateRequest carries the inputs for creating a document from a
// template.
type InstantiateRequest struct {
	Category     string
	TemplateName string
	DocumentName string
	Variables    model.VariableMap
	// TTL for the resulting document; <= 0 uses the configured default.
	TTL       time.Duration
	Overwrite bool
}

// TemplateInfo describes a template's structure for inspection callers.
type TemplateInfo struct {
	Template   model.Template `json:"template"`
	Paragraphs int            `json:"paragraphs"`
	Tables     int            `json:"tables"`
	Sections   int            `json:"sections"`
	Variables  []string       `json:"variables"`
}

// TemplateService defines the use cases around templates and template
// instantiation.
type TemplateService interface {
	// Add stores template bytes under (category, name). An empty category
	// selects the configured default.
	Add(ctx context.Context, category, name string, data []byte, meta model.TemplateMeta, overwrite bool) (*model.Template, error)

	// List returns templates, all of them or one category's worth.
	List(ctx context.Context, category string) ([]model.Template, error)

	// Remove deletes a template; missing templates fail with
	// registry.ErrNotFound.
	Remove(ctx context.Context, category, name string) error

	// Inspect reports a template's structure and the placeholder names it
	// contains.
	Inspect(ctx context.Context, category, name string) (*TemplateInfo, error)

	// Instantiate creates a new registered document from a template with
	// variable substitution applied. Exactly one new blob and one new
	// registry entry exist on success; on failure nothing is left behind.
	Instantiate(ctx context.Context, req InstantiateRequest) (*model.StoredDocument, error)
}

type templateService struct {
	store           storage.Storage
	templates       registry.TemplateRegistry
	docs            registry.DocumentRegistry
	defaultTTL      time.Duration
	defaultCategory string
}

// NewTemplateService constructs a new TemplateService.
func NewTemplateService(store storage.Storage, templates registry.TemplateRegistry, docs registry.DocumentRegistry, defaultTTL time.Duration, defaultCategory string) TemplateService {
	return &templateService{
		store:           store,
		templates:       templates,
		docs:            docs,
		defaultTTL:      defaultTTL,
		defaultCategory: defaultCategory,
	}
}

func (s *templateService) category(c string) string {
	if c == "" {
		return s.defaultCategory
	}
	return c
}

func (s *templateService) Add(ctx context.Context, category, name string, data []byte, meta model.TemplateMeta, overwrite bool) (*model.Template, error) {
	return s.templates.Add(ctx, s.category(category), name, data, meta, overwrite)
}

func (s *templateService) List(ctx context.Context, category string) ([]model.Template, error) {
	return s.templates.List(ctx, category)
}

func (s *templateService) Remove(ctx context.Context, category, name string) error {
	return s.templates.Remove(ctx, s.category(category), name)
}

func (s *templateService) Inspect(ctx context.Context, category, name string) (*TemplateInfo, error) {
	data, tpl, err := s.templates.Fetch(ctx, s.category(category), name)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", registry.ErrInvalidTemplate, err)
	}
	return &TemplateInfo{
		Template:   *tpl,
		Paragraphs: doc.Paragraphs(),
		Tables:     doc.Tables(),
		Sections:   doc.Sections(),
		Variables:  doc.Variables(),
	}, nil
}

// Instantiate is the template instantiation engine: fetch, parse, substitute,
// serialize, store, register. Registration happens last, after confirmed
// storage success; if it fails the freshly written blob is deleted so
// storage never accumulates unregistered objects.
func (s *templateService) Instantiate(ctx context.Context, req InstantiateRequest) (*model.StoredDocument, error) {
	data, _, err := s.templates.Fetch(ctx, s.category(req.Category), req.TemplateName)
	if err != nil {
		return nil, err
	}

	doc, err := docx.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", registry.ErrInvalidTemplate, err)
	}
	doc.Substitute(req.Variables)

	out, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serialize instantiated document: %w", err)
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	docSvc := documentService{store: s.store, docs: s.docs}
	return docSvc.persistNew(ctx, req.DocumentName, out, ttl, req.Overwrite)
}
