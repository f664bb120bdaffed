package mocks

import (
	"context"
	"time"

	"wordvault/internal/docx"
	"wordvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, name, title, author string, ttl time.Duration, overwrite bool) (*model.StoredDocument, error) {
	args := m.Called(ctx, name, title, author, ttl, overwrite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, prefix string) ([]model.StoredDocument, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) URL(ctx context.Context, name string) (string, time.Time, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockDocumentService) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockDocumentService) CleanupExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentService) Copy(ctx context.Context, source, destination string, overwrite bool) (*model.StoredDocument, error) {
	args := m.Called(ctx, source, destination, overwrite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentService) Outline(ctx context.Context, name string) (*docx.Outline, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docx.Outline), args.Error(1)
}

func (m *MockDocumentService) Text(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) ReplaceText(ctx context.Context, name, find, replace string) (int, error) {
	args := m.Called(ctx, name, find, replace)
	return args.Int(0), args.Error(1)
}
