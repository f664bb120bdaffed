package mocks

import (
	"context"
	"time"

	"wordvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRegistry struct {
	mock.Mock
}

func (m *MockDocumentRegistry) NewStorageKey() string {
	return m.Called().String(0)
}

func (m *MockDocumentRegistry) Register(ctx context.Context, name, storageKey string, size int64, hash string, ttl time.Duration, overwrite bool) (*model.StoredDocument, error) {
	args := m.Called(ctx, name, storageKey, size, hash, ttl, overwrite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentRegistry) Resolve(ctx context.Context, name string) (*model.StoredDocument, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentRegistry) Open(ctx context.Context, name string) ([]byte, *model.StoredDocument, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(*model.StoredDocument), args.Error(2)
}

func (m *MockDocumentRegistry) Touch(ctx context.Context, name string, data []byte) (*model.StoredDocument, error) {
	args := m.Called(ctx, name, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

func (m *MockDocumentRegistry) List(ctx context.Context, prefix string) ([]model.StoredDocument, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredDocument), args.Error(1)
}

func (m *MockDocumentRegistry) ListStale(ctx context.Context) ([]model.StoredDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredDocument), args.Error(1)
}

func (m *MockDocumentRegistry) Remove(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockDocumentRegistry) URL(ctx context.Context, name string, validFor time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, name, validFor)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
