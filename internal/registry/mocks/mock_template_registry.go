package mocks

import (
	"context"

	"wordvault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockTemplateRegistry struct {
	mock.Mock
}

func (m *MockTemplateRegistry) Add(ctx context.Context, category, name string, data []byte, meta model.TemplateMeta, overwrite bool) (*model.Template, error) {
	args := m.Called(ctx, category, name, data, meta, overwrite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateRegistry) Resolve(ctx context.Context, category, name string) (*model.Template, error) {
	args := m.Called(ctx, category, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateRegistry) Fetch(ctx context.Context, category, name string) ([]byte, *model.Template, error) {
	args := m.Called(ctx, category, name)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(*model.Template), args.Error(2)
}

func (m *MockTemplateRegistry) List(ctx context.Context, category string) ([]model.Template, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Template), args.Error(1)
}

func (m *MockTemplateRegistry) Remove(ctx context.Context, category, name string) error {
	args := m.Called(ctx, category, name)
	return args.Error(0)
}
