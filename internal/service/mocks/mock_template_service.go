package mocks

import (
	"context"

	"wordvault/internal/model"
	"wordvault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockTemplateService struct {
	mock.Mock
}

func (m *MockTemplateService) Add(ctx context.Context, category, name string, data []byte, meta model.TemplateMeta, overwrite bool) (*model.Template, error) {
	args := m.Called(ctx, category, name, data, meta, overwrite)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

func (m *MockTemplateService) List(ctx context.Context, category string) ([]model.Template, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Template), args.Error(1)
}

func (m *MockTemplateService) Remove(ctx context.Context, category, name string) error {
	args := m.Called(ctx, category, name)
	return args.Error(0)
}

func (m *MockTemplateService) Inspect(ctx context.Context, category, name string) (*service.TemplateInfo, error) {
	args := m.Called(ctx, category, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TemplateInfo), args.Error(1)
}

func (m *MockTemplateService) Instantiate(ctx context.Context, req service.InstantiateRequest) (*model.StoredDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}
