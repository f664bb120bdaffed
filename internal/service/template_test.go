package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"wordvault/internal/docx"
	"wordvault/internal/model"
	"wordvault/internal/registry"
	regMocks "wordvault/internal/registry/mocks"
	"wordvault/internal/storage"
	storeMocks "wordvault/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTemplateService(store storage.Storage, tpls registry.TemplateRegistry, docs registry.DocumentRegistry) TemplateService {
	return NewTemplateService(store, tpls, docs, 24*time.Hour, "general")
}

func TestTemplateService_Add(t *testing.T) {
	ctx := context.Background()
	meta := model.TemplateMeta{Description: "weekly status", Author: "ops"}

	tests := []struct {
		name     string
		category string
		wantCat  string
	}{
		{name: "explicit category", category: "reports", wantCat: "reports"},
		{name: "empty category falls back to default", category: "", wantCat: "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := docxBytes(t, "Status")
			mTpls := new(regMocks.MockTemplateRegistry)
			mTpls.On("Add", ctx, tt.wantCat, "status", data, meta, false).
				Return(&model.Template{Category: tt.wantCat, Name: "status"}, nil)

			svc := newTemplateService(nil, mTpls, nil)

			tpl, err := svc.Add(ctx, tt.category, "status", data, meta, false)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCat, tpl.Category)
			mTpls.AssertExpectations(t)
		})
	}
}

func TestTemplateService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("missing template is an error", func(t *testing.T) {
		mTpls := new(regMocks.MockTemplateRegistry)
		mTpls.On("Remove", ctx, "general", "gone").Return(registry.ErrNotFound)

		svc := newTemplateService(nil, mTpls, nil)

		err := svc.Remove(ctx, "", "gone")
		assert.ErrorIs(t, err, registry.ErrNotFound)
		mTpls.AssertExpectations(t)
	})
}

func TestTemplateService_Inspect(t *testing.T) {
	ctx := context.Background()

	t.Run("reports structure and placeholders", func(t *testing.T) {
		data := docxWithText(t, "Dear {{customer}}, your order {{order_id}} shipped.")
		tpl := &model.Template{Category: "letters", Name: "shipping"}

		mTpls := new(regMocks.MockTemplateRegistry)
		mTpls.On("Fetch", ctx, "letters", "shipping").Return(data, tpl, nil)

		svc := newTemplateService(nil, mTpls, nil)

		info, err := svc.Inspect(ctx, "letters", "shipping")
		assert.NoError(t, err)
		assert.Equal(t, *tpl, info.Template)
		assert.Equal(t, 1, info.Paragraphs)
		assert.Equal(t, 0, info.Tables)
		assert.Equal(t, []string{"customer", "order_id"}, info.Variables)
		mTpls.AssertExpectations(t)
	})

	t.Run("corrupt stored template", func(t *testing.T) {
		mTpls := new(regMocks.MockTemplateRegistry)
		mTpls.On("Fetch", ctx, "general", "broken").
			Return([]byte("junk"), &model.Template{Name: "broken"}, nil)

		svc := newTemplateService(nil, mTpls, nil)

		_, err := svc.Inspect(ctx, "", "broken")
		assert.ErrorIs(t, err, registry.ErrInvalidTemplate)
	})
}

func TestTemplateService_Instantiate(t *testing.T) {
	ctx := context.Background()

	tplBytes := func(t *testing.T) []byte {
		return docxWithText(t, "Hello {{name}}, welcome to {{team}}.")
	}

	tests := []struct {
		name       string
		req        InstantiateRequest
		setupMocks func(t *testing.T, mStore *storeMocks.MockStorage, mTpls *regMocks.MockTemplateRegistry, mDocs *regMocks.MockDocumentRegistry)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path substitutes and registers",
			req: InstantiateRequest{
				Category:     "onboarding",
				TemplateName: "welcome",
				DocumentName: "welcome-ada",
				Variables:    model.VariableMap{"name": "Ada", "team": "Platform"},
				TTL:          time.Hour,
			},
			setupMocks: func(t *testing.T, mStore *storeMocks.MockStorage, mTpls *regMocks.MockTemplateRegistry, mDocs *regMocks.MockDocumentRegistry) {
				mTpls.On("Fetch", ctx, "onboarding", "welcome").
					Return(tplBytes(t), &model.Template{Name: "welcome"}, nil)
				mDocs.On("NewStorageKey").Return("documents/new-key.docx")
				mStore.On("Put", ctx, "documents/new-key.docx", mock.MatchedBy(func(r any) bool {
					return r != nil
				}), mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == docx.ContentType
				})).Return(storage.ObjectInfo{Key: "documents/new-key.docx"}, nil)
				mDocs.On("Register", ctx, "welcome-ada", "documents/new-key.docx", mock.Anything, mock.Anything, time.Hour, false).
					Return(&model.StoredDocument{Name: "welcome-ada", StorageKey: "documents/new-key.docx"}, nil)
			},
		},
		{
			name: "unknown template",
			req:  InstantiateRequest{TemplateName: "absent", DocumentName: "doc"},
			setupMocks: func(t *testing.T, mStore *storeMocks.MockStorage, mTpls *regMocks.MockTemplateRegistry, mDocs *regMocks.MockDocumentRegistry) {
				mTpls.On("Fetch", ctx, "general", "absent").Return(nil, nil, registry.ErrNotFound)
			},
			wantErr: registry.ErrNotFound,
		},
		{
			name: "corrupt template bytes",
			req:  InstantiateRequest{TemplateName: "broken", DocumentName: "doc"},
			setupMocks: func(t *testing.T, mStore *storeMocks.MockStorage, mTpls *regMocks.MockTemplateRegistry, mDocs *regMocks.MockDocumentRegistry) {
				mTpls.On("Fetch", ctx, "general", "broken").
					Return([]byte("junk"), &model.Template{Name: "broken"}, nil)
			},
			wantErr: registry.ErrInvalidTemplate,
		},
		{
			name: "document name taken",
			req:  InstantiateRequest{TemplateName: "welcome", DocumentName: "taken"},
			setupMocks: func(t *testing.T, mStore *storeMocks.MockStorage, mTpls *regMocks.MockTemplateRegistry, mDocs *regMocks.MockDocumentRegistry) {
				mTpls.On("Fetch", ctx, "general", "welcome").
					Return(tplBytes(t), &model.Template{Name: "welcome"}, nil)
				mDocs.On("NewStorageKey").Return("documents/new-key.docx")
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mDocs.On("Register", ctx, "taken", mock.Anything, mock.Anything, mock.Anything, 24*time.Hour, false).
					Return(nil, registry.ErrAlreadyExists)
				mStore.On("Delete", ctx, "documents/new-key.docx").Return(nil)
			},
			wantErr: registry.ErrAlreadyExists,
		},
		{
			name: "register failure rolls back the blob",
			req:  InstantiateRequest{TemplateName: "welcome", DocumentName: "doc"},
			setupMocks: func(t *testing.T, mStore *storeMocks.MockStorage, mTpls *regMocks.MockTemplateRegistry, mDocs *regMocks.MockDocumentRegistry) {
				mTpls.On("Fetch", ctx, "general", "welcome").
					Return(tplBytes(t), &model.Template{Name: "welcome"}, nil)
				mDocs.On("NewStorageKey").Return("documents/new-key.docx")
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, nil)
				mDocs.On("Register", ctx, "doc", mock.Anything, mock.Anything, mock.Anything, 24*time.Hour, false).
					Return(nil, errors.New("registry fail"))
				mStore.On("Delete", ctx, "documents/new-key.docx").Return(nil)
			},
			wantErrMsg: "register failed: registry fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mTpls := new(regMocks.MockTemplateRegistry)
			mDocs := new(regMocks.MockDocumentRegistry)
			svc := newTemplateService(mStore, mTpls, mDocs)

			tt.setupMocks(t, mStore, mTpls, mDocs)

			doc, err := svc.Instantiate(ctx, tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, doc)
			}

			mStore.AssertExpectations(t)
			mTpls.AssertExpectations(t)
			mDocs.AssertExpectations(t)
		})
	}
}

func TestTemplateService_InstantiateAppliesVariables(t *testing.T) {
	ctx := context.Background()

	var uploaded []byte
	mStore := new(storeMocks.MockStorage)
	mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			uploaded, _ = io.ReadAll(args.Get(2).(io.Reader))
		}).
		Return(storage.ObjectInfo{}, nil)

	mTpls := new(regMocks.MockTemplateRegistry)
	mTpls.On("Fetch", ctx, "general", "welcome").
		Return(docxWithText(t, "Hello {{name}}!"), &model.Template{Name: "welcome"}, nil)

	mDocs := new(regMocks.MockDocumentRegistry)
	mDocs.On("NewStorageKey").Return("documents/new-key.docx")
	mDocs.On("Register", ctx, "greeting", mock.Anything, mock.Anything, mock.Anything, mock.Anything, false).
		Return(&model.StoredDocument{Name: "greeting"}, nil)

	svc := newTemplateService(mStore, mTpls, mDocs)

	_, err := svc.Instantiate(ctx, InstantiateRequest{
		TemplateName: "welcome",
		DocumentName: "greeting",
		Variables:    model.VariableMap{"name": "Grace"},
	})
	assert.NoError(t, err)

	doc, err := docx.Parse(uploaded)
	assert.NoError(t, err)
	assert.Contains(t, doc.Text(), "Hello Grace!")
	assert.NotContains(t, doc.Text(), "{{name}}")
}
