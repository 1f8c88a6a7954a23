package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"trackdechets/internal/model"
	"trackdechets/internal/service"
	"trackdechets/internal/validation"
)

type MockBsdService struct {
	mock.Mock
}

func (m *MockBsdService) bsd(args mock.Arguments) (model.Bsd, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Bsd), args.Error(1)
}

func (m *MockBsdService) Kind() model.Kind {
	args := m.Called()
	return args.Get(0).(model.Kind)
}

func (m *MockBsdService) Create(ctx context.Context, input json.RawMessage) (model.Bsd, error) {
	return m.bsd(m.Called(ctx, input))
}

func (m *MockBsdService) Get(ctx context.Context, id string) (model.Bsd, error) {
	return m.bsd(m.Called(ctx, id))
}

func (m *MockBsdService) List(ctx context.Context, q service.ListQuery) (*service.ListResult, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult), args.Error(1)
}

func (m *MockBsdService) Update(ctx context.Context, id string, input json.RawMessage) (model.Bsd, error) {
	return m.bsd(m.Called(ctx, id, input))
}

func (m *MockBsdService) Delete(ctx context.Context, id string) (model.Bsd, error) {
	return m.bsd(m.Called(ctx, id))
}

func (m *MockBsdService) Duplicate(ctx context.Context, id string) (model.Bsd, error) {
	return m.bsd(m.Called(ctx, id))
}

func (m *MockBsdService) Publish(ctx context.Context, id string) (model.Bsd, error) {
	return m.bsd(m.Called(ctx, id))
}

func (m *MockBsdService) Sign(ctx context.Context, id string, in service.SignInput) (model.Bsd, error) {
	return m.bsd(m.Called(ctx, id, in))
}

func (m *MockBsdService) Errors(ctx context.Context, id string) (validation.Errors, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(validation.Errors), args.Error(1)
}

func (m *MockBsdService) RequiredFor(path string) []model.Stage {
	args := m.Called(path)
	return args.Get(0).([]model.Stage)
}

func (m *MockBsdService) PDF(ctx context.Context, id string) (*service.PDFResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PDFResult), args.Error(1)
}

func (m *MockBsdService) OpenPDF(ctx context.Context, id string) (*service.PDFStream, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PDFStream), args.Error(1)
}
