package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"trackdechets/internal/repository"
)

type MockBsdRepository struct {
	mock.Mock
}

func (m *MockBsdRepository) Create(ctx context.Context, rec *repository.BsdRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockBsdRepository) Update(ctx context.Context, rec *repository.BsdRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockBsdRepository) FindByID(ctx context.Context, id string) (*repository.BsdRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BsdRecord), args.Error(1)
}

func (m *MockBsdRepository) FindByIDs(ctx context.Context, ids []string) ([]repository.BsdRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BsdRecord), args.Error(1)
}

func (m *MockBsdRepository) List(ctx context.Context, f repository.BsdFilter, q repository.CursorQuery) (*repository.PageResult[repository.BsdRecord], error) {
	args := m.Called(ctx, f, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[repository.BsdRecord]), args.Error(1)
}

func (m *MockBsdRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockBsdRepository) SetGroupedIn(ctx context.Context, ids []string, groupID string) error {
	args := m.Called(ctx, ids, groupID)
	return args.Error(0)
}

func (m *MockBsdRepository) FindGroupedIn(ctx context.Context, groupID string) ([]repository.BsdRecord, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.BsdRecord), args.Error(1)
}

func (m *MockBsdRepository) AppendStatusLog(ctx context.Context, l repository.StatusLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}
