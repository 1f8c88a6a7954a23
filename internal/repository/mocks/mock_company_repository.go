package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"trackdechets/internal/model"
)

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) Create(ctx context.Context, c *model.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) FindBySiret(ctx context.Context, siret string) (*model.Company, error) {
	args := m.Called(ctx, siret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Company), args.Error(1)
}

func (m *MockCompanyRepository) ListForUser(ctx context.Context, userID string) ([]model.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Company), args.Error(1)
}

func (m *MockCompanyRepository) AddMember(ctx context.Context, mb model.Membership) error {
	args := m.Called(ctx, mb)
	return args.Error(0)
}

func (m *MockCompanyRepository) IsMember(ctx context.Context, userID, siret string) (bool, error) {
	args := m.Called(ctx, userID, siret)
	return args.Bool(0), args.Error(1)
}
