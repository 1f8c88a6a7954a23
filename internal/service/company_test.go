package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"trackdechets/internal/model"
	repoMocks "trackdechets/internal/repository/mocks"
)

func TestCompanyService_Create(t *testing.T) {
	tests := []struct {
		name       string
		company    *model.Company
		setupMocks func(m *repoMocks.MockCompanyRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:    "happy path",
			company: &model.Company{Siret: "111 111 111 11111", Name: "Clinique des Lilas", Types: []model.CompanyType{model.CompanyProducer}},
			setupMocks: func(m *repoMocks.MockCompanyRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Company) bool {
					return c.Siret == emitterSiret
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*model.Company).ID = "company-1"
				}).Return(nil)
				m.On("AddMember", mock.Anything, model.Membership{UserID: "user-1", CompanyID: "company-1", Role: model.RoleAdmin}).Return(nil)
			},
		},
		{
			name:    "invalid siret",
			company: &model.Company{Siret: "1234", Name: "X", Types: []model.CompanyType{model.CompanyProducer}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown type",
			company: &model.Company{Siret: emitterSiret, Name: "X", Types: []model.CompanyType{"SPACESHIP"}},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "nil company",
			wantErr: ErrInvalidInput,
		},
		{
			name:    "already registered",
			company: &model.Company{Siret: emitterSiret, Name: "X", Types: []model.CompanyType{model.CompanyCollector}},
			setupMocks: func(m *repoMocks.MockCompanyRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23505"})
			},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "repository error",
			company: &model.Company{Siret: emitterSiret, Name: "X", Types: []model.CompanyType{model.CompanyCollector}},
			setupMocks: func(m *repoMocks.MockCompanyRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
			},
			wantErrMsg: "create company: db down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(repoMocks.MockCompanyRepository)
			if tt.setupMocks != nil {
				tt.setupMocks(repo)
			}
			svc := NewCompanyService(repo, nil)

			c, err := svc.Create(userCtx(), tt.company)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.EqualError(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "company-1", c.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestCompanyService_FindBySiret(t *testing.T) {
	repo := new(repoMocks.MockCompanyRepository)
	repo.On("FindBySiret", mock.Anything, emitterSiret).Return(&model.Company{Siret: emitterSiret}, nil)
	repo.On("FindBySiret", mock.Anything, recipientSiret).Return(nil, sql.ErrNoRows)
	svc := NewCompanyService(repo, nil)

	c, err := svc.FindBySiret(userCtx(), emitterSiret)
	require.NoError(t, err)
	assert.Equal(t, emitterSiret, c.Siret)

	_, err = svc.FindBySiret(userCtx(), recipientSiret)
	assert.ErrorIs(t, err, ErrCompanyNotFound)
	assert.Equal(t, CodeNotFound, Code(err))

	_, err = svc.FindBySiret(context.Background(), emitterSiret)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCompanyService_Mine(t *testing.T) {
	repo := new(repoMocks.MockCompanyRepository)
	repo.On("ListForUser", mock.Anything, "user-1").Return([]model.Company{{Siret: emitterSiret}}, nil)
	svc := NewCompanyService(repo, nil)

	got, err := svc.Mine(userCtx())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCompanyLookup(t *testing.T) {
	repo := new(repoMocks.MockCompanyRepository)
	repo.On("FindBySiret", mock.Anything, emitterSiret).Return(nil, sql.ErrNoRows)
	repo.On("FindBySiret", mock.Anything, recipientSiret).Return(nil, errors.New("db down"))

	l := NewCompanyLookup(repo)
	c, err := l.FindBySiret(context.Background(), emitterSiret)
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = l.FindBySiret(context.Background(), recipientSiret)
	assert.EqualError(t, err, "db down")

	assert.Nil(t, NewCompanyLookup(nil))
}
