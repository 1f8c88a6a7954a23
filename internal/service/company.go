package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"trackdechets/internal/model"
	"trackdechets/internal/repository"
)

// ErrCompanyNotFound is returned when no company has the requested siret.
var ErrCompanyNotFound = fmt.Errorf("%w: établissement introuvable", ErrNotFound)

// CompanyService defines the use cases for companies.
type CompanyService interface {
	// Create registers a company. The current user becomes its administrator.
	Create(ctx context.Context, c *model.Company) (*model.Company, error)

	// Mine returns the companies of the current user.
	Mine(ctx context.Context) ([]model.Company, error)

	// FindBySiret returns the public information of a company.
	FindBySiret(ctx context.Context, siret string) (*model.Company, error)
}

type companyService struct {
	repo repository.CompanyRepository
	log  *zap.Logger
}

// NewCompanyService constructs a new CompanyService.
func NewCompanyService(repo repository.CompanyRepository, log *zap.Logger) CompanyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &companyService{repo: repo, log: log.With(zap.String("component", "service"))}
}

var companyTypes = []any{
	model.CompanyProducer, model.CompanyCollector, model.CompanyWasteProcessor, model.CompanyTransporter,
	model.CompanyWasteVehicles, model.CompanyWasteCenter, model.CompanyTrader, model.CompanyEcoOrganisme,
}

func (s *companyService) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	user, err := UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: établissement requis", ErrInvalidInput)
	}
	c.Siret = strings.ReplaceAll(c.Siret, " ", "")
	if err := ozzo.ValidateStruct(c,
		ozzo.Field(&c.Siret, ozzo.Required, ozzo.Length(14, 14), is.Digit),
		ozzo.Field(&c.Name, ozzo.Required),
		ozzo.Field(&c.Mail, is.EmailFormat),
		ozzo.Field(&c.Types, ozzo.Required, ozzo.Each(ozzo.In(companyTypes...))),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: l'établissement %s est déjà inscrit", ErrInvalidInput, c.Siret)
		}
		return nil, fmt.Errorf("create company: %w", err)
	}
	if err := s.repo.AddMember(ctx, model.Membership{UserID: user.ID, CompanyID: c.ID, Role: model.RoleAdmin}); err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	s.log.Info("company_created", zap.String("siret", c.Siret), zap.String("user_id", user.ID))
	return c, nil
}

func (s *companyService) Mine(ctx context.Context) ([]model.Company, error) {
	user, err := UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForUser(ctx, user.ID)
}

func (s *companyService) FindBySiret(ctx context.Context, siret string) (*model.Company, error) {
	if _, err := UserFrom(ctx); err != nil {
		return nil, err
	}
	c, err := s.repo.FindBySiret(ctx, siret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return c, nil
}
