package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackdechets/internal/model"
	"trackdechets/internal/repository"
	"trackdechets/internal/validation"
)

const (
	msgForbidden       = "vous n'êtes pas autorisé à accéder à ce bordereau"
	msgNotOnDocument   = "vous ne pouvez pas créer un bordereau sur lequel votre entreprise n'apparaît pas"
	msgOwnSiretRemoved = "vous ne pouvez pas enlever votre établissement du bordereau"
)

type companyLookup struct {
	repo repository.CompanyRepository
}

// NewCompanyLookup adapts a company repository to the lookup used by validation.
// Unknown sirets yield a nil company.
func NewCompanyLookup(repo repository.CompanyRepository) validation.CompanyLookup {
	if repo == nil {
		return nil
	}
	return companyLookup{repo: repo}
}

func (l companyLookup) FindBySiret(ctx context.Context, siret string) (*model.Company, error) {
	c, err := l.repo.FindBySiret(ctx, siret)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// authorize checks that user belongs to one of the companies of sirets.
func authorize(ctx context.Context, repo repository.CompanyRepository, user *model.User, sirets model.Sirets, msg string) error {
	companies, err := repo.ListForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("list companies: %w", err)
	}
	for _, c := range companies {
		for _, s := range sirets.All() {
			if c.Siret == s {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}
