package validation

import (
	"context"

	"trackdechets/internal/model"
)

// CompanyLookup finds a company by siret. It returns (nil, nil) when no company is
// registered under that siret.
type CompanyLookup interface {
	FindBySiret(ctx context.Context, siret string) (*model.Company, error)
}

// Companies is an in-memory CompanyLookup keyed by siret.
type Companies map[string]*model.Company

func (c Companies) FindBySiret(_ context.Context, siret string) (*model.Company, error) {
	return c[siret], nil
}
