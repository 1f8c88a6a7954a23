package repository

import (
	"context"

	"trackdechets/internal/model"
)

// CompanyRepository defines data access for companies and memberships.
type CompanyRepository interface {
	// Create inserts a company. The siret must be unique.
	Create(ctx context.Context, c *model.Company) error

	// FindBySiret returns a company by siret, or sql.ErrNoRows.
	FindBySiret(ctx context.Context, siret string) (*model.Company, error)

	// ListForUser returns the companies the user is a member of.
	ListForUser(ctx context.Context, userID string) ([]model.Company, error)

	// AddMember links a user to a company.
	AddMember(ctx context.Context, m model.Membership) error

	// IsMember reports whether the user belongs to the company with the given siret.
	IsMember(ctx context.Context, userID, siret string) (bool, error)
}
