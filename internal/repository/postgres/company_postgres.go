package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"trackdechets/internal/model"
	"trackdechets/internal/repository"
)

// CompanyPostgres is a PostgreSQL implementation of repository.CompanyRepository.
type CompanyPostgres struct {
	db *sql.DB
}

// NewCompanyPostgres creates a new CompanyPostgres repository.
func NewCompanyPostgres(db *sql.DB) *CompanyPostgres {
	return &CompanyPostgres{db: db}
}

var _ repository.CompanyRepository = (*CompanyPostgres)(nil)

const companyColumns = `c.id, c.siret, c.name, c.address, c.contact, c.phone, c.mail, c.company_types, c.created_at`

func scanCompany(s scanner) (*model.Company, error) {
	var (
		c     model.Company
		types []byte
	)
	if err := s.Scan(
		&c.ID,
		&c.Siret,
		&c.Name,
		&c.Address,
		&c.Contact,
		&c.Phone,
		&c.Mail,
		&types,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(types) > 0 {
		if err := json.Unmarshal(types, &c.Types); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

// Create inserts a company, generating its id and creation date when unset.
func (r *CompanyPostgres) Create(ctx context.Context, c *model.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	types := c.Types
	if types == nil {
		types = []model.CompanyType{}
	}
	raw, err := json.Marshal(types)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO companies (id, siret, name, address, contact, phone, mail, company_types, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, q, c.ID, c.Siret, c.Name, c.Address, c.Contact, c.Phone, c.Mail, raw, c.CreatedAt)
	return err
}

// FindBySiret fetches a company by siret.
func (r *CompanyPostgres) FindBySiret(ctx context.Context, siret string) (*model.Company, error) {
	q := `SELECT ` + companyColumns + ` FROM companies c WHERE c.siret = $1`
	return scanCompany(r.db.QueryRowContext(ctx, q, siret))
}

// ListForUser returns the companies userID belongs to, ordered by name.
func (r *CompanyPostgres) ListForUser(ctx context.Context, userID string) ([]model.Company, error) {
	q := `
		SELECT ` + companyColumns + `
		FROM companies c
		JOIN company_associations a ON a.company_id = c.id
		WHERE a.user_id = $1
		ORDER BY c.name, c.siret
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// AddMember links a user to a company. Adding an existing member updates its role.
func (r *CompanyPostgres) AddMember(ctx context.Context, m model.Membership) error {
	const q = `
		INSERT INTO company_associations (user_id, company_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.db.ExecContext(ctx, q, m.UserID, m.CompanyID, m.Role)
	return err
}

// IsMember reports whether userID belongs to the company with siret.
func (r *CompanyPostgres) IsMember(ctx context.Context, userID, siret string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM company_associations a
			JOIN companies c ON c.id = a.company_id
			WHERE a.user_id = $1 AND c.siret = $2
		)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, userID, siret).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
