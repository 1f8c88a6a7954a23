package model

import "time"

// CompanyType is a regulatory capability held by a company.
type CompanyType string

const (
	CompanyProducer       CompanyType = "PRODUCER"
	CompanyCollector      CompanyType = "COLLECTOR"
	CompanyWasteProcessor CompanyType = "WASTEPROCESSOR"
	CompanyTransporter    CompanyType = "TRANSPORTER"
	CompanyWasteVehicles  CompanyType = "WASTE_VEHICLES"
	CompanyWasteCenter    CompanyType = "WASTE_CENTER"
	CompanyTrader         CompanyType = "TRADER"
	CompanyEcoOrganisme   CompanyType = "ECO_ORGANISME"
)

// Role of a user inside a company.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Company is an establishment identified by its 14-digit SIRET.
type Company struct {
	ID        string        `json:"id"`
	Siret     string        `json:"siret"`
	Name      string        `json:"name"`
	Address   string        `json:"address,omitempty"`
	Contact   string        `json:"contact,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Mail      string        `json:"mail,omitempty"`
	Types     []CompanyType `json:"companyTypes"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Has reports whether the company holds capability t. A nil company holds nothing.
func (c *Company) Has(t CompanyType) bool {
	if c == nil {
		return false
	}
	for _, ct := range c.Types {
		if ct == t {
			return true
		}
	}
	return false
}

// IsCollector reports whether the company runs a sorting/transit/grouping facility.
func (c *Company) IsCollector() bool { return c.Has(CompanyCollector) }

// User is an authenticated account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Membership links a user to a company with a role.
type Membership struct {
	UserID    string `json:"userId"`
	CompanyID string `json:"companyId"`
	Role      Role   `json:"role"`
}
