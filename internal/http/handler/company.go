package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"trackdechets/internal/model"
	"trackdechets/internal/service"
)

// MyCompanies godoc
// @Summary  Companies of the current user
// @Tags     companies
// @Produce  json
// @Security BearerAuth
// @Success  200  {array}  model.Company
// @Router   /companies/mine [get]
func MyCompanies(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		companies, err := svc.Mine(c.UserContext())
		if err != nil {
			return err
		}
		if companies == nil {
			companies = []model.Company{}
		}
		return c.JSON(companies)
	}
}

// GetCompany godoc
// @Summary  Public information of a company
// @Tags     companies
// @Produce  json
// @Security BearerAuth
// @Param    siret  path  string  true  "14-digit SIRET"
// @Success  200  {object}  model.Company
// @Failure  404  {object}  errorPayload
// @Router   /companies/{siret} [get]
func GetCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		company, err := svc.FindBySiret(c.UserContext(), c.Params("siret"))
		if err != nil {
			return err
		}
		return c.JSON(company)
	}
}

// CreateCompany godoc
// @Summary  Register a company; the current user becomes its administrator
// @Tags     companies
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body  model.Company  true  "company"
// @Success  201  {object}  model.Company
// @Failure  400  {object}  errorPayload
// @Router   /companies [post]
func CreateCompany(svc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in model.Company
		if err := json.Unmarshal(c.Body(), &in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "corps de requête invalide")
		}
		company, err := svc.Create(c.UserContext(), &in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(company)
	}
}
