package handler

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"trackdechets/internal/model"
	"trackdechets/internal/service"
)

func bsdService(c *fiber.Ctx, reg service.Registry) (service.BsdService, error) {
	kind, err := model.ParseKind(c.Params("kind"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return reg.For(kind)
}

// ListBsds godoc
// @Summary  List the documents of the user's companies
// @Tags     bsds
// @Produce  json
// @Security BearerAuth
// @Param    kind    path   string  true   "bsdasri, bsff or bsvhu"
// @Param    first   query  int     false  "page size (max 500)"
// @Param    after   query  string  false  "cursor: id of the last document of the previous page"
// @Param    status  query  string  false  "comma-separated statuses"
// @Success  200  {object}  service.ListResult
// @Failure  400  {object}  errorPayload
// @Failure  401  {object}  errorPayload
// @Router   /bsds/{kind} [get]
func ListBsds(reg service.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		q := service.ListQuery{After: c.Query("after")}
		if s := c.Query("first"); s != "" {
			if q.First, err = strconv.Atoi(s); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "first doit être un entier")
			}
		}
		for _, s := range strings.Split(c.Query("status"), ",") {
			if s = strings.TrimSpace(s); s != "" {
				q.Statuses = append(q.Statuses, model.Status(strings.ToUpper(s)))
			}
		}

		res, err := svc.List(c.UserContext(), q)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// CreateBsd godoc
// @Summary  Create a draft document
// @Tags     bsds
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string  true  "bsdasri, bsff or bsvhu"
// @Success  201  {object}  map[string]any
// @Failure  400  {object}  errorPayload
// @Failure  403  {object}  errorPayload
// @Router   /bsds/{kind} [post]
func CreateBsd(reg service.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		doc, err := svc.Create(c.UserContext(), c.Body())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetBsd godoc
// @Summary  Get a document
// @Tags     bsds
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string  true  "bsdasri, bsff or bsvhu"
// @Param    id    path  string  true  "document id"
// @Success  200  {object}  map[string]any
// @Failure  404  {object}  errorPayload
// @Router   /bsds/{kind}/{id} [get]
func GetBsd(reg service.Registry) fiber.Handler {
	return bsdAction(reg, service.BsdService.Get, fiber.StatusOK)
}

// UpdateBsd godoc
// @Summary  Update a document; fields of signed stages are kept
// @Tags     bsds
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string  true  "bsdasri, bsff or bsvhu"
// @Param    id    path  string  true  "document id"
// @Success  200  {object}  map[string]any
// @Failure  400  {object}  errorPayload
// @Router   /bsds/{kind}/{id} [patch]
func UpdateBsd(reg service.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		doc, err := svc.Update(c.UserContext(), c.Params("id"), c.Body())
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// DeleteBsd godoc
// @Summary  Delete a document that has not been signed
// @Tags     bsds
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string  true  "bsdasri, bsff or bsvhu"
// @Param    id    path  string  true  "document id"
// @Success  200  {object}  map[string]any
// @Failure  400  {object}  errorPayload
// @Router   /bsds/{kind}/{id} [delete]
func DeleteBsd(reg service.Registry) fiber.Handler {
	return bsdAction(reg, service.BsdService.Delete, fiber.StatusOK)
}

// PublishBsd godoc
// @Summary  Publish a draft
// @Tags     bsds
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string  true  "bsdasri, bsff or bsvhu"
// @Param    id    path  string  true  "document id"
// @Success  200  {object}  map[string]any
// @Failure  400  {object}  errorPayload
// @Router   /bsds/{kind}/{id}/publish [post]
func PublishBsd(reg service.Registry) fiber.Handler {
	return bsdAction(reg, service.BsdService.Publish, fiber.StatusOK)
}

// DuplicateBsd godoc
// @Summary  Copy a document into a new draft
// @Tags     bsds
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string  true  "bsdasri, bsff or bsvhu"
// @Param    id    path  string  true  "document id"
// @Success  201  {object}  map[string]any
// @Router   /bsds/{kind}/{id}/duplicate [post]
func DuplicateBsd(reg service.Registry) fiber.Handler {
	return bsdAction(reg, service.BsdService.Duplicate, fiber.StatusCreated)
}

func bsdAction(reg service.Registry, action func(service.BsdService, context.Context, string) (model.Bsd, error), status int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		doc, err := action(svc, c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.Status(status).JSON(doc)
	}
}

// SignBsd godoc
// @Summary  Sign the next stage of a document
// @Tags     bsds
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string             true  "bsdasri, bsff or bsvhu"
// @Param    id    path  string             true  "document id"
// @Param    body  body  service.SignInput  true  "signature"
// @Success  200  {object}  map[string]any
// @Failure  400  {object}  errorPayload
// @Failure  403  {object}  errorPayload
// @Router   /bsds/{kind}/{id}/sign [post]
func SignBsd(reg service.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		var in service.SignInput
		if err := json.Unmarshal(c.Body(), &in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "corps de requête invalide")
		}
		if in.Stage, err = model.ParseStage(string(in.Stage)); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		doc, err := svc.Sign(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// BsdErrors godoc
// @Summary  Validate every stage of a document
// @Tags     bsds
// @Produce  json
// @Security BearerAuth
// @Param    kind  path  string  true  "bsdasri, bsff or bsvhu"
// @Param    id    path  string  true  "document id"
// @Success  200  {object}  map[string]any
// @Router   /bsds/{kind}/{id}/errors [get]
func BsdErrors(reg service.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		errs, err := svc.Errors(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"errors": errs})
	}
}

// BsdPDF godoc
// @Summary  Print a document
// @Description Returns a time-limited download link, or the PDF itself with ?inline=true.
// @Tags     bsds
// @Produce  json,application/pdf
// @Security BearerAuth
// @Param    kind    path   string  true   "bsdasri, bsff or bsvhu"
// @Param    id      path   string  true   "document id"
// @Param    inline  query  bool    false  "stream the PDF"
// @Success  200  {object}  service.PDFResult
// @Failure  500  {object}  errorPayload
// @Router   /bsds/{kind}/{id}/pdf [get]
func BsdPDF(reg service.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		if !c.QueryBool("inline") {
			res, err := svc.PDF(c.UserContext(), c.Params("id"))
			if err != nil {
				return err
			}
			return c.JSON(res)
		}

		f, err := svc.OpenPDF(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="`+f.Filename+`"`)
		// fasthttp closes the body once it has been sent.
		return c.SendStream(f.Body, int(f.Size))
	}
}

// RequiredFor godoc
// @Summary  Stages whose signature requires a field
// @Tags     bsds
// @Produce  json
// @Param    kind  path   string  true  "bsdasri, bsff or bsvhu"
// @Param    path  query  string  true  "field path, e.g. emitterWastePackagingsInfo[0].quantity"
// @Success  200  {object}  map[string]any
// @Failure  400  {object}  errorPayload
// @Router   /required-for/{kind} [get]
func RequiredFor(reg service.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		svc, err := bsdService(c, reg)
		if err != nil {
			return err
		}
		path := strings.TrimSpace(c.Query("path"))
		if path == "" {
			return fiber.NewError(fiber.StatusBadRequest, "path est requis")
		}
		return c.JSON(fiber.Map{"path": path, "requiredFor": svc.RequiredFor(path)})
	}
}
