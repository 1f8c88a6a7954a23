package handler

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trackdechets/docs"
	"trackdechets/internal/service"
)

// Routes are the dependencies of the HTTP surface. Nil members disable their routes.
type Routes struct {
	DB        *sql.DB
	Bsds      service.Registry
	Companies service.CompanyService
	Gatherer  prometheus.Gatherer
	GraphQL   fiber.Handler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, r Routes) {
	app.Get("/swagger/*", Swagger())
	if r.DB != nil {
		app.Get("/health", HealthCheck(r.DB))
	}
	app.Get("/healthz", LivenessProbe())
	if r.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.Gatherer, promhttp.HandlerOpts{})))
	}
	if r.GraphQL != nil {
		app.Post("/graphql", r.GraphQL)
	}

	if r.Bsds != nil {
		app.Get("/required-for/:kind", RequiredFor(r.Bsds))

		bsds := app.Group("/bsds/:kind")
		bsds.Get("/", ListBsds(r.Bsds))
		bsds.Post("/", CreateBsd(r.Bsds))
		bsds.Get("/:id", GetBsd(r.Bsds))
		bsds.Patch("/:id", UpdateBsd(r.Bsds))
		bsds.Delete("/:id", DeleteBsd(r.Bsds))
		bsds.Post("/:id/sign", SignBsd(r.Bsds))
		bsds.Post("/:id/publish", PublishBsd(r.Bsds))
		bsds.Post("/:id/duplicate", DuplicateBsd(r.Bsds))
		bsds.Get("/:id/errors", BsdErrors(r.Bsds))
		bsds.Get("/:id/pdf", BsdPDF(r.Bsds))
	}

	if r.Companies != nil {
		companies := app.Group("/companies")
		companies.Get("/mine", MyCompanies(r.Companies))
		companies.Get("/:siret", GetCompany(r.Companies))
		companies.Post("/", CreateCompany(r.Companies))
	}
}

// Swagger serves the UI with the host and scheme of the incoming request.
func Swagger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	}
}

// HealthCheck godoc
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Failure  503  {object}  errorPayload
// @Router   /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "base de données indisponible")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
