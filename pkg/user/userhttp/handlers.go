package userhttp

import (
	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/kernel"
	"github.com/Abraxas-365/concourse/pkg/user"
	"github.com/Abraxas-365/concourse/pkg/user/usersrv"
	"github.com/gofiber/fiber/v2"
)

// UserHandlers exposes the record store over HTTP.
type UserHandlers struct {
	svc *usersrv.UserService
}

// NewUserHandlers creates the handlers.
func NewUserHandlers(svc *usersrv.UserService) *UserHandlers {
	return &UserHandlers{svc: svc}
}

// RegisterRoutes mounts the user routes on the app.
func (h *UserHandlers) RegisterRoutes(app *fiber.App) {
	group := app.Group("/api/v1/users")
	group.Get("/", h.list)
	group.Post("/", h.create)
	group.Get("/:email", h.getByEmail)
}

func (h *UserHandlers) getByEmail(c *fiber.Ctx) error {
	u, err := h.svc.GetByEmail(c.Context(), c.Params("email"))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (h *UserHandlers) create(c *fiber.Ctx) error {
	var req user.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Validation("Malformed request body").WithDetail("parse_error", err.Error())
	}

	created, err := h.svc.Create(c.Context(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *UserHandlers) list(c *fiber.Ctx) error {
	opts := kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 20),
	}

	page, err := h.svc.List(c.Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(page)
}
