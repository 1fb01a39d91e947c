package relationships

import (
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for relationships.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the relationship routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/relationships")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
}

func relationshipID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, server.Invalid("invalid relationship id %q", c.Params("id"))
	}
	return uint(id), nil
}

// HandleList lists relationships.
// @Summary List Relationships
// @Tags relationships
// @Produce json
// @Param table_key query string false "Only relationships touching this table"
// @Success 200 {array} relationships.View
// @Failure 404 {object} map[string]string
// @Router /relationships [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	out, err := h.service.List(c.Context(), c.Query("table_key"))
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

// HandleGet returns one relationship.
// @Summary Get Relationship
// @Tags relationships
// @Produce json
// @Param id path int true "Relationship ID"
// @Success 200 {object} relationships.View
// @Failure 404 {object} map[string]string
// @Router /relationships/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := relationshipID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.Get(c.Context(), id)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleCreate links two tables.
// @Summary Create Relationship
// @Tags relationships
// @Accept json
// @Produce json
// @Param relationship body relationships.CreateInput true "Relationship"
// @Success 201 {object} relationships.View
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /relationships [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in CreateInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.Create(c.Context(), in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// HandleUpdate changes a relationship.
// @Summary Update Relationship
// @Tags relationships
// @Accept json
// @Produce json
// @Param id path int true "Relationship ID"
// @Param relationship body relationships.UpdateInput true "Changes"
// @Success 200 {object} relationships.View
// @Router /relationships/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := relationshipID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	var in UpdateInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.Update(c.Context(), id, in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleDelete removes a relationship.
// @Summary Delete Relationship
// @Tags relationships
// @Param id path int true "Relationship ID"
// @Success 204
// @Router /relationships/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := relationshipID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	if err := h.service.Delete(c.Context(), id); err != nil {
		return server.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
