package valuemapping

import (
	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for value mappings.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the value mapping routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/value-mappings")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleGet)
	group.Put("/:id", h.HandleUpdate)
	group.Delete("/:id", h.HandleDelete)
	group.Post("/:id/apply", h.HandleApply)
	group.Post("/:id/reverse", h.HandleReverse)
}

func mappingID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, server.Invalid("invalid value mapping id %q", c.Params("id"))
	}
	return uint(id), nil
}

// HandleList lists all value mappings.
// @Summary List Value Mappings
// @Tags value-mappings
// @Produce json
// @Success 200 {array} valuemapping.ValueMapping
// @Router /value-mappings [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	out, err := h.service.List(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list value mappings", zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

// HandleGet returns one value mapping.
// @Summary Get Value Mapping
// @Tags value-mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Success 200 {object} valuemapping.ValueMapping
// @Failure 404 {object} map[string]string
// @Router /value-mappings/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := mappingID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	m, err := h.service.Get(c.Context(), id)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(m)
}

// HandleCreate creates a value mapping.
// @Summary Create Value Mapping
// @Tags value-mappings
// @Accept json
// @Produce json
// @Param mapping body valuemapping.CreateInput true "Mapping"
// @Success 201 {object} valuemapping.ValueMapping
// @Failure 400 {object} map[string]string
// @Router /value-mappings [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in CreateInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	m, err := h.service.Create(c.Context(), in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// HandleUpdate changes a value mapping.
// @Summary Update Value Mapping
// @Tags value-mappings
// @Accept json
// @Produce json
// @Param id path int true "Mapping ID"
// @Param mapping body valuemapping.UpdateInput true "Changes"
// @Success 200 {object} valuemapping.ValueMapping
// @Failure 404 {object} map[string]string
// @Router /value-mappings/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := mappingID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	var in UpdateInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	m, err := h.service.Update(c.Context(), id, in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(m)
}

// HandleDelete removes a value mapping and clears references to it.
// @Summary Delete Value Mapping
// @Tags value-mappings
// @Param id path int true "Mapping ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /value-mappings/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := mappingID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	if err := h.service.Delete(c.Context(), id); err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Value mapping delete failed", zap.Uint("id", id), zap.Error(err))
		return server.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleApply translates one value.
// @Summary Apply Value Mapping
// @Tags value-mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Param value query string true "Value"
// @Success 200 {object} valuemapping.Translation
// @Router /value-mappings/{id}/apply [post]
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	id, err := mappingID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	tr, err := h.service.Apply(c.Context(), id, c.Query("value"))
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(tr)
}

// HandleReverse looks up the original of a transformed value.
// @Summary Reverse Value Mapping
// @Tags value-mappings
// @Produce json
// @Param id path int true "Mapping ID"
// @Param value query string true "Transformed value"
// @Success 200 {object} valuemapping.Translation
// @Router /value-mappings/{id}/reverse [post]
func (h *Handler) HandleReverse(c *fiber.Ctx) error {
	id, err := mappingID(c)
	if err != nil {
		return server.Fail(c, err)
	}
	tr, err := h.service.Reverse(c.Context(), id, c.Query("value"))
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(tr)
}
