package tables

import (
	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for tables.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the table routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/tables")
	group.Get("/", h.HandleList)
	group.Post("/", h.HandleCreate)
	group.Get("/:key", h.HandleGet)
	group.Put("/:key", h.HandleUpdate)
	group.Put("/:key/data", h.HandleReplaceData)
	group.Delete("/:key", h.HandleDelete)
}

// HandleList lists table summaries.
// @Summary List Tables
// @Description List tables with optional category and source type filters.
// @Tags tables
// @Produce json
// @Param category query string false "Category"
// @Param source_type query string false "master or imported"
// @Param skip query int false "Offset"
// @Param limit query int false "Page size (1-500, default 100)"
// @Success 200 {object} tables.ListResult
// @Failure 400 {object} map[string]string
// @Router /tables [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", DefaultLimit)
	if skip < 0 {
		return server.Fail(c, server.Invalid("skip must not be negative"))
	}
	if limit < 1 || limit > MaxLimit {
		return server.Fail(c, server.Invalid("limit must be between 1 and %d", MaxLimit))
	}

	res, err := h.service.List(c.Context(), ListFilter{
		Category:   c.Query("category"),
		SourceType: c.Query("source_type"),
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list tables", zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(res)
}

// HandleGet returns a table with its data.
// @Summary Get Table
// @Tags tables
// @Produce json
// @Param key path string true "Table key"
// @Success 200 {object} tables.Detail
// @Failure 404 {object} map[string]string
// @Router /tables/{key} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	d, err := h.service.GetByKey(c.Context(), c.Params("key"))
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(d)
}

// HandleCreate creates a master table.
// @Summary Create Table
// @Tags tables
// @Accept json
// @Produce json
// @Param table body tables.CreateInput true "Table"
// @Success 201 {object} tables.Detail
// @Failure 400 {object} map[string]string
// @Router /tables [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in CreateInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	in.SourceType = SourceMaster

	d, err := h.service.Create(c.Context(), in)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Table create failed", zap.String("key", in.Key), zap.Error(err))
		return server.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

// HandleUpdate updates metadata and optionally replaces the data.
// @Summary Update Table
// @Tags tables
// @Accept json
// @Produce json
// @Param key path string true "Table key"
// @Param table body tables.UpdateInput true "Changes"
// @Success 200 {object} tables.Detail
// @Failure 404 {object} map[string]string
// @Router /tables/{key} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	var in UpdateInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	d, err := h.service.Update(c.Context(), c.Params("key"), in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(d)
}

// HandleReplaceData overwrites columns and rows.
// @Summary Replace Table Data
// @Tags tables
// @Accept json
// @Produce json
// @Param key path string true "Table key"
// @Param data body tables.DataInput true "Columns and rows"
// @Success 200 {object} tables.Detail
// @Failure 404 {object} map[string]string
// @Router /tables/{key}/data [put]
func (h *Handler) HandleReplaceData(c *fiber.Ctx) error {
	var in DataInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	d, err := h.service.ReplaceData(c.Context(), c.Params("key"), in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(d)
}

// HandleDelete removes a table and everything attached to it.
// @Summary Delete Table
// @Tags tables
// @Param key path string true "Table key"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /tables/{key} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("key")); err != nil {
		logger.WithRayID(h.service.logger, c).Error("Table delete failed", zap.Error(err))
		return server.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
