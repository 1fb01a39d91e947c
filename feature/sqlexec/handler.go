package sqlexec

import (
	"strings"

	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the SQL executor.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the SQL routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sql")
	group.Post("/execute", h.HandleExecute)
	group.Get("/schema", h.HandleSchema)
	group.Get("/tables", h.HandleTables)
}

// HandleExecute runs a query against copies of stored tables.
// @Summary Execute SQL
// @Description Query errors are returned in the error field with status 200.
// @Tags sql
// @Accept json
// @Produce json
// @Param query body sqlexec.ExecuteInput true "Query"
// @Success 200 {object} sqlexec.Result
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /sql/execute [post]
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	var in ExecuteInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}

	res, err := h.service.Execute(c.Context(), in)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("SQL execution failed", zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(res)
}

// HandleSchema returns suggested DDL for every table.
// @Summary SQL Schema
// @Tags sql
// @Produce json
// @Success 200 {object} map[string]string
// @Router /sql/schema [get]
func (h *Handler) HandleSchema(c *fiber.Ctx) error {
	ddl, err := h.service.Schema(c.Context())
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(fiber.Map{"schema": ddl})
}

// HandleTables lists the tables a query would see.
// @Summary Scratch Tables
// @Tags sql
// @Produce json
// @Param table_keys query string false "Comma separated table keys"
// @Success 200 {array} sqlexec.ScratchTable
// @Failure 404 {object} map[string]string
// @Router /sql/tables [get]
func (h *Handler) HandleTables(c *fiber.Ctx) error {
	out, err := h.service.ScratchTables(c.Context(), splitKeys(c.Query("table_keys")))
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
