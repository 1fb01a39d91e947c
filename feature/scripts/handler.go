package scripts

import (
	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the script executor.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the script routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/scripts")
	group.Post("/execute", h.HandleExecute)
	group.Get("/tables", h.HandleTables)
}

// HandleExecute runs a script against stored tables.
// @Summary Execute Script
// @Description Runs JavaScript with tables, excel and print globals. Script errors are returned with status 200.
// @Tags scripts
// @Accept json
// @Produce json
// @Param script body scripts.ExecuteInput true "Script"
// @Success 200 {object} scripts.Result
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /scripts/execute [post]
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	var in ExecuteInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}

	res, err := h.service.Execute(c.UserContext(), in)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Script execution failed", zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(res)
}

// HandleTables lists tables available to scripts.
// @Summary Script Tables
// @Tags scripts
// @Produce json
// @Success 200 {array} scripts.TableInfo
// @Router /scripts/tables [get]
func (h *Handler) HandleTables(c *fiber.Ctx) error {
	out, err := h.service.Tables(c.Context())
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(out)
}
