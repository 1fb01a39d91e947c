package matching

import (
	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for match configurations and executions.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the configuration and execution routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	configs := app.Group("/match-configs")
	configs.Get("/", h.HandleListConfigs)
	configs.Post("/", h.HandleCreateConfig)
	configs.Get("/:id", h.HandleGetConfig)
	configs.Put("/:id", h.HandleUpdateConfig)
	configs.Delete("/:id", h.HandleDeleteConfig)

	run := app.Group("/matching")
	run.Post("/execute", h.HandleExecute)
	run.Get("/results", h.HandleListResults)
	run.Get("/results/:id", h.HandleGetResult)
	run.Delete("/results/:id", h.HandleDeleteResult)
}

func pathID(c *fiber.Ctx, what string) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, server.Invalid("invalid %s id %q", what, c.Params("id"))
	}
	return uint(id), nil
}

// HandleListConfigs lists match configurations.
// @Summary List Match Configs
// @Tags match-configs
// @Produce json
// @Success 200 {array} matching.ConfigView
// @Router /match-configs [get]
func (h *Handler) HandleListConfigs(c *fiber.Ctx) error {
	out, err := h.service.ListConfigs(c.Context())
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

// HandleGetConfig returns one configuration.
// @Summary Get Match Config
// @Tags match-configs
// @Produce json
// @Param id path int true "Config ID"
// @Success 200 {object} matching.ConfigView
// @Failure 404 {object} map[string]string
// @Router /match-configs/{id} [get]
func (h *Handler) HandleGetConfig(c *fiber.Ctx) error {
	id, err := pathID(c, "match config")
	if err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.GetConfig(c.Context(), id)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleCreateConfig stores a configuration.
// @Summary Create Match Config
// @Tags match-configs
// @Accept json
// @Produce json
// @Param config body matching.ConfigInput true "Configuration"
// @Success 201 {object} matching.ConfigView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /match-configs [post]
func (h *Handler) HandleCreateConfig(c *fiber.Ctx) error {
	var in ConfigInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.CreateConfig(c.Context(), in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// HandleUpdateConfig renames a configuration or replaces its rules.
// @Summary Update Match Config
// @Tags match-configs
// @Accept json
// @Produce json
// @Param id path int true "Config ID"
// @Param config body matching.ConfigUpdate true "Changes"
// @Success 200 {object} matching.ConfigView
// @Failure 404 {object} map[string]string
// @Router /match-configs/{id} [put]
func (h *Handler) HandleUpdateConfig(c *fiber.Ctx) error {
	id, err := pathID(c, "match config")
	if err != nil {
		return server.Fail(c, err)
	}
	var in ConfigUpdate
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.UpdateConfig(c.Context(), id, in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleDeleteConfig deletes a configuration with its rules and results.
// @Summary Delete Match Config
// @Tags match-configs
// @Param id path int true "Config ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /match-configs/{id} [delete]
func (h *Handler) HandleDeleteConfig(c *fiber.Ctx) error {
	id, err := pathID(c, "match config")
	if err != nil {
		return server.Fail(c, err)
	}
	if err := h.service.DeleteConfig(c.Context(), id); err != nil {
		return server.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleExecute runs a saved configuration.
// @Summary Execute Match
// @Description Matches the source table against the target table of a saved configuration and stores the result.
// @Tags matching
// @Accept json
// @Produce json
// @Param request body matching.ExecuteInput true "Config to run"
// @Success 200 {object} matching.ResultView
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matching/execute [post]
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	var in ExecuteInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Executing match", zap.Uint("config_id", in.ConfigID))

	v, err := h.service.Execute(c.Context(), in.ConfigID)
	if err != nil {
		l.Error("Match failed", zap.Uint("config_id", in.ConfigID), zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleListResults lists results newest first.
// @Summary List Match Results
// @Tags matching
// @Produce json
// @Param config_id query int false "Only results of this config"
// @Param limit query int false "1-100, default 10"
// @Success 200 {array} matching.ResultView
// @Failure 400 {object} map[string]string
// @Router /matching/results [get]
func (h *Handler) HandleListResults(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", DefaultResultLimit)
	if limit < 1 || limit > MaxResultLimit {
		return server.Fail(c, server.Invalid("limit must be between 1 and %d", MaxResultLimit))
	}
	configID := c.QueryInt("config_id", 0)
	if configID < 0 {
		return server.Fail(c, server.Invalid("invalid config_id"))
	}
	out, err := h.service.ListResults(c.Context(), uint(configID), limit)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

// HandleGetResult returns one result.
// @Summary Get Match Result
// @Tags matching
// @Produce json
// @Param id path int true "Result ID"
// @Success 200 {object} matching.ResultView
// @Failure 404 {object} map[string]string
// @Router /matching/results/{id} [get]
func (h *Handler) HandleGetResult(c *fiber.Ctx) error {
	id, err := pathID(c, "match result")
	if err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.GetResult(c.Context(), id)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleDeleteResult deletes one result.
// @Summary Delete Match Result
// @Tags matching
// @Param id path int true "Result ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /matching/results/{id} [delete]
func (h *Handler) HandleDeleteResult(c *fiber.Ctx) error {
	id, err := pathID(c, "match result")
	if err != nil {
		return server.Fail(c, err)
	}
	if err := h.service.DeleteResult(c.Context(), id); err != nil {
		return server.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
