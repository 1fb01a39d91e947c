package processes

import (
	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for saved processes and chains.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the process routes. Chain routes come first so
// "chains" is never read as a process id.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	g := app.Group("/processes")

	g.Get("/chains", h.HandleListChains)
	g.Post("/chains", h.HandleCreateChain)
	g.Get("/chains/:id", h.HandleGetChain)
	g.Put("/chains/:id", h.HandleUpdateChain)
	g.Delete("/chains/:id", h.HandleDeleteChain)
	g.Post("/chains/:id/run", h.HandleRunChain)

	g.Get("/", h.HandleList)
	g.Post("/", h.HandleCreate)
	g.Get("/:id", h.HandleGet)
	g.Put("/:id", h.HandleUpdate)
	g.Delete("/:id", h.HandleDelete)
	g.Post("/:id/run", h.HandleRun)
}

func pathID(c *fiber.Ctx, what string) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, server.Invalid("invalid %s id %q", what, c.Params("id"))
	}
	return uint(id), nil
}

// HandleList lists saved processes.
// @Summary List Processes
// @Tags processes
// @Produce json
// @Success 200 {array} processes.ProcessView
// @Router /processes [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	out, err := h.service.List(c.Context())
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

// HandleGet returns one saved process.
// @Summary Get Process
// @Tags processes
// @Produce json
// @Param id path int true "Process ID"
// @Success 200 {object} processes.ProcessView
// @Failure 404 {object} map[string]string
// @Router /processes/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id, err := pathID(c, "process")
	if err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.Get(c.Context(), id)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleCreate saves a process.
// @Summary Create Process
// @Tags processes
// @Accept json
// @Produce json
// @Param process body processes.ProcessInput true "Process"
// @Success 201 {object} processes.ProcessView
// @Failure 400 {object} map[string]string
// @Router /processes [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in ProcessInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.Create(c.Context(), in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// HandleUpdate changes a saved process.
// @Summary Update Process
// @Tags processes
// @Accept json
// @Produce json
// @Param id path int true "Process ID"
// @Param process body processes.ProcessUpdate true "Changes"
// @Success 200 {object} processes.ProcessView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /processes/{id} [put]
func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	id, err := pathID(c, "process")
	if err != nil {
		return server.Fail(c, err)
	}
	var in ProcessUpdate
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.Update(c.Context(), id, in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleDelete deletes a saved process.
// @Summary Delete Process
// @Tags processes
// @Param id path int true "Process ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /processes/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	id, err := pathID(c, "process")
	if err != nil {
		return server.Fail(c, err)
	}
	if err := h.service.Delete(c.Context(), id); err != nil {
		return server.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRun runs a saved process.
// @Summary Run Process
// @Tags processes
// @Produce json
// @Param id path int true "Process ID"
// @Success 200 {object} processes.RunReport
// @Failure 404 {object} map[string]string
// @Router /processes/{id}/run [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	id, err := pathID(c, "process")
	if err != nil {
		return server.Fail(c, err)
	}
	logger.WithRayID(h.service.logger, c).Info("Running process", zap.Uint("process_id", id))
	rep, err := h.service.Run(c.UserContext(), id)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(rep)
}

// HandleListChains lists chains.
// @Summary List Process Chains
// @Tags processes
// @Produce json
// @Success 200 {array} processes.ChainView
// @Router /processes/chains [get]
func (h *Handler) HandleListChains(c *fiber.Ctx) error {
	out, err := h.service.ListChains(c.Context())
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

// HandleGetChain returns one chain.
// @Summary Get Process Chain
// @Tags processes
// @Produce json
// @Param id path int true "Chain ID"
// @Success 200 {object} processes.ChainView
// @Failure 404 {object} map[string]string
// @Router /processes/chains/{id} [get]
func (h *Handler) HandleGetChain(c *fiber.Ctx) error {
	id, err := pathID(c, "process chain")
	if err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.GetChain(c.Context(), id)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleCreateChain saves a chain.
// @Summary Create Process Chain
// @Tags processes
// @Accept json
// @Produce json
// @Param chain body processes.ChainInput true "Chain"
// @Success 201 {object} processes.ChainView
// @Failure 400 {object} map[string]string
// @Router /processes/chains [post]
func (h *Handler) HandleCreateChain(c *fiber.Ctx) error {
	var in ChainInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.CreateChain(c.Context(), in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

// HandleUpdateChain renames a chain or replaces its steps.
// @Summary Update Process Chain
// @Tags processes
// @Accept json
// @Produce json
// @Param id path int true "Chain ID"
// @Param chain body processes.ChainUpdate true "Changes"
// @Success 200 {object} processes.ChainView
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /processes/chains/{id} [put]
func (h *Handler) HandleUpdateChain(c *fiber.Ctx) error {
	id, err := pathID(c, "process chain")
	if err != nil {
		return server.Fail(c, err)
	}
	var in ChainUpdate
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	v, err := h.service.UpdateChain(c.Context(), id, in)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(v)
}

// HandleDeleteChain deletes a chain with its steps.
// @Summary Delete Process Chain
// @Tags processes
// @Param id path int true "Chain ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /processes/chains/{id} [delete]
func (h *Handler) HandleDeleteChain(c *fiber.Ctx) error {
	id, err := pathID(c, "process chain")
	if err != nil {
		return server.Fail(c, err)
	}
	if err := h.service.DeleteChain(c.Context(), id); err != nil {
		return server.Fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleRunChain runs a chain step by step.
// @Summary Run Process Chain
// @Description Runs the steps in order and stops at the first failing step.
// @Tags processes
// @Produce json
// @Param id path int true "Chain ID"
// @Success 200 {object} processes.RunReport
// @Failure 404 {object} map[string]string
// @Router /processes/chains/{id}/run [post]
func (h *Handler) HandleRunChain(c *fiber.Ctx) error {
	id, err := pathID(c, "process chain")
	if err != nil {
		return server.Fail(c, err)
	}
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Running process chain", zap.Uint("chain_id", id))

	rep, err := h.service.RunChain(c.UserContext(), id)
	if err != nil {
		l.Error("Process chain failed to start", zap.Uint("chain_id", id), zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(rep)
}
