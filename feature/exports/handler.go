package exports

import (
	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ObjectKeyHeader carries the archive key of an archived export.
const ObjectKeyHeader = "X-Archive-Key"

// Handler handles HTTP requests for exports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/exports")
	group.Post("/excel", h.HandleTables)
	group.Post("/csv/:table_key", h.HandleCSV)
	group.Post("/match-results/:id", h.HandleMatchResult)
	group.Post("/sql-results", h.HandleSQLResults)
	group.Post("/comparison", h.HandleComparison)
}

func send(c *fiber.Ctx, f *File) error {
	c.Set(fiber.HeaderContentType, f.ContentType)
	c.Attachment(f.Name)
	if f.ObjectKey != "" {
		c.Set(ObjectKeyHeader, f.ObjectKey)
	}
	return c.Send(f.Data)
}

// HandleTables exports tables to a workbook.
// @Summary Export Tables
// @Tags exports
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body exports.TablesInput true "Tables"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /exports/excel [post]
func (h *Handler) HandleTables(c *fiber.Ctx) error {
	var in TablesInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	f, err := h.service.Tables(c.Context(), in)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Table export failed", zap.Error(err))
		return server.Fail(c, err)
	}
	return send(c, f)
}

// HandleCSV exports one table as CSV.
// @Summary Export CSV
// @Tags exports
// @Produce text/csv
// @Param table_key path string true "Table key"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /exports/csv/{table_key} [post]
func (h *Handler) HandleCSV(c *fiber.Ctx) error {
	f, err := h.service.CSV(c.Context(), c.Params("table_key"))
	if err != nil {
		return server.Fail(c, err)
	}
	return send(c, f)
}

// HandleMatchResult exports a match result workbook.
// @Summary Export Match Result
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Result ID"
// @Param include_matched query bool false "Include matched pairs (default true)"
// @Param include_unmatched query bool false "Include unmatched rows (default true)"
// @Param archive query bool false "Also store the file in object storage"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Router /exports/match-results/{id} [post]
func (h *Handler) HandleMatchResult(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return server.Fail(c, server.Invalid("invalid result id"))
	}
	f, err := h.service.MatchResult(c.Context(), uint(id), MatchResultOptions{
		IncludeMatched:   c.QueryBool("include_matched", true),
		IncludeUnmatched: c.QueryBool("include_unmatched", true),
		Archive:          c.QueryBool("archive", false),
	})
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Match result export failed", zap.Int("result_id", id), zap.Error(err))
		return server.Fail(c, err)
	}
	return send(c, f)
}

// HandleSQLResults exports a query result.
// @Summary Export SQL Results
// @Tags exports
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body exports.SQLResultsInput true "Query result"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /exports/sql-results [post]
func (h *Handler) HandleSQLResults(c *fiber.Ctx) error {
	var in SQLResultsInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	f, err := h.service.SQLResults(in)
	if err != nil {
		return server.Fail(c, err)
	}
	return send(c, f)
}

// HandleComparison exports comparison rows.
// @Summary Export Comparison
// @Tags exports
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body exports.ComparisonInput true "Rows"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Router /exports/comparison [post]
func (h *Handler) HandleComparison(c *fiber.Ctx) error {
	var in ComparisonInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}
	f, err := h.service.Comparison(in)
	if err != nil {
		return server.Fail(c, err)
	}
	return send(c, f)
}
