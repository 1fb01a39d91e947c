package imports

import (
	"io"
	"strconv"

	"didp/core/logger"
	"didp/core/server"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for file imports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/imports")
	group.Post("/upload", h.HandleUpload)
	group.Post("/preview", h.HandlePreview)
	group.Post("/confirm", h.HandleConfirm)
	group.Post("/batch", h.HandleBatch)
	group.Delete("/:file_id", h.HandleCleanup)
}

// hasHeaders reads the has_headers form field, defaulting to true.
func hasHeaders(c *fiber.Ctx) (bool, error) {
	raw := c.FormValue("has_headers")
	if raw == "" {
		return true, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, server.Invalid("has_headers must be a boolean")
	}
	return v, nil
}

// HandleUpload stages a spreadsheet and returns a preview.
// @Summary Upload File
// @Description Stage an xlsx or csv file and preview its first sheet.
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Spreadsheet"
// @Success 200 {object} imports.UploadResult
// @Failure 400 {object} map[string]string
// @Router /imports/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return server.Fail(c, server.Invalid("no file provided"))
	}
	f, err := fh.Open()
	if err != nil {
		return server.Fail(c, server.Invalid("cannot open upload: %v", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return server.Fail(c, server.Invalid("cannot read upload: %v", err))
	}

	res, err := h.service.Upload(c.Context(), fh.Filename, data)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Upload rejected", zap.String("filename", fh.Filename), zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(res)
}

// HandlePreview previews one sheet of a staged upload.
// @Summary Preview Sheet
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file_id formData string true "Upload id"
// @Param sheet_name formData string false "Sheet"
// @Param has_headers formData bool false "First row holds headers (default true)"
// @Success 200 {object} imports.PreviewResult
// @Failure 400 {object} map[string]string
// @Router /imports/preview [post]
func (h *Handler) HandlePreview(c *fiber.Ctx) error {
	fileID := c.FormValue("file_id")
	if fileID == "" {
		return server.Fail(c, server.Invalid("file_id is required"))
	}
	headers, err := hasHeaders(c)
	if err != nil {
		return server.Fail(c, err)
	}

	res, err := h.service.Preview(c.Context(), fileID, c.FormValue("sheet_name"), headers)
	if err != nil {
		return server.Fail(c, err)
	}
	return c.JSON(res)
}

// HandleConfirm imports one sheet as a table.
// @Summary Confirm Import
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file_id formData string true "Upload id"
// @Param table_key formData string true "Table key"
// @Param table_name formData string true "Table name"
// @Param sheet_name formData string false "Sheet"
// @Param has_headers formData bool false "First row holds headers (default true)"
// @Param category formData string false "Category"
// @Success 200 {object} tables.Detail
// @Failure 400 {object} map[string]string
// @Router /imports/confirm [post]
func (h *Handler) HandleConfirm(c *fiber.Ctx) error {
	in := ConfirmInput{
		FileID:    c.FormValue("file_id"),
		TableKey:  c.FormValue("table_key"),
		TableName: c.FormValue("table_name"),
		SheetName: c.FormValue("sheet_name"),
	}
	if cat := c.FormValue("category"); cat != "" {
		in.Category = &cat
	}
	var err error
	if in.HasHeaders, err = hasHeaders(c); err != nil {
		return server.Fail(c, err)
	}
	if err := server.Validate(&in); err != nil {
		return server.Fail(c, err)
	}

	d, err := h.service.Confirm(c.Context(), in)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Import failed", zap.String("file_id", in.FileID), zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(d)
}

// HandleBatch imports several sheets of one upload.
// @Summary Batch Import
// @Tags imports
// @Accept json
// @Produce json
// @Param batch body imports.BatchInput true "Sheets to import"
// @Success 200 {array} tables.Detail
// @Failure 400 {object} map[string]string
// @Router /imports/batch [post]
func (h *Handler) HandleBatch(c *fiber.Ctx) error {
	var in BatchInput
	if err := server.Bind(c, &in); err != nil {
		return server.Fail(c, err)
	}

	out, err := h.service.Batch(c.Context(), in)
	if err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Batch import stopped",
			zap.String("file_id", in.FileID), zap.Int("imported", len(out)), zap.Error(err))
		return server.Fail(c, err)
	}
	return c.JSON(out)
}

// HandleCleanup discards a staged upload.
// @Summary Discard Upload
// @Tags imports
// @Param file_id path string true "Upload id"
// @Success 200 {object} map[string]string
// @Router /imports/{file_id} [delete]
func (h *Handler) HandleCleanup(c *fiber.Ctx) error {
	h.service.Cleanup(c.Params("file_id"))
	return c.JSON(fiber.Map{"message": "File cleaned up"})
}
