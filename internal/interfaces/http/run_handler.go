package http

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/demo-data-assistant/internal/application/dto"
	"github.com/jhoicas/demo-data-assistant/internal/application/usecase"
	"github.com/jhoicas/demo-data-assistant/internal/domain"
	"github.com/jhoicas/demo-data-assistant/internal/infrastructure/report"
)

// RunHandler maneja las corridas de generación de datos demo.
type RunHandler struct {
	uc *usecase.DemoDataUseCase
}

// NewRunHandler construye el handler.
func NewRunHandler(uc *usecase.DemoDataUseCase) *RunHandler {
	return &RunHandler{uc: uc}
}

// validationResponse 400 con el detalle por campo.
type validationResponse struct {
	dto.ErrorResponse
	Fields map[string]string `json:"fields,omitempty"`
}

// Create lanza una corrida y responde al terminar.
// 201 si terminó bien; ante fallo fatal la respuesta lleva igualmente la corrida con
// sus errores acumulados (502 ERP caído, 503 generador sin datos, 500 otros).
func (h *RunHandler) Create(c *fiber.Ctx) error {
	var req dto.RunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo de la petición inválido"})
	}

	out, err := h.uc.Execute(c.UserContext(), req)
	if err == nil {
		return c.Status(fiber.StatusCreated).JSON(out)
	}

	var ve *usecase.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(validationResponse{
			ErrorResponse: dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()},
			Fields:        ve.Fields,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case out == nil:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	case errors.Is(err, domain.ErrTransport):
		return c.Status(fiber.StatusBadGateway).JSON(out)
	case errors.Is(err, domain.ErrGeneratorUnavailable), errors.Is(err, domain.ErrGeneratorTimeout):
		return c.Status(fiber.StatusServiceUnavailable).JSON(out)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(out)
}

// GetByID devuelve una corrida del historial.
func (h *RunHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetRun(c.UserContext(), c.Params("id"))
	if err != nil {
		return lookupError(c, err)
	}
	return c.JSON(out)
}

// Report descarga la corrida como XLSX.
func (h *RunHandler) Report(c *fiber.Ctx) error {
	out, err := h.uc.GetRun(c.UserContext(), c.Params("id"))
	if err != nil {
		return lookupError(c, err)
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, out); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Attachment("corrida-" + out.ID + ".xlsx")
	c.Set(fiber.HeaderContentType, report.ContentType)
	return c.Send(buf.Bytes())
}

// List historial paginado (?limit=&offset=).
func (h *RunHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.ListRuns(c.UserContext(), page)
	if err != nil {
		return lookupError(c, err)
	}
	return c.JSON(out)
}

// Modules módulos soportados en el orden del pipeline.
func (h *RunHandler) Modules(c *fiber.Ctx) error {
	return c.JSON(h.uc.Modules())
}

func lookupError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "corrida no encontrada"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
