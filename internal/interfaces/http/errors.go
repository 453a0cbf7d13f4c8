package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/domain"
)

// busyRetryAfter segundos sugeridos en Retry-After cuando el inventario está ocupado.
const busyRetryAfter = 1

type errorMapping struct {
	err    error
	status int
	code   string
}

// Orden relevante: el primer error que coincide con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY"},
	{domain.ErrUnknownReason, fiber.StatusBadRequest, "UNKNOWN_REASON"},
	{domain.ErrInvalidTransfer, fiber.StatusBadRequest, "INVALID_TRANSFER"},
	{domain.ErrMissingLocation, fiber.StatusBadRequest, "MISSING_LOCATION"},
	{domain.ErrInvalidKind, fiber.StatusBadRequest, "INVALID_KIND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrBusy, fiber.StatusServiceUnavailable, "BUSY"},
}

// writeError traduce errores de dominio a respuestas HTTP; lo no reconocido es 500.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if domain.IsRetryable(err) {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(busyRetryAfter))
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
