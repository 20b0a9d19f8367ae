package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/chouhyo/internal/application/dto"
	"github.com/jhoicas/chouhyo/internal/infrastructure/postal"
)

// AddressLookup puerto de búsqueda de direcciones.
type AddressLookup interface {
	Lookup(ctx context.Context, zip string) (string, error)
}

// PostalHandler búsqueda de dirección por código postal.
type PostalHandler struct {
	lookup AddressLookup
}

// NewPostalHandler construye el handler.
func NewPostalHandler(lookup AddressLookup) *PostalHandler {
	return &PostalHandler{lookup: lookup}
}

// Lookup devuelve la dirección del código (acepta "100-0001" o dígitos de ancho completo).
// GET /api/postal/:code
func (h *PostalHandler) Lookup(c *fiber.Ctx) error {
	zip, err := postal.NormalizeZip(c.Params("code"))
	if err != nil {
		return writeError(c, err)
	}
	addr, err := h.lookup.Lookup(c.UserContext(), zip)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PostalResponse{Zip: zip, Address: addr})
}
