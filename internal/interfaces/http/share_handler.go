package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/chouhyo/internal/application/dto"
	"github.com/jhoicas/chouhyo/internal/application/share"
	"github.com/jhoicas/chouhyo/internal/domain"
)

// ShareHandler codifica y decodifica enlaces compartidos.
type ShareHandler struct {
	codec    *share.Codec
	baseURL  string
	validate *validator.Validate
}

// NewShareHandler construye el handler; baseURL se usa si la petición no trae uno.
func NewShareHandler(codec *share.Codec, baseURL string, v *validator.Validate) *ShareHandler {
	return &ShareHandler{codec: codec, baseURL: baseURL, validate: v}
}

// Encode devuelve el token y el enlace del documento.
// POST /api/share/encode
func (h *ShareHandler) Encode(c *fiber.Ctx) error {
	var in dto.ShareEncodeRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	doc, err := h.codec.DecodeJSON(in.Document)
	if err != nil {
		return writeError(c, err)
	}
	token, err := h.codec.Encode(*doc)
	if err != nil {
		return writeError(c, err)
	}
	base := in.BaseURL
	if base == "" {
		base = h.baseURL
	}
	link, err := h.codec.ShareURL(base, *doc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ShareEncodeResponse{Token: token, URL: link})
}

// Decode reconstruye el documento de un token o de un enlace completo.
// Un token dañado responde 422; el cliente sigue con su borrador.
// POST /api/share/decode
func (h *ShareHandler) Decode(c *fiber.Ctx) error {
	var in dto.ShareDecodeRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	token := in.Token
	if token == "" {
		t, ok := share.TokenFromURL(in.URL)
		if !ok {
			return writeError(c, domain.ErrInvalidShareToken)
		}
		token = t
	}
	doc, err := h.codec.Decode(token)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(doc)
}
