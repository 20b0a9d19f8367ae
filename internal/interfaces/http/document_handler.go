package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/application/dto"
	"github.com/jhoicas/chouhyo/internal/application/share"
	"github.com/jhoicas/chouhyo/internal/domain/doctype"
	"github.com/jhoicas/chouhyo/internal/domain/duedate"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/internal/domain/totals"
	"github.com/jhoicas/chouhyo/internal/domain/transition"
)

// DocumentHandler cálculos sin estado sobre documentos y generación de ficheros.
type DocumentHandler struct {
	codec    *share.Codec
	render   *document.RenderUseCase
	validate *validator.Validate
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(codec *share.Codec, render *document.RenderUseCase, v *validator.Validate) *DocumentHandler {
	return &DocumentHandler{codec: codec, render: render, validate: v}
}

// Types lista el registro de tipos en el orden del flujo de trabajo.
// GET /api/document-types
func (h *DocumentHandler) Types(c *fiber.Ctx) error {
	return c.JSON(doctype.All())
}

// Totals calcula subtotal, impuesto y total por tasa.
// POST /api/documents/totals
func (h *DocumentHandler) Totals(c *fiber.Ctx) error {
	var in dto.TotalsRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	return c.JSON(dto.NewTotalsResponse(totals.Calculate(in.Items)))
}

// DueDate resuelve el vencimiento a partir de la fecha de emisión y la condición de pago.
// POST /api/documents/due-date
func (h *DocumentHandler) DueDate(c *fiber.Ctx) error {
	var in dto.DueDateRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	issue, err := entity.ParseDate(in.IssueDate)
	if err != nil {
		return invalidBody(c)
	}

	var (
		due   entity.Date
		found bool
		out   dto.DueDateResponse
	)
	if in.OrderPayment != nil {
		due, found = duedate.ResolveOrder(issue, *in.OrderPayment)
		out.Label = document.OrderPaymentText(*in.OrderPayment)
	} else {
		due, found = duedate.Resolve(issue, in.Preset)
		out.Label = duedate.Label(in.Preset)
	}
	out.Computable = found
	if found {
		out.DueDate = due.String()
	}
	return c.JSON(out)
}

// Transition convierte el documento a otro tipo aplicando las reglas de conservación.
// POST /api/documents/transition
func (h *DocumentHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	to, err := entity.ParseDocumentType(in.To)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.codec.DecodeJSON(in.Document)
	if err != nil {
		return writeError(c, err)
	}
	next, err := transition.Apply(*doc, to, in.Profile)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(next)
}

// Preview devuelve la vista imprimible calculada.
// POST /api/documents/preview
func (h *DocumentHandler) Preview(c *fiber.Ctx) error {
	var in dto.DocumentRequest
	if ok, err := parseBody(c, h.validate, &in); !ok {
		return err
	}
	doc, err := h.codec.DecodeJSON(in.Document)
	if err != nil {
		return writeError(c, err)
	}
	view, err := document.BuildView(*doc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}

// Render genera el fichero en el formato f como descarga.
// POST /api/documents/pdf | /xlsx | /csv
func (h *DocumentHandler) Render(f document.Format) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.DocumentRequest
		if ok, err := parseBody(c, h.validate, &in); !ok {
			return err
		}
		doc, err := h.codec.DecodeJSON(in.Document)
		if err != nil {
			return writeError(c, err)
		}
		out, err := h.render.Render(c.UserContext(), *doc, f)
		if err != nil {
			return writeError(c, err)
		}
		c.Attachment(out.Filename)
		c.Set(fiber.HeaderContentType, out.ContentType)
		return c.Send(out.Data)
	}
}
