package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/application/dto"
	"github.com/jhoicas/chouhyo/internal/application/share"
	"github.com/jhoicas/chouhyo/pkg/logger"
)

// RouterDeps dependencias para el router. Lookup es opcional: sin él no se registra /api/postal.
type RouterDeps struct {
	ServiceName  string
	Codec        *share.Codec
	Render       *document.RenderUseCase
	Lookup       AddressLookup
	ShareBaseURL string
	Logger       *logger.Logger
}

// Router registra las rutas de la API. Todas son sin estado: el documento viaja en el cuerpo.
func Router(app *fiber.App, deps RouterDeps) {
	v := validator.New(validator.WithRequiredStructEnabled())
	app.Use(RequestMiddleware(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.ServiceName})
	})

	api := app.Group("/api")

	// Registro de tipos y cálculos
	docHandler := NewDocumentHandler(deps.Codec, deps.Render, v)
	api.Get("/document-types", docHandler.Types)
	docs := api.Group("/documents")
	docs.Post("/totals", docHandler.Totals)
	docs.Post("/due-date", docHandler.DueDate)
	docs.Post("/transition", docHandler.Transition)
	docs.Post("/preview", docHandler.Preview)
	for _, f := range []document.Format{document.FormatPDF, document.FormatXLSX, document.FormatCSV} {
		if deps.Render.Supports(f) {
			docs.Post("/"+string(f), docHandler.Render(f))
		}
	}

	// Enlaces compartidos
	shareHandler := NewShareHandler(deps.Codec, deps.ShareBaseURL, v)
	sh := api.Group("/share")
	sh.Post("/encode", shareHandler.Encode)
	sh.Post("/decode", shareHandler.Decode)

	// Códigos postales
	if deps.Lookup != nil {
		postalHandler := NewPostalHandler(deps.Lookup)
		api.Get("/postal/:code", postalHandler.Lookup)
	}
}
