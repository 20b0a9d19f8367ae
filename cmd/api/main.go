package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/application/share"
	"github.com/jhoicas/chouhyo/internal/infrastructure/csvexport"
	infrapdf "github.com/jhoicas/chouhyo/internal/infrastructure/pdf"
	"github.com/jhoicas/chouhyo/internal/infrastructure/postal"
	"github.com/jhoicas/chouhyo/internal/infrastructure/xlsx"
	httpRouter "github.com/jhoicas/chouhyo/internal/interfaces/http"
	"github.com/jhoicas/chouhyo/pkg/config"
	"github.com/jhoicas/chouhyo/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	// PDF con fuente japonesa si está configurada (PDF_FONT_PATH)
	pdfGenerator, err := infrapdf.NewMarotoPDFGenerator(infrapdf.Options{
		FontPath:     cfg.PDF.FontPath,
		FontBoldPath: cfg.PDF.FontBoldPath,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("cargar fuentes PDF")
	}
	if cfg.PDF.FontPath == "" {
		log.Warn().Msg("PDF_FONT_PATH vacío: los PDF usan la fuente estándar sin glifos japoneses")
	}

	codec := share.NewCodec(time.Now)
	renderUC := document.NewRenderUseCase(
		pdfGenerator,
		xlsx.NewExcelRenderer(),
		csvexport.NewShiftJISRenderer(),
		log.WithComponent("render"),
	)
	postalClient := postal.NewZipCloudClient(cfg.Postal.BaseURL, cfg.Postal.Timeout, log.WithComponent("postal"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    1 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Chouhyo API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName:  cfg.App.Name,
		Codec:        codec,
		Render:       renderUC,
		Lookup:       postalClient,
		ShareBaseURL: cfg.Share.BaseURL,
		Logger:       log.WithComponent("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
