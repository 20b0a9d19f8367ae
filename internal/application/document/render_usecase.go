package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/pkg/logger"
)

// Format formato de salida.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var contentTypes = map[Format]string{
	FormatPDF:  "application/pdf",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatCSV:  "text/csv; charset=Shift_JIS",
}

// ParseFormat acepta la extensión con o sin punto ("pdf", ".xlsx").
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: formato %q", domain.ErrInvalidInput, s)
	}
	return f, nil
}

// ContentType tipo MIME del formato.
func (f Format) ContentType() string { return contentTypes[f] }

// Renderer convierte una vista ya calculada en bytes.
type Renderer interface {
	Render(ctx context.Context, v View) ([]byte, error)
}

// Output fichero generado.
type Output struct {
	Data        []byte
	Filename    string
	ContentType string
}

// RenderUseCase genera la salida de un documento en el formato pedido.
type RenderUseCase struct {
	renderers map[Format]Renderer
	log       *logger.Logger
}

// NewRenderUseCase construye el caso de uso. Un renderizador nil deja el formato sin soporte.
func NewRenderUseCase(pdf, xlsx, csv Renderer, log *logger.Logger) *RenderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	uc := &RenderUseCase{renderers: make(map[Format]Renderer), log: log.WithComponent("render")}
	for f, r := range map[Format]Renderer{FormatPDF: pdf, FormatXLSX: xlsx, FormatCSV: csv} {
		if r != nil {
			uc.renderers[f] = r
		}
	}
	return uc
}

// Supports indica si hay renderizador para el formato.
func (uc *RenderUseCase) Supports(f Format) bool {
	_, ok := uc.renderers[f]
	return ok
}

// Render valida el documento, construye la vista y la pasa al renderizador.
//
// Retorna:
//   - domain.ErrInvalidInput          si el documento no supera la validación.
//   - domain.ErrUnsupportedOperation  si no hay renderizador para el formato.
func (uc *RenderUseCase) Render(ctx context.Context, doc entity.Document, f Format) (Output, error) {
	// ── 1. Validar ────────────────────────────────────────────────────────────
	if err := doc.Validate(); err != nil {
		return Output{}, err
	}
	r, ok := uc.renderers[f]
	if !ok {
		return Output{}, fmt.Errorf("document: formato %q: %w", f, domain.ErrUnsupportedOperation)
	}

	// ── 2. Vista ──────────────────────────────────────────────────────────────
	view, err := BuildView(doc)
	if err != nil {
		return Output{}, err
	}
	for _, w := range view.Warnings {
		uc.log.Debug().Str("type", string(view.Type)).Str("warning", w).Msg("aviso de impresión")
	}

	// ── 3. Generar ────────────────────────────────────────────────────────────
	data, err := r.Render(ctx, view)
	if err != nil {
		return Output{}, fmt.Errorf("document: generación %s fallida: %w", f, err)
	}
	uc.log.Info().Str("type", string(view.Type)).Str("format", string(f)).Int("bytes", len(data)).Msg("documento generado")

	return Output{Data: data, Filename: Filename(view, f), ContentType: f.ContentType()}, nil
}

// Filename "<título>_<número>.<ext>", sin caracteres problemáticos en nombres de fichero.
func Filename(v View, f Format) string {
	number := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '　':
			return '_'
		}
		return r
	}, strings.TrimSpace(v.Number.Value))
	if number == "" {
		return fmt.Sprintf("%s.%s", v.Title, f)
	}
	return fmt.Sprintf("%s_%s.%s", v.Title, number, f)
}
