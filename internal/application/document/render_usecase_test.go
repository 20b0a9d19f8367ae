package document_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/domain"
)

type fakeRenderer struct {
	got  document.View
	err  error
	data []byte
}

func (f *fakeRenderer) Render(_ context.Context, v document.View) ([]byte, error) {
	f.got = v
	return f.data, f.err
}

func TestRender_GeneraConNombreDeFichero(t *testing.T) {
	pdf := &fakeRenderer{data: []byte("%PDF-1.4")}
	uc := document.NewRenderUseCase(pdf, nil, nil, nil)

	out, err := uc.Render(context.Background(), invoice(), document.FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4"), out.Data)
	assert.Equal(t, "請求書_INV-202501-001.pdf", out.Filename)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, "¥331,078", pdf.got.GrandTotal, "el renderizador recibe la vista calculada")
}

func TestRender_FormatoSinRenderizador(t *testing.T) {
	uc := document.NewRenderUseCase(&fakeRenderer{}, nil, nil, nil)
	assert.False(t, uc.Supports(document.FormatXLSX))

	_, err := uc.Render(context.Background(), invoice(), document.FormatXLSX)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedOperation))
}

func TestRender_DocumentoInválido(t *testing.T) {
	pdf := &fakeRenderer{}
	uc := document.NewRenderUseCase(pdf, nil, nil, nil)
	doc := invoice()
	doc.Items[0].Qty = 0

	_, err := uc.Render(context.Background(), doc, document.FormatPDF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Empty(t, pdf.got.Title, "no se llega a renderizar")
}

func TestRender_ErrorDelRenderizador(t *testing.T) {
	boom := errors.New("sin fuente")
	uc := document.NewRenderUseCase(&fakeRenderer{err: boom}, nil, nil, nil)

	_, err := uc.Render(context.Background(), invoice(), document.FormatPDF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestParseFormat(t *testing.T) {
	f, err := document.ParseFormat(".XLSX")
	require.NoError(t, err)
	assert.Equal(t, document.FormatXLSX, f)

	_, err = document.ParseFormat("docx")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestFilename_SustituyeCaracteres(t *testing.T) {
	v := document.View{Title: "見積書", Number: document.Labeled{Value: "QTE 2025/01"}}
	assert.Equal(t, "見積書_QTE_2025_01.csv", document.Filename(v, document.FormatCSV))

	v.Number.Value = ""
	assert.Equal(t, "見積書.csv", document.Filename(v, document.FormatCSV))
}
