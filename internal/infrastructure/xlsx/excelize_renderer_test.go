package xlsx_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/internal/infrastructure/xlsx"
)

func TestExcelRenderer_LineasYTotales(t *testing.T) {
	doc := entity.Document{
		Number:    "INV-202501-001",
		IssueDate: entity.MustParseDate("2025-01-15"),
		Issuer:    entity.Issuer{Name: "株式会社サンプル"},
		Client:    entity.Client{Name: "取引先株式会社"},
		Items: []entity.Item{
			{Name: "デザイン", Qty: 1, Unit: "式", UnitPrice: 300000, TaxRate: entity.TaxRateStandard},
			{Name: "お菓子", Qty: 3, Unit: "個", UnitPrice: 333, TaxRate: entity.TaxRateReduced},
		},
		Details: entity.InvoiceDetails{Payment: entity.PaymentTerms{Preset: entity.PaymentNet30}},
	}
	v, err := document.BuildView(doc)
	require.NoError(t, err)

	out, err := xlsx.NewExcelRenderer().Render(context.Background(), v)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	get := func(cell string) string {
		s, err := f.GetCellValue(xlsx.SheetName, cell, raw)
		require.NoError(t, err)
		return s
	}

	assert.Equal(t, "請求書", get("A1"))
	assert.Equal(t, "取引先株式会社", get("C3"))
	assert.Equal(t, "品名", get("C6"))
	assert.Equal(t, "デザイン", get("C7"))
	assert.Equal(t, "300000", get("I7"))
	assert.Equal(t, "お菓子", get("C8"))
	assert.Equal(t, "3", get("E8"))
	assert.Equal(t, "79", get("J8"))

	// Totales dos filas por debajo de la última línea.
	assert.Equal(t, "小計", get("H10"))
	assert.Equal(t, "300999", get("I10"))
	assert.Equal(t, "331078", get("I12"))
}

func TestExcelRenderer_ContextoCancelado(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := xlsx.NewExcelRenderer().Render(ctx, document.View{})
	assert.ErrorIs(t, err, context.Canceled)
}
