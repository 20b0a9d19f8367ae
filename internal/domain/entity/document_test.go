package entity_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

func sampleInvoice() entity.Document {
	return entity.Document{
		Number:    "INV-202501-001",
		Subject:   "Webサイト制作",
		IssueDate: entity.MustParseDate("2025-01-15"),
		DueDate:   entity.MustParseDate("2025-02-28"),
		Memo:      "よろしくお願いいたします。",
		Issuer:    entity.Issuer{Name: "株式会社サンプル", Zip: "1000001", Tel: "03-0000-0000", RegNo: "T1234567890123"},
		Client:    entity.Client{Name: "取引先株式会社", Honorific: entity.HonorificOnchu},
		Items: []entity.Item{
			{Name: "デザイン", Qty: 1, Unit: "式", UnitPrice: 300000, TaxRate: entity.TaxRateStandard},
			{Name: "お菓子", Qty: 3, Unit: "個", UnitPrice: 333, TaxRate: entity.TaxRateReduced},
		},
		Bank:    &entity.Bank{Name: "みずほ銀行 本店", Type: entity.AccountTypeOrdinary, Number: "1234567", Holder: "カ）サンプル"},
		Details: entity.InvoiceDetails{Payment: entity.PaymentTerms{Preset: entity.PaymentEOMNextEOM}},
	}
}

// ── Fechas ────────────────────────────────────────────────────────────────────

func TestDate_EndOfMonth(t *testing.T) {
	cases := []struct {
		name   string
		from   string
		offset int
		want   string
	}{
		{"enero a fin de febrero", "2025-01-15", 1, "2025-02-28"},
		{"año bisiesto", "2024-01-31", 1, "2024-02-29"},
		{"cruce de año", "2024-12-10", 1, "2025-01-31"},
		{"dos meses", "2025-01-15", 2, "2025-03-31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := entity.MustParseDate(tc.from).EndOfMonth(tc.offset)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestDate_JSONVacia(t *testing.T) {
	var d entity.Date
	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())

	b, err := json.Marshal(entity.NewDate(2025, time.March, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-03-01"`, string(b))
}

// ── Clone ─────────────────────────────────────────────────────────────────────

func TestDocument_CloneNoComparteMemoria(t *testing.T) {
	doc := sampleInvoice()
	doc.Footer = &entity.FooterTerms{Enabled: true, Text: "特約"}
	cp := doc.Clone()

	cp.Items[0].Name = "cambiado"
	cp.Bank.Name = "cambiado"
	cp.Footer.Text = "cambiado"

	assert.Equal(t, "デザイン", doc.Items[0].Name, "las líneas no deben compartirse")
	assert.Equal(t, "みずほ銀行 本店", doc.Bank.Name)
	assert.Equal(t, "特約", doc.Footer.Text)
}

// ── JSON ──────────────────────────────────────────────────────────────────────

func TestDocument_JSONIdaYVuelta(t *testing.T) {
	doc := sampleInvoice()
	b, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "invoice", raw["type"])
	assert.Contains(t, raw, "payment")
	assert.NotContains(t, raw, "order_terms", "solo se emite la sección del tipo activo")

	var back entity.Document
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, doc, back)
}

func TestDocument_UnmarshalFusionaSobreValoresPrevios(t *testing.T) {
	doc := sampleInvoice()
	err := json.Unmarshal([]byte(`{"subject":"nuevo","issuer":{"tel":"06-1111-2222"},"unknown":1}`), &doc)
	require.NoError(t, err)

	assert.Equal(t, "nuevo", doc.Subject)
	assert.Equal(t, "06-1111-2222", doc.Issuer.Tel)
	assert.Equal(t, "株式会社サンプル", doc.Issuer.Name, "los campos ausentes se conservan")
	assert.Len(t, doc.Items, 2)
	assert.Equal(t, entity.TypeInvoice, doc.Type())
}

func TestDocument_UnmarshalLineaParteDeValoresPorDefecto(t *testing.T) {
	doc := sampleInvoice()
	require.NoError(t, json.Unmarshal([]byte(`{"items":[{"name":"作業"}]}`), &doc))

	require.Len(t, doc.Items, 1)
	assert.Equal(t, int64(1), doc.Items[0].Qty)
	assert.Equal(t, entity.DefaultUnit, doc.Items[0].Unit)
	assert.Equal(t, entity.TaxRateStandard, doc.Items[0].TaxRate)
}

func TestDocument_UnmarshalCambioDeTipo(t *testing.T) {
	doc := sampleInvoice()
	require.NoError(t, json.Unmarshal([]byte(`{"type":"receipt","receipt":{"purpose":"品代として","manual_purpose":true}}`), &doc))

	assert.Equal(t, entity.TypeReceipt, doc.Type())
	assert.Equal(t, entity.ReceiptDetails{Purpose: "品代として", ManualPurpose: true}, doc.Details)
}

func TestDocument_UnmarshalTipoDesconocido(t *testing.T) {
	var doc entity.Document
	err := json.Unmarshal([]byte(`{"type":"deliveryNote"}`), &doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownDocumentType))
}

func TestDocument_UnmarshalBancoNullLoElimina(t *testing.T) {
	doc := sampleInvoice()
	require.NoError(t, json.Unmarshal([]byte(`{"bank":null}`), &doc))
	assert.Nil(t, doc.Bank)
}

// ── Validación ────────────────────────────────────────────────────────────────

func TestDocument_Validate(t *testing.T) {
	doc := sampleInvoice()
	require.NoError(t, doc.Validate())

	cases := []struct {
		name  string
		patch func(*entity.Document)
	}{
		{"cantidad cero", func(d *entity.Document) { d.Items[0].Qty = 0 }},
		{"precio negativo", func(d *entity.Document) { d.Items[1].UnitPrice = -1 }},
		{"tasa no admitida", func(d *entity.Document) { d.Items[0].TaxRate = 5 }},
		{"sin tipo", func(d *entity.Document) { d.Details = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := sampleInvoice().Clone()
			tc.patch(&d)
			err := d.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		})
	}
}

func TestValidRegNo(t *testing.T) {
	assert.True(t, entity.ValidRegNo("T1234567890123"))
	assert.False(t, entity.ValidRegNo("1234567890123"))
	assert.False(t, entity.ValidRegNo("T123"))
}

func TestMergeIssuer(t *testing.T) {
	base := entity.Issuer{Name: "A", Tel: "03", RegNo: "T1234567890123"}
	got := entity.MergeIssuer(base, entity.Issuer{Name: "B", Address: "東京都"})
	assert.Equal(t, entity.Issuer{Name: "B", Address: "東京都", Tel: "03", RegNo: "T1234567890123"}, got)
}
