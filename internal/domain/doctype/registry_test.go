package doctype_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/doctype"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

var today = time.Date(2025, time.January, 15, 10, 30, 0, 0, time.UTC)

func TestAll_CubreLosCincoTipos(t *testing.T) {
	entries := doctype.All()
	require.Len(t, entries, 5)
	for _, e := range entries {
		assert.NotEmpty(t, e.Label, "cada tipo debe tener etiqueta")
		assert.NotEmpty(t, e.DefaultMemo, "cada tipo debe tener memo por defecto")
		assert.NotEmpty(t, e.NumberPrefix)
	}
}

func TestLookup_TipoDesconocido(t *testing.T) {
	_, err := doctype.Lookup("deliveryNote")
	assert.True(t, errors.Is(err, domain.ErrUnknownDocumentType))
}

func mustLookup(t *testing.T, typ entity.DocumentType) doctype.Entry {
	t.Helper()
	e, err := doctype.Lookup(typ)
	require.NoError(t, err)
	return e
}

func TestVisibilidad(t *testing.T) {
	inv := mustLookup(t, entity.TypeInvoice)
	assert.True(t, inv.Shows(doctype.FieldBank))
	assert.True(t, inv.Shows(doctype.FieldDueDate))
	assert.True(t, inv.Requires(doctype.FieldDueDate), "la factura exige vencimiento para imprimir")

	po := mustLookup(t, entity.TypePurchaseOrder)
	assert.False(t, po.Shows(doctype.FieldBank), "el banco solo aparece en presupuesto y factura")
	assert.True(t, po.Shows(doctype.FieldOrderTerms))

	rcp := mustLookup(t, entity.TypeReceipt)
	assert.False(t, rcp.Shows(doctype.FieldDueDate))
	assert.False(t, rcp.Requires(doctype.FieldDueDate))
}

func TestSelfRole(t *testing.T) {
	assert.Equal(t, doctype.RoleClient, doctype.SelfRole(entity.TypePurchaseOrder))
	for _, typ := range []entity.DocumentType{entity.TypeEstimate, entity.TypeInvoice, entity.TypeReceipt, entity.TypeOutsourcingContract} {
		assert.Equal(t, doctype.RoleIssuer, doctype.SelfRole(typ), string(typ))
	}
}

func TestNewDocument(t *testing.T) {
	doc, err := doctype.NewDocument(entity.TypeInvoice, today)
	require.NoError(t, err)

	assert.Equal(t, entity.TypeInvoice, doc.Type())
	assert.Equal(t, "INV-202501-001", doc.Number)
	assert.Equal(t, "2025-01-15", doc.IssueDate.String())
	assert.Equal(t, "2025-02-28", doc.DueDate.String(), "vencimiento calculado con el preset por defecto")
	assert.Equal(t, doctype.DefaultMemo(entity.TypeInvoice), doc.Memo)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, entity.NewItem(), doc.Items[0])
	require.NoError(t, doc.Validate())
}

func TestNewDocument_OrdenDeCompra(t *testing.T) {
	doc, err := doctype.NewDocument(entity.TypePurchaseOrder, today)
	require.NoError(t, err)
	assert.Equal(t, "PO-202501-001", doc.Number)
	assert.Equal(t, entity.PurchaseOrderDetails{Terms: entity.DefaultOrderTerms()}, doc.Details)
	assert.Equal(t, "2025-02-28", doc.DueDate.String())
}

func TestNewDocument_ReciboSinVencimiento(t *testing.T) {
	doc, err := doctype.NewDocument(entity.TypeReceipt, today)
	require.NoError(t, err)
	assert.True(t, doc.DueDate.IsZero())
}

func TestMissingRequired(t *testing.T) {
	doc, err := doctype.NewDocument(entity.TypeInvoice, today)
	require.NoError(t, err)
	doc.DueDate = entity.Date{}

	assert.Equal(t,
		[]doctype.Field{doctype.FieldIssuerName, doctype.FieldClientName, doctype.FieldDueDate},
		doctype.MissingRequired(doc))

	doc.Issuer.Name = "自社"
	doc.Client.Name = "取引先"
	doc.DueDate = entity.MustParseDate("2025-02-28")
	assert.Empty(t, doctype.MissingRequired(doc))
}
