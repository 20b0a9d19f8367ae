package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/application/dto"
	"github.com/jhoicas/chouhyo/internal/application/share"
	"github.com/jhoicas/chouhyo/internal/domain"
	apphttp "github.com/jhoicas/chouhyo/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var fixedNow = func() time.Time { return time.Date(2025, time.January, 15, 9, 0, 0, 0, time.Local) }

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, v document.View) ([]byte, error) {
	return []byte("%PDF-" + v.Title), nil
}

type stubLookup map[string]string

func (s stubLookup) Lookup(_ context.Context, zip string) (string, error) {
	if addr, ok := s[zip]; ok {
		return addr, nil
	}
	return "", domain.ErrNotFound
}

// buildTestApp construye la aplicación con un renderizador PDF falso y búsqueda en memoria.
func buildTestApp() *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName:  "chouhyo-test",
		Codec:        share.NewCodec(fixedNow),
		Render:       document.NewRenderUseCase(stubRenderer{}, nil, nil, nil),
		Lookup:       stubLookup{"1000001": "東京都千代田区千代田"},
		ShareBaseURL: "https://chouhyo.app/app",
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func invoiceJSON() json.RawMessage {
	return json.RawMessage(`{
		"type": "invoice",
		"number": "INV-202501-001",
		"issue_date": "2025-01-15",
		"issuer": {"name": "自社株式会社"},
		"client": {"name": "取引先株式会社"},
		"items": [{"name": "デザイン", "qty": 1, "unit_price": 300000, "tax_rate": 10}]
	}`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodGet, "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(apphttp.HeaderRequestID))

	var body dto.HealthResponse
	decode(t, resp, &body)
	assert.Equal(t, "chouhyo-test", body.Service)
}

func TestDocumentTypes_OrdenDelFlujo(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodGet, "/api/document-types", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body []map[string]any
	decode(t, resp, &body)
	require.Len(t, body, 5)
	assert.Equal(t, "estimate", body[0]["type"])
	assert.Equal(t, "purchaseOrder", body[1]["type"])
	assert.Equal(t, "outsourcingContract", body[4]["type"])
}

func TestTotals(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/documents/totals", map[string]any{
		"items": []map[string]any{
			{"name": "A", "qty": 1, "unit_price": 1000, "tax_rate": 10},
			{"name": "B", "qty": 3, "unit_price": 333, "tax_rate": 8},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.TotalsResponse
	decode(t, resp, &body)
	assert.Equal(t, int64(1999), body.SubTotal)
	assert.Equal(t, int64(179), body.TaxTotal)
	assert.Equal(t, int64(2178), body.GrandTotal)
	require.Len(t, body.ByRate, 2)
	assert.EqualValues(t, 10, body.ByRate[0].Rate)
}

func TestTotals_CantidadCeroEsInválida(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/documents/totals", map[string]any{
		"items": []map[string]any{{"name": "A", "qty": 0, "unit_price": 1000, "tax_rate": 10}},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestDueDate(t *testing.T) {
	app := buildTestApp()

	resp := do(t, app, http.MethodPost, "/api/documents/due-date", map[string]any{
		"issue_date": "2025-01-15", "preset": "eom_next_eom",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body dto.DueDateResponse
	decode(t, resp, &body)
	assert.True(t, body.Computable)
	assert.Equal(t, "2025-02-28", body.DueDate)

	resp = do(t, app, http.MethodPost, "/api/documents/due-date", map[string]any{
		"issue_date": "2025-01-15", "preset": "other",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = dto.DueDateResponse{}
	decode(t, resp, &body)
	assert.False(t, body.Computable)
	assert.Empty(t, body.DueDate)

	resp = do(t, app, http.MethodPost, "/api/documents/due-date", map[string]any{"issue_date": "15/01/2025", "preset": "net_7"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTransition_FacturaAOrdenDeCompra(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/documents/transition", map[string]any{
		"document": invoiceJSON(),
		"to":       "purchaseOrder",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "purchaseOrder", body["type"])
	assert.Equal(t, "自社株式会社", body["client"].(map[string]any)["name"], "la propia empresa pasa al hueco del destinatario")
	assert.Empty(t, body["issuer"].(map[string]any)["name"])
	assert.Contains(t, body, "order_terms")
}

func TestTransition_TipoDesconocido(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/documents/transition", map[string]any{
		"document": invoiceJSON(),
		"to":       "deliveryNote",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPreview(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/documents/preview", map[string]any{"document": invoiceJSON()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body document.View
	decode(t, resp, &body)
	assert.Equal(t, "請求書", body.Title)
	assert.Equal(t, "¥330,000", body.GrandTotal)
	assert.Equal(t, "取引先株式会社", body.Recipient.Name)
}

func TestRenderPDF_Descarga(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/documents/pdf", map[string]any{"document": invoiceJSON()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-請求書", string(data))
}

func TestRender_FormatoNoRegistrado(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/documents/xlsx", map[string]any{"document": invoiceJSON()})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestShare_IdaYVuelta(t *testing.T) {
	app := buildTestApp()

	resp := do(t, app, http.MethodPost, "/api/share/encode", map[string]any{"document": invoiceJSON()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var enc dto.ShareEncodeResponse
	decode(t, resp, &enc)
	assert.NotEmpty(t, enc.Token)
	assert.Contains(t, enc.URL, "https://chouhyo.app/app#data=")

	resp = do(t, app, http.MethodPost, "/api/share/decode", map[string]any{"url": enc.URL})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var doc map[string]any
	decode(t, resp, &doc)
	assert.Equal(t, "INV-202501-001", doc["number"])
	assert.Equal(t, "取引先株式会社", doc["client"].(map[string]any)["name"])
}

func TestShareDecode_TokenDañado(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/share/decode", map[string]any{"token": "@@no-es-base64@@"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "INVALID_SHARE_TOKEN", body.Code)
}

func TestShareDecode_SinTokenNiURL(t *testing.T) {
	resp := do(t, buildTestApp(), http.MethodPost, "/api/share/decode", map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPostal(t *testing.T) {
	app := buildTestApp()

	resp := do(t, app, http.MethodGet, "/api/postal/100-0001", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body dto.PostalResponse
	decode(t, resp, &body)
	assert.Equal(t, dto.PostalResponse{Zip: "1000001", Address: "東京都千代田区千代田"}, body)

	resp = do(t, app, http.MethodGet, "/api/postal/9999999", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/api/postal/123", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
