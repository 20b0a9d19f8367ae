package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/cli"
	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/infrastructure/storage"
	"github.com/jhoicas/chouhyo/pkg/config"
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

// newOptions opciones con almacenamiento y sistema de archivos en memoria.
// Todas las invocaciones de un test comparten el almacenamiento, como en disco.
func newOptions() cli.Options {
	return cli.Options{
		Config: &config.Config{Share: config.ShareConfig{BaseURL: "https://chouhyo.app/app"}},
		Store:  storage.NewMemory(),
		Lookup: stubLookup{"1000001": "東京都千代田区千代田"},
		Render: document.NewRenderUseCase(stubRenderer{}, nil, nil, nil),
		Fs:     afero.NewMemMapFs(),
		Now:    fixedNow,
	}
}

func run(t *testing.T, opts cli.Options, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := cli.NewRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, opts cli.Options, args ...string) string {
	t.Helper()
	out, err := run(t, opts, args...)
	require.NoError(t, err, "chouhyo %s", strings.Join(args, " "))
	return out
}

// showJSON devuelve el documento guardado tal como lo imprime "show --json".
func showJSON(t *testing.T, opts cli.Options) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, opts, "show", "--json")), &doc))
	return doc
}

func section(doc map[string]any, key string) map[string]any {
	m, _ := doc[key].(map[string]any)
	return m
}

func items(doc map[string]any) []map[string]any {
	raw, _ := doc["items"].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, it := range raw {
		out = append(out, it.(map[string]any))
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestShow_SinDatosEmpiezaConFactura(t *testing.T) {
	opts := newOptions()

	out := mustRun(t, opts, "show")
	assert.Contains(t, out, "【請求書】")
	assert.Contains(t, out, "合計")

	doc := showJSON(t, opts)
	assert.Equal(t, "invoice", doc["type"])
	assert.Equal(t, "2025-01-15", doc["issue_date"])
}

func TestSet_PersisteEntreInvocaciones(t *testing.T) {
	opts := newOptions()

	mustRun(t, opts, "set", "client.name=取引先株式会社", "client.honorific=様", "subject=Web制作")

	doc := showJSON(t, opts)
	assert.Equal(t, "取引先株式会社", section(doc, "client")["name"])
	assert.Equal(t, "様", section(doc, "client")["honorific"])
	assert.Equal(t, "Web制作", doc["subject"])
}

func TestSet_ErroresDeEntrada(t *testing.T) {
	opts := newOptions()

	_, err := run(t, opts, "set", "cliente=x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, opts, "set", "client.name")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin '=' no es un par clave/valor")

	_, err = run(t, opts, "set", "issue_date=15/01/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSet_QuitarBanco(t *testing.T) {
	opts := newOptions()

	mustRun(t, opts, "set", "bank.name=みずほ銀行", "bank.number=1234567")
	assert.Equal(t, "みずほ銀行", section(showJSON(t, opts), "bank")["name"])

	mustRun(t, opts, "set", "bank=")
	assert.Nil(t, showJSON(t, opts)["bank"])
}

func TestItem_AñadirModificarEliminar(t *testing.T) {
	opts := newOptions()

	mustRun(t, opts, "item", "add", "--name", "デザイン", "--price", "300000")
	its := items(showJSON(t, opts))
	require.Len(t, its, 2, "el documento nuevo trae una línea vacía")
	assert.Equal(t, "デザイン", its[1]["name"])
	assert.EqualValues(t, 1, its[1]["qty"])
	assert.Equal(t, "式", its[1]["unit"])
	assert.EqualValues(t, 10, its[1]["tax_rate"])

	mustRun(t, opts, "item", "set", "2", "--qty", "3", "--rate", "8")
	its = items(showJSON(t, opts))
	assert.EqualValues(t, 3, its[1]["qty"])
	assert.EqualValues(t, 8, its[1]["tax_rate"])
	assert.EqualValues(t, 300000, its[1]["unit_price"], "las opciones no indicadas no cambian")

	mustRun(t, opts, "item", "rm", "1")
	its = items(showJSON(t, opts))
	require.Len(t, its, 1)
	assert.Equal(t, "デザイン", its[0]["name"])
}

func TestItem_Errores(t *testing.T) {
	opts := newOptions()

	_, err := run(t, opts, "item", "set", "0", "--qty", "2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = run(t, opts, "item", "rm", "9")
	assert.ErrorIs(t, err, domain.ErrItemIndexOutOfRange)

	_, err = run(t, opts, "item", "add", "--name", "X", "--qty", "0")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Len(t, items(showJSON(t, opts)), 1, "una línea inválida no llega al borrador")
}

func TestNew_GuardaElTipoElegido(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "set", "issuer.name=自社株式会社")

	mustRun(t, opts, "new", "estimate")

	doc := showJSON(t, opts)
	assert.Equal(t, "estimate", doc["type"])
	assert.Equal(t, "自社株式会社", section(doc, "issuer")["name"], "el perfil propio se conserva")

	_, err := run(t, opts, "new", "deliveryNote")
	assert.ErrorIs(t, err, domain.ErrUnknownDocumentType)
}

func TestType_OrdenDeCompraIntercambiaHuecos(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "set", "issuer.name=自社株式会社", "client.name=取引先株式会社")

	mustRun(t, opts, "type", "purchaseOrder")

	doc := showJSON(t, opts)
	assert.Equal(t, "purchaseOrder", doc["type"])
	assert.Equal(t, "自社株式会社", section(doc, "client")["name"])
	assert.Contains(t, doc, "order_terms")
}

func TestTerms_Pago(t *testing.T) {
	opts := newOptions()

	mustRun(t, opts, "terms", "payment", "other", "別途", "協議")
	payment := section(showJSON(t, opts), "payment")
	assert.Equal(t, "other", payment["preset"])
	assert.Equal(t, "別途 協議", payment["custom"])

	_, err := run(t, opts, "terms", "payment", "net_45")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	mustRun(t, opts, "new", "receipt")
	_, err = run(t, opts, "terms", "payment", "net_30")
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
}

func TestTerms_OrdenDeCompra(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "new", "purchaseOrder")

	mustRun(t, opts, "terms", "order", "--payment", "prepaid", "--deposit", "30", "--delivery", "date", "--delivery-date", "2025-02-28")

	terms := section(showJSON(t, opts), "order_terms")
	payment := terms["payment"].(map[string]any)
	assert.Equal(t, "prepaid", payment["kind"])
	assert.EqualValues(t, 30, payment["deposit_pct"])
	assert.EqualValues(t, 30, payment["days"], "el plazo del resto toma su valor por defecto")
	delivery := terms["delivery"].(map[string]any)
	assert.Equal(t, "date", delivery["kind"])
	assert.Equal(t, "2025-02-28", delivery["date"])

	_, err := run(t, opts, "terms", "order", "--acceptance", "after_90")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTerms_ConceptoYCláusula(t *testing.T) {
	opts := newOptions()

	mustRun(t, opts, "new", "receipt")
	mustRun(t, opts, "terms", "purpose", "お品代として")
	receipt := section(showJSON(t, opts), "receipt")
	assert.Equal(t, "お品代として", receipt["purpose"])
	assert.Equal(t, true, receipt["manual_purpose"])

	mustRun(t, opts, "new", "outsourcingContract")
	mustRun(t, opts, "terms", "clause", "period", "2025年4月1日から1年間")
	assert.Equal(t, "2025年4月1日から1年間", section(showJSON(t, opts), "contract")["period"])

	_, err := run(t, opts, "terms", "clause", "penalty", "x")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTotals(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "item", "set", "1", "--name", "デザイン", "--price", "300000")

	out := mustRun(t, opts, "totals")
	assert.Contains(t, out, "¥300,000")
	assert.Contains(t, out, "¥330,000")

	var tot map[string]any
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, opts, "totals", "--json")), &tot))
	assert.EqualValues(t, 330000, tot["grand_total"])
}

func TestShare_IdaYVuelta(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "set", "number=INV-202501-001", "client.name=取引先株式会社")

	link := strings.TrimSpace(mustRun(t, opts, "share"))
	assert.True(t, strings.HasPrefix(link, "https://chouhyo.app/app#data="), link)

	// Otro equipo, sin borrador: el enlace manda.
	other := newOptions()
	mustRun(t, other, "open", link)
	doc := showJSON(t, other)
	assert.Equal(t, "INV-202501-001", doc["number"])
	assert.Equal(t, "取引先株式会社", section(doc, "client")["name"])
}

func TestOpen_EnlaceDañadoConservaElBorrador(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "set", "number=BORRADOR-1")

	mustRun(t, opts, "open", "https://chouhyo.app/app#data=@@roto@@")

	assert.Equal(t, "BORRADOR-1", showJSON(t, opts)["number"])
}

func TestRender_EscribeElArchivo(t *testing.T) {
	opts := newOptions()

	out := mustRun(t, opts, "render", "-o", "factura.pdf")
	assert.Contains(t, out, "factura.pdf")
	data, err := afero.ReadFile(opts.Fs, "factura.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-請求書", string(data))

	out = mustRun(t, opts, "render")
	path := strings.Fields(out)[0]
	assert.True(t, strings.HasPrefix(path, "請求書_"), path)
	exists, err := afero.Exists(opts.Fs, path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRender_FormatoSinRenderizador(t *testing.T) {
	opts := newOptions()

	_, err := run(t, opts, "render", "-o", "factura.xlsx")
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)

	_, err = run(t, opts, "render", "--format", "docx")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLookup_CompletaDirecciónVacía(t *testing.T) {
	opts := newOptions()

	mustRun(t, opts, "lookup", "client", "１００-０００１")

	client := section(showJSON(t, opts), "client")
	assert.Equal(t, "100-0001", client["zip"])
	assert.Equal(t, "東京都千代田区千代田", client["address"])
}

func TestLookup_NoPisaUnaDirecciónEscrita(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "set", "issuer.address=大阪府大阪市北区")

	mustRun(t, opts, "lookup", "issuer", "1000001")

	assert.Equal(t, "大阪府大阪市北区", section(showJSON(t, opts), "issuer")["address"])
}

func TestLookup_Errores(t *testing.T) {
	opts := newOptions()

	_, err := run(t, opts, "lookup", "client", "123")
	assert.ErrorIs(t, err, domain.ErrInvalidPostalCode)

	_, err = run(t, opts, "lookup", "client", "9999999")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = run(t, opts, "lookup", "bank", "1000001")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestForget(t *testing.T) {
	opts := newOptions()
	mustRun(t, opts, "set", "issuer.name=自社株式会社", "client.name=取引先株式会社")

	mustRun(t, opts, "forget", "client")
	assert.Equal(t, "取引先株式会社", section(showJSON(t, opts), "client")["name"], "el documento actual no cambia")

	mustRun(t, opts, "new", "estimate")
	assert.Empty(t, section(showJSON(t, opts), "client")["name"], "el cliente olvidado no vuelve al documento nuevo")

	mustRun(t, opts, "forget", "all")
	doc := showJSON(t, opts)
	assert.Equal(t, "invoice", doc["type"])
	assert.Empty(t, section(doc, "issuer")["name"])
}

func TestItem_AyudaListaUnidadesYTasas(t *testing.T) {
	out := mustRun(t, newOptions(), "item", "add", "--help")
	assert.Contains(t, out, "人月")
	assert.Contains(t, out, "10, 8, 0")
}
