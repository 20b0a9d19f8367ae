// Package pdf genera la versión imprimible (A4) de cualquier tipo de documento a partir
// de la vista ya calculada.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                    TÍTULO (請求書, 発注書…)                  │
//	│  DESTINATARIO + tratamiento   │  N° / fecha / vencimiento   │
//	│  IMPORTE (金額 o 金　¥…　也)   │  EMISOR + 登録番号          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: No | 品名 | 数量 | 単位 | 単価 | 税率 | 金額          │
//	│  TOTALES: 小計 / 消費税 / 合計 + desglose por tasa           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONDICIONES / CLÁUSULAS / BANCO / 備考 / 特約 / avisos      │
//	└─────────────────────────────────────────────────────────────┘
//
// Las fuentes estándar de PDF no tienen glifos japoneses: en producción hay que configurar
// una fuente TTF con CJK (PDF_FONT_PATH).
package pdf

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"

	"github.com/jhoicas/chouhyo/internal/application/document"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const (
	defaultFamily = "helvetica"
	customFamily  = "jp"
	lineHeight    = 4.5
)

// ── Generator ─────────────────────────────────────────────────────────────────

// Options rutas de las fuentes TTF. Sin FontPath se usa la fuente estándar.
type Options struct {
	FontPath     string
	FontBoldPath string
}

// MarotoPDFGenerator implementa document.Renderer usando Maroto v2.
type MarotoPDFGenerator struct {
	family string
	fonts  []*entity.CustomFont
}

// NewMarotoPDFGenerator construye el generador y carga las fuentes configuradas.
func NewMarotoPDFGenerator(opts Options) (*MarotoPDFGenerator, error) {
	if opts.FontPath == "" {
		return &MarotoPDFGenerator{family: defaultFamily}, nil
	}
	bold := opts.FontBoldPath
	if bold == "" {
		bold = opts.FontPath
	}
	fonts, err := repository.New().
		AddUTF8Font(customFamily, fontstyle.Normal, opts.FontPath).
		AddUTF8Font(customFamily, fontstyle.Bold, bold).
		Load()
	if err != nil {
		return nil, fmt.Errorf("pdf: cargar fuentes: %w", err)
	}
	return &MarotoPDFGenerator{family: customFamily, fonts: fonts}, nil
}

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Render(ctx context.Context, v document.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: g.family, Size: 9}).
		WithTitle(v.Title+" "+v.Number.Value, true).
		WithAuthor(v.Sender.Name, true)
	if len(g.fonts) > 0 {
		b = b.WithCustomFonts(g.fonts)
	}
	m := maroto.New(b.Build())

	// Cabecera
	m.AddRows(titleRow(v))
	m.AddRows(headerRow(v))
	if v.Lead != "" {
		m.AddRows(text.NewRow(7, v.Lead, props.Text{Size: 9, Top: 2}))
	}
	if v.Subject != "" {
		m.AddRows(text.NewRow(7, "件名：　"+v.Subject, props.Text{Size: 10, Style: fontstyle.Bold, Top: 1}))
	}
	m.AddRows(amountRows(v)...)
	m.AddRows(line.NewRow(3, props.Line{Color: colorPrimary, Thickness: 0.5}))

	// Preámbulo del contrato
	if v.Preamble != "" {
		m.AddRows(paragraphRow(v.Preamble, 95, props.Text{Size: 9}))
	}

	// Tabla de detalles
	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(v.Lines)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(v)...)

	// Condiciones y textos
	m.AddRows(line.NewRow(3))
	m.AddRows(termsRows(v.Terms)...)
	m.AddRows(clauseRows(v.Clauses)...)
	if v.Bank != nil {
		m.AddRows(bankRows(v.Bank)...)
	}
	m.AddRows(boxRows("備考", v.Memo)...)
	m.AddRows(boxRows("特約事項", v.Footer)...)
	for _, n := range v.Notices {
		m.AddRows(text.NewRow(5, n, props.Text{Size: 7.5, Color: colorGray, Top: 1}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// titleRow: título del tipo, espaciado como en los formularios en papel.
func titleRow(v document.View) core.Row {
	spaced := strings.Join(strings.Split(v.Title, ""), " ")
	return text.NewRow(14, spaced, props.Text{
		Style: fontstyle.Bold, Size: 18, Align: align.Center, Color: colorPrimary, Top: 2,
	})
}

// headerRow: destinatario (izq) y datos del documento (der).
func headerRow(v document.View) core.Row {
	meta := []core.Component{
		text.New(v.Number.Label+"：　"+v.Number.Value, props.Text{Size: 8.5, Align: align.Right, Top: 1}),
		text.New(v.IssueDate.Label+"：　"+v.IssueDate.Value, props.Text{Size: 8.5, Align: align.Right, Top: 6}),
	}
	if v.DueDate != nil {
		meta = append(meta, text.New(v.DueDate.Label+"：　"+v.DueDate.Value, props.Text{Size: 8.5, Align: align.Right, Top: 11}))
	}

	return row.New(22).Add(
		col.New(7).Add(partyComponents(v.Recipient, true)...),
		col.New(5).Add(meta...),
	)
}

// amountRows: importe destacado (izq) y emisor (der).
func amountRows(v document.View) []core.Row {
	amount := []core.Component{
		text.New(v.AmountLabel, props.Text{Size: 8, Color: colorGray, Top: 2}),
		text.New(v.Amount, props.Text{Style: fontstyle.Bold, Size: 15, Color: colorPrimary, Top: 7}),
	}
	if v.Purpose != "" {
		amount = append(amount, text.New(v.Purpose, props.Text{Size: 9, Top: 16}))
	}
	return []core.Row{
		row.New(26).Add(
			col.New(7).Add(amount...),
			col.New(5).Add(partyComponents(v.Sender, false)...),
		),
	}
}

func partyComponents(p document.Party, recipient bool) []core.Component {
	a := align.Left
	if !recipient {
		a = align.Right
	}
	name := p.Name
	if name == "" {
		name = "—"
	}
	if p.Honorific != "" {
		name += "　" + p.Honorific
	}
	size := 9.0
	if recipient {
		size = 12
	}

	out := []core.Component{
		text.New(p.Title, props.Text{Size: 7, Color: colorGray, Align: a, Top: 1}),
		text.New(name, props.Text{Style: fontstyle.Bold, Size: size, Align: a, Top: 5}),
	}
	top := 11.0
	for _, s := range []string{strings.TrimSpace(p.Zip + " " + p.Address), telLine(p.Tel), regNoLine(p.RegNo)} {
		if s == "" {
			continue
		}
		out = append(out, text.New(s, props.Text{Size: 7.5, Color: colorGray, Align: a, Top: top}))
		top += 4
	}
	return out
}

// tableHeaderRow: cabecera de la tabla de detalles con fondo de color.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("No", 1, align.Center),
		h("品名・内容", 4, align.Left),
		h("数量", 1, align.Right),
		h("単位", 1, align.Center),
		h("単価", 2, align.Right),
		h("税率", 1, align.Center),
		h("金額", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea; fecha y descripción van bajo el nombre.
func tableDetailRows(lines []document.Line) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		name := l.Name
		sub := strings.TrimSpace(strings.Join(nonEmptyStrings(l.Date, l.Description), "　"))
		height := 7.0
		nameCol := col.New(4).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1}))
		if sub != "" {
			height = 11
			nameCol = col.New(4).Add(
				text.New(name, props.Text{Size: 8, Top: 1, Left: 1}),
				text.New(sub, props.Text{Size: 6.5, Color: colorGray, Top: 5.5, Left: 1}),
			)
		}
		result = append(result, row.New(height).Add(
			col.New(1).Add(text.New(fmt.Sprint(l.No), props.Text{Size: 8, Align: align.Center, Top: 1})),
			nameCol,
			col.New(1).Add(text.New(l.Qty, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.UnitPrice, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(l.TaxRate, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(l.Amount, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRows: bloque de totales alineado a la derecha y desglose por tasa.
func totalsRows(v document.View) []core.Row {
	pair := func(label, value string, grand bool) core.Row {
		p := props.Text{Size: 9, Align: align.Right, Right: 1, Top: 1}
		if grand {
			p.Style, p.Size, p.Color = fontstyle.Bold, 10, colorPrimary
		}
		return row.New(6).Add(
			col.New(7),
			col.New(3).Add(text.New(label, p)),
			col.New(2).Add(text.New(value, p)),
		)
	}
	rows := []core.Row{
		pair("小計", v.SubTotal, false),
		pair("消費税", v.TaxTotal, false),
		pair("合計（税込）", v.GrandTotal, true),
	}
	for _, r := range v.Breakdown {
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(6).Add(text.New(
				fmt.Sprintf("（内訳）%s　%s　消費税　%s", r.Label, r.Net, r.Tax),
				props.Text{Size: 7, Align: align.Right, Color: colorGray, Right: 1, Top: 1},
			)),
		))
	}
	return rows
}

func termsRows(terms []document.Labeled) []core.Row {
	rows := make([]core.Row, 0, len(terms))
	for _, t := range terms {
		rows = append(rows, row.New(6).Add(
			col.New(3).Add(text.New(t.Label, props.Text{Style: fontstyle.Bold, Size: 8.5, Top: 1})),
			col.New(9).Add(text.New(t.Value, props.Text{Size: 8.5, Top: 1})),
		))
	}
	return rows
}

func clauseRows(clauses []document.Clause) []core.Row {
	rows := make([]core.Row, 0, len(clauses)*2)
	for _, c := range clauses {
		rows = append(rows,
			text.NewRow(6, c.Title, props.Text{Style: fontstyle.Bold, Size: 9, Top: 2}),
			paragraphRow(c.Text, 95, props.Text{Size: 8.5, Left: 3}),
		)
	}
	return rows
}

// bankRows: datos de abono.
func bankRows(b *document.BankView) []core.Row {
	return []core.Row{
		text.NewRow(7, "振込先", props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2}),
		row.New(5).Add(
			col.New(3).Add(text.New("銀行名："+nonEmpty(b.Name, "—"), props.Text{Size: 8})),
			col.New(2).Add(text.New("口座種別："+nonEmpty(b.Type, "—"), props.Text{Size: 8})),
			col.New(3).Add(text.New("口座番号："+nonEmpty(b.Number, "—"), props.Text{Size: 8})),
			col.New(4).Add(text.New("口座名義："+nonEmpty(b.Holder, "—"), props.Text{Size: 8})),
		),
	}
}

func boxRows(title, body string) []core.Row {
	if body == "" {
		return nil
	}
	return []core.Row{
		text.NewRow(7, title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2}),
		paragraphRow(body, 95, props.Text{Size: 8}),
	}
}

// paragraphRow fila de texto libre con alto estimado según la longitud.
func paragraphRow(s string, perLine int, p props.Text) core.Row {
	return text.NewRow(paragraphHeight(s, perLine), s, p)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// paragraphHeight estima el alto de un párrafo: los caracteres japoneses ocupan el
// doble que los latinos, perLine se cuenta en caracteres latinos.
func paragraphHeight(s string, perLine int) float64 {
	lines := 0
	for _, part := range strings.Split(s, "\n") {
		w := 0
		for _, r := range part {
			if r < utf8.RuneSelf {
				w++
			} else {
				w += 2
			}
		}
		lines += 1 + w/perLine
	}
	return float64(lines)*lineHeight + 2
}

func telLine(tel string) string {
	if tel == "" {
		return ""
	}
	return "TEL：" + tel
}

func regNoLine(regNo string) string {
	if regNo == "" {
		return ""
	}
	return "登録番号：" + regNo
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func nonEmptyStrings(ss ...string) []string {
	out := ss[:0:0]
	for _, s := range ss {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
