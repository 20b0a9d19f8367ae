package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/internal/application/workspace"
)

// Anchos de columna en celdas de terminal (un carácter CJK ocupa dos).
const (
	labelWidth = 12
	nameWidth  = 28
	moneyWidth = 12
)

// print muestra el documento: JSON con --json, si no la vista resumida.
func (s *session) print(w io.Writer, ws *workspace.Workspace) error {
	doc := ws.Document()
	if s.asJSON {
		return writeJSON(w, doc)
	}
	v, err := document.BuildView(doc)
	if err != nil {
		return err
	}
	return writeView(w, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// textWriter guarda el primer error de escritura.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format+"\n", args...)
}

func (t *textWriter) field(label, value string) {
	if value == "" {
		return
	}
	t.line("%s %s", runewidth.FillRight(label, labelWidth), value)
}

func writeView(w io.Writer, v document.View) error {
	t := &textWriter{w: w}

	t.line("【%s】", v.Title)
	t.field(v.Number.Label, v.Number.Value)
	t.field(v.IssueDate.Label, v.IssueDate.Value)
	if v.DueDate != nil {
		t.field(v.DueDate.Label, v.DueDate.Value)
	}
	t.field(v.Recipient.Title, strings.TrimSpace(v.Recipient.Name+" "+v.Recipient.Honorific))
	t.field(v.Sender.Title, v.Sender.Name)
	t.field("件名", v.Subject)
	t.field(v.AmountLabel, v.Amount)
	t.field("但し", v.Purpose)
	t.line("")

	writeLines(t, v.Lines)
	t.line("")
	writeTotalsTo(t, v)

	for _, term := range v.Terms {
		t.field(term.Label, term.Value)
	}
	if v.Bank != nil {
		t.field("振込先", strings.Join(nonEmpty(v.Bank.Name, v.Bank.Type, v.Bank.Number, v.Bank.Holder), " "))
	}
	t.field("備考", v.Memo)
	for _, n := range v.Notices {
		t.line("%s", n)
	}
	for _, warn := range v.Warnings {
		t.line("! %s", warn)
	}
	return t.err
}

func writeLines(t *textWriter, lines []document.Line) {
	t.line("%s %s %s %s %s %s",
		runewidth.FillLeft("No", 3),
		runewidth.FillRight("品名", nameWidth),
		runewidth.FillLeft("数量", 8),
		runewidth.FillLeft("単価", moneyWidth),
		runewidth.FillLeft("税率", 6),
		runewidth.FillLeft("金額", moneyWidth),
	)
	for _, l := range lines {
		name := runewidth.Truncate(l.Name, nameWidth, "…")
		t.line("%s %s %s %s %s %s",
			runewidth.FillLeft(fmt.Sprint(l.No), 3),
			runewidth.FillRight(name, nameWidth),
			runewidth.FillLeft(l.Qty+l.Unit, 8),
			runewidth.FillLeft(l.UnitPrice, moneyWidth),
			runewidth.FillLeft(l.TaxRate, 6),
			runewidth.FillLeft(l.Amount, moneyWidth),
		)
	}
}

func writeTotals(w io.Writer, v document.View) error {
	t := &textWriter{w: w}
	writeTotalsTo(t, v)
	return t.err
}

func writeTotalsTo(t *textWriter, v document.View) {
	row := func(label, value string) {
		t.line("%s %s", runewidth.FillRight(label, labelWidth), runewidth.FillLeft(value, moneyWidth))
	}
	row("小計", v.SubTotal)
	for _, r := range v.Breakdown {
		row("  "+r.Label, r.Net)
		row("  消費税", r.Tax)
	}
	row("消費税", v.TaxTotal)
	row("合計", v.GrandTotal)
}

func nonEmpty(values ...string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
