// Package xlsx exporta las líneas y los totales del documento a una hoja de Excel.
package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/chouhyo/internal/application/document"
)

// SheetName nombre de la hoja generada.
const SheetName = "明細"

// Fila de cabecera de la tabla; los datos empiezan en la siguiente.
const headerRow = 6

var columns = []struct {
	title string
	width float64
}{
	{"No", 5}, {"日付", 11}, {"品名", 28}, {"内容", 28}, {"数量", 8},
	{"単位", 7}, {"単価", 12}, {"税率", 7}, {"金額（税抜）", 14}, {"消費税", 12},
}

// ExcelRenderer implementa document.Renderer con excelize.
type ExcelRenderer struct{}

// NewExcelRenderer construye el renderizador.
func NewExcelRenderer() *ExcelRenderer { return &ExcelRenderer{} }

// Render genera el libro y devuelve sus bytes.
func (r *ExcelRenderer) Render(ctx context.Context, v document.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	w := &sheetWriter{f: f}

	// ── 1. Cabecera ───────────────────────────────────────────────────────────
	w.set("A1", v.Title)
	w.set("C1", v.Number.Label+"："+v.Number.Value)
	w.set("A2", v.IssueDate.Label)
	w.set("C2", v.IssueDate.Value)
	if v.DueDate != nil {
		w.set("D2", v.DueDate.Label+"："+v.DueDate.Value)
	}
	w.set("A3", v.Recipient.Title)
	w.set("C3", v.Recipient.Name)
	w.set("A4", v.Sender.Title)
	w.set("C4", v.Sender.Name)
	if v.Subject != "" {
		w.set("D3", "件名："+v.Subject)
	}

	// ── 2. Tabla ──────────────────────────────────────────────────────────────
	for i, c := range columns {
		name := w.cell(i+1, headerRow)
		w.set(name, c.title)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		w.check(f.SetColWidth(SheetName, colName, colName, c.width))
	}
	for i, l := range v.Lines {
		rowNum := headerRow + 1 + i
		values := []any{l.No, l.Date, l.Name, l.Description, l.Item.Qty, l.Unit, l.Item.UnitPrice, l.TaxRate, l.Net, l.Tax}
		for c, val := range values {
			w.set(w.cell(c+1, rowNum), val)
		}
	}

	// ── 3. Totales ────────────────────────────────────────────────────────────
	last := headerRow + len(v.Lines)
	totalsAt := last + 2
	for i, t := range []struct {
		label string
		value int64
	}{
		{"小計", v.Totals.SubTotal},
		{"消費税", v.Totals.TaxTotal},
		{"合計（税込）", v.Totals.GrandTotal},
	} {
		w.set(w.cell(8, totalsAt+i), t.label)
		w.set(w.cell(9, totalsAt+i), t.value)
	}

	// ── 4. Estilos ────────────────────────────────────────────────────────────
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"00467F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	w.check(f.SetCellStyle(SheetName, "A1", "A1", bold))
	w.check(f.SetCellStyle(SheetName, w.cell(1, headerRow), w.cell(len(columns), headerRow), header))
	if len(v.Lines) > 0 {
		w.check(f.SetCellStyle(SheetName, w.cell(5, headerRow+1), w.cell(5, last), money))
		w.check(f.SetCellStyle(SheetName, w.cell(7, headerRow+1), w.cell(7, last), money))
		w.check(f.SetCellStyle(SheetName, w.cell(9, headerRow+1), w.cell(10, last), money))
	}
	w.check(f.SetCellStyle(SheetName, w.cell(9, totalsAt), w.cell(9, totalsAt+2), money))
	w.check(f.SetCellStyle(SheetName, w.cell(8, totalsAt+2), w.cell(9, totalsAt+2), bold))

	if w.err != nil {
		return nil, fmt.Errorf("xlsx: escribir hoja: %w", w.err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: serializar libro: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter guarda el primer error para no comprobar cada celda.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) check(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *sheetWriter) set(cell string, value any) {
	w.check(w.f.SetCellValue(SheetName, cell, value))
}

func (w *sheetWriter) cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	w.check(err)
	return name
}
