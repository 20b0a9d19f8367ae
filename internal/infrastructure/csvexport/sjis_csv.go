// Package csvexport exporta las líneas del documento a CSV en Shift_JIS, la codificación
// que esperan Excel y los programas de contabilidad en Japón.
package csvexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jhoicas/chouhyo/internal/application/document"
	"github.com/jhoicas/chouhyo/pkg/jpfmt"
)

// Header cabecera del fichero.
var Header = []string{"No", "日付", "品名", "内容", "数量", "単位", "単価", "税率", "金額（税抜）", "消費税"}

// ShiftJISRenderer implementa document.Renderer.
type ShiftJISRenderer struct{}

// NewShiftJISRenderer construye el renderizador.
func NewShiftJISRenderer() *ShiftJISRenderer { return &ShiftJISRenderer{} }

// Render escribe una fila por línea y tres filas de totales al final.
func (r *ShiftJISRenderer) Render(ctx context.Context, v document.View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := jpfmt.ShiftJIS(&buf)
	if err := WriteLines(enc, v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("csvexport: codificar Shift_JIS: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteLines escribe el CSV sin recodificar (UTF-8).
func WriteLines(w io.Writer, v document.View) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	records := make([][]string, 0, len(v.Lines)+4)
	records = append(records, Header)
	for _, l := range v.Lines {
		records = append(records, []string{
			strconv.Itoa(l.No),
			l.Date,
			l.Name,
			l.Description,
			strconv.FormatInt(l.Item.Qty, 10),
			l.Unit,
			strconv.FormatInt(l.Item.UnitPrice, 10),
			strconv.Itoa(int(l.Item.TaxRate)),
			strconv.FormatInt(l.Net, 10),
			strconv.FormatInt(l.Tax, 10),
		})
	}
	records = append(records,
		[]string{"", "", "小計", "", "", "", "", "", strconv.FormatInt(v.Totals.SubTotal, 10), ""},
		[]string{"", "", "消費税", "", "", "", "", "", "", strconv.FormatInt(v.Totals.TaxTotal, 10)},
		[]string{"", "", "合計（税込）", "", "", "", "", "", strconv.FormatInt(v.Totals.GrandTotal, 10), ""},
	)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("csvexport: escribir: %w", err)
	}
	return nil
}
