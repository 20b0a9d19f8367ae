// Package totals calcula importes de línea, impuestos y totales por tasa.
//
// Regla por línea (en yenes, sin decimales):
//
//	neto     = redondeo(cantidad × precio unitario)   (mitad lejos de cero)
//	impuesto = piso(neto × tasa / 100)
//	bruto    = neto + impuesto
//
// El impuesto se calcula línea a línea y después se agrega, globalmente y por tasa.
package totals

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Bucket acumulado de una tasa (o del documento completo).
type Bucket struct {
	Net   int64 `json:"net"`
	Tax   int64 `json:"tax"`
	Gross int64 `json:"gross"`
}

func (b *Bucket) add(l Line) {
	b.Net += l.Net
	b.Tax += l.Tax
	b.Gross += l.Gross
}

// Line importes de una línea.
type Line struct {
	Net   int64 `json:"net"`
	Tax   int64 `json:"tax"`
	Gross int64 `json:"gross"`
}

// Totals resultado del cálculo.
type Totals struct {
	SubTotal   int64                     `json:"sub_total"`
	TaxTotal   int64                     `json:"tax_total"`
	GrandTotal int64                     `json:"grand_total"`
	ByRate     map[entity.TaxRate]Bucket `json:"by_rate"`
}

// LineAmounts aplica la regla de redondeo a una línea.
func LineAmounts(it entity.Item) Line {
	net := decimal.NewFromInt(it.Qty).Mul(decimal.NewFromInt(it.UnitPrice)).Round(0)
	tax := net.Mul(decimal.NewFromInt(int64(it.TaxRate))).Div(hundred).Floor()
	return Line{
		Net:   net.IntPart(),
		Tax:   tax.IntPart(),
		Gross: net.Add(tax).IntPart(),
	}
}

// Calculate es puro y determinista. Una lista vacía produce ceros y ningún bucket.
// Los valores negativos no se controlan.
func Calculate(items []entity.Item) Totals {
	t := Totals{ByRate: make(map[entity.TaxRate]Bucket)}
	for _, it := range items {
		l := LineAmounts(it)
		t.SubTotal += l.Net
		t.TaxTotal += l.Tax
		t.GrandTotal += l.Gross

		b := t.ByRate[it.TaxRate]
		b.add(l)
		t.ByRate[it.TaxRate] = b
	}
	return t
}

// Rates devuelve las tasas presentes de mayor a menor, para el desglose impreso.
func (t Totals) Rates() []entity.TaxRate {
	rates := make([]entity.TaxRate, 0, len(t.ByRate))
	for r := range t.ByRate {
		rates = append(rates, r)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i] > rates[j] })
	return rates
}
