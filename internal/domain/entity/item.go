package entity

import "slices"

// TaxRate tasa de consumo en porcentaje entero. Solo se admiten 0, 8 y 10.
type TaxRate int

const (
	TaxRateExempt   TaxRate = 0
	TaxRateReduced  TaxRate = 8
	TaxRateStandard TaxRate = 10
)

// TaxRates lista las tasas válidas en el orden de presentación.
var TaxRates = []TaxRate{TaxRateStandard, TaxRateReduced, TaxRateExempt}

// Valid indica si la tasa es una de las tres admitidas.
func (r TaxRate) Valid() bool {
	return slices.Contains(TaxRates, r)
}

// Item representa una línea de detalle. UnitPrice va en yenes, sin impuestos.
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"desc,omitempty"`
	Date        Date    `json:"date"`
	Qty         int64   `json:"qty" validate:"min=1"`
	Unit        string  `json:"unit"`
	UnitPrice   int64   `json:"unit_price" validate:"min=0"`
	TaxRate     TaxRate `json:"tax_rate" validate:"oneof=0 8 10"`
}

// Unidades ofrecidas por defecto en el formulario.
var Units = []string{"式", "個", "時間", "日", "月", "人月", "件", "本", "枚", "台", "回", "kg", "m"}

// DefaultUnit unidad de una línea nueva.
const DefaultUnit = "式"

// NewItem devuelve una línea vacía con cantidad 1 y tasa estándar.
func NewItem() Item {
	return Item{Qty: 1, Unit: DefaultUnit, TaxRate: TaxRateStandard}
}

// ItemPatch modificación parcial de una línea; los campos nil no cambian.
type ItemPatch struct {
	Name        *string
	Description *string
	Date        *Date
	Qty         *int64
	Unit        *string
	UnitPrice   *int64
	TaxRate     *TaxRate
}

// Apply devuelve una copia de it con el parche aplicado.
func (p ItemPatch) Apply(it Item) Item {
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Date != nil {
		it.Date = *p.Date
	}
	if p.Qty != nil {
		it.Qty = *p.Qty
	}
	if p.Unit != nil {
		it.Unit = *p.Unit
	}
	if p.UnitPrice != nil {
		it.UnitPrice = *p.UnitPrice
	}
	if p.TaxRate != nil {
		it.TaxRate = *p.TaxRate
	}
	return it
}
