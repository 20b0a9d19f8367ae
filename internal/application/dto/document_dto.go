package dto

import (
	"encoding/json"

	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/internal/domain/totals"
)

// TotalsRequest body para POST /api/documents/totals.
type TotalsRequest struct {
	Items []entity.Item `json:"items" validate:"dive"`
}

// RateTotal importe de una tasa en respuestas.
type RateTotal struct {
	Rate entity.TaxRate `json:"rate"`
	totals.Bucket
}

// TotalsResponse totales del documento; ByRate va ordenado de mayor a menor tasa.
type TotalsResponse struct {
	SubTotal   int64       `json:"sub_total"`
	TaxTotal   int64       `json:"tax_total"`
	GrandTotal int64       `json:"grand_total"`
	ByRate     []RateTotal `json:"by_rate"`
}

// NewTotalsResponse adapta el resultado del cálculo.
func NewTotalsResponse(t totals.Totals) TotalsResponse {
	out := TotalsResponse{SubTotal: t.SubTotal, TaxTotal: t.TaxTotal, GrandTotal: t.GrandTotal, ByRate: []RateTotal{}}
	for _, r := range t.Rates() {
		out.ByRate = append(out.ByRate, RateTotal{Rate: r, Bucket: t.ByRate[r]})
	}
	return out
}

// DueDateRequest body para POST /api/documents/due-date.
// Se indica Preset (presupuesto/factura) u OrderPayment (orden de compra).
type DueDateRequest struct {
	IssueDate    string               `json:"issue_date" validate:"required,datetime=2006-01-02"`
	Preset       entity.PaymentPreset `json:"preset" validate:"required_without=OrderPayment"`
	OrderPayment *entity.OrderPayment `json:"order_payment,omitempty"`
}

// DueDateResponse vencimiento calculado. DueDate va vacío si la condición no es calculable.
type DueDateResponse struct {
	DueDate    string `json:"due_date"`
	Computable bool   `json:"computable"`
	Label      string `json:"label,omitempty"`
}

// TransitionRequest body para POST /api/documents/transition.
type TransitionRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
	To       string          `json:"to" validate:"required"`
	Profile  *entity.Issuer  `json:"profile,omitempty"`
}

// DocumentRequest body con un documento para preview/pdf/xlsx/csv.
type DocumentRequest struct {
	Document json.RawMessage `json:"document" validate:"required"`
}
