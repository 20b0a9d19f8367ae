// Package duedate resuelve la fecha de vencimiento a partir de la fecha de emisión y la
// condición de pago. Los días hábiles/naturales son solo una etiqueta: no se calculan
// fines de semana ni festivos.
package duedate

import "github.com/jhoicas/chouhyo/internal/domain/entity"

// labels texto impreso de cada condición predefinida.
var labels = map[entity.PaymentPreset]string{
	entity.PaymentEOMNextEOM:   "月末締め、翌月末払い",
	entity.PaymentEOMNext10th:  "月末締め、翌月10日払い",
	entity.PaymentEOMSecondEOM: "月末締め、翌々月末払い",
	entity.PaymentNet7:         "納品後 7 日以内支払い",
	entity.PaymentNet30:        "納品後 30 日以内支払い",
	entity.PaymentPrepaid:      "前払い（着手金）〇％・残金：納品時",
	entity.PaymentOther:        "その他（自由入力）",
}

// Label devuelve la etiqueta japonesa de la condición ("" si es desconocida).
func Label(p entity.PaymentPreset) string {
	return labels[p]
}

// Resolve calcula el vencimiento de presupuesto/factura. ok es false si la condición no
// es calculable ("other", desconocida) o si no hay fecha de emisión.
func Resolve(issue entity.Date, preset entity.PaymentPreset) (entity.Date, bool) {
	if issue.IsZero() {
		return entity.Date{}, false
	}
	switch preset {
	case entity.PaymentEOMNextEOM:
		return issue.EndOfMonth(1), true
	case entity.PaymentEOMNext10th:
		return issue.DayOfMonth(1, 10), true
	case entity.PaymentEOMSecondEOM:
		return issue.EndOfMonth(2), true
	case entity.PaymentNet7:
		return issue.AddDays(7), true
	case entity.PaymentNet30:
		return issue.AddDays(30), true
	case entity.PaymentPrepaid:
		return issue, true
	}
	return entity.Date{}, false
}

// Computable indica si el preset produce una fecha.
func Computable(preset entity.PaymentPreset) bool {
	_, ok := Resolve(entity.NewDate(2000, 1, 1), preset)
	return ok
}

// ResolveOrder calcula el vencimiento de una orden de compra.
func ResolveOrder(issue entity.Date, p entity.OrderPayment) (entity.Date, bool) {
	if issue.IsZero() {
		return entity.Date{}, false
	}
	switch p.Kind {
	case entity.OrderPaySite30:
		return issue.EndOfMonth(1), true
	case entity.OrderPaySite60:
		return issue.EndOfMonth(2), true
	case entity.OrderPayDaysAfter:
		days := p.Days
		if days <= 0 {
			days = entity.DefaultOrderPaymentDays
		}
		return issue.AddDays(days), true
	case entity.OrderPayOnDelivery:
		return issue, true
	}
	return entity.Date{}, false
}

// ForDocument aplica el resolvedor que corresponde a la variante del documento.
// Recibo y contrato no tienen vencimiento.
func ForDocument(doc entity.Document) (entity.Date, bool) {
	switch d := doc.Details.(type) {
	case entity.EstimateDetails:
		return Resolve(doc.IssueDate, d.Payment.Preset)
	case entity.InvoiceDetails:
		return Resolve(doc.IssueDate, d.Payment.Preset)
	case entity.PurchaseOrderDetails:
		return ResolveOrder(doc.IssueDate, d.Terms.Payment)
	}
	return entity.Date{}, false
}

// Refresh recalcula el vencimiento si la condición es calculable; si no, lo deja como está.
func Refresh(doc entity.Document) entity.Document {
	if due, ok := ForDocument(doc); ok {
		doc.DueDate = due
	}
	return doc
}
