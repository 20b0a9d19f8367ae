package entity

// PaymentPreset condición de pago predefinida de presupuesto/factura.
type PaymentPreset string

const (
	PaymentEOMNextEOM   PaymentPreset = "eom_next_eom"   // 月末締め、翌月末払い
	PaymentEOMNext10th  PaymentPreset = "eom_next_10"    // 月末締め、翌月10日払い
	PaymentEOMSecondEOM PaymentPreset = "eom_second_eom" // 月末締め、翌々月末払い
	PaymentNet7         PaymentPreset = "net_7"          // 納品後 7 日以内支払い
	PaymentNet30        PaymentPreset = "net_30"         // 納品後 30 日以内支払い
	PaymentPrepaid      PaymentPreset = "prepaid"        // 前払い（着手金）〇％・残金：納品時
	PaymentOther        PaymentPreset = "other"          // その他（自由入力）
)

// PaymentPresets en el orden del selector.
var PaymentPresets = []PaymentPreset{
	PaymentEOMNextEOM, PaymentEOMNext10th, PaymentEOMSecondEOM,
	PaymentNet7, PaymentNet30, PaymentPrepaid, PaymentOther,
}

// PaymentTerms condición de pago de presupuesto/factura.
type PaymentTerms struct {
	Preset PaymentPreset `json:"preset"`
	Custom string        `json:"custom"` // texto libre cuando Preset es "other"
}

// DayKind distingue días hábiles de naturales. Hoy es solo una etiqueta de texto.
type DayKind string

const (
	DayKindBusiness DayKind = "business"
	DayKindCalendar DayKind = "calendar"
)

// DeliveryKind forma de indicar el plazo de entrega de una orden de compra.
type DeliveryKind string

const (
	DeliveryPerLine DeliveryKind = "perLine"
	DeliveryDate    DeliveryKind = "date"
	DeliveryPeriod  DeliveryKind = "period"
	DeliveryOther   DeliveryKind = "other"
)

type Delivery struct {
	Kind        DeliveryKind `json:"kind"`
	Date        Date         `json:"date"`
	PeriodStart Date         `json:"period_start"`
	PeriodEnd   Date         `json:"period_end"`
	Note        string       `json:"note"`
}

// AcceptanceKind condición de recepción (検収).
type AcceptanceKind string

const (
	AcceptanceAfter7    AcceptanceKind = "after_7"
	AcceptanceAfter10   AcceptanceKind = "after_10"
	AcceptanceAfter30   AcceptanceKind = "after_30"
	AcceptanceNone      AcceptanceKind = "none"
	AcceptanceMilestone AcceptanceKind = "milestone"
	AcceptanceCustom    AcceptanceKind = "custom"
)

type Acceptance struct {
	Kind    AcceptanceKind `json:"kind"`
	DayKind DayKind        `json:"day_kind"`
	Note    string         `json:"note"`
}

// NewAcceptance aplica los valores por defecto de cada opción del selector.
func NewAcceptance(kind AcceptanceKind) Acceptance {
	a := Acceptance{Kind: kind}
	switch kind {
	case AcceptanceAfter7, AcceptanceAfter10:
		a.DayKind = DayKindBusiness
	case AcceptanceAfter30:
		a.DayKind = DayKindCalendar
	}
	return a
}

// OrderPaymentKind condición de pago de una orden de compra.
type OrderPaymentKind string

const (
	OrderPaySite30      OrderPaymentKind = "site_30"
	OrderPaySite60      OrderPaymentKind = "site_60"
	OrderPayDaysAfter   OrderPaymentKind = "days_after"
	OrderPayOnDelivery  OrderPaymentKind = "on_delivery"
	OrderPayPrepaid     OrderPaymentKind = "prepaid"
	OrderPayPerDelivery OrderPaymentKind = "per_delivery"
	OrderPayCustom      OrderPaymentKind = "custom"
)

// DefaultOrderPaymentDays plazo por defecto de "days_after" y del resto en "prepaid".
const DefaultOrderPaymentDays = 30

// DefaultDepositPct porcentaje de anticipo por defecto.
const DefaultDepositPct = 50

type OrderPayment struct {
	Kind       OrderPaymentKind `json:"kind"`
	Days       int              `json:"days"`
	DayKind    DayKind          `json:"day_kind"`
	DepositPct int              `json:"deposit_pct"`
	Note       string           `json:"note"`
}

// NewOrderPayment aplica los valores por defecto de cada opción del selector.
func NewOrderPayment(kind OrderPaymentKind) OrderPayment {
	p := OrderPayment{Kind: kind}
	switch kind {
	case OrderPayDaysAfter:
		p.Days = DefaultOrderPaymentDays
		p.DayKind = DayKindBusiness
	case OrderPayPrepaid:
		p.DepositPct = DefaultDepositPct
		p.Days = DefaultOrderPaymentDays
		p.DayKind = DayKindBusiness
	}
	return p
}

// OrderTerms condiciones de la orden de compra (発注条件).
type OrderTerms struct {
	Delivery   Delivery     `json:"delivery"`
	Acceptance Acceptance   `json:"acceptance"`
	Payment    OrderPayment `json:"payment"`
}

// DefaultOrderTerms: entrega según cada línea, recepción en 7 días hábiles, pago fin de mes siguiente.
func DefaultOrderTerms() OrderTerms {
	return OrderTerms{
		Delivery:   Delivery{Kind: DeliveryPerLine},
		Acceptance: NewAcceptance(AcceptanceAfter7),
		Payment:    NewOrderPayment(OrderPaySite30),
	}
}
