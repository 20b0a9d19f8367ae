// Package document construye la vista imprimible de cada tipo de documento y coordina
// los renderizadores (PDF, XLSX, CSV).
package document

import (
	"fmt"
	"strings"

	"github.com/jhoicas/chouhyo/internal/domain/doctype"
	"github.com/jhoicas/chouhyo/internal/domain/duedate"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
	"github.com/jhoicas/chouhyo/internal/domain/totals"
	"github.com/jhoicas/chouhyo/pkg/jpfmt"
)

// StampDutyThreshold importe del recibo a partir del cual se avisa del timbre fiscal.
const StampDutyThreshold = 50000

// Textos fijos de la vista impresa.
const (
	noticeStampDuty   = "※ 領収金額が5万円以上のため、印紙税（200円）の対象となります。"
	noticeReducedRate = "※印は軽減税率（8%）対象です。"
	warnInvoiceDue    = "請求書では支払期日の入力が必要です。"
	warnRegNo         = "登録番号は「T」＋13桁の数字で入力してください。"
	defaultHonorific  = entity.HonorificOnchu
)

// Labeled par etiqueta/valor ya formateado.
type Labeled struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Party bloque de una de las partes tal como se imprime.
type Party struct {
	Title     string `json:"title"`
	Name      string `json:"name"`
	Honorific string `json:"honorific,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Address   string `json:"address,omitempty"`
	Tel       string `json:"tel,omitempty"`
	RegNo     string `json:"reg_no,omitempty"`
}

// Line línea de detalle formateada.
type Line struct {
	No          int    `json:"no"`
	Name        string `json:"name"`
	Description string `json:"desc,omitempty"`
	Date        string `json:"date,omitempty"`
	Qty         string `json:"qty"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
	TaxRate     string `json:"tax_rate"`
	Amount      string `json:"amount"`

	// Valores sin formato para hojas de cálculo.
	Item entity.Item `json:"-"`
	Net  int64       `json:"net"`
	Tax  int64       `json:"tax"`
}

// RateLine desglose de una tasa (インボイス記載事項).
type RateLine struct {
	Label string `json:"label"`
	Net   string `json:"net"`
	Tax   string `json:"tax"`
}

// Clause artículo del contrato.
type Clause struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// BankView datos de abono.
type BankView struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Number string `json:"number"`
	Holder string `json:"holder"`
}

// View vista imprimible completamente calculada. Los renderizadores no derivan nada.
type View struct {
	Type        entity.DocumentType `json:"type"`
	Title       string              `json:"title"`
	Number      Labeled             `json:"number"`
	IssueDate   Labeled             `json:"issue_date"`
	DueDate     *Labeled            `json:"due_date,omitempty"`
	Subject     string              `json:"subject,omitempty"`
	Lead        string              `json:"lead,omitempty"`
	Recipient   Party               `json:"recipient"`
	Sender      Party               `json:"sender"`
	AmountLabel string              `json:"amount_label"`
	Amount      string              `json:"amount"`
	Purpose     string              `json:"purpose,omitempty"`
	Lines       []Line              `json:"lines"`
	Totals      totals.Totals       `json:"totals"`
	SubTotal    string              `json:"sub_total"`
	TaxTotal    string              `json:"tax_total"`
	GrandTotal  string              `json:"grand_total"`
	Breakdown   []RateLine          `json:"breakdown"`
	Terms       []Labeled           `json:"terms,omitempty"`
	Preamble    string              `json:"preamble,omitempty"`
	Clauses     []Clause            `json:"clauses,omitempty"`
	Bank        *BankView           `json:"bank,omitempty"`
	Memo        string              `json:"memo,omitempty"`
	Footer      string              `json:"footer,omitempty"`
	Notices     []string            `json:"notices,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}

// BuildView materializa la vista del documento. El documento debe tener un tipo válido.
func BuildView(doc entity.Document) (View, error) {
	entry, err := doctype.Lookup(doc.Type())
	if err != nil {
		return View{}, fmt.Errorf("document: vista: %w", err)
	}
	tot := totals.Calculate(doc.Items)

	v := View{
		Type:       entry.Type,
		Title:      entry.Label,
		Number:     Labeled{Label: entry.NumberLabel, Value: doc.Number},
		IssueDate:  Labeled{Label: entry.IssueDateLabel, Value: jpfmt.Date(doc.IssueDate)},
		Subject:    doc.Subject,
		Totals:     tot,
		SubTotal:   jpfmt.Yen(tot.SubTotal),
		TaxTotal:   jpfmt.Yen(tot.TaxTotal),
		GrandTotal: jpfmt.Yen(tot.GrandTotal),
		Memo:       strings.TrimSpace(doc.Memo),
	}
	if entry.DueDateLabel != "" && entry.Shows(doctype.FieldDueDate) {
		v.DueDate = &Labeled{Label: entry.DueDateLabel, Value: jpfmt.Date(doc.DueDate)}
	}

	// ── Partes ────────────────────────────────────────────────────────────────
	// El destinatario impreso es siempre la contraparte: en la orden de compra el
	// proveedor ocupa el hueco del emisor.
	issuer := issuerParty(entry.IssuerTitle, doc.Issuer, entry.Shows(doctype.FieldRegNo))
	client := clientParty(entry.ClientTitle, doc.Client)
	if entry.SelfRole == doctype.RoleClient {
		issuer.Honorific = defaultHonorific
		client.Honorific = ""
		v.Recipient, v.Sender = issuer, client
	} else {
		v.Recipient, v.Sender = client, issuer
	}

	// ── Líneas ────────────────────────────────────────────────────────────────
	v.Lines = make([]Line, 0, len(doc.Items))
	reduced := false
	for i, it := range doc.Items {
		amounts := totals.LineAmounts(it)
		l := Line{
			No:          i + 1,
			Name:        it.Name,
			Description: it.Description,
			Qty:         jpfmt.Number(it.Qty),
			Unit:        it.Unit,
			UnitPrice:   jpfmt.Number(it.UnitPrice),
			TaxRate:     rateLabel(it.TaxRate),
			Amount:      jpfmt.Number(amounts.Net),
			Item:        it,
			Net:         amounts.Net,
			Tax:         amounts.Tax,
		}
		if entry.Shows(doctype.FieldItemDate) && !it.Date.IsZero() {
			l.Date = jpfmt.DateSlash(it.Date)
		}
		if it.TaxRate == entity.TaxRateReduced {
			reduced = true
		}
		v.Lines = append(v.Lines, l)
	}
	for _, rate := range tot.Rates() {
		b := tot.ByRate[rate]
		v.Breakdown = append(v.Breakdown, RateLine{
			Label: fmt.Sprintf("%d%%対象", int(rate)),
			Net:   jpfmt.Yen(b.Net),
			Tax:   jpfmt.Yen(b.Tax),
		})
	}
	if reduced {
		v.Notices = append(v.Notices, noticeReducedRate)
	}

	// ── Secciones por tipo ────────────────────────────────────────────────────
	b := &viewBuilder{view: &v, doc: doc, totals: tot}
	doc.Details.Accept(b)

	if entry.Shows(doctype.FieldBank) && doc.Bank != nil {
		v.Bank = &BankView{Name: doc.Bank.Name, Type: doc.Bank.Type, Number: doc.Bank.Number, Holder: doc.Bank.Holder}
	}
	if entry.Shows(doctype.FieldFooter) && doc.Footer != nil && doc.Footer.Enabled && !jpfmt.IsBlank(doc.Footer.Text) {
		v.Footer = strings.TrimSpace(doc.Footer.Text)
	}

	v.Warnings = Warnings(doc)
	return v, nil
}

// Warnings avisos previos a la impresión. No bloquean.
func Warnings(doc entity.Document) []string {
	entry, err := doctype.Lookup(doc.Type())
	if err != nil {
		return nil
	}
	var out []string
	for _, f := range doctype.MissingRequired(doc) {
		switch f {
		case doctype.FieldDueDate:
			if entry.Type == entity.TypeInvoice {
				out = append(out, warnInvoiceDue)
			} else {
				out = append(out, entry.DueDateLabel+"が未入力です。")
			}
		case doctype.FieldNumber:
			out = append(out, entry.NumberLabel+"が未入力です。")
		case doctype.FieldIssueDate:
			out = append(out, entry.IssueDateLabel+"が未入力です。")
		case doctype.FieldIssuerName:
			out = append(out, entry.IssuerTitle+"の名称が未入力です。")
		case doctype.FieldClientName:
			out = append(out, entry.ClientTitle+"の名称が未入力です。")
		}
	}
	if entry.Shows(doctype.FieldRegNo) && doc.Issuer.RegNo != "" && !entity.ValidRegNo(doc.Issuer.RegNo) {
		out = append(out, warnRegNo)
	}
	return out
}

// AutoPurpose concepto automático del recibo.
func AutoPurpose(doc entity.Document) string {
	var names []string
	for _, it := range doc.Items {
		if !jpfmt.IsBlank(it.Name) {
			names = append(names, strings.TrimSpace(it.Name))
		}
	}
	switch {
	case len(names) > 1:
		return "下記の通り（別紙明細のとおり）"
	case len(names) == 1:
		return names[0] + "代として"
	case !jpfmt.IsBlank(doc.Subject):
		return strings.TrimSpace(doc.Subject) + "の件"
	}
	return "上記の通り"
}

func issuerParty(title string, p entity.Issuer, withRegNo bool) Party {
	out := Party{Title: title, Name: p.Name, Zip: jpfmt.Zip(p.Zip), Address: p.Address, Tel: p.Tel}
	if withRegNo {
		out.RegNo = p.RegNo
	}
	return out
}

func clientParty(title string, p entity.Client) Party {
	h := p.Honorific
	if h == "" {
		h = defaultHonorific
	}
	return Party{Title: title, Name: p.Name, Honorific: h, Zip: jpfmt.Zip(p.Zip), Address: p.Address}
}

func rateLabel(r entity.TaxRate) string {
	if r == entity.TaxRateReduced {
		return "8%※"
	}
	return fmt.Sprintf("%d%%", int(r))
}

// ── Visitante de secciones ────────────────────────────────────────────────────

type viewBuilder struct {
	view   *View
	doc    entity.Document
	totals totals.Totals
}

func (b *viewBuilder) VisitEstimate(d entity.EstimateDetails) {
	b.view.Lead = "下記の通りお見積り申し上げます。"
	b.view.AmountLabel = "御見積金額（税込）"
	b.view.Amount = jpfmt.Yen(b.totals.GrandTotal)
	b.view.Terms = []Labeled{{Label: "お支払条件", Value: PaymentText(d.Payment)}}
}

func (b *viewBuilder) VisitInvoice(d entity.InvoiceDetails) {
	b.view.Lead = "下記の通りご請求申し上げます。"
	b.view.AmountLabel = "ご請求金額（税込）"
	b.view.Amount = jpfmt.Yen(b.totals.GrandTotal)
	b.view.Terms = []Labeled{{Label: "お支払条件", Value: PaymentText(d.Payment)}}
}

func (b *viewBuilder) VisitPurchaseOrder(d entity.PurchaseOrderDetails) {
	b.view.Lead = "下記の通り発注いたします。"
	b.view.AmountLabel = "発注金額（税込）"
	b.view.Amount = jpfmt.Yen(b.totals.GrandTotal)
	b.view.Terms = []Labeled{
		{Label: "納期", Value: DeliveryText(d.Terms.Delivery)},
		{Label: "検収条件", Value: AcceptanceText(d.Terms.Acceptance)},
		{Label: "支払条件", Value: OrderPaymentText(d.Terms.Payment)},
	}
}

func (b *viewBuilder) VisitReceipt(d entity.ReceiptDetails) {
	b.view.AmountLabel = "領収金額"
	b.view.Amount = "金　" + jpfmt.Yen(b.totals.GrandTotal) + "　也"
	if d.ManualPurpose && !jpfmt.IsBlank(d.Purpose) {
		b.view.Purpose = "但し：" + strings.TrimSpace(d.Purpose)
	} else {
		b.view.Purpose = "但し：" + AutoPurpose(b.doc)
	}
	if b.totals.GrandTotal >= StampDutyThreshold {
		b.view.Notices = append(b.view.Notices, noticeStampDuty)
	}
}

func (b *viewBuilder) VisitContract(d entity.ContractDetails) {
	b.view.AmountLabel = "委託料（税込）"
	b.view.Amount = jpfmt.Yen(b.totals.GrandTotal)
	b.view.Preamble = fmt.Sprintf("%s（以下「甲」という）と%s（以下「乙」という）は、次の通り業務委託契約（以下「本契約」という）を締結する。",
		orBlank(b.doc.Client.Name, "委託者"), orBlank(b.doc.Issuer.Name, "受託者"))
	b.view.Clauses = ContractClauses(b.doc, d, b.totals.GrandTotal)
}

// ── Textos de condiciones ─────────────────────────────────────────────────────

// PaymentText texto de la condición de pago de presupuesto/factura.
func PaymentText(p entity.PaymentTerms) string {
	switch p.Preset {
	case entity.PaymentOther:
		return orBlank(p.Custom, "—")
	case "":
		return "—"
	}
	if l := duedate.Label(p.Preset); l != "" {
		return l
	}
	return "—"
}

// DeliveryText texto del plazo de entrega de la orden de compra.
func DeliveryText(d entity.Delivery) string {
	switch d.Kind {
	case entity.DeliveryPerLine:
		return "各明細記載の通り"
	case entity.DeliveryDate:
		return jpfmt.DateSlash(d.Date)
	case entity.DeliveryPeriod:
		return jpfmt.DateSlash(d.PeriodStart) + "〜" + jpfmt.DateSlash(d.PeriodEnd)
	}
	return orBlank(d.Note, "—")
}

// AcceptanceText texto de la condición de recepción.
func AcceptanceText(a entity.Acceptance) string {
	unit := dayUnit(a.DayKind)
	switch a.Kind {
	case entity.AcceptanceAfter7:
		return "納品後 7" + unit + "以内 に検収"
	case entity.AcceptanceAfter10:
		return "納品後 10" + unit + "以内 に検収"
	case entity.AcceptanceAfter30:
		return "納品後 30日以内 に検収"
	case entity.AcceptanceNone:
		return "検収なし"
	case entity.AcceptanceMilestone:
		return "段階検収（中間・最終）"
	}
	return orBlank(a.Note, "—")
}

// OrderPaymentText texto de la condición de pago de la orden de compra.
func OrderPaymentText(p entity.OrderPayment) string {
	days := p.Days
	if days <= 0 {
		days = entity.DefaultOrderPaymentDays
	}
	unit := dayUnit(p.DayKind)
	switch p.Kind {
	case entity.OrderPaySite30:
		return "検収後 月末締め・翌月末払い"
	case entity.OrderPaySite60:
		return "検収後 月末締め・翌々月末払い"
	case entity.OrderPayDaysAfter:
		return fmt.Sprintf("検収後 %d%s以内 に振込", days, unit)
	case entity.OrderPayOnDelivery:
		return "納品時支払"
	case entity.OrderPayPerDelivery:
		return "都度払い"
	case entity.OrderPayPrepaid:
		pct := p.DepositPct
		if pct <= 0 {
			pct = entity.DefaultDepositPct
		}
		return fmt.Sprintf("前払い（着手金 %d%%）・残金 検収後 %d%s以内 に振込", pct, days, unit)
	}
	return orBlank(p.Note, "—")
}

// ContractClauses artículos del contrato; las cláusulas vacías usan la redacción por defecto.
func ContractClauses(doc entity.Document, d entity.ContractDetails, grand int64) []Clause {
	start := "本契約締結日"
	if !doc.IssueDate.IsZero() {
		start = jpfmt.Date(doc.IssueDate)
	}
	scope := "甲は乙に対し、別紙明細記載の業務（以下「本業務」という）を委託し、乙はこれを受託する。"
	if !jpfmt.IsBlank(doc.Subject) {
		scope = fmt.Sprintf("甲は乙に対し、「%s」に関する業務（以下「本業務」という）を委託し、乙はこれを受託する。業務の詳細は別紙明細のとおりとする。", strings.TrimSpace(doc.Subject))
	}
	return []Clause{
		{Title: "第1条（業務内容）", Text: scope},
		{Title: "第2条（契約期間）", Text: orBlank(d.Period, "本契約の有効期間は、"+start+"から1年間とする。")},
		{Title: "第3条（委託料）", Text: orBlank(d.Reward, "甲は乙に対し、本業務の対価として月額金"+jpfmt.Number(grand)+"円（税込）を支払う。")},
		{Title: "第4条（支払条件）", Text: orBlank(d.PaymentTerms, "業務完了後、月末締め翌月末払いとする。")},
		{Title: "第5条（検収）", Text: orBlank(d.Acceptance, "甲は乙から業務の完了報告を受けた日から7日以内に検収を行い、承認または修正指示を行う。")},
		{Title: "第6条（秘密保持）", Text: orBlank(d.Confidentiality, "両当事者は、本契約に関して知り得た相手方の秘密情報を第三者に開示してはならない。")},
		{Title: "第7条（その他）", Text: "本契約に定めのない事項または本契約の解釈について疑義が生じた事項は、甲乙誠実に協議の上解決する。"},
	}
}

func dayUnit(k entity.DayKind) string {
	if k == entity.DayKindCalendar {
		return "日"
	}
	return "営業日"
}

func orBlank(s, fallback string) string {
	if jpfmt.IsBlank(s) {
		return fallback
	}
	return strings.TrimSpace(s)
}
