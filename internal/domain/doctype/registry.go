// Package doctype es el registro de tipos de documento: etiquetas, campos visibles,
// campos obligatorios y valores por defecto de cada tipo.
package doctype

import (
	"fmt"
	"slices"
	"time"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/duedate"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

// Field identifica un campo del formulario o de la vista impresa.
type Field string

const (
	FieldNumber          Field = "number"
	FieldIssueDate       Field = "issue_date"
	FieldIssuerName      Field = "issuer_name"
	FieldClientName      Field = "client_name"
	FieldDueDate         Field = "due_date"
	FieldPaymentTerms    Field = "payment_terms"
	FieldBank            Field = "bank"
	FieldRegNo           Field = "reg_no"
	FieldOrderTerms      Field = "order_terms"
	FieldContractClauses Field = "contract_clauses"
	FieldReceiptPurpose  Field = "receipt_purpose"
	FieldItemDate        Field = "item_date"
	FieldFooter          Field = "footer"
)

// Role hueco del documento que ocupa la propia empresa.
type Role string

const (
	RoleIssuer Role = "issuer"
	RoleClient Role = "client"
)

// Entry describe un tipo de documento.
type Entry struct {
	Type           entity.DocumentType `json:"type"`
	Label          string              `json:"label"`
	NumberLabel    string              `json:"number_label"`
	IssueDateLabel string              `json:"issue_date_label"`
	DueDateLabel   string              `json:"due_date_label,omitempty"`
	IssuerTitle    string              `json:"issuer_title"`
	ClientTitle    string              `json:"client_title"`
	NumberPrefix   string              `json:"number_prefix"`
	SelfRole       Role                `json:"self_role"`
	DefaultMemo    string              `json:"default_memo"`
	Visible        []Field             `json:"visible"`
	Required       []Field             `json:"required"`
}

// Shows indica si el campo se muestra para este tipo.
func (e Entry) Shows(f Field) bool { return slices.Contains(e.Visible, f) }

// Requires indica si el campo es obligatorio para imprimir.
func (e Entry) Requires(f Field) bool { return slices.Contains(e.Required, f) }

var commonRequired = []Field{FieldNumber, FieldIssueDate, FieldIssuerName, FieldClientName}

var registry = map[entity.DocumentType]Entry{
	entity.TypeEstimate: {
		Type:           entity.TypeEstimate,
		Label:          "見積書",
		NumberLabel:    "書類番号",
		IssueDateLabel: "発行日",
		DueDateLabel:   "有効期限",
		IssuerTitle:    "発行者（自社）",
		ClientTitle:    "提出先",
		NumberPrefix:   "QTE",
		SelfRole:       RoleIssuer,
		DefaultMemo:    "本見積書の有効期限は発行日より30日間です。",
		Visible:        []Field{FieldDueDate, FieldPaymentTerms, FieldBank, FieldRegNo, FieldItemDate, FieldFooter},
		Required:       commonRequired,
	},
	entity.TypeInvoice: {
		Type:           entity.TypeInvoice,
		Label:          "請求書",
		NumberLabel:    "書類番号",
		IssueDateLabel: "請求日",
		DueDateLabel:   "支払期限",
		IssuerTitle:    "請求者（自社）",
		ClientTitle:    "請求先",
		NumberPrefix:   "INV",
		SelfRole:       RoleIssuer,
		DefaultMemo:    "お支払期日までに下記口座へお振込みをお願いいたします（振込手数料はご負担ください）。",
		Visible:        []Field{FieldDueDate, FieldPaymentTerms, FieldBank, FieldRegNo, FieldItemDate, FieldFooter},
		Required:       append(slices.Clone(commonRequired), FieldDueDate),
	},
	entity.TypePurchaseOrder: {
		Type:           entity.TypePurchaseOrder,
		Label:          "発注書",
		NumberLabel:    "発注番号",
		IssueDateLabel: "発注日",
		DueDateLabel:   "支払期限",
		IssuerTitle:    "受注者",
		ClientTitle:    "発注者（自社）",
		NumberPrefix:   "PO",
		SelfRole:       RoleClient,
		DefaultMemo:    "上記の通り発注いたします。納品時に納品書を添付してください。",
		Visible:        []Field{FieldDueDate, FieldOrderTerms, FieldRegNo, FieldItemDate, FieldFooter},
		Required:       commonRequired,
	},
	entity.TypeReceipt: {
		Type:           entity.TypeReceipt,
		Label:          "領収書",
		NumberLabel:    "領収書番号",
		IssueDateLabel: "領収日",
		IssuerTitle:    "領収者（自社）",
		ClientTitle:    "宛名",
		NumberPrefix:   "RCP",
		SelfRole:       RoleIssuer,
		DefaultMemo:    "上記正に領収いたしました。",
		Visible:        []Field{FieldRegNo, FieldReceiptPurpose, FieldFooter},
		Required:       commonRequired,
	},
	entity.TypeOutsourcingContract: {
		Type:           entity.TypeOutsourcingContract,
		Label:          "業務委託契約書",
		NumberLabel:    "契約番号",
		IssueDateLabel: "契約日",
		IssuerTitle:    "乙（受託者）",
		ClientTitle:    "甲（委託者）",
		NumberPrefix:   "CTR",
		SelfRole:       RoleIssuer,
		DefaultMemo:    "本契約の成立を証するため、本書2通を作成し、甲乙記名押印の上、各1通を保有する。",
		Visible:        []Field{FieldContractClauses},
		Required:       commonRequired,
	},
}

// Lookup devuelve la entrada del tipo o ErrUnknownDocumentType.
func Lookup(t entity.DocumentType) (Entry, error) {
	e, ok := registry[t]
	if !ok {
		return Entry{}, fmt.Errorf("doctype: %q: %w", t, domain.ErrUnknownDocumentType)
	}
	return e, nil
}

// All devuelve las entradas en el orden del flujo de trabajo.
func All() []Entry {
	out := make([]Entry, 0, len(entity.DocumentTypes))
	for _, t := range entity.DocumentTypes {
		out = append(out, registry[t])
	}
	return out
}

// DefaultMemo plantilla de observaciones del tipo ("" si es desconocido).
func DefaultMemo(t entity.DocumentType) string {
	return registry[t].DefaultMemo
}

// SelfRole hueco de la propia empresa: el destinatario en la orden de compra, el emisor en el resto.
func SelfRole(t entity.DocumentType) Role {
	if e, ok := registry[t]; ok {
		return e.SelfRole
	}
	return RoleIssuer
}

// DefaultNumber genera "<PREFIJO>-YYYYMM-001".
func DefaultNumber(t entity.DocumentType, issue entity.Date) string {
	prefix := registry[t].NumberPrefix
	if issue.IsZero() {
		return fmt.Sprintf("%s-YYYYMM-001", prefix)
	}
	return fmt.Sprintf("%s-%04d%02d-001", prefix, issue.Year(), int(issue.Month()))
}

// DefaultDetails variante por defecto de cada tipo.
func DefaultDetails(t entity.DocumentType) (entity.Details, error) {
	switch t {
	case entity.TypeEstimate:
		return entity.EstimateDetails{Payment: entity.PaymentTerms{Preset: entity.PaymentEOMNextEOM}}, nil
	case entity.TypeInvoice:
		return entity.InvoiceDetails{Payment: entity.PaymentTerms{Preset: entity.PaymentEOMNextEOM}}, nil
	case entity.TypePurchaseOrder:
		return entity.PurchaseOrderDetails{Terms: entity.DefaultOrderTerms()}, nil
	case entity.TypeReceipt:
		return entity.ReceiptDetails{}, nil
	case entity.TypeOutsourcingContract:
		return entity.ContractDetails{}, nil
	}
	return nil, fmt.Errorf("doctype: %q: %w", t, domain.ErrUnknownDocumentType)
}

// NewDocument construye un documento nuevo del tipo t emitido el día today:
// número por defecto, memo por defecto, una línea vacía y vencimiento calculado.
func NewDocument(t entity.DocumentType, today time.Time) (entity.Document, error) {
	details, err := DefaultDetails(t)
	if err != nil {
		return entity.Document{}, err
	}
	issue := entity.DateOf(today)
	doc := entity.Document{
		Number:    DefaultNumber(t, issue),
		IssueDate: issue,
		Memo:      DefaultMemo(t),
		Items:     []entity.Item{entity.NewItem()},
		Details:   details,
	}
	return duedate.Refresh(doc), nil
}

// MissingRequired lista los campos obligatorios vacíos, en el orden del registro.
func MissingRequired(doc entity.Document) []Field {
	e, ok := registry[doc.Type()]
	if !ok {
		return nil
	}
	var missing []Field
	for _, f := range e.Required {
		empty := false
		switch f {
		case FieldNumber:
			empty = doc.Number == ""
		case FieldIssueDate:
			empty = doc.IssueDate.IsZero()
		case FieldDueDate:
			empty = doc.DueDate.IsZero()
		case FieldIssuerName:
			empty = doc.Issuer.Name == ""
		case FieldClientName:
			empty = doc.Client.Name == ""
		}
		if empty {
			missing = append(missing, f)
		}
	}
	return missing
}
