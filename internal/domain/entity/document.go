package entity

import (
	"fmt"

	"github.com/jhoicas/chouhyo/internal/domain"
)

// DocumentType tipo de documento (帳票タイプ).
type DocumentType string

const (
	TypeEstimate            DocumentType = "estimate"            // 見積書
	TypeInvoice             DocumentType = "invoice"             // 請求書
	TypePurchaseOrder       DocumentType = "purchaseOrder"       // 発注書
	TypeReceipt             DocumentType = "receipt"             // 領収書
	TypeOutsourcingContract DocumentType = "outsourcingContract" // 業務委託契約書
)

// DocumentTypes en el orden del flujo de trabajo habitual.
var DocumentTypes = []DocumentType{
	TypeEstimate, TypePurchaseOrder, TypeInvoice, TypeReceipt, TypeOutsourcingContract,
}

// ParseDocumentType valida un identificador de tipo.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("tipo %q: %w", s, domain.ErrUnknownDocumentType)
	}
	return t, nil
}

func (t DocumentType) Valid() bool {
	switch t {
	case TypeEstimate, TypeInvoice, TypePurchaseOrder, TypeReceipt, TypeOutsourcingContract:
		return true
	}
	return false
}

// Details es la parte específica de cada tipo de documento. Es una unión cerrada:
// solo los cinco tipos de este paquete la implementan.
type Details interface {
	DocumentType() DocumentType
	Accept(v DetailsVisitor)
	sealed()
}

// DetailsVisitor obliga a tratar los cinco tipos: un visitante incompleto no compila.
type DetailsVisitor interface {
	VisitEstimate(EstimateDetails)
	VisitInvoice(InvoiceDetails)
	VisitPurchaseOrder(PurchaseOrderDetails)
	VisitReceipt(ReceiptDetails)
	VisitContract(ContractDetails)
}

// EstimateDetails presupuesto: condición de pago.
type EstimateDetails struct {
	Payment PaymentTerms `json:"payment"`
}

// InvoiceDetails factura: condición de pago.
type InvoiceDetails struct {
	Payment PaymentTerms `json:"payment"`
}

// PurchaseOrderDetails orden de compra: condiciones de entrega, recepción y pago.
type PurchaseOrderDetails struct {
	Terms OrderTerms `json:"order_terms"`
}

// ReceiptDetails recibo: concepto (但し書き). ManualPurpose marca que el usuario lo editó.
type ReceiptDetails struct {
	Purpose       string `json:"purpose"`
	ManualPurpose bool   `json:"manual_purpose"`
}

// ContractDetails contrato de servicios: cláusulas. Vacío = redacción por defecto.
type ContractDetails struct {
	Period          string `json:"period"`
	Reward          string `json:"reward"`
	PaymentTerms    string `json:"payment_terms"`
	Acceptance      string `json:"acceptance"`
	Confidentiality string `json:"confidentiality"`
}

func (EstimateDetails) DocumentType() DocumentType      { return TypeEstimate }
func (InvoiceDetails) DocumentType() DocumentType       { return TypeInvoice }
func (PurchaseOrderDetails) DocumentType() DocumentType { return TypePurchaseOrder }
func (ReceiptDetails) DocumentType() DocumentType       { return TypeReceipt }
func (ContractDetails) DocumentType() DocumentType      { return TypeOutsourcingContract }

func (d EstimateDetails) Accept(v DetailsVisitor)      { v.VisitEstimate(d) }
func (d InvoiceDetails) Accept(v DetailsVisitor)       { v.VisitInvoice(d) }
func (d PurchaseOrderDetails) Accept(v DetailsVisitor) { v.VisitPurchaseOrder(d) }
func (d ReceiptDetails) Accept(v DetailsVisitor)       { v.VisitReceipt(d) }
func (d ContractDetails) Accept(v DetailsVisitor)      { v.VisitContract(d) }

func (EstimateDetails) sealed()      {}
func (InvoiceDetails) sealed()       {}
func (PurchaseOrderDetails) sealed() {}
func (ReceiptDetails) sealed()       {}
func (ContractDetails) sealed()      {}

// EmptyDetails devuelve la variante en valor cero del tipo t.
func EmptyDetails(t DocumentType) (Details, error) {
	switch t {
	case TypeEstimate:
		return EstimateDetails{}, nil
	case TypeInvoice:
		return InvoiceDetails{}, nil
	case TypePurchaseOrder:
		return PurchaseOrderDetails{}, nil
	case TypeReceipt:
		return ReceiptDetails{}, nil
	case TypeOutsourcingContract:
		return ContractDetails{}, nil
	}
	return nil, fmt.Errorf("tipo %q: %w", t, domain.ErrUnknownDocumentType)
}

// PaymentTermsOf devuelve la condición de pago si la variante la tiene (presupuesto/factura).
func PaymentTermsOf(d Details) (PaymentTerms, bool) {
	switch v := d.(type) {
	case EstimateDetails:
		return v.Payment, true
	case InvoiceDetails:
		return v.Payment, true
	}
	return PaymentTerms{}, false
}

// WithPaymentTerms sustituye la condición de pago en las variantes que la tienen.
func WithPaymentTerms(d Details, p PaymentTerms) (Details, bool) {
	switch d.(type) {
	case EstimateDetails:
		return EstimateDetails{Payment: p}, true
	case InvoiceDetails:
		return InvoiceDetails{Payment: p}, true
	}
	return d, false
}

// Document estado completo de un documento. El tipo activo lo fija la variante Details.
type Document struct {
	Number    string
	Subject   string
	IssueDate Date
	DueDate   Date // solo visible en presupuesto, factura y orden de compra
	Memo      string
	Issuer    Issuer
	Client    Client
	Items     []Item
	Bank      *Bank
	Footer    *FooterTerms
	Details   Details
}

// Type devuelve el tipo activo ("" si el documento no tiene variante).
func (d Document) Type() DocumentType {
	if d.Details == nil {
		return ""
	}
	return d.Details.DocumentType()
}

// Clone copia profunda: las instantáneas no comparten slices ni punteros.
// Las variantes Details son valores sin referencias, se copian al asignarlas.
func (d Document) Clone() Document {
	out := d
	if d.Items != nil {
		out.Items = make([]Item, len(d.Items))
		copy(out.Items, d.Items)
	}
	if d.Bank != nil {
		b := *d.Bank
		out.Bank = &b
	}
	if d.Footer != nil {
		f := *d.Footer
		out.Footer = &f
	}
	return out
}
