package entity

import (
	"encoding/json"
	"fmt"

	"github.com/jhoicas/chouhyo/internal/domain"
)

// documentOut forma de cable: snake_case, campo "type" y solo la sección del tipo activo.
type documentOut struct {
	Type       DocumentType     `json:"type"`
	Number     string           `json:"number"`
	Subject    string           `json:"subject"`
	IssueDate  Date             `json:"issue_date"`
	DueDate    Date             `json:"due_date"`
	Memo       string           `json:"memo"`
	Issuer     Issuer           `json:"issuer"`
	Client     Client           `json:"client"`
	Items      []Item           `json:"items"`
	Bank       *Bank            `json:"bank"`
	Footer     *FooterTerms     `json:"footer"`
	Payment    *PaymentTerms    `json:"payment,omitempty"`
	OrderTerms *OrderTerms      `json:"order_terms,omitempty"`
	Receipt    *ReceiptDetails  `json:"receipt,omitempty"`
	Contract   *ContractDetails `json:"contract,omitempty"`
}

// documentIn lectura tolerante: todo es opcional, los campos ausentes no tocan el receptor.
type documentIn struct {
	Type       *DocumentType     `json:"type"`
	Number     *string           `json:"number"`
	Subject    *string           `json:"subject"`
	IssueDate  *Date             `json:"issue_date"`
	DueDate    *Date             `json:"due_date"`
	Memo       *string           `json:"memo"`
	Issuer     json.RawMessage   `json:"issuer"`
	Client     json.RawMessage   `json:"client"`
	Items      []json.RawMessage `json:"items"`
	Bank       json.RawMessage   `json:"bank"`
	Footer     json.RawMessage   `json:"footer"`
	Payment    json.RawMessage   `json:"payment"`
	OrderTerms json.RawMessage   `json:"order_terms"`
	Receipt    json.RawMessage   `json:"receipt"`
	Contract   json.RawMessage   `json:"contract"`
}

type sectionWriter struct{ out *documentOut }

func (w sectionWriter) VisitEstimate(d EstimateDetails)           { w.out.Payment = &d.Payment }
func (w sectionWriter) VisitInvoice(d InvoiceDetails)             { w.out.Payment = &d.Payment }
func (w sectionWriter) VisitPurchaseOrder(d PurchaseOrderDetails) { w.out.OrderTerms = &d.Terms }
func (w sectionWriter) VisitReceipt(d ReceiptDetails)             { w.out.Receipt = &d }
func (w sectionWriter) VisitContract(d ContractDetails)           { w.out.Contract = &d }

func (d Document) MarshalJSON() ([]byte, error) {
	if d.Details == nil {
		return nil, fmt.Errorf("entity: serializar documento: %w", domain.ErrUnknownDocumentType)
	}
	out := documentOut{
		Type:      d.Type(),
		Number:    d.Number,
		Subject:   d.Subject,
		IssueDate: d.IssueDate,
		DueDate:   d.DueDate,
		Memo:      d.Memo,
		Issuer:    d.Issuer,
		Client:    d.Client,
		Items:     d.Items,
		Bank:      d.Bank,
		Footer:    d.Footer,
	}
	if out.Items == nil {
		out.Items = []Item{}
	}
	d.Details.Accept(sectionWriter{out: &out})
	return json.Marshal(out)
}

// UnmarshalJSON fusiona el JSON sobre el documento actual: los campos ausentes conservan
// su valor, los objetos anidados se fusionan campo a campo y cada línea parte de NewItem().
// Si el JSON cambia el tipo, la variante se reinicia al valor cero del tipo nuevo.
func (d *Document) UnmarshalJSON(b []byte) error {
	var in documentIn
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	target := d.Type()
	if in.Type != nil {
		target = *in.Type
	}
	if !target.Valid() {
		return fmt.Errorf("tipo %q: %w", target, domain.ErrUnknownDocumentType)
	}
	if d.Details == nil || d.Details.DocumentType() != target {
		empty, err := EmptyDetails(target)
		if err != nil {
			return err
		}
		d.Details = empty
	}

	if in.Number != nil {
		d.Number = *in.Number
	}
	if in.Subject != nil {
		d.Subject = *in.Subject
	}
	if in.IssueDate != nil {
		d.IssueDate = *in.IssueDate
	}
	if in.DueDate != nil {
		d.DueDate = *in.DueDate
	}
	if in.Memo != nil {
		d.Memo = *in.Memo
	}
	if err := mergeInto(in.Issuer, &d.Issuer); err != nil {
		return fmt.Errorf("issuer: %w", err)
	}
	if err := mergeInto(in.Client, &d.Client); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if in.Items != nil {
		items := make([]Item, 0, len(in.Items))
		for i, raw := range in.Items {
			it := NewItem()
			if err := mergeInto(raw, &it); err != nil {
				return fmt.Errorf("items[%d]: %w", i, err)
			}
			items = append(items, it)
		}
		d.Items = items
	}
	if len(in.Bank) > 0 {
		if isNull(in.Bank) {
			d.Bank = nil
		} else {
			bank := Bank{}
			if d.Bank != nil {
				bank = *d.Bank
			}
			if err := json.Unmarshal(in.Bank, &bank); err != nil {
				return fmt.Errorf("bank: %w", err)
			}
			d.Bank = &bank
		}
	}
	if len(in.Footer) > 0 {
		if isNull(in.Footer) {
			d.Footer = nil
		} else {
			footer := FooterTerms{}
			if d.Footer != nil {
				footer = *d.Footer
			}
			if err := json.Unmarshal(in.Footer, &footer); err != nil {
				return fmt.Errorf("footer: %w", err)
			}
			d.Footer = &footer
		}
	}
	return d.mergeDetails(in)
}

func (d *Document) mergeDetails(in documentIn) error {
	switch v := d.Details.(type) {
	case EstimateDetails:
		if err := mergeInto(in.Payment, &v.Payment); err != nil {
			return fmt.Errorf("payment: %w", err)
		}
		d.Details = v
	case InvoiceDetails:
		if err := mergeInto(in.Payment, &v.Payment); err != nil {
			return fmt.Errorf("payment: %w", err)
		}
		d.Details = v
	case PurchaseOrderDetails:
		if err := mergeInto(in.OrderTerms, &v.Terms); err != nil {
			return fmt.Errorf("order_terms: %w", err)
		}
		d.Details = v
	case ReceiptDetails:
		if err := mergeInto(in.Receipt, &v); err != nil {
			return fmt.Errorf("receipt: %w", err)
		}
		d.Details = v
	case ContractDetails:
		if err := mergeInto(in.Contract, &v); err != nil {
			return fmt.Errorf("contract: %w", err)
		}
		d.Details = v
	}
	return nil
}

// mergeInto decodifica raw sobre dst; ausente o null no cambia nada.
func mergeInto(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
