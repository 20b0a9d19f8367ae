package workspace

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/duedate"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

// Fields claves admitidas por Set, con la forma "<sección>.<campo>".
var Fields = []string{
	"number", "subject", "issue_date", "due_date", "memo",
	"issuer.name", "issuer.zip", "issuer.address", "issuer.tel", "issuer.reg_no",
	"client.name", "client.honorific", "client.zip", "client.address",
	"bank.name", "bank.type", "bank.number", "bank.holder",
	"footer.enabled", "footer.text",
}

var honorifics = []string{"", entity.HonorificOnchu, entity.HonorificSama, entity.HonorificDono}

var accountTypes = []string{entity.AccountTypeOrdinary, entity.AccountTypeChecking}

// Set asigna un campo común. Cambiar la fecha de emisión recalcula el vencimiento si la
// condición de pago es calculable; "bank.*" crea el banco si no existía.
func (w *Workspace) Set(ctx context.Context, key, value string) error {
	return w.Update(ctx, func(doc *entity.Document) error {
		return setField(doc, key, value)
	})
}

func setField(doc *entity.Document, key, value string) error {
	switch key {
	case "number":
		doc.Number = value
	case "subject":
		doc.Subject = value
	case "memo":
		doc.Memo = value
	case "issue_date":
		d, err := entity.ParseDate(value)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		doc.IssueDate = d
		*doc = duedate.Refresh(*doc)
	case "due_date":
		d, err := entity.ParseDate(value)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		doc.DueDate = d
	case "issuer.name":
		doc.Issuer.Name = value
	case "issuer.zip":
		doc.Issuer.Zip = value
	case "issuer.address":
		doc.Issuer.Address = value
	case "issuer.tel":
		doc.Issuer.Tel = value
	case "issuer.reg_no":
		doc.Issuer.RegNo = strings.ToUpper(strings.TrimSpace(value))
	case "client.name":
		doc.Client.Name = value
	case "client.honorific":
		if !slices.Contains(honorifics, value) {
			return fmt.Errorf("%w: tratamiento %q", domain.ErrInvalidInput, value)
		}
		doc.Client.Honorific = value
	case "client.zip":
		doc.Client.Zip = value
	case "client.address":
		doc.Client.Address = value
	case "bank.name", "bank.type", "bank.number", "bank.holder":
		if doc.Bank == nil {
			doc.Bank = &entity.Bank{Type: entity.AccountTypeOrdinary}
		}
		switch key {
		case "bank.name":
			doc.Bank.Name = value
		case "bank.type":
			if !slices.Contains(accountTypes, value) {
				return fmt.Errorf("%w: tipo de cuenta %q", domain.ErrInvalidInput, value)
			}
			doc.Bank.Type = value
		case "bank.number":
			doc.Bank.Number = value
		case "bank.holder":
			doc.Bank.Holder = value
		}
	case "footer.enabled":
		on, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: footer.enabled %q", domain.ErrInvalidInput, value)
		}
		if doc.Footer == nil {
			doc.Footer = &entity.FooterTerms{}
		}
		doc.Footer.Enabled = on
	case "footer.text":
		if doc.Footer == nil {
			doc.Footer = &entity.FooterTerms{Enabled: true}
		}
		doc.Footer.Text = value
	default:
		return fmt.Errorf("%w: campo desconocido %q", domain.ErrInvalidInput, key)
	}
	return nil
}

// RemoveBank quita el banco del documento (el registro guardado se conserva).
func (w *Workspace) RemoveBank(ctx context.Context) error {
	return w.Update(ctx, func(doc *entity.Document) error {
		doc.Bank = nil
		return nil
	})
}

// ── Condiciones por tipo ──────────────────────────────────────────────────────

// SetPaymentTerms cambia la condición de pago de presupuesto/factura y recalcula el
// vencimiento si el preset es calculable.
func (w *Workspace) SetPaymentTerms(ctx context.Context, terms entity.PaymentTerms) error {
	if !slices.Contains(entity.PaymentPresets, terms.Preset) {
		return fmt.Errorf("%w: condición de pago %q", domain.ErrInvalidInput, terms.Preset)
	}
	return w.Update(ctx, func(doc *entity.Document) error {
		next, ok := entity.WithPaymentTerms(doc.Details, terms)
		if !ok {
			return fmt.Errorf("workspace: condición de pago en %s: %w", doc.Type(), domain.ErrUnsupportedOperation)
		}
		doc.Details = next
		*doc = duedate.Refresh(*doc)
		return nil
	})
}

// UpdateOrderTerms modifica las condiciones de la orden de compra y recalcula el vencimiento.
func (w *Workspace) UpdateOrderTerms(ctx context.Context, fn func(t *entity.OrderTerms)) error {
	return w.Update(ctx, func(doc *entity.Document) error {
		po, ok := doc.Details.(entity.PurchaseOrderDetails)
		if !ok {
			return fmt.Errorf("workspace: condiciones de orden en %s: %w", doc.Type(), domain.ErrUnsupportedOperation)
		}
		fn(&po.Terms)
		doc.Details = po
		*doc = duedate.Refresh(*doc)
		return nil
	})
}

// SetReceiptPurpose fija el concepto del recibo. Vacío vuelve al texto automático.
func (w *Workspace) SetReceiptPurpose(ctx context.Context, purpose string) error {
	return w.Update(ctx, func(doc *entity.Document) error {
		if _, ok := doc.Details.(entity.ReceiptDetails); !ok {
			return fmt.Errorf("workspace: concepto en %s: %w", doc.Type(), domain.ErrUnsupportedOperation)
		}
		doc.Details = entity.ReceiptDetails{Purpose: purpose, ManualPurpose: strings.TrimSpace(purpose) != ""}
		return nil
	})
}

// ContractClauses cláusulas editables del contrato.
var ContractClauses = []string{"period", "reward", "payment_terms", "acceptance", "confidentiality"}

// SetContractClause cambia una cláusula del contrato. Vacío vuelve a la redacción por defecto.
func (w *Workspace) SetContractClause(ctx context.Context, clause, text string) error {
	return w.Update(ctx, func(doc *entity.Document) error {
		c, ok := doc.Details.(entity.ContractDetails)
		if !ok {
			return fmt.Errorf("workspace: cláusula en %s: %w", doc.Type(), domain.ErrUnsupportedOperation)
		}
		switch clause {
		case "period":
			c.Period = text
		case "reward":
			c.Reward = text
		case "payment_terms":
			c.PaymentTerms = text
		case "acceptance":
			c.Acceptance = text
		case "confidentiality":
			c.Confidentiality = text
		default:
			return fmt.Errorf("%w: cláusula desconocida %q", domain.ErrInvalidInput, clause)
		}
		doc.Details = c
		return nil
	})
}

// ── Líneas ────────────────────────────────────────────────────────────────────

// AddItem añade una línea; devuelve su índice.
func (w *Workspace) AddItem(ctx context.Context, it entity.Item) (int, error) {
	idx := -1
	err := w.Update(ctx, func(doc *entity.Document) error {
		doc.Items = append(doc.Items, it)
		idx = len(doc.Items) - 1
		return nil
	})
	return idx, err
}

// UpdateItem aplica un parche parcial a la línea idx.
func (w *Workspace) UpdateItem(ctx context.Context, idx int, patch entity.ItemPatch) error {
	return w.Update(ctx, func(doc *entity.Document) error {
		if idx < 0 || idx >= len(doc.Items) {
			return fmt.Errorf("workspace: línea %d: %w", idx, domain.ErrItemIndexOutOfRange)
		}
		doc.Items[idx] = patch.Apply(doc.Items[idx])
		return nil
	})
}

// RemoveItem elimina la línea idx.
func (w *Workspace) RemoveItem(ctx context.Context, idx int) error {
	return w.Update(ctx, func(doc *entity.Document) error {
		if idx < 0 || idx >= len(doc.Items) {
			return fmt.Errorf("workspace: línea %d: %w", idx, domain.ErrItemIndexOutOfRange)
		}
		doc.Items = slices.Delete(doc.Items, idx, idx+1)
		return nil
	})
}
