// Package transition aplica el cambio de tipo de un documento.
package transition

import (
	"fmt"

	"github.com/jhoicas/chouhyo/internal/domain/doctype"
	"github.com/jhoicas/chouhyo/internal/domain/duedate"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

// Apply devuelve una copia de doc convertida al tipo to. profile es el perfil propio
// guardado (puede ser nil). Número, fechas, líneas y banco nunca se borran ni se recalculan.
//
// Orden:
//  1. Memo: si coincide exactamente con la plantilla del tipo anterior, se sustituye.
//  2. Orden de compra: la propia empresa pasa del emisor al destinatario, y al revés al salir.
//  3. Variante: la del tipo nuevo por defecto; la condición de pago pasa entre presupuesto y factura.
func Apply(doc entity.Document, to entity.DocumentType, profile *entity.Issuer) (entity.Document, error) {
	if _, err := doctype.Lookup(to); err != nil {
		return doc, fmt.Errorf("transition: %w", err)
	}
	from := doc.Type()
	if from == to {
		return doc, nil
	}
	out := doc.Clone()

	// 1. Memo
	if out.Memo == doctype.DefaultMemo(from) {
		out.Memo = doctype.DefaultMemo(to)
	}

	// 2. Intercambio de roles
	fromRole, toRole := doctype.SelfRole(from), doctype.SelfRole(to)
	switch {
	case fromRole == doctype.RoleIssuer && toRole == doctype.RoleClient:
		self := out.Issuer
		if profile != nil {
			self = entity.MergeIssuer(*profile, out.Issuer)
		}
		out.Client = self.AsClient()
		out.Issuer = entity.Issuer{}
	case fromRole == doctype.RoleClient && toRole == doctype.RoleIssuer:
		if profile != nil && !profile.IsEmpty() {
			out.Issuer = entity.MergeIssuer(*profile, out.Client.AsIssuer())
		} else {
			out.Issuer = out.Client.AsIssuer()
		}
		out.Client = entity.Client{}
	}

	// 3. Variante
	details, err := doctype.DefaultDetails(to)
	if err != nil {
		return doc, fmt.Errorf("transition: %w", err)
	}
	if pay, ok := entity.PaymentTermsOf(doc.Details); ok {
		details, _ = entity.WithPaymentTerms(details, pay)
	}
	out.Details = details

	// Un vencimiento existente no se toca; solo se rellena si estaba vacío.
	if out.DueDate.IsZero() {
		out = duedate.Refresh(out)
	}
	return out, nil
}
