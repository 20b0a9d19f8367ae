package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/chouhyo/internal/application/workspace"
	"github.com/jhoicas/chouhyo/internal/domain"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

var (
	deliveryKinds   = []entity.DeliveryKind{entity.DeliveryPerLine, entity.DeliveryDate, entity.DeliveryPeriod, entity.DeliveryOther}
	acceptanceKinds = []entity.AcceptanceKind{
		entity.AcceptanceAfter7, entity.AcceptanceAfter10, entity.AcceptanceAfter30,
		entity.AcceptanceNone, entity.AcceptanceMilestone, entity.AcceptanceCustom,
	}
	orderPaymentKinds = []entity.OrderPaymentKind{
		entity.OrderPaySite30, entity.OrderPaySite60, entity.OrderPayDaysAfter, entity.OrderPayOnDelivery,
		entity.OrderPayPrepaid, entity.OrderPayPerDelivery, entity.OrderPayCustom,
	}
	dayKinds = []entity.DayKind{entity.DayKindBusiness, entity.DayKindCalendar}
)

func (s *session) termsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "Condiciones propias de cada tipo de documento",
	}
	cmd.AddCommand(s.termsPaymentCmd(), s.termsOrderCmd(), s.termsPurposeCmd(), s.termsClauseCmd())
	return cmd
}

func (s *session) termsPaymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payment <preset> [texto]",
		Short: "Condición de pago de presupuesto o factura",
		Long: "Presets: " + joinKinds(entity.PaymentPresets) + `.
Con "other" el texto libre sustituye a la condición. Los presets calculables
recalculan la fecha de vencimiento a partir de la fecha de emisión.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			terms := entity.PaymentTerms{
				Preset: entity.PaymentPreset(args[0]),
				Custom: strings.Join(args[1:], " "),
			}
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				return ws.SetPaymentTerms(ctx, terms)
			})
		},
	}
}

type orderFlags struct {
	delivery, deliveryDate, periodStart, periodEnd, deliveryNote string
	acceptance, acceptanceDays, acceptanceNote                    string
	payment, paymentDayKind, paymentNote                          string
	paymentDays, deposit                                          int
}

func (s *session) termsOrderCmd() *cobra.Command {
	var f orderFlags
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Condiciones de entrega, recepción y pago de la orden de compra",
		Example: `  chouhyo terms order --delivery date --delivery-date 2025-02-28
  chouhyo terms order --payment prepaid --deposit 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apply, err := f.build(cmd)
			if err != nil {
				return err
			}
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				return ws.UpdateOrderTerms(ctx, apply)
			})
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&f.delivery, "delivery", "", "納期: "+joinKinds(deliveryKinds))
	fs.StringVar(&f.deliveryDate, "delivery-date", "", "fecha de entrega (YYYY-MM-DD)")
	fs.StringVar(&f.periodStart, "period-start", "", "inicio del periodo de entrega")
	fs.StringVar(&f.periodEnd, "period-end", "", "fin del periodo de entrega")
	fs.StringVar(&f.deliveryNote, "delivery-note", "", "texto libre de entrega")
	fs.StringVar(&f.acceptance, "acceptance", "", "検収: "+joinKinds(acceptanceKinds))
	fs.StringVar(&f.acceptanceDays, "acceptance-day-kind", "", "business o calendar")
	fs.StringVar(&f.acceptanceNote, "acceptance-note", "", "texto libre de recepción")
	fs.StringVar(&f.payment, "payment", "", "支払条件: "+joinKinds(orderPaymentKinds))
	fs.IntVar(&f.paymentDays, "payment-days", entity.DefaultOrderPaymentDays, "plazo en días tras la recepción")
	fs.StringVar(&f.paymentDayKind, "payment-day-kind", "", "business o calendar")
	fs.IntVar(&f.deposit, "deposit", entity.DefaultDepositPct, "porcentaje de anticipo (prepaid)")
	fs.StringVar(&f.paymentNote, "payment-note", "", "texto libre de pago")
	return cmd
}

// build valida las opciones antes de abrir el documento y devuelve el parche.
// Cambiar el tipo de recepción o de pago reinicia sus valores por defecto.
func (f *orderFlags) build(cmd *cobra.Command) (func(t *entity.OrderTerms), error) {
	changed := cmd.Flags().Changed

	if changed("delivery") && !slices.Contains(deliveryKinds, entity.DeliveryKind(f.delivery)) {
		return nil, invalidKind("entrega", f.delivery)
	}
	if changed("acceptance") && !slices.Contains(acceptanceKinds, entity.AcceptanceKind(f.acceptance)) {
		return nil, invalidKind("recepción", f.acceptance)
	}
	if changed("payment") && !slices.Contains(orderPaymentKinds, entity.OrderPaymentKind(f.payment)) {
		return nil, invalidKind("pago", f.payment)
	}
	for _, name := range []string{"acceptance-day-kind", "payment-day-kind"} {
		v, _ := cmd.Flags().GetString(name)
		if changed(name) && !slices.Contains(dayKinds, entity.DayKind(v)) {
			return nil, invalidKind("días", v)
		}
	}
	if changed("deposit") && (f.deposit < 0 || f.deposit > 100) {
		return nil, fmt.Errorf("%w: anticipo %d%% fuera de 0..100", domain.ErrInvalidInput, f.deposit)
	}
	if changed("payment-days") && f.paymentDays < 0 {
		return nil, fmt.Errorf("%w: plazo %d negativo", domain.ErrInvalidInput, f.paymentDays)
	}

	dates := map[string]*entity.Date{}
	for name, raw := range map[string]string{
		"delivery-date": f.deliveryDate, "period-start": f.periodStart, "period-end": f.periodEnd,
	} {
		if !changed(name) {
			continue
		}
		d, err := entity.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		dates[name] = &d
	}

	return func(t *entity.OrderTerms) {
		if changed("delivery") {
			t.Delivery.Kind = entity.DeliveryKind(f.delivery)
		}
		if d, ok := dates["delivery-date"]; ok {
			t.Delivery.Date = *d
		}
		if d, ok := dates["period-start"]; ok {
			t.Delivery.PeriodStart = *d
		}
		if d, ok := dates["period-end"]; ok {
			t.Delivery.PeriodEnd = *d
		}
		if changed("delivery-note") {
			t.Delivery.Note = f.deliveryNote
		}

		if changed("acceptance") {
			t.Acceptance = entity.NewAcceptance(entity.AcceptanceKind(f.acceptance))
		}
		if changed("acceptance-day-kind") {
			t.Acceptance.DayKind = entity.DayKind(f.acceptanceDays)
		}
		if changed("acceptance-note") {
			t.Acceptance.Note = f.acceptanceNote
		}

		if changed("payment") {
			t.Payment = entity.NewOrderPayment(entity.OrderPaymentKind(f.payment))
		}
		if changed("payment-days") {
			t.Payment.Days = f.paymentDays
		}
		if changed("payment-day-kind") {
			t.Payment.DayKind = entity.DayKind(f.paymentDayKind)
		}
		if changed("deposit") {
			t.Payment.DepositPct = f.deposit
		}
		if changed("payment-note") {
			t.Payment.Note = f.paymentNote
		}
	}, nil
}

func (s *session) termsPurposeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purpose [texto]",
		Short: "Concepto del recibo (但し書き); sin texto vuelve al automático",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			purpose := strings.Join(args, " ")
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				return ws.SetReceiptPurpose(ctx, purpose)
			})
		},
	}
}

func (s *session) termsClauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clause <cláusula> [texto]",
		Short: "Redacción de una cláusula del contrato; sin texto vuelve a la redacción por defecto",
		Long:  "Cláusulas: " + strings.Join(workspace.ContractClauses, ", ") + ".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return s.mutate(cmd, func(ctx context.Context, ws *workspace.Workspace) error {
				return ws.SetContractClause(ctx, args[0], text)
			})
		},
	}
}

func invalidKind(what, v string) error {
	return fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, what, v)
}

func joinKinds[T ~string](kinds []T) string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return strings.Join(out, ", ")
}
