package duedate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/chouhyo/internal/domain/duedate"
	"github.com/jhoicas/chouhyo/internal/domain/entity"
)

func TestResolve(t *testing.T) {
	issue := entity.MustParseDate("2025-01-15")
	cases := []struct {
		preset entity.PaymentPreset
		want   string
		ok     bool
	}{
		{entity.PaymentEOMNextEOM, "2025-02-28", true},
		{entity.PaymentEOMNext10th, "2025-02-10", true},
		{entity.PaymentEOMSecondEOM, "2025-03-31", true},
		{entity.PaymentNet7, "2025-01-22", true},
		{entity.PaymentNet30, "2025-02-14", true},
		{entity.PaymentPrepaid, "2025-01-15", true},
		{entity.PaymentOther, "", false},
		{entity.PaymentPreset("desconocido"), "", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.preset), func(t *testing.T) {
			got, ok := duedate.Resolve(issue, tc.preset)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestResolve_FinDeAño(t *testing.T) {
	got, ok := duedate.Resolve(entity.MustParseDate("2024-12-31"), entity.PaymentEOMSecondEOM)
	assert.True(t, ok)
	assert.Equal(t, "2025-02-28", got.String())

	got, _ = duedate.Resolve(entity.MustParseDate("2024-11-30"), entity.PaymentEOMNext10th)
	assert.Equal(t, "2024-12-10", got.String())
}

func TestResolve_SinFechaDeEmision(t *testing.T) {
	_, ok := duedate.Resolve(entity.Date{}, entity.PaymentNet30)
	assert.False(t, ok)
}

func TestResolveOrder(t *testing.T) {
	issue := entity.MustParseDate("2025-01-15")
	cases := []struct {
		name string
		pay  entity.OrderPayment
		want string
		ok   bool
	}{
		{"site_30", entity.NewOrderPayment(entity.OrderPaySite30), "2025-02-28", true},
		{"site_60", entity.NewOrderPayment(entity.OrderPaySite60), "2025-03-31", true},
		{"days_after por defecto", entity.NewOrderPayment(entity.OrderPayDaysAfter), "2025-02-14", true},
		{"days_after 10", entity.OrderPayment{Kind: entity.OrderPayDaysAfter, Days: 10}, "2025-01-25", true},
		{"days_after sin días", entity.OrderPayment{Kind: entity.OrderPayDaysAfter}, "2025-02-14", true},
		{"on_delivery", entity.NewOrderPayment(entity.OrderPayOnDelivery), "2025-01-15", true},
		{"prepaid", entity.NewOrderPayment(entity.OrderPayPrepaid), "", false},
		{"per_delivery", entity.NewOrderPayment(entity.OrderPayPerDelivery), "", false},
		{"custom", entity.NewOrderPayment(entity.OrderPayCustom), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := duedate.ResolveOrder(issue, tc.pay)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestRefresh_ConservaVencimientoManual(t *testing.T) {
	doc := entity.Document{
		IssueDate: entity.MustParseDate("2025-01-15"),
		DueDate:   entity.MustParseDate("2025-04-01"),
		Details:   entity.InvoiceDetails{Payment: entity.PaymentTerms{Preset: entity.PaymentOther, Custom: "別途協議"}},
	}
	assert.Equal(t, "2025-04-01", duedate.Refresh(doc).DueDate.String())

	doc.Details = entity.InvoiceDetails{Payment: entity.PaymentTerms{Preset: entity.PaymentNet30}}
	assert.Equal(t, "2025-02-14", duedate.Refresh(doc).DueDate.String())
}

func TestRefresh_ReciboSinVencimiento(t *testing.T) {
	doc := entity.Document{IssueDate: entity.MustParseDate("2025-01-15"), Details: entity.ReceiptDetails{}}
	assert.True(t, duedate.Refresh(doc).DueDate.IsZero())
}

func TestComputable(t *testing.T) {
	assert.True(t, duedate.Computable(entity.PaymentNet7))
	assert.False(t, duedate.Computable(entity.PaymentOther))
	assert.Equal(t, "月末締め、翌月末払い", duedate.Label(entity.PaymentEOMNextEOM))
}
