package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyDraft() InvoiceDraft {
	return InvoiceDraft{
		InvoiceDate:        date(2025, 1, 1),
		DueDate:            date(2025, 1, 10),
		Amount:             decimal.NewFromInt(100000),
		PenaltyRatePercent: decimal.NewFromInt(5),
		PaymentFrequency:   contract.FrequencyMonthly,
	}
}

func TestNewRecurringInvoice(t *testing.T) {
	inv, err := NewRecurringInvoice(uuid.New(), monthlyDraft())
	require.NoError(t, err)

	assert.Equal(t, PaymentStatusPending, inv.PaymentStatus)
	assert.True(t, inv.IsPending())
	assert.False(t, inv.HasProof())
	assert.Equal(t, 1, inv.Version)

	t.Run("nil claim rejected", func(t *testing.T) {
		_, err := NewRecurringInvoice(uuid.Nil, monthlyDraft())
		assert.Error(t, err)
	})

	t.Run("due date before invoice date rejected", func(t *testing.T) {
		d := monthlyDraft()
		d.DueDate = d.InvoiceDate.AddDate(0, 0, -1)
		_, err := NewRecurringInvoice(uuid.New(), d)
		assert.Error(t, err)
	})
}

func TestRecurringInvoice_ProofAndConfirm(t *testing.T) {
	newInvoice := func(t *testing.T) *RecurringInvoice {
		inv, err := NewRecurringInvoice(uuid.New(), monthlyDraft())
		require.NoError(t, err)
		return inv
	}

	t.Run("attach proof on pending invoice", func(t *testing.T) {
		inv := newInvoice(t)
		require.NoError(t, inv.AttachProof("uploads/receipt-1.pdf"))
		assert.True(t, inv.HasProof())
	})

	t.Run("confirm is terminal", func(t *testing.T) {
		inv := newInvoice(t)
		staff := uuid.New()
		at := date(2025, 1, 5)
		require.NoError(t, inv.Confirm(staff, at))

		assert.True(t, inv.IsConfirmed())
		require.NotNil(t, inv.ConfirmedBy)
		assert.Equal(t, staff, *inv.ConfirmedBy)
		require.NotNil(t, inv.ConfirmedAt)
		assert.Equal(t, at, *inv.ConfirmedAt)

		assert.Error(t, inv.Confirm(uuid.New(), at))
		assert.Error(t, inv.AttachProof("uploads/receipt-2.pdf"))
	})

	t.Run("confirm requires a confirmer", func(t *testing.T) {
		inv := newInvoice(t)
		assert.Error(t, inv.Confirm(uuid.Nil, date(2025, 1, 5)))
	})
}

func TestRecurringInvoice_Assess(t *testing.T) {
	t.Run("monthly overdue invoice accrues the penalty", func(t *testing.T) {
		inv, err := NewRecurringInvoice(uuid.New(), monthlyDraft())
		require.NoError(t, err)

		a := inv.Assess(date(2025, 1, 20))
		assert.True(t, a.Overdue)
		assert.True(t, a.PeriodRent.Equal(decimal.NewFromInt(100000)), "period rent %s", a.PeriodRent)
		assert.True(t, a.PenaltyAmount.Equal(decimal.NewFromInt(5000)), "penalty %s", a.PenaltyAmount)
		assert.True(t, a.TotalDue.Equal(decimal.NewFromInt(105000)), "total %s", a.TotalDue)
	})

	t.Run("quarterly rent multiplies the base amount", func(t *testing.T) {
		d := monthlyDraft()
		d.PaymentFrequency = contract.FrequencyQuarterly
		inv, err := NewRecurringInvoice(uuid.New(), d)
		require.NoError(t, err)

		a := inv.Assess(date(2025, 1, 20))
		assert.True(t, a.PeriodRent.Equal(decimal.NewFromInt(300000)))
		assert.True(t, a.PenaltyAmount.Equal(decimal.NewFromInt(15000)))
		assert.True(t, a.TotalDue.Equal(decimal.NewFromInt(315000)))
	})

	t.Run("not yet overdue carries no penalty", func(t *testing.T) {
		inv, err := NewRecurringInvoice(uuid.New(), monthlyDraft())
		require.NoError(t, err)

		a := inv.Assess(date(2025, 1, 10))
		assert.False(t, a.Overdue)
		assert.True(t, a.PenaltyAmount.IsZero())
		assert.True(t, a.TotalDue.Equal(decimal.NewFromInt(100000)))
	})

	t.Run("confirmed invoice is never overdue", func(t *testing.T) {
		inv, err := NewRecurringInvoice(uuid.New(), monthlyDraft())
		require.NoError(t, err)
		require.NoError(t, inv.Confirm(uuid.New(), date(2025, 1, 5)))

		a := inv.Assess(date(2025, 2, 1))
		assert.False(t, a.Overdue)
		assert.True(t, a.PenaltyAmount.IsZero())
	})
}
