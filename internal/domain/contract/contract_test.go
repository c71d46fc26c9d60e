package contract

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() BillingSettings {
	return BillingSettings{
		InvoiceDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		PaymentFrequency:   FrequencyMonthly,
		DueOffsetDays:      10,
		PenaltyRatePercent: decimal.NewFromInt(5),
		Amount:             decimal.NewFromInt(100000),
	}
}

func TestFrequency_PeriodsPerCharge(t *testing.T) {
	assert.Equal(t, 1, FrequencyDaily.PeriodsPerCharge())
	assert.Equal(t, 1, FrequencyMonthly.PeriodsPerCharge())
	assert.Equal(t, 3, FrequencyQuarterly.PeriodsPerCharge())
	assert.Equal(t, 12, FrequencyYearly.PeriodsPerCharge())
}

func TestFrequency_Step(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, start.AddDate(0, 0, 2), FrequencyDaily.Step(start, 2))
	assert.Equal(t, start.AddDate(0, 2, 0), FrequencyMonthly.Step(start, 2))
	assert.Equal(t, start.AddDate(0, 6, 0), FrequencyQuarterly.Step(start, 2))
	assert.Equal(t, start.AddDate(2, 0, 0), FrequencyYearly.Step(start, 2))

	// Steps are multiples from the start date, not repeated increments, so
	// a Jan 31 monthly schedule lands on Mar 31 rather than drifting via
	// Mar 3.
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), FrequencyMonthly.Step(start, 2))
}

func TestBillingSettings_Validate(t *testing.T) {
	t.Run("valid settings pass", func(t *testing.T) {
		assert.NoError(t, validSettings().Validate())
	})

	t.Run("invalid frequency rejected", func(t *testing.T) {
		s := validSettings()
		s.PaymentFrequency = "WEEKLY"
		assert.Error(t, s.Validate())
	})

	t.Run("negative due offset rejected", func(t *testing.T) {
		s := validSettings()
		s.DueOffsetDays = -1
		assert.Error(t, s.Validate())
	})

	t.Run("negative penalty rate rejected", func(t *testing.T) {
		s := validSettings()
		s.PenaltyRatePercent = decimal.NewFromInt(-1)
		assert.Error(t, s.Validate())
	})

	t.Run("non positive amount rejected", func(t *testing.T) {
		s := validSettings()
		s.Amount = decimal.Zero
		assert.Error(t, s.Validate())
	})
}

func TestNewRentalContract(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c, err := NewRentalContract(uuid.New(), uuid.New(), uuid.New(), start, end, validSettings(), 3)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, c.Status)
	assert.Equal(t, RenewalNone, c.RenewalStatus)
	assert.Equal(t, 3, c.NoticePeriodMonths)
	assert.True(t, c.IsActive())
	assert.Equal(t, 1, c.Version)

	t.Run("end before start rejected", func(t *testing.T) {
		_, err := NewRentalContract(uuid.New(), uuid.New(), uuid.New(), end, start, validSettings(), 3)
		assert.Error(t, err)
	})
}

func TestRentalContract_Lifecycle(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	newContract := func(t *testing.T) *RentalContract {
		c, err := NewRentalContract(uuid.New(), uuid.New(), uuid.New(), start, end, validSettings(), 3)
		require.NoError(t, err)
		return c
	}

	t.Run("termination notice flips status", func(t *testing.T) {
		c := newContract(t)
		require.NoError(t, c.MarkTerminationNotice())
		assert.Equal(t, StatusTerminationNotice, c.Status)
		assert.True(t, c.IsUnderNotice())
		assert.False(t, c.IsActive())
	})

	t.Run("termination notice rejected when not active", func(t *testing.T) {
		c := newContract(t)
		require.NoError(t, c.MarkTerminationNotice())
		assert.Error(t, c.MarkTerminationNotice())
	})

	t.Run("reinstate restores active", func(t *testing.T) {
		c := newContract(t)
		require.NoError(t, c.MarkTerminationNotice())
		require.NoError(t, c.Reinstate())
		assert.Equal(t, StatusActive, c.Status)
	})

	t.Run("reinstate rejected on active contract", func(t *testing.T) {
		c := newContract(t)
		assert.Error(t, c.Reinstate())
	})

	t.Run("end is terminal", func(t *testing.T) {
		c := newContract(t)
		endedAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, c.End(endedAt))
		assert.Equal(t, StatusEnded, c.Status)
		require.NotNil(t, c.EndedAt)
		assert.Equal(t, endedAt, *c.EndedAt)
		assert.Error(t, c.MarkTerminationNotice())
		assert.Error(t, c.Reinstate())
		assert.Error(t, c.End(endedAt))
	})
}

func TestRentalContract_UpdateBillingSettings(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c, err := NewRentalContract(uuid.New(), uuid.New(), uuid.New(), start, end, validSettings(), 3)
	require.NoError(t, err)

	updated := validSettings()
	updated.Amount = decimal.NewFromInt(120000)
	updated.PaymentFrequency = FrequencyQuarterly
	require.NoError(t, c.UpdateBillingSettings(updated))

	assert.True(t, c.Amount.Equal(decimal.NewFromInt(120000)))
	assert.Equal(t, FrequencyQuarterly, c.PaymentFrequency)

	bad := validSettings()
	bad.Amount = decimal.Zero
	assert.Error(t, c.UpdateBillingSettings(bad))
}
