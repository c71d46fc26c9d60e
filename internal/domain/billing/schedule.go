package billing

import (
	"fmt"
	"time"

	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceDraft is one not-yet-persisted billing obligation produced by
// schedule expansion. Drafts carry a copy of the contract settings in force
// at expansion time.
type InvoiceDraft struct {
	InvoiceDate        time.Time
	DueDate            time.Time
	Amount             decimal.Decimal
	PenaltyRatePercent decimal.Decimal
	PaymentFrequency   contract.Frequency
}

// ExpandSchedule expands a start date, a recurrence frequency and a contract
// end date into the recurrence points up to and including the end date.
// Points strictly before now are skipped, so generation never fabricates
// obligations for periods already elapsed while still covering the remaining
// contract term. An unrecognized frequency is a configuration error, not an
// empty schedule.
func ExpandSchedule(start time.Time, freq contract.Frequency, contractEnd time.Time, now time.Time) ([]time.Time, error) {
	if !freq.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unrecognized payment frequency %q", freq))
	}

	var points []time.Time
	for i := 0; ; i++ {
		point := freq.Step(start, i)
		if point.After(contractEnd) {
			break
		}
		if point.Before(now) {
			continue
		}
		points = append(points, point)
	}
	return points, nil
}

// DraftInvoices expands the contract's schedule and renders one draft per
// remaining recurrence point, applying the due offset and copying the
// settings in force at this moment. Pure; persistence is the store
// manager's concern.
func DraftInvoices(c *contract.RentalContract, now time.Time) ([]InvoiceDraft, error) {
	settings := c.Settings()
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	points, err := ExpandSchedule(settings.InvoiceDate, settings.PaymentFrequency, c.EndDate, now)
	if err != nil {
		return nil, err
	}

	drafts := make([]InvoiceDraft, len(points))
	for i, point := range points {
		drafts[i] = InvoiceDraft{
			InvoiceDate:        point,
			DueDate:            point.AddDate(0, 0, settings.DueOffsetDays),
			Amount:             settings.Amount,
			PenaltyRatePercent: settings.PenaltyRatePercent,
			PaymentFrequency:   settings.PaymentFrequency,
		}
	}
	return drafts, nil
}
