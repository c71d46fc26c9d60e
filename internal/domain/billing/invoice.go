package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the payment state of a recurring invoice
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED" // terminal
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusConfirmed
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// RecurringInvoice is one billing-period obligation generated from a
// contract's schedule. Once confirmed it is immutable; while pending it can
// gain a payment proof, be confirmed, or be deleted during a settings
// regeneration.
type RecurringInvoice struct {
	shared.BaseAggregateRoot
	ClaimID            uuid.UUID          `json:"claim_id"`
	InvoiceDate        time.Time          `json:"invoice_date"`
	DueDate            time.Time          `json:"due_date"`
	Amount             decimal.Decimal    `json:"amount"`
	PenaltyRatePercent decimal.Decimal    `json:"penalty_rate_percent"`
	PaymentFrequency   contract.Frequency `json:"payment_frequency"`
	PaymentStatus      PaymentStatus      `json:"payment_status"`
	PaymentProofRef    *string            `json:"payment_proof_ref"` // opaque reference supplied by the upload collaborator
	ConfirmedBy        *uuid.UUID         `json:"confirmed_by"`
	ConfirmedAt        *time.Time         `json:"confirmed_at"`
}

// NewRecurringInvoice materializes a draft against a claim
func NewRecurringInvoice(claimID uuid.UUID, draft InvoiceDraft) (*RecurringInvoice, error) {
	if claimID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLAIM", "Claim ID cannot be empty")
	}
	if draft.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}
	if !draft.PaymentFrequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unrecognized payment frequency %q", draft.PaymentFrequency))
	}
	if draft.DueDate.Before(draft.InvoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede invoice date")
	}

	return &RecurringInvoice{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ClaimID:            claimID,
		InvoiceDate:        draft.InvoiceDate,
		DueDate:            draft.DueDate,
		Amount:             draft.Amount,
		PenaltyRatePercent: draft.PenaltyRatePercent,
		PaymentFrequency:   draft.PaymentFrequency,
		PaymentStatus:      PaymentStatusPending,
	}, nil
}

// IsPending returns true while payment has not been confirmed
func (inv *RecurringInvoice) IsPending() bool {
	return inv.PaymentStatus == PaymentStatusPending
}

// IsConfirmed returns true once payment is confirmed
func (inv *RecurringInvoice) IsConfirmed() bool {
	return inv.PaymentStatus == PaymentStatusConfirmed
}

// HasProof returns true if a payment proof reference is attached
func (inv *RecurringInvoice) HasProof() bool {
	return inv.PaymentProofRef != nil && *inv.PaymentProofRef != ""
}

// AttachProof records the opaque payment-proof reference supplied by the
// upload collaborator. Only meaningful while the invoice is pending.
func (inv *RecurringInvoice) AttachProof(ref string) error {
	if ref == "" {
		return shared.NewDomainError("INVALID_PROOF", "Payment proof reference cannot be empty")
	}
	if inv.IsConfirmed() {
		return shared.NewDomainError("INVALID_STATE", "Cannot attach proof to a confirmed invoice")
	}
	inv.PaymentProofRef = &ref
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// Confirm transitions the invoice from pending to confirmed, stamping the
// confirming staff member and time. Confirmed invoices are terminal.
func (inv *RecurringInvoice) Confirm(confirmedBy uuid.UUID, at time.Time) error {
	if confirmedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_CONFIRMER", "Confirmer ID cannot be empty")
	}
	if inv.IsConfirmed() {
		return shared.NewDomainError("INVALID_STATE", "Invoice payment is already confirmed")
	}
	inv.PaymentStatus = PaymentStatusConfirmed
	inv.ConfirmedBy = &confirmedBy
	inv.ConfirmedAt = &at
	inv.UpdatedAt = at
	inv.IncrementVersion()
	return nil
}

// IsOverdue reports whether the invoice is unpaid past its due date
func (inv *RecurringInvoice) IsOverdue(now time.Time) bool {
	return !inv.IsConfirmed() && now.After(inv.DueDate)
}

// Assessment is the read-only overdue evaluation of an invoice at a moment
// in time. It never mutates stored state and is safe to recompute
// repeatedly and concurrently.
type Assessment struct {
	Overdue       bool            `json:"overdue"`
	PeriodRent    decimal.Decimal `json:"period_rent"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	TotalDue      decimal.Decimal `json:"total_due"`
}

// Assess evaluates the invoice at now. The stored amount is a
// monthly-equivalent base rent, so the charged rent is amount multiplied by
// the frequency's period count; the penalty applies the rate to that full
// period rent.
func (inv *RecurringInvoice) Assess(now time.Time) Assessment {
	periods := decimal.NewFromInt(int64(inv.PaymentFrequency.PeriodsPerCharge()))
	periodRent := inv.Amount.Mul(periods)

	if !inv.IsOverdue(now) {
		return Assessment{
			Overdue:       false,
			PeriodRent:    periodRent,
			PenaltyAmount: decimal.Zero,
			TotalDue:      periodRent,
		}
	}

	penalty := periodRent.Mul(inv.PenaltyRatePercent).Div(decimal.NewFromInt(100))
	return Assessment{
		Overdue:       true,
		PeriodRent:    periodRent,
		PenaltyAmount: penalty,
		TotalDue:      periodRent.Add(penalty),
	}
}
