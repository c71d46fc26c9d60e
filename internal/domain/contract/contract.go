package contract

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a rental contract
type Status string

const (
	StatusActive            Status = "ACTIVE"
	StatusTerminationNotice Status = "TERMINATION_NOTICE" // an active RentNotice exists
	StatusEnded             Status = "ENDED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusTerminationNotice, StatusEnded:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if the contract is in a terminal state
func (s Status) IsTerminal() bool {
	return s == StatusEnded
}

// RenewalStatus tracks the renewal negotiation of a contract
type RenewalStatus string

const (
	RenewalNone     RenewalStatus = "NONE"
	RenewalPending  RenewalStatus = "PENDING"
	RenewalAccepted RenewalStatus = "ACCEPTED"
	RenewalRejected RenewalStatus = "REJECTED"
)

// IsValid checks if the renewal status is a valid RenewalStatus
func (s RenewalStatus) IsValid() bool {
	switch s {
	case RenewalNone, RenewalPending, RenewalAccepted, RenewalRejected:
		return true
	}
	return false
}

// Frequency is the billing recurrence of a contract
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// IsValid checks if the frequency is a recognized value
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// String returns the string representation of Frequency
func (f Frequency) String() string {
	return string(f)
}

// PeriodsPerCharge returns how many monthly-equivalent base rents one
// invoice of this frequency covers. The contract amount is stored as a
// monthly-equivalent base rent, so a quarterly invoice charges three of
// them and a yearly invoice twelve.
func (f Frequency) PeriodsPerCharge() int {
	switch f {
	case FrequencyDaily, FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	}
	return 0
}

// Step returns the i-th recurrence point counted from start. Points are
// computed as multiples of the interval from the start date rather than by
// cumulative stepping, so a long schedule does not drift.
func (f Frequency) Step(start time.Time, i int) time.Time {
	switch f {
	case FrequencyDaily:
		return start.AddDate(0, 0, i)
	case FrequencyMonthly:
		return start.AddDate(0, i, 0)
	case FrequencyQuarterly:
		return start.AddDate(0, 3*i, 0)
	case FrequencyYearly:
		return start.AddDate(i, 0, 0)
	}
	return start
}

// BillingSettings are the invoice-generation parameters carried by a
// contract. They are persisted on the contract and copied onto each
// generated invoice at generation time.
type BillingSettings struct {
	InvoiceDate        time.Time       `json:"invoice_date"` // first recurrence point
	PaymentFrequency   Frequency       `json:"payment_frequency"`
	DueOffsetDays      int             `json:"due_offset_days"` // grace period before a generated invoice is late
	PenaltyRatePercent decimal.Decimal `json:"penalty_rate_percent"`
	Amount             decimal.Decimal `json:"amount"` // monthly-equivalent base rent
}

// Validate checks the settings before any persistence happens
func (s BillingSettings) Validate() error {
	if s.InvoiceDate.IsZero() {
		return shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date is required")
	}
	if !s.PaymentFrequency.IsValid() {
		return shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unrecognized payment frequency %q", s.PaymentFrequency))
	}
	if s.DueOffsetDays < 0 {
		return shared.NewDomainError("INVALID_DUE_OFFSET", "Due offset days cannot be negative")
	}
	if s.PenaltyRatePercent.IsNegative() {
		return shared.NewDomainError("INVALID_PENALTY_RATE", "Penalty rate cannot be negative")
	}
	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Rent amount must be positive")
	}
	return nil
}

// RentalContract is the aggregate root for a signed rental contract.
// One contract exists per accepted claim; it is never deleted.
type RentalContract struct {
	shared.BaseAggregateRoot
	ClaimID            uuid.UUID       `json:"claim_id"`
	ClientID           uuid.UUID       `json:"client_id"`
	OwnerID            uuid.UUID       `json:"owner_id"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            time.Time       `json:"end_date"`
	Amount             decimal.Decimal `json:"amount"`
	PaymentFrequency   Frequency       `json:"payment_frequency"`
	InvoiceDate        time.Time       `json:"invoice_date"`
	DueOffsetDays      int             `json:"due_offset_days"`
	PenaltyRatePercent decimal.Decimal `json:"penalty_rate_percent"`
	NoticePeriodMonths int             `json:"notice_period_months"`
	Status             Status          `json:"status"`
	RenewalStatus      RenewalStatus   `json:"renewal_status"`
	EndedAt            *time.Time      `json:"ended_at"`
}

// NewRentalContract creates a contract for an accepted claim
func NewRentalContract(
	claimID uuid.UUID,
	clientID uuid.UUID,
	ownerID uuid.UUID,
	startDate time.Time,
	endDate time.Time,
	settings BillingSettings,
	noticePeriodMonths int,
) (*RentalContract, error) {
	if claimID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLAIM", "Claim ID cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Contract start and end dates are required")
	}
	if !endDate.After(startDate) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Contract end date must be after start date")
	}
	if noticePeriodMonths < 0 {
		return nil, shared.NewDomainError("INVALID_NOTICE_PERIOD", "Notice period months cannot be negative")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &RentalContract{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ClaimID:            claimID,
		ClientID:           clientID,
		OwnerID:            ownerID,
		StartDate:          startDate,
		EndDate:            endDate,
		Amount:             settings.Amount,
		PaymentFrequency:   settings.PaymentFrequency,
		InvoiceDate:        settings.InvoiceDate,
		DueOffsetDays:      settings.DueOffsetDays,
		PenaltyRatePercent: settings.PenaltyRatePercent,
		NoticePeriodMonths: noticePeriodMonths,
		Status:             StatusActive,
		RenewalStatus:      RenewalNone,
	}, nil
}

// Settings returns the billing settings currently in force
func (c *RentalContract) Settings() BillingSettings {
	return BillingSettings{
		InvoiceDate:        c.InvoiceDate,
		PaymentFrequency:   c.PaymentFrequency,
		DueOffsetDays:      c.DueOffsetDays,
		PenaltyRatePercent: c.PenaltyRatePercent,
		Amount:             c.Amount,
	}
}

// UpdateBillingSettings replaces the invoice-generation parameters.
// The caller is responsible for regenerating pending invoices afterwards.
func (c *RentalContract) UpdateBillingSettings(settings BillingSettings) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change billing settings on an ended contract")
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	c.InvoiceDate = settings.InvoiceDate
	c.PaymentFrequency = settings.PaymentFrequency
	c.DueOffsetDays = settings.DueOffsetDays
	c.PenaltyRatePercent = settings.PenaltyRatePercent
	c.Amount = settings.Amount
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// MarkTerminationNotice flips the contract under an active notice.
// Only Notice Lifecycle drives this transition.
func (c *RentalContract) MarkTerminationNotice() error {
	if c.Status != StatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot place a notice on a contract in %s status", c.Status))
	}
	c.Status = StatusTerminationNotice
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Reinstate returns a contract to active after its notice set is cancelled
func (c *RentalContract) Reinstate() error {
	if c.Status != StatusTerminationNotice {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reinstate a contract in %s status", c.Status))
	}
	c.Status = StatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// End terminates the contract. Terminal; an ended contract never reactivates.
func (c *RentalContract) End(at time.Time) error {
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Contract has already ended")
	}
	c.Status = StatusEnded
	c.EndedAt = &at
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// SetRenewalStatus records the renewal negotiation outcome
func (c *RentalContract) SetRenewalStatus(status RenewalStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_RENEWAL_STATUS", fmt.Sprintf("Unrecognized renewal status %q", status))
	}
	if c.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot change renewal status on an ended contract")
	}
	c.RenewalStatus = status
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsActive returns true if the contract is active
func (c *RentalContract) IsActive() bool {
	return c.Status == StatusActive
}

// IsUnderNotice returns true while an active notice exists for the contract
func (c *RentalContract) IsUnderNotice() bool {
	return c.Status == StatusTerminationNotice
}

// ClientActor returns the contract's client as a notification recipient
func (c *RentalContract) ClientActor() shared.Actor {
	return shared.Actor{ID: c.ClientID, Type: shared.ActorTypeClient}
}
