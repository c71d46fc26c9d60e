package warning

import (
	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// Type distinguishes sweep-issued warnings from staff-issued ones
type Type string

const (
	TypeAutomatic Type = "AUTOMATIC"
	TypeManual    Type = "MANUAL"
)

// IsValid checks if the type is a valid warning Type
func (t Type) IsValid() bool {
	return t == TypeAutomatic || t == TypeManual
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Default warning texts. The manual text is the fallback when staff submit
// no custom message.
const (
	AutomaticMessage = "Your rent payment is overdue. Please settle the outstanding invoice as soon as possible."
	FinalMessage     = "Final warning: your rent payment remains overdue. Further action will follow if the invoice stays unpaid."
)

// RentWarning is one escalation record against an invoice. At most one
// automatic and one manual warning exist per invoice; the storage-level
// unique constraint on (invoice_id, warning_type) enforces it. Immutable
// once created.
type RentWarning struct {
	shared.BaseEntity
	ClaimID       uuid.UUID        `json:"claim_id"`
	InvoiceID     uuid.UUID        `json:"invoice_id"`
	WarningType   Type             `json:"warning_type"`
	Message       string           `json:"message"`
	NotifiedBy    uuid.UUID        `json:"notified_by"`
	NotifiedByTyp shared.ActorType `json:"notified_by_type"`
}

// NewAutomaticWarning creates a sweep-issued warning stamped with the
// reserved system identity
func NewAutomaticWarning(claimID, invoiceID uuid.UUID) (*RentWarning, error) {
	return newWarning(claimID, invoiceID, TypeAutomatic, AutomaticMessage, shared.SystemActor())
}

// NewManualWarning creates a staff-issued final warning. An empty message
// falls back to the fixed final-warning text.
func NewManualWarning(claimID, invoiceID uuid.UUID, message string, issuedBy shared.Actor) (*RentWarning, error) {
	if !issuedBy.Type.IsStaff() {
		return nil, shared.ErrForbidden
	}
	if message == "" {
		message = FinalMessage
	}
	return newWarning(claimID, invoiceID, TypeManual, message, issuedBy)
}

// IssuedBy returns the issuing actor
func (w *RentWarning) IssuedBy() shared.Actor {
	return shared.Actor{ID: w.NotifiedBy, Type: w.NotifiedByTyp}
}

func newWarning(claimID, invoiceID uuid.UUID, typ Type, message string, by shared.Actor) (*RentWarning, error) {
	if claimID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLAIM", "Claim ID cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if by.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Warning issuer cannot be empty")
	}

	return &RentWarning{
		BaseEntity:    shared.NewBaseEntity(),
		ClaimID:       claimID,
		InvoiceID:     invoiceID,
		WarningType:   typ,
		Message:       message,
		NotifiedBy:    by.ID,
		NotifiedByTyp: by.Type,
	}, nil
}
