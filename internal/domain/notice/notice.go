package notice

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// Type is the kind of termination notice
type Type string

const (
	TypePeriod    Type = "PERIOD"
	TypeImmediate Type = "IMMEDIATE"
)

// IsValid checks if the type is a valid notice Type
func (t Type) IsValid() bool {
	return t == TypePeriod || t == TypeImmediate
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Status represents the lifecycle state of a notice
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// noticeMonthDays approximates one notice-period month as 30 calendar days.
const noticeMonthDays = 30

// RentNotice is one termination notice row. A notice issued by a client is
// fanned out to every manager, producing one row per recipient; all rows of
// the fan-out share the contract and stay active together.
type RentNotice struct {
	shared.BaseEntity
	ContractID    uuid.UUID        `json:"contract_id"`
	ClaimID       uuid.UUID        `json:"claim_id"`
	NoticeType    Type             `json:"notice_type"`
	Message       string           `json:"message"`
	SentBy        uuid.UUID        `json:"sent_by"`
	SentByType    shared.ActorType `json:"sent_by_type"`
	RecipientID   uuid.UUID        `json:"recipient_id"`
	RecipientType shared.ActorType `json:"recipient_type"`
	IssuedDate    time.Time        `json:"issued_date"`
	EndDate       time.Time        `json:"end_date"`
	Status        Status           `json:"status"`
	CancelledBy   *uuid.UUID       `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time       `json:"cancelled_at,omitempty"`
}

// NewRentNotice creates an active notice. For period notices the end date is
// the issue date plus the contract's notice period, counted at 30 days per
// month; immediate notices end on the issue date.
func NewRentNotice(contractID, claimID uuid.UUID, noticeType Type, message string, sender, recipient shared.Actor, issued time.Time, noticePeriodMonths int) (*RentNotice, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if !noticeType.IsValid() {
		return nil, shared.NewDomainError("INVALID_NOTICE_TYPE", "Notice type must be PERIOD or IMMEDIATE")
	}
	if sender.ID == uuid.Nil || recipient.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Notice sender and recipient cannot be empty")
	}

	end := issued
	if noticeType == TypePeriod {
		if noticePeriodMonths <= 0 {
			return nil, shared.NewDomainError("INVALID_NOTICE_PERIOD", "Notice period must be positive")
		}
		end = issued.AddDate(0, 0, noticePeriodMonths*noticeMonthDays)
	}

	return &RentNotice{
		BaseEntity:    shared.NewBaseEntity(),
		ContractID:    contractID,
		ClaimID:       claimID,
		NoticeType:    noticeType,
		Message:       message,
		SentBy:        sender.ID,
		SentByType:    sender.Type,
		RecipientID:   recipient.ID,
		RecipientType: recipient.Type,
		IssuedDate:    issued,
		EndDate:       end,
		Status:        StatusActive,
	}, nil
}

// IsActive checks if the notice is still in effect
func (n *RentNotice) IsActive() bool {
	return n.Status == StatusActive
}

// Cancel revokes an active notice and records who did it
func (n *RentNotice) Cancel(by shared.Actor, at time.Time) error {
	if n.Status != StatusActive {
		return shared.NewDomainError("NOTICE_NOT_ACTIVE", "Only active notices can be cancelled")
	}
	id := by.ID
	n.Status = StatusCancelled
	n.CancelledBy = &id
	n.CancelledAt = &at
	return nil
}
