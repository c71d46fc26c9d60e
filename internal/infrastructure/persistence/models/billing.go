package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// RecurringInvoiceModel is the GORM model for recurring invoices
type RecurringInvoiceModel struct {
	AggregateModel
	ClaimID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceDate        time.Time       `gorm:"not null"`
	DueDate            time.Time       `gorm:"not null;index"`
	Amount             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PenaltyRatePercent decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0"`
	PaymentFrequency   string          `gorm:"type:varchar(16);not null"`
	PaymentStatus      string          `gorm:"type:varchar(16);not null;index"`
	PaymentProofRef    *string         `gorm:"type:varchar(512)"`
	ConfirmedBy        *uuid.UUID      `gorm:"type:uuid"`
	ConfirmedAt        *time.Time
}

// TableName specifies the table name
func (RecurringInvoiceModel) TableName() string {
	return "recurring_invoices"
}

// ToDomain converts the model to a domain invoice
func (m *RecurringInvoiceModel) ToDomain() *billing.RecurringInvoice {
	return &billing.RecurringInvoice{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		ClaimID:            m.ClaimID,
		InvoiceDate:        m.InvoiceDate,
		DueDate:            m.DueDate,
		Amount:             m.Amount,
		PenaltyRatePercent: m.PenaltyRatePercent,
		PaymentFrequency:   contract.Frequency(m.PaymentFrequency),
		PaymentStatus:      billing.PaymentStatus(m.PaymentStatus),
		PaymentProofRef:    m.PaymentProofRef,
		ConfirmedBy:        m.ConfirmedBy,
		ConfirmedAt:        m.ConfirmedAt,
	}
}

// FromDomain populates the model from a domain invoice
func (m *RecurringInvoiceModel) FromDomain(inv *billing.RecurringInvoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.ClaimID = inv.ClaimID
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.Amount = inv.Amount
	m.PenaltyRatePercent = inv.PenaltyRatePercent
	m.PaymentFrequency = inv.PaymentFrequency.String()
	m.PaymentStatus = inv.PaymentStatus.String()
	m.PaymentProofRef = inv.PaymentProofRef
	m.ConfirmedBy = inv.ConfirmedBy
	m.ConfirmedAt = inv.ConfirmedAt
}
