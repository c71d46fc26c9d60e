package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
)

// RentalContractModel is the GORM model for rental contracts
type RentalContractModel struct {
	AggregateModel
	ClaimID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_contract_claim"`
	ClientID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	OwnerID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate          time.Time       `gorm:"not null"`
	EndDate            time.Time       `gorm:"not null;index"`
	Amount             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaymentFrequency   string          `gorm:"type:varchar(16);not null"`
	InvoiceDate        time.Time       `gorm:"not null"`
	DueOffsetDays      int             `gorm:"not null;default:0"`
	PenaltyRatePercent decimal.Decimal `gorm:"type:decimal(6,3);not null;default:0"`
	NoticePeriodMonths int             `gorm:"not null;default:0"`
	Status             string          `gorm:"type:varchar(32);not null;index"`
	RenewalStatus      string          `gorm:"type:varchar(16);not null;default:'NONE'"`
	EndedAt            *time.Time
}

// TableName specifies the table name
func (RentalContractModel) TableName() string {
	return "rental_contracts"
}

// ToDomain converts the model to a domain contract
func (m *RentalContractModel) ToDomain() *contract.RentalContract {
	return &contract.RentalContract{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		ClaimID:            m.ClaimID,
		ClientID:           m.ClientID,
		OwnerID:            m.OwnerID,
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
		Amount:             m.Amount,
		PaymentFrequency:   contract.Frequency(m.PaymentFrequency),
		InvoiceDate:        m.InvoiceDate,
		DueOffsetDays:      m.DueOffsetDays,
		PenaltyRatePercent: m.PenaltyRatePercent,
		NoticePeriodMonths: m.NoticePeriodMonths,
		Status:             contract.Status(m.Status),
		RenewalStatus:      contract.RenewalStatus(m.RenewalStatus),
		EndedAt:            m.EndedAt,
	}
}

// FromDomain populates the model from a domain contract
func (m *RentalContractModel) FromDomain(c *contract.RentalContract) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.ClaimID = c.ClaimID
	m.ClientID = c.ClientID
	m.OwnerID = c.OwnerID
	m.StartDate = c.StartDate
	m.EndDate = c.EndDate
	m.Amount = c.Amount
	m.PaymentFrequency = c.PaymentFrequency.String()
	m.InvoiceDate = c.InvoiceDate
	m.DueOffsetDays = c.DueOffsetDays
	m.PenaltyRatePercent = c.PenaltyRatePercent
	m.NoticePeriodMonths = c.NoticePeriodMonths
	m.Status = c.Status.String()
	m.RenewalStatus = string(c.RenewalStatus)
	m.EndedAt = c.EndedAt
}
