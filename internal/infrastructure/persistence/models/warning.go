package models

import (
	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/warning"
)

// RentWarningModel is the GORM model for rent warnings. The composite
// unique index makes at-most-one-warning-per-type a storage invariant
// rather than an application convention.
type RentWarningModel struct {
	BaseModel
	ClaimID        uuid.UUID `gorm:"type:uuid;not null;index"`
	InvoiceID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_warning_invoice_type"`
	WarningType    string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_warning_invoice_type"`
	Message        string    `gorm:"type:text;not null"`
	NotifiedBy     uuid.UUID `gorm:"type:uuid;not null"`
	NotifiedByType string    `gorm:"type:varchar(16);not null"`
}

// TableName specifies the table name
func (RentWarningModel) TableName() string {
	return "rent_warnings"
}

// ToDomain converts the model to a domain warning
func (m *RentWarningModel) ToDomain() *warning.RentWarning {
	return &warning.RentWarning{
		BaseEntity:    m.BaseModel.ToDomain(),
		ClaimID:       m.ClaimID,
		InvoiceID:     m.InvoiceID,
		WarningType:   warning.Type(m.WarningType),
		Message:       m.Message,
		NotifiedBy:    m.NotifiedBy,
		NotifiedByTyp: shared.ActorType(m.NotifiedByType),
	}
}

// FromDomain populates the model from a domain warning
func (m *RentWarningModel) FromDomain(w *warning.RentWarning) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.ClaimID = w.ClaimID
	m.InvoiceID = w.InvoiceID
	m.WarningType = w.WarningType.String()
	m.Message = w.Message
	m.NotifiedBy = w.NotifiedBy
	m.NotifiedByType = w.NotifiedByTyp.String()
}
