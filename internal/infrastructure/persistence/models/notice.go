package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/notice"
	"github.com/propman/backend/internal/domain/shared"
)

// RentNoticeModel is the GORM model for rent notices. A client-issued
// notice stores one row per manager recipient, so active rows per contract
// are bounded by the recipient set, not by one.
type RentNoticeModel struct {
	BaseModel
	ContractID    uuid.UUID `gorm:"type:uuid;not null;index:idx_notice_contract_status,priority:1"`
	ClaimID       uuid.UUID `gorm:"type:uuid;not null;index"`
	NoticeType    string    `gorm:"type:varchar(16);not null"`
	Message       string    `gorm:"type:text;not null"`
	SentBy        uuid.UUID `gorm:"type:uuid;not null"`
	SentByType    string    `gorm:"type:varchar(16);not null"`
	RecipientID   uuid.UUID `gorm:"type:uuid;not null"`
	RecipientType string    `gorm:"type:varchar(16);not null"`
	IssuedDate    time.Time `gorm:"not null"`
	EndDate       time.Time `gorm:"not null"`
	Status        string    `gorm:"type:varchar(16);not null;index:idx_notice_contract_status,priority:2"`
	CancelledBy   *uuid.UUID `gorm:"type:uuid"`
	CancelledAt   *time.Time
}

// TableName specifies the table name
func (RentNoticeModel) TableName() string {
	return "rent_notices"
}

// ToDomain converts the model to a domain notice
func (m *RentNoticeModel) ToDomain() *notice.RentNotice {
	return &notice.RentNotice{
		BaseEntity:    m.BaseModel.ToDomain(),
		ContractID:    m.ContractID,
		ClaimID:       m.ClaimID,
		NoticeType:    notice.Type(m.NoticeType),
		Message:       m.Message,
		SentBy:        m.SentBy,
		SentByType:    shared.ActorType(m.SentByType),
		RecipientID:   m.RecipientID,
		RecipientType: shared.ActorType(m.RecipientType),
		IssuedDate:    m.IssuedDate,
		EndDate:       m.EndDate,
		Status:        notice.Status(m.Status),
		CancelledBy:   m.CancelledBy,
		CancelledAt:   m.CancelledAt,
	}
}

// FromDomain populates the model from a domain notice
func (m *RentNoticeModel) FromDomain(n *notice.RentNotice) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.ContractID = n.ContractID
	m.ClaimID = n.ClaimID
	m.NoticeType = n.NoticeType.String()
	m.Message = n.Message
	m.SentBy = n.SentBy
	m.SentByType = n.SentByType.String()
	m.RecipientID = n.RecipientID
	m.RecipientType = n.RecipientType.String()
	m.IssuedDate = n.IssuedDate
	m.EndDate = n.EndDate
	m.Status = n.Status.String()
	m.CancelledBy = n.CancelledBy
	m.CancelledAt = n.CancelledAt
}
