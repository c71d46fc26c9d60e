package models

import (
	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// UserModel is a read-side projection of the external user directory.
// The engine never creates or updates users; it only resolves manager
// recipients and actor names from this table.
type UserModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key"`
	Name string    `gorm:"type:varchar(255);not null"`
	Role string    `gorm:"type:varchar(32);not null;index"`
}

// TableName specifies the table name
func (UserModel) TableName() string {
	return "users"
}

// ToActor converts the user row to a shared actor
func (m *UserModel) ToActor() shared.Actor {
	typ := shared.ActorTypeClient
	switch m.Role {
	case "MANAGER", "STAFF", "ADMIN":
		typ = shared.ActorTypeStaff
	case "OWNER":
		typ = shared.ActorTypeOwner
	}
	return shared.Actor{ID: m.ID, Type: typ, Name: m.Name}
}
