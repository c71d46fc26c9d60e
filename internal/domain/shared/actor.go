package shared

import (
	"context"

	"github.com/google/uuid"
)

// ActorType classifies who performed or receives an action.
type ActorType string

const (
	ActorTypeStaff  ActorType = "STAFF"
	ActorTypeOwner  ActorType = "OWNER"
	ActorTypeClient ActorType = "CLIENT"
	ActorTypeSystem ActorType = "SYSTEM"
)

// IsValid checks if the actor type is a known value
func (t ActorType) IsValid() bool {
	switch t {
	case ActorTypeStaff, ActorTypeOwner, ActorTypeClient, ActorTypeSystem:
		return true
	}
	return false
}

// String returns the string representation of ActorType
func (t ActorType) String() string {
	return string(t)
}

// IsStaff returns true for staff actors
func (t ActorType) IsStaff() bool {
	return t == ActorTypeStaff
}

// Actor identifies a party interacting with the engine: a staff member,
// an owner, a client, or the reserved system identity used by sweeps.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Type ActorType `json:"type"`
	Name string    `json:"name,omitempty"`
}

// systemActorID is the reserved, well-known identity stamped on records
// created by automated processes. Automated actions must never be persisted
// with a nil or ambiguous actor.
var systemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// SystemActor returns the reserved system identity
func SystemActor() Actor {
	return Actor{
		ID:   systemActorID,
		Type: ActorTypeSystem,
		Name: "system",
	}
}

// IsSystem reports whether the actor is the reserved system identity
func (a Actor) IsSystem() bool {
	return a.Type == ActorTypeSystem
}

// ActorDirectory resolves actors managed outside this engine.
// Staff and client profile CRUD is an external concern; the engine only
// needs to know who the manager-role staff members are for notice fan-out.
type ActorDirectory interface {
	// FindManagers returns all staff members holding a manager role
	FindManagers(ctx context.Context) ([]Actor, error)
}
