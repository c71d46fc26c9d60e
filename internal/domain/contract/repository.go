package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence operations for rental contracts
type Repository interface {
	// FindByID finds a contract by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*RentalContract, error)
	// FindByClaim finds the contract anchored to a claim
	FindByClaim(ctx context.Context, claimID uuid.UUID) (*RentalContract, error)
	// FindByIDForUpdate finds a contract and row-locks it for the duration of
	// the surrounding transaction. Notice issue/cancel serialize per contract
	// through this lock.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RentalContract, error)
	// FindActiveEndingOn returns active contracts whose end date falls on the
	// given calendar day
	FindActiveEndingOn(ctx context.Context, day time.Time) ([]*RentalContract, error)
	// FindAll returns all contracts, newest first
	FindAll(ctx context.Context) ([]*RentalContract, error)
	// Save creates or updates a contract
	Save(ctx context.Context, c *RentalContract) error
	// SaveWithLock saves with optimistic locking on the aggregate version
	SaveWithLock(ctx context.Context, c *RentalContract) error
}
