package notice

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence port for rent notices
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RentNotice, error)
	FindActiveByContract(ctx context.Context, contractID uuid.UUID) ([]*RentNotice, error)
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]*RentNotice, error)
	SaveBatch(ctx context.Context, notices []*RentNotice) error
	Save(ctx context.Context, n *RentNotice) error
}
