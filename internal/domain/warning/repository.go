package warning

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence port for rent warnings. Insert reports
// whether the row was actually written; a false result with a nil error
// means the (invoice, type) pair already had a warning.
type Repository interface {
	Insert(ctx context.Context, w *RentWarning) (bool, error)
	ExistsForInvoice(ctx context.Context, invoiceID uuid.UUID, typ Type) (bool, error)
	FindByClaim(ctx context.Context, claimID uuid.UUID) ([]*RentWarning, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*RentWarning, error)
}
