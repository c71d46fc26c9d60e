package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecurringInvoiceRepository defines persistence operations for invoices
type RecurringInvoiceRepository interface {
	// FindByID finds an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*RecurringInvoice, error)
	// FindByClaim returns all invoices for a claim ordered by invoice date
	FindByClaim(ctx context.Context, claimID uuid.UUID) ([]*RecurringInvoice, error)
	// FindEscalatable returns unconfirmed invoices past their due date with
	// no payment proof attached, across all claims
	FindEscalatable(ctx context.Context, now time.Time) ([]*RecurringInvoice, error)
	// SaveBatch inserts a batch of freshly generated invoices
	SaveBatch(ctx context.Context, invoices []*RecurringInvoice) error
	// Save creates or updates an invoice
	Save(ctx context.Context, inv *RecurringInvoice) error
	// SaveWithLock saves with optimistic locking on the aggregate version.
	// A row deleted by a concurrent regeneration surfaces as a concurrency
	// conflict rather than a silent resurrection.
	SaveWithLock(ctx context.Context, inv *RecurringInvoice) error
	// DeletePendingByClaim deletes every invoice for the claim still in
	// pending status and returns how many rows went away. Confirmed and
	// historical invoices are immutable and untouched.
	DeletePendingByClaim(ctx context.Context, claimID uuid.UUID) (int64, error)
}
