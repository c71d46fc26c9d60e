package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/warning"
)

// WarningService issues manual rent warnings. Manual warnings are a
// stronger, staff-initiated record that deliberately produces no outbound
// notification; the follow-up conversation happens out of band.
type WarningService struct {
	invoices billing.RecurringInvoiceRepository
	warnings warning.Repository
	logger   *zap.Logger
	now      func() time.Time
}

// NewWarningService creates a warning service
func NewWarningService(invoices billing.RecurringInvoiceRepository, warnings warning.Repository, logger *zap.Logger) *WarningService {
	return &WarningService{
		invoices: invoices,
		warnings: warnings,
		logger:   logger,
		now:      time.Now,
	}
}

// IssueManualWarning records a staff-issued final warning against an
// overdue invoice. At most one manual warning exists per invoice.
func (s *WarningService) IssueManualWarning(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID, message string) (*warning.RentWarning, error) {
	if !actor.Type.IsStaff() {
		return nil, shared.ErrForbidden
	}

	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsOverdue(s.now()) {
		return nil, shared.NewDomainError("INVOICE_NOT_OVERDUE", "Manual warnings can only be issued against overdue invoices")
	}

	w, err := warning.NewManualWarning(inv.ClaimID, inv.ID, message, actor)
	if err != nil {
		return nil, err
	}

	inserted, err := s.warnings.Insert(ctx, w)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, shared.ErrDuplicateWarning
	}

	s.logger.Info("manual warning issued",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("issued_by", actor.ID.String()))

	return w, nil
}

// ListByClaim returns all warnings recorded against a claim
func (s *WarningService) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]*warning.RentWarning, error) {
	return s.warnings.FindByClaim(ctx, claimID)
}

// ListByInvoice returns all warnings recorded against an invoice
func (s *WarningService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*warning.RentWarning, error) {
	return s.warnings.FindByInvoice(ctx, invoiceID)
}
