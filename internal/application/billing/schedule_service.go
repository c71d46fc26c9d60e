package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/notification"
	"github.com/propman/backend/internal/domain/shared"
)

// ScheduleService generates and maintains recurring invoice schedules.
// Every mutation that touches both the contract and its invoice set runs
// inside a single transaction.
type ScheduleService struct {
	contracts contract.Repository
	invoices  billing.RecurringInvoiceRepository
	scope     TransactionScope
	deliverer notification.Deliverer
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService creates a schedule service
func NewScheduleService(
	contracts contract.Repository,
	invoices billing.RecurringInvoiceRepository,
	scope TransactionScope,
	deliverer notification.Deliverer,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		contracts: contracts,
		invoices:  invoices,
		scope:     scope,
		deliverer: deliverer,
		logger:    logger,
		now:       time.Now,
	}
}

// InvoiceView pairs a stored invoice with its overdue assessment at read
// time. Assessments are computed on the fly and never persisted.
type InvoiceView struct {
	Invoice    *billing.RecurringInvoice
	Assessment billing.Assessment
}

// CreateSchedule expands the contract's billing settings into pending
// invoices covering the remaining contract term. Called once when a
// contract is registered.
func (s *ScheduleService) CreateSchedule(ctx context.Context, actor shared.Actor, claimID uuid.UUID) ([]*billing.RecurringInvoice, error) {
	if !actor.Type.IsStaff() && !actor.IsSystem() {
		return nil, shared.ErrForbidden
	}

	c, err := s.contracts.FindByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	existing, err := s.invoices.FindByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, shared.NewDomainError("SCHEDULE_EXISTS", "A schedule already exists for this claim; revise the settings instead")
	}

	generated, err := s.materialize(c)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Invoices().SaveBatch(ctx, generated)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice schedule created",
		zap.String("claim_id", claimID.String()),
		zap.Int("invoices", len(generated)))

	return generated, nil
}

// PreviewSchedule renders the invoices the given settings would generate
// without persisting anything.
func (s *ScheduleService) PreviewSchedule(ctx context.Context, claimID uuid.UUID, settings contract.BillingSettings) ([]billing.InvoiceDraft, error) {
	c, err := s.contracts.FindByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateBillingSettings(settings); err != nil {
		return nil, err
	}
	// c is a detached copy here; the settings change is never saved.
	return billing.DraftInvoices(c, s.now())
}

// ReviseSchedule replaces the contract's billing settings and regenerates
// its pending invoices. Confirmed invoices are historical payment records
// and survive untouched. Deletion and regeneration commit atomically.
func (s *ScheduleService) ReviseSchedule(ctx context.Context, actor shared.Actor, claimID uuid.UUID, settings contract.BillingSettings) ([]*billing.RecurringInvoice, error) {
	if !actor.Type.IsStaff() {
		return nil, shared.ErrForbidden
	}

	var generated []*billing.RecurringInvoice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Contracts().FindByClaim(ctx, claimID)
		if err != nil {
			return err
		}
		if err := c.UpdateBillingSettings(settings); err != nil {
			return err
		}

		removed, err := repos.Invoices().DeletePendingByClaim(ctx, claimID)
		if err != nil {
			return err
		}

		generated, err = s.materialize(c)
		if err != nil {
			return err
		}
		if err := repos.Invoices().SaveBatch(ctx, generated); err != nil {
			return err
		}
		if err := repos.Contracts().SaveWithLock(ctx, c); err != nil {
			return err
		}

		s.logger.Info("invoice schedule revised",
			zap.String("claim_id", claimID.String()),
			zap.Int64("removed_pending", removed),
			zap.Int("regenerated", len(generated)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return generated, nil
}

// ListByClaim returns the claim's invoices with their current assessments
func (s *ScheduleService) ListByClaim(ctx context.Context, claimID uuid.UUID) ([]InvoiceView, error) {
	invoices, err := s.invoices.FindByClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]InvoiceView, len(invoices))
	for i, inv := range invoices {
		views[i] = InvoiceView{Invoice: inv, Assessment: inv.Assess(now)}
	}
	return views, nil
}

// GetInvoice returns one invoice with its current assessment
func (s *ScheduleService) GetInvoice(ctx context.Context, invoiceID uuid.UUID) (*InvoiceView, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &InvoiceView{Invoice: inv, Assessment: inv.Assess(s.now())}, nil
}

// AttachPaymentProof records a payment proof reference on a pending invoice.
// Clients may attach proof to their own invoices; staff to any.
func (s *ScheduleService) AttachPaymentProof(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID, proofRef string) (*billing.RecurringInvoice, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if !actor.Type.IsStaff() {
		c, err := s.contracts.FindByClaim(ctx, inv.ClaimID)
		if err != nil {
			return nil, err
		}
		if c.ClientID != actor.ID {
			return nil, shared.ErrForbidden
		}
	}

	if err := inv.AttachProof(proofRef); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// ConfirmPayment marks an invoice paid and notifies the client. Staff only;
// confirmation is terminal. Notification delivery is best effort.
func (s *ScheduleService) ConfirmPayment(ctx context.Context, actor shared.Actor, invoiceID uuid.UUID) (*billing.RecurringInvoice, error) {
	if !actor.Type.IsStaff() {
		return nil, shared.ErrForbidden
	}

	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.Confirm(actor.ID, s.now()); err != nil {
		return nil, err
	}
	if err := s.invoices.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	c, err := s.contracts.FindByClaim(ctx, inv.ClaimID)
	if err != nil {
		s.logger.Warn("payment confirmed but contract lookup failed, skipping notification",
			zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		return inv, nil
	}

	delivery := notification.Delivery{
		Recipient: c.ClientActor(),
		Sender:    actor,
		Template:  notification.TemplatePaymentConfirmed,
		Substitutions: map[string]string{
			"invoice_date": inv.InvoiceDate.Format("2006-01-02"),
			"amount":       inv.Amount.String(),
		},
		Link: fmt.Sprintf("/rentals/claims/%s/invoices/%s", inv.ClaimID, inv.ID),
	}
	if err := s.deliverer.Deliver(ctx, delivery); err != nil {
		s.logger.Warn("payment confirmation notification failed",
			zap.String("invoice_id", inv.ID.String()), zap.Error(err))
	}

	s.logger.Info("invoice payment confirmed",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("confirmed_by", actor.ID.String()))

	return inv, nil
}

func (s *ScheduleService) materialize(c *contract.RentalContract) ([]*billing.RecurringInvoice, error) {
	drafts, err := billing.DraftInvoices(c, s.now())
	if err != nil {
		return nil, err
	}

	invoices := make([]*billing.RecurringInvoice, len(drafts))
	for i, d := range drafts {
		inv, err := billing.NewRecurringInvoice(c.ClaimID, d)
		if err != nil {
			return nil, err
		}
		invoices[i] = inv
	}
	return invoices, nil
}
