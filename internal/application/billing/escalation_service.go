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
	"github.com/propman/backend/internal/domain/warning"
)

// SweepStats summarizes one escalation run
type SweepStats struct {
	Scanned int `json:"scanned"`
	Warned  int `json:"warned"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// EscalationService runs the overdue escalation sweep. The sweep scans
// unpaid invoices past their due date, records at most one automatic
// warning per invoice and notifies the client. Failures on one invoice
// never abort the run.
type EscalationService struct {
	contracts contract.Repository
	invoices  billing.RecurringInvoiceRepository
	warnings  warning.Repository
	deliverer notification.Deliverer
	logger    *zap.Logger
	now       func() time.Time
}

// NewEscalationService creates an escalation service
func NewEscalationService(
	contracts contract.Repository,
	invoices billing.RecurringInvoiceRepository,
	warnings warning.Repository,
	deliverer notification.Deliverer,
	logger *zap.Logger,
) *EscalationService {
	return &EscalationService{
		contracts: contracts,
		invoices:  invoices,
		warnings:  warnings,
		deliverer: deliverer,
		logger:    logger,
		now:       time.Now,
	}
}

// RunSweep executes one escalation pass. Re-running against unchanged data
// is a no-op; the warning uniqueness constraint absorbs duplicates, so
// overlapping runs are safe.
func (s *EscalationService) RunSweep(ctx context.Context) (SweepStats, error) {
	now := s.now()
	stats := SweepStats{}

	overdue, err := s.invoices.FindEscalatable(ctx, now)
	if err != nil {
		return stats, err
	}
	stats.Scanned = len(overdue)

	// Contracts are shared across a claim's invoices; resolve each once.
	contractsByClaim := make(map[uuid.UUID]*contract.RentalContract)

	for _, inv := range overdue {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		w, err := warning.NewAutomaticWarning(inv.ClaimID, inv.ID)
		if err != nil {
			stats.Failed++
			s.logger.Error("escalation skipped invoice",
				zap.String("invoice_id", inv.ID.String()), zap.Error(err))
			continue
		}

		inserted, err := s.warnings.Insert(ctx, w)
		if err != nil {
			stats.Failed++
			s.logger.Error("escalation warning insert failed",
				zap.String("invoice_id", inv.ID.String()), zap.Error(err))
			continue
		}
		if !inserted {
			stats.Skipped++
			continue
		}
		stats.Warned++

		c, ok := contractsByClaim[inv.ClaimID]
		if !ok {
			c, err = s.contracts.FindByClaim(ctx, inv.ClaimID)
			if err != nil {
				s.logger.Warn("escalation warning recorded but contract lookup failed, skipping notification",
					zap.String("invoice_id", inv.ID.String()), zap.Error(err))
				continue
			}
			contractsByClaim[inv.ClaimID] = c
		}

		assessment := inv.Assess(now)
		delivery := notification.Delivery{
			Recipient: c.ClientActor(),
			Sender:    w.IssuedBy(),
			Template:  notification.TemplateRentOverdueReminder,
			Substitutions: map[string]string{
				"invoice_date":   inv.InvoiceDate.Format("2006-01-02"),
				"due_date":       inv.DueDate.Format("2006-01-02"),
				"period_rent":    assessment.PeriodRent.String(),
				"penalty_amount": assessment.PenaltyAmount.String(),
				"total_due":      assessment.TotalDue.String(),
			},
			Link: fmt.Sprintf("/rentals/claims/%s/invoices/%s", inv.ClaimID, inv.ID),
		}
		if err := s.deliverer.Deliver(ctx, delivery); err != nil {
			s.logger.Warn("overdue notification failed",
				zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("escalation sweep finished",
		zap.Int("scanned", stats.Scanned),
		zap.Int("warned", stats.Warned),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed))

	return stats, nil
}
