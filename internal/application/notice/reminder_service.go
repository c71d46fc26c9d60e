package notice

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/notification"
	"github.com/propman/backend/internal/domain/shared"
)

// reminderLeadDays is how far ahead of the contract end date the expiry
// reminder fires. Contracts are matched on the exact day, so the daily
// sweep reminds each contract once.
const reminderLeadDays = 90

// ReminderService runs the contract expiry reminder sweep
type ReminderService struct {
	contracts contract.Repository
	deliverer notification.Deliverer
	logger    *zap.Logger
	now       func() time.Time
}

// NewReminderService creates a reminder service
func NewReminderService(contracts contract.Repository, deliverer notification.Deliverer, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		contracts: contracts,
		deliverer: deliverer,
		logger:    logger,
		now:       time.Now,
	}
}

// ReminderStats summarizes one reminder run
type ReminderStats struct {
	Matched  int `json:"matched"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// RunSweep notifies clients whose active contracts end exactly ninety
// calendar days from today. Reminders carry the reserved system identity.
func (s *ReminderService) RunSweep(ctx context.Context) (ReminderStats, error) {
	stats := ReminderStats{}
	target := s.now().AddDate(0, 0, reminderLeadDays)

	contracts, err := s.contracts.FindActiveEndingOn(ctx, target)
	if err != nil {
		return stats, err
	}
	stats.Matched = len(contracts)

	sender := shared.SystemActor()
	for _, c := range contracts {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		delivery := notification.Delivery{
			Recipient: c.ClientActor(),
			Sender:    sender,
			Template:  notification.TemplateContractExpiryReminder,
			Substitutions: map[string]string{
				"end_date": c.EndDate.Format("2006-01-02"),
			},
			Link: fmt.Sprintf("/rentals/contracts/%s", c.ID),
		}
		if err := s.deliverer.Deliver(ctx, delivery); err != nil {
			stats.Failed++
			s.logger.Warn("expiry reminder failed",
				zap.String("contract_id", c.ID.String()), zap.Error(err))
			continue
		}
		stats.Notified++
	}

	s.logger.Info("expiry reminder sweep finished",
		zap.Int("matched", stats.Matched),
		zap.Int("notified", stats.Notified),
		zap.Int("failed", stats.Failed))

	return stats, nil
}
