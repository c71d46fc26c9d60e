package notice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/notice"
	"github.com/propman/backend/internal/domain/notification"
	"github.com/propman/backend/internal/domain/shared"
)

// Service manages the termination notice lifecycle. A contract carries at
// most one active notice set at a time; issuance takes a row lock on the
// contract so concurrent attempts serialize and exactly one wins.
type Service struct {
	scope     TransactionScope
	directory shared.ActorDirectory
	deliverer notification.Deliverer
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a notice service
func NewService(scope TransactionScope, directory shared.ActorDirectory, deliverer notification.Deliverer, logger *zap.Logger) *Service {
	return &Service{
		scope:     scope,
		directory: directory,
		deliverer: deliverer,
		logger:    logger,
		now:       time.Now,
	}
}

// IssueInput carries the parameters of a termination notice
type IssueInput struct {
	ContractID uuid.UUID
	NoticeType notice.Type
	Message    string
}

// Issue places a termination notice on a contract. Staff notices go to the
// contract's client as a single record; client-requested notices fan out to
// every manager, one record per recipient. The whole fan-out commits
// atomically and the contract moves under notice in the same transaction.
func (s *Service) Issue(ctx context.Context, actor shared.Actor, input IssueInput) ([]*notice.RentNotice, error) {
	template, err := notice.SelectTemplate(input.NoticeType, input.Message, actor.Type)
	if err != nil {
		return nil, err
	}

	var issued []*notice.RentNotice
	var deliveries []notification.Delivery

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		c, err := repos.Contracts().FindByIDForUpdate(ctx, input.ContractID)
		if err != nil {
			return err
		}

		if !actor.Type.IsStaff() && c.ClientID != actor.ID {
			return shared.ErrForbidden
		}

		active, err := repos.Notices().FindActiveByContract(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return shared.ErrActiveNoticeExists
		}

		recipients := []shared.Actor{c.ClientActor()}
		if !actor.Type.IsStaff() {
			recipients, err = s.directory.FindManagers(ctx)
			if err != nil {
				return err
			}
			if len(recipients) == 0 {
				return shared.NewDomainError("NO_MANAGERS", "No managers available to receive the termination request")
			}
		}

		issuedAt := s.now()
		issued = issued[:0]
		deliveries = deliveries[:0]
		for _, recipient := range recipients {
			n, err := notice.NewRentNotice(c.ID, c.ClaimID, input.NoticeType, input.Message, actor, recipient, issuedAt, c.NoticePeriodMonths)
			if err != nil {
				return err
			}
			issued = append(issued, n)
			deliveries = append(deliveries, notification.Delivery{
				Recipient: recipient,
				Sender:    actor,
				Template:  template,
				Substitutions: map[string]string{
					"issued_date": n.IssuedDate.Format("2006-01-02"),
					"end_date":    n.EndDate.Format("2006-01-02"),
					"message":     n.Message,
				},
				Link: fmt.Sprintf("/rentals/contracts/%s/notices/%s", c.ID, n.ID),
			})
		}

		if err := repos.Notices().SaveBatch(ctx, issued); err != nil {
			return err
		}
		if err := c.MarkTerminationNotice(); err != nil {
			return err
		}
		return repos.Contracts().SaveWithLock(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	// Delivery happens after commit; a failed notification never unwinds
	// an issued notice.
	for _, d := range deliveries {
		if err := s.deliverer.Deliver(ctx, d); err != nil {
			s.logger.Warn("notice notification failed",
				zap.String("contract_id", input.ContractID.String()), zap.Error(err))
		}
	}

	s.logger.Info("termination notice issued",
		zap.String("contract_id", input.ContractID.String()),
		zap.String("notice_type", input.NoticeType.String()),
		zap.Int("recipients", len(issued)))

	return issued, nil
}

// Cancel revokes the notice and every other active notice of the same
// contract, then reinstates the contract. Staff only. Cancelling an already
// cancelled notice succeeds without effect.
func (s *Service) Cancel(ctx context.Context, actor shared.Actor, noticeID uuid.UUID) error {
	if !actor.Type.IsStaff() {
		return shared.ErrForbidden
	}

	var client shared.Actor
	var cancelled int

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		n, err := repos.Notices().FindByID(ctx, noticeID)
		if err != nil {
			return err
		}

		c, err := repos.Contracts().FindByIDForUpdate(ctx, n.ContractID)
		if err != nil {
			return err
		}

		if !n.IsActive() {
			return nil
		}

		// A client-issued notice exists as one row per manager recipient;
		// revoking any of them revokes the whole set so the contract's
		// notice state stays unambiguous.
		active, err := repos.Notices().FindActiveByContract(ctx, c.ID)
		if err != nil {
			return err
		}

		at := s.now()
		for _, a := range active {
			if err := a.Cancel(actor, at); err != nil {
				return err
			}
			if err := repos.Notices().Save(ctx, a); err != nil {
				return err
			}
		}
		cancelled = len(active)

		if err := c.Reinstate(); err != nil {
			return err
		}
		if err := repos.Contracts().SaveWithLock(ctx, c); err != nil {
			return err
		}
		client = c.ClientActor()
		return nil
	})
	if err != nil {
		return err
	}
	if cancelled == 0 {
		return nil
	}

	delivery := notification.Delivery{
		Recipient:     client,
		Sender:        actor,
		Template:      notification.TemplateNoticeCancelled,
		Substitutions: map[string]string{"cancelled_date": s.now().Format("2006-01-02")},
	}
	if err := s.deliverer.Deliver(ctx, delivery); err != nil {
		s.logger.Warn("cancellation notification failed",
			zap.String("notice_id", noticeID.String()), zap.Error(err))
	}

	s.logger.Info("termination notice cancelled",
		zap.String("notice_id", noticeID.String()),
		zap.Int("cancelled", cancelled))

	return nil
}

// Get returns a notice by ID
func (s *Service) Get(ctx context.Context, noticeID uuid.UUID) (*notice.RentNotice, error) {
	var found *notice.RentNotice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		n, err := repos.Notices().FindByID(ctx, noticeID)
		if err != nil {
			return err
		}
		found = n
		return nil
	})
	return found, err
}

// ListByContract returns every notice recorded against a contract
func (s *Service) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*notice.RentNotice, error) {
	var found []*notice.RentNotice
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		notices, err := repos.Notices().FindByContract(ctx, contractID)
		if err != nil {
			return err
		}
		found = notices
		return nil
	})
	return found, err
}
