package contract

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/shared"
)

// Service manages rental contract records. Schedule generation is the
// billing service's job; this service only owns the contract aggregate
// itself.
type Service struct {
	contracts contract.Repository
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a contract service
func NewService(contracts contract.Repository, logger *zap.Logger) *Service {
	return &Service{
		contracts: contracts,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateContractInput carries the parameters for registering a contract
// against an accepted claim.
type CreateContractInput struct {
	ClaimID            uuid.UUID
	ClientID           uuid.UUID
	OwnerID            uuid.UUID
	StartDate          time.Time
	EndDate            time.Time
	Settings           contract.BillingSettings
	NoticePeriodMonths int
}

// Create registers a contract for an accepted claim. One contract exists
// per claim.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateContractInput) (*contract.RentalContract, error) {
	if !actor.Type.IsStaff() {
		return nil, shared.ErrForbidden
	}

	existing, err := s.contracts.FindByClaim(ctx, input.ClaimID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A contract already exists for this claim")
	}

	c, err := contract.NewRentalContract(
		input.ClaimID,
		input.ClientID,
		input.OwnerID,
		input.StartDate,
		input.EndDate,
		input.Settings,
		input.NoticePeriodMonths,
	)
	if err != nil {
		return nil, err
	}

	if err := s.contracts.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		zap.String("contract_id", c.ID.String()),
		zap.String("claim_id", c.ClaimID.String()),
		zap.String("frequency", c.PaymentFrequency.String()))

	return c, nil
}

// Get returns a contract by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*contract.RentalContract, error) {
	return s.contracts.FindByID(ctx, id)
}

// GetByClaim returns the contract attached to a claim
func (s *Service) GetByClaim(ctx context.Context, claimID uuid.UUID) (*contract.RentalContract, error) {
	return s.contracts.FindByClaim(ctx, claimID)
}

// List returns all contracts
func (s *Service) List(ctx context.Context) ([]*contract.RentalContract, error) {
	return s.contracts.FindAll(ctx)
}

// EndContract terminates a contract. Staff only; terminal.
func (s *Service) EndContract(ctx context.Context, actor shared.Actor, id uuid.UUID) (*contract.RentalContract, error) {
	if !actor.Type.IsStaff() {
		return nil, shared.ErrForbidden
	}

	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.End(s.now()); err != nil {
		return nil, err
	}
	if err := s.contracts.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("contract ended",
		zap.String("contract_id", c.ID.String()),
		zap.String("ended_by", actor.ID.String()))

	return c, nil
}

// SetRenewalStatus records the outcome of a renewal negotiation
func (s *Service) SetRenewalStatus(ctx context.Context, actor shared.Actor, id uuid.UUID, status contract.RenewalStatus) (*contract.RentalContract, error) {
	if !actor.Type.IsStaff() {
		return nil, shared.ErrForbidden
	}

	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.SetRenewalStatus(status); err != nil {
		return nil, err
	}
	if err := s.contracts.SaveWithLock(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
