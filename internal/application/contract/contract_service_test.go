package contract

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/shared"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.RentalContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RentalContract), args.Error(1)
}

func (m *mockRepository) FindByClaim(ctx context.Context, claimID uuid.UUID) (*contract.RentalContract, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RentalContract), args.Error(1)
}

func (m *mockRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.RentalContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RentalContract), args.Error(1)
}

func (m *mockRepository) FindActiveEndingOn(ctx context.Context, day time.Time) ([]*contract.RentalContract, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.RentalContract), args.Error(1)
}

func (m *mockRepository) FindAll(ctx context.Context) ([]*contract.RentalContract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.RentalContract), args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, c *contract.RentalContract) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockRepository) SaveWithLock(ctx context.Context, c *contract.RentalContract) error {
	return m.Called(ctx, c).Error(0)
}

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

var staffActor = shared.Actor{ID: uuid.New(), Type: shared.ActorTypeStaff}

func validInput() CreateContractInput {
	return CreateContractInput{
		ClaimID:   uuid.New(),
		ClientID:  uuid.New(),
		OwnerID:   uuid.New(),
		StartDate: date(2025, 1, 1),
		EndDate:   date(2026, 1, 1),
		Settings: contract.BillingSettings{
			InvoiceDate:        date(2025, 1, 1),
			PaymentFrequency:   contract.FrequencyMonthly,
			DueOffsetDays:      10,
			PenaltyRatePercent: decimal.NewFromInt(5),
			Amount:             decimal.NewFromInt(100000),
		},
		NoticePeriodMonths: 3,
	}
}

func TestService_Create(t *testing.T) {
	t.Run("creates an active contract", func(t *testing.T) {
		repo := new(mockRepository)
		svc := NewService(repo, zap.NewNop())

		input := validInput()
		repo.On("FindByClaim", mock.Anything, input.ClaimID).Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		c, err := svc.Create(context.Background(), staffActor, input)
		require.NoError(t, err)
		assert.Equal(t, contract.StatusActive, c.Status)
		assert.Equal(t, input.ClaimID, c.ClaimID)
		repo.AssertExpectations(t)
	})

	t.Run("one contract per claim", func(t *testing.T) {
		repo := new(mockRepository)
		svc := NewService(repo, zap.NewNop())

		input := validInput()
		existing, err := contract.NewRentalContract(input.ClaimID, input.ClientID, input.OwnerID,
			input.StartDate, input.EndDate, input.Settings, input.NoticePeriodMonths)
		require.NoError(t, err)
		repo.On("FindByClaim", mock.Anything, input.ClaimID).Return(existing, nil)

		_, err = svc.Create(context.Background(), staffActor, input)
		assert.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("non staff forbidden", func(t *testing.T) {
		svc := NewService(new(mockRepository), zap.NewNop())
		client := shared.Actor{ID: uuid.New(), Type: shared.ActorTypeClient}
		_, err := svc.Create(context.Background(), client, validInput())
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestService_EndContract(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, zap.NewNop())
	svc.now = func() time.Time { return date(2025, 6, 1) }

	input := validInput()
	c, err := contract.NewRentalContract(input.ClaimID, input.ClientID, input.OwnerID,
		input.StartDate, input.EndDate, input.Settings, input.NoticePeriodMonths)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("SaveWithLock", mock.Anything, c).Return(nil)

	ended, err := svc.EndContract(context.Background(), staffActor, c.ID)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, date(2025, 6, 1), *ended.EndedAt)

	t.Run("ending twice rejected", func(t *testing.T) {
		_, err := svc.EndContract(context.Background(), staffActor, c.ID)
		assert.Error(t, err)
	})
}
