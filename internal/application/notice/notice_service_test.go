package notice

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
	"github.com/propman/backend/internal/domain/notice"
	"github.com/propman/backend/internal/domain/notification"
	"github.com/propman/backend/internal/domain/shared"
)

type mockContractRepository struct {
	mock.Mock
}

func (m *mockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.RentalContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RentalContract), args.Error(1)
}

func (m *mockContractRepository) FindByClaim(ctx context.Context, claimID uuid.UUID) (*contract.RentalContract, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RentalContract), args.Error(1)
}

func (m *mockContractRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.RentalContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.RentalContract), args.Error(1)
}

func (m *mockContractRepository) FindActiveEndingOn(ctx context.Context, day time.Time) ([]*contract.RentalContract, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.RentalContract), args.Error(1)
}

func (m *mockContractRepository) FindAll(ctx context.Context) ([]*contract.RentalContract, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.RentalContract), args.Error(1)
}

func (m *mockContractRepository) Save(ctx context.Context, c *contract.RentalContract) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockContractRepository) SaveWithLock(ctx context.Context, c *contract.RentalContract) error {
	return m.Called(ctx, c).Error(0)
}

type mockNoticeRepository struct {
	mock.Mock
}

func (m *mockNoticeRepository) FindByID(ctx context.Context, id uuid.UUID) (*notice.RentNotice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notice.RentNotice), args.Error(1)
}

func (m *mockNoticeRepository) FindActiveByContract(ctx context.Context, contractID uuid.UUID) ([]*notice.RentNotice, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notice.RentNotice), args.Error(1)
}

func (m *mockNoticeRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]*notice.RentNotice, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notice.RentNotice), args.Error(1)
}

func (m *mockNoticeRepository) SaveBatch(ctx context.Context, notices []*notice.RentNotice) error {
	return m.Called(ctx, notices).Error(0)
}

func (m *mockNoticeRepository) Save(ctx context.Context, n *notice.RentNotice) error {
	return m.Called(ctx, n).Error(0)
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) FindManagers(ctx context.Context) ([]shared.Actor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shared.Actor), args.Error(1)
}

type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) Deliver(ctx context.Context, d notification.Delivery) error {
	return m.Called(ctx, d).Error(0)
}

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

var (
	staffActor  = shared.Actor{ID: uuid.New(), Type: shared.ActorTypeStaff}
	clientActor = shared.Actor{ID: uuid.New(), Type: shared.ActorTypeClient}
)

func testContract(t *testing.T) *contract.RentalContract {
	t.Helper()
	c, err := contract.NewRentalContract(uuid.New(), clientActor.ID, uuid.New(),
		date(2025, 1, 1), date(2026, 1, 1),
		contract.BillingSettings{
			InvoiceDate:        date(2025, 1, 1),
			PaymentFrequency:   contract.FrequencyMonthly,
			DueOffsetDays:      10,
			PenaltyRatePercent: decimal.NewFromInt(5),
			Amount:             decimal.NewFromInt(100000),
		}, 3)
	require.NoError(t, err)
	return c
}

type fixture struct {
	contracts *mockContractRepository
	notices   *mockNoticeRepository
	directory *mockDirectory
	deliverer *mockDeliverer
	svc       *Service
}

func newFixture() *fixture {
	f := &fixture{
		contracts: new(mockContractRepository),
		notices:   new(mockNoticeRepository),
		directory: new(mockDirectory),
		deliverer: new(mockDeliverer),
	}
	f.svc = NewService(NewNoOpTransactionScope(f.contracts, f.notices), f.directory, f.deliverer, zap.NewNop())
	f.svc.now = func() time.Time { return date(2025, 2, 1) }
	return f
}

func TestService_Issue(t *testing.T) {
	t.Run("staff period notice targets the client and moves the contract under notice", func(t *testing.T) {
		f := newFixture()
		c := testContract(t)

		f.contracts.On("FindByIDForUpdate", mock.Anything, c.ID).Return(c, nil)
		f.notices.On("FindActiveByContract", mock.Anything, c.ID).Return([]*notice.RentNotice{}, nil)
		f.notices.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
		f.contracts.On("SaveWithLock", mock.Anything, c).Return(nil)
		f.deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(d notification.Delivery) bool {
			return d.Template == notification.TemplatePeriodNotice && d.Recipient.ID == c.ClientID
		})).Return(nil)

		issued, err := f.svc.Issue(context.Background(), staffActor, IssueInput{
			ContractID: c.ID,
			NoticeType: notice.TypePeriod,
			Message:    "lease ending",
		})
		require.NoError(t, err)
		require.Len(t, issued, 1)
		assert.Equal(t, c.ClientID, issued[0].RecipientID)
		// 3 month notice period at 30 days per month.
		assert.Equal(t, date(2025, 2, 1).AddDate(0, 0, 90), issued[0].EndDate)
		assert.Equal(t, contract.StatusTerminationNotice, c.Status)
		f.deliverer.AssertExpectations(t)
	})

	t.Run("client request fans out one notice per manager", func(t *testing.T) {
		f := newFixture()
		c := testContract(t)
		managers := []shared.Actor{
			{ID: uuid.New(), Type: shared.ActorTypeStaff},
			{ID: uuid.New(), Type: shared.ActorTypeStaff},
		}

		f.contracts.On("FindByIDForUpdate", mock.Anything, c.ID).Return(c, nil)
		f.notices.On("FindActiveByContract", mock.Anything, c.ID).Return([]*notice.RentNotice{}, nil)
		f.directory.On("FindManagers", mock.Anything).Return(managers, nil)
		f.notices.On("SaveBatch", mock.Anything, mock.MatchedBy(func(ns []*notice.RentNotice) bool {
			return len(ns) == 2
		})).Return(nil)
		f.contracts.On("SaveWithLock", mock.Anything, c).Return(nil)
		f.deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(d notification.Delivery) bool {
			return d.Template == notification.TemplateClientTerminationRequest
		})).Return(nil).Twice()

		issued, err := f.svc.Issue(context.Background(), clientActor, IssueInput{
			ContractID: c.ID,
			NoticeType: notice.TypePeriod,
			Message:    "moving out",
		})
		require.NoError(t, err)
		require.Len(t, issued, 2)
		assert.Equal(t, managers[0].ID, issued[0].RecipientID)
		assert.Equal(t, managers[1].ID, issued[1].RecipientID)
		f.deliverer.AssertExpectations(t)
	})

	t.Run("second notice on the same contract conflicts", func(t *testing.T) {
		f := newFixture()
		c := testContract(t)
		require.NoError(t, c.MarkTerminationNotice())

		existing, err := notice.NewRentNotice(c.ID, c.ClaimID, notice.TypePeriod, "lease ending",
			staffActor, c.ClientActor(), date(2025, 1, 15), c.NoticePeriodMonths)
		require.NoError(t, err)

		f.contracts.On("FindByIDForUpdate", mock.Anything, c.ID).Return(c, nil)
		f.notices.On("FindActiveByContract", mock.Anything, c.ID).Return([]*notice.RentNotice{existing}, nil)

		_, err = f.svc.Issue(context.Background(), staffActor, IssueInput{
			ContractID: c.ID,
			NoticeType: notice.TypeImmediate,
			Message:    "overdue rent",
		})
		assert.ErrorIs(t, err, shared.ErrActiveNoticeExists)
		f.notices.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
	})

	t.Run("client cannot issue immediate notice", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Issue(context.Background(), clientActor, IssueInput{
			ContractID: uuid.New(),
			NoticeType: notice.TypeImmediate,
			Message:    "done with this place",
		})
		assert.Error(t, err)
		f.contracts.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("client cannot issue against another client's contract", func(t *testing.T) {
		f := newFixture()
		c := testContract(t)
		other := shared.Actor{ID: uuid.New(), Type: shared.ActorTypeClient}

		f.contracts.On("FindByIDForUpdate", mock.Anything, c.ID).Return(c, nil)

		_, err := f.svc.Issue(context.Background(), other, IssueInput{
			ContractID: c.ID,
			NoticeType: notice.TypePeriod,
			Message:    "moving out",
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("cancels the whole active set and reinstates the contract", func(t *testing.T) {
		f := newFixture()
		c := testContract(t)
		require.NoError(t, c.MarkTerminationNotice())

		managers := []shared.Actor{
			{ID: uuid.New(), Type: shared.ActorTypeStaff},
			{ID: uuid.New(), Type: shared.ActorTypeStaff},
		}
		var set []*notice.RentNotice
		for _, mgr := range managers {
			n, err := notice.NewRentNotice(c.ID, c.ClaimID, notice.TypePeriod, "moving out",
				clientActor, mgr, date(2025, 1, 15), c.NoticePeriodMonths)
			require.NoError(t, err)
			set = append(set, n)
		}

		f.notices.On("FindByID", mock.Anything, set[0].ID).Return(set[0], nil)
		f.contracts.On("FindByIDForUpdate", mock.Anything, c.ID).Return(c, nil)
		f.notices.On("FindActiveByContract", mock.Anything, c.ID).Return(set, nil)
		f.notices.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()
		f.contracts.On("SaveWithLock", mock.Anything, c).Return(nil)
		f.deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(d notification.Delivery) bool {
			return d.Template == notification.TemplateNoticeCancelled && d.Recipient.ID == c.ClientID
		})).Return(nil)

		require.NoError(t, f.svc.Cancel(context.Background(), staffActor, set[0].ID))

		assert.Equal(t, contract.StatusActive, c.Status)
		for _, n := range set {
			assert.Equal(t, notice.StatusCancelled, n.Status)
			require.NotNil(t, n.CancelledBy)
			assert.Equal(t, staffActor.ID, *n.CancelledBy)
		}
		f.notices.AssertExpectations(t)
	})

	t.Run("cancelling an already cancelled notice is benign", func(t *testing.T) {
		f := newFixture()
		c := testContract(t)

		n, err := notice.NewRentNotice(c.ID, c.ClaimID, notice.TypePeriod, "lease ending",
			staffActor, c.ClientActor(), date(2025, 1, 15), c.NoticePeriodMonths)
		require.NoError(t, err)
		require.NoError(t, n.Cancel(staffActor, date(2025, 1, 20)))

		f.notices.On("FindByID", mock.Anything, n.ID).Return(n, nil)
		f.contracts.On("FindByIDForUpdate", mock.Anything, c.ID).Return(c, nil)

		require.NoError(t, f.svc.Cancel(context.Background(), staffActor, n.ID))
		f.contracts.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
		f.deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("non staff forbidden", func(t *testing.T) {
		f := newFixture()
		err := f.svc.Cancel(context.Background(), clientActor, uuid.New())
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestReminderService_RunSweep(t *testing.T) {
	t.Run("notifies clients of contracts ending ninety days out", func(t *testing.T) {
		contracts := new(mockContractRepository)
		deliverer := new(mockDeliverer)
		svc := NewReminderService(contracts, deliverer, zap.NewNop())
		svc.now = func() time.Time { return date(2025, 10, 3) }

		c := testContract(t) // ends 2026-01-01, exactly 90 days after 2025-10-03
		contracts.On("FindActiveEndingOn", mock.Anything, date(2026, 1, 1)).
			Return([]*contract.RentalContract{c}, nil)
		deliverer.On("Deliver", mock.Anything, mock.MatchedBy(func(d notification.Delivery) bool {
			return d.Template == notification.TemplateContractExpiryReminder &&
				d.Recipient.ID == c.ClientID &&
				d.Sender.ID == shared.SystemActor().ID
		})).Return(nil)

		stats, err := svc.RunSweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ReminderStats{Matched: 1, Notified: 1, Failed: 0}, stats)
		deliverer.AssertExpectations(t)
	})

	t.Run("delivery failure is counted and does not abort", func(t *testing.T) {
		contracts := new(mockContractRepository)
		deliverer := new(mockDeliverer)
		svc := NewReminderService(contracts, deliverer, zap.NewNop())
		svc.now = func() time.Time { return date(2025, 10, 3) }

		first := testContract(t)
		second := testContract(t)
		contracts.On("FindActiveEndingOn", mock.Anything, mock.Anything).
			Return([]*contract.RentalContract{first, second}, nil)
		deliverer.On("Deliver", mock.Anything, mock.Anything).Return(assert.AnError).Once()
		deliverer.On("Deliver", mock.Anything, mock.Anything).Return(nil).Once()

		stats, err := svc.RunSweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, ReminderStats{Matched: 2, Notified: 1, Failed: 1}, stats)
	})
}
