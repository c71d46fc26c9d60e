package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/domain/warning"
)

func newWarningService(invoices *mockInvoiceRepository, warnings *mockWarningRepository) *WarningService {
	svc := NewWarningService(invoices, warnings, zap.NewNop())
	svc.now = func() time.Time { return date(2025, 1, 20) }
	return svc
}

func TestWarningService_IssueManualWarning(t *testing.T) {
	t.Run("records a manual warning against an overdue invoice", func(t *testing.T) {
		invoices := new(mockInvoiceRepository)
		warnings := new(mockWarningRepository)
		svc := newWarningService(invoices, warnings)

		inv := overdueInvoice(t, uuid.New())
		invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		warnings.On("Insert", mock.Anything, mock.MatchedBy(func(w *warning.RentWarning) bool {
			return w.WarningType == warning.TypeManual && w.NotifiedBy == staffActor.ID
		})).Return(true, nil)

		w, err := svc.IssueManualWarning(context.Background(), staffActor, inv.ID, "Settle within seven days.")
		require.NoError(t, err)
		assert.Equal(t, "Settle within seven days.", w.Message)
		assert.Equal(t, inv.ClaimID, w.ClaimID)
	})

	t.Run("second manual warning surfaces duplicate error", func(t *testing.T) {
		invoices := new(mockInvoiceRepository)
		warnings := new(mockWarningRepository)
		svc := newWarningService(invoices, warnings)

		inv := overdueInvoice(t, uuid.New())
		invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		warnings.On("Insert", mock.Anything, mock.Anything).Return(false, nil)

		_, err := svc.IssueManualWarning(context.Background(), staffActor, inv.ID, "")
		assert.ErrorIs(t, err, shared.ErrDuplicateWarning)
	})

	t.Run("invoice not yet overdue rejected", func(t *testing.T) {
		invoices := new(mockInvoiceRepository)
		warnings := new(mockWarningRepository)
		svc := newWarningService(invoices, warnings)
		svc.now = func() time.Time { return date(2025, 1, 5) }

		inv := overdueInvoice(t, uuid.New())
		invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

		_, err := svc.IssueManualWarning(context.Background(), staffActor, inv.ID, "")
		assert.Error(t, err)
		warnings.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("confirmed invoice rejected", func(t *testing.T) {
		invoices := new(mockInvoiceRepository)
		warnings := new(mockWarningRepository)
		svc := newWarningService(invoices, warnings)

		inv := overdueInvoice(t, uuid.New())
		require.NoError(t, inv.Confirm(uuid.New(), date(2025, 1, 9)))
		invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

		_, err := svc.IssueManualWarning(context.Background(), staffActor, inv.ID, "")
		assert.Error(t, err)
	})

	t.Run("non staff forbidden", func(t *testing.T) {
		svc := newWarningService(new(mockInvoiceRepository), new(mockWarningRepository))
		_, err := svc.IssueManualWarning(context.Background(), clientActor, uuid.New(), "")
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestWarningService_ListByClaim(t *testing.T) {
	invoices := new(mockInvoiceRepository)
	warnings := new(mockWarningRepository)
	svc := newWarningService(invoices, warnings)

	claimID := uuid.New()
	w, err := warning.NewAutomaticWarning(claimID, uuid.New())
	require.NoError(t, err)
	warnings.On("FindByClaim", mock.Anything, claimID).Return([]*warning.RentWarning{w}, nil)

	found, err := svc.ListByClaim(context.Background(), claimID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, w.ID, found[0].ID)
}
