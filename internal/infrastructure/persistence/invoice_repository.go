package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
)

// GormInvoiceRepository implements billing.RecurringInvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RecurringInvoice, error) {
	var model models.RecurringInvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClaim returns all invoices for a claim ordered by invoice date
func (r *GormInvoiceRepository) FindByClaim(ctx context.Context, claimID uuid.UUID) ([]*billing.RecurringInvoice, error) {
	var modelList []models.RecurringInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("invoice_date ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(modelList), nil
}

// FindEscalatable returns unconfirmed invoices past their due date with no
// payment proof attached. An uploaded proof pauses escalation until staff
// confirm or the proof is removed out of band.
func (r *GormInvoiceRepository) FindEscalatable(ctx context.Context, now time.Time) ([]*billing.RecurringInvoice, error) {
	var modelList []models.RecurringInvoiceModel
	if err := r.db.WithContext(ctx).
		Where("payment_status = ? AND due_date < ? AND (payment_proof_ref IS NULL OR payment_proof_ref = '')",
			billing.PaymentStatusPending.String(), now).
		Order("due_date ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(modelList), nil
}

// SaveBatch inserts a batch of freshly generated invoices
func (r *GormInvoiceRepository) SaveBatch(ctx context.Context, invoices []*billing.RecurringInvoice) error {
	if len(invoices) == 0 {
		return nil
	}
	modelList := make([]models.RecurringInvoiceModel, len(invoices))
	for i, inv := range invoices {
		modelList[i].FromDomain(inv)
	}
	return r.db.WithContext(ctx).Create(&modelList).Error
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.RecurringInvoice) error {
	var model models.RecurringInvoiceModel
	model.FromDomain(inv)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking on the aggregate version.
// Select("*") writes every column so fields cleared to their zero value persist.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.RecurringInvoice) error {
	var model models.RecurringInvoiceModel
	model.FromDomain(inv)

	result := r.db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND version = ?", inv.ID, inv.Version-1).
		Select("*").
		Updates(&model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// DeletePendingByClaim removes the claim's pending invoices and reports how
// many rows were deleted. Confirmed invoices are never touched.
func (r *GormInvoiceRepository) DeletePendingByClaim(ctx context.Context, claimID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("claim_id = ? AND payment_status = ?", claimID, billing.PaymentStatusPending.String()).
		Delete(&models.RecurringInvoiceModel{})
	return result.RowsAffected, result.Error
}

func toDomainInvoices(modelList []models.RecurringInvoiceModel) []*billing.RecurringInvoice {
	invoices := make([]*billing.RecurringInvoice, len(modelList))
	for i := range modelList {
		invoices[i] = modelList[i].ToDomain()
	}
	return invoices
}
