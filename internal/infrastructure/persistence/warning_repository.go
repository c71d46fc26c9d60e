package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propman/backend/internal/domain/warning"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
)

// GormWarningRepository implements warning.Repository using GORM
type GormWarningRepository struct {
	db *gorm.DB
}

// NewGormWarningRepository creates a new GormWarningRepository
func NewGormWarningRepository(db *gorm.DB) *GormWarningRepository {
	return &GormWarningRepository{db: db}
}

// Insert writes the warning unless one of the same type already exists for
// the invoice. The unique index absorbs the conflict, so concurrent sweeps
// racing on the same invoice produce exactly one row. Returns whether the
// row was written.
func (r *GormWarningRepository) Insert(ctx context.Context, w *warning.RentWarning) (bool, error) {
	var model models.RentWarningModel
	model.FromDomain(w)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "invoice_id"}, {Name: "warning_type"}},
			DoNothing: true,
		}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExistsForInvoice reports whether a warning of the given type exists
func (r *GormWarningRepository) ExistsForInvoice(ctx context.Context, invoiceID uuid.UUID, typ warning.Type) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RentWarningModel{}).
		Where("invoice_id = ? AND warning_type = ?", invoiceID, typ.String()).
		Count(&count).Error
	return count > 0, err
}

// FindByClaim returns all warnings for a claim, newest first
func (r *GormWarningRepository) FindByClaim(ctx context.Context, claimID uuid.UUID) ([]*warning.RentWarning, error) {
	var modelList []models.RentWarningModel
	if err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainWarnings(modelList), nil
}

// FindByInvoice returns all warnings for an invoice
func (r *GormWarningRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*warning.RentWarning, error) {
	var modelList []models.RentWarningModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainWarnings(modelList), nil
}

func toDomainWarnings(modelList []models.RentWarningModel) []*warning.RentWarning {
	warnings := make([]*warning.RentWarning, len(modelList))
	for i := range modelList {
		warnings[i] = modelList[i].ToDomain()
	}
	return warnings
}
