package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/propman/backend/internal/domain/notice"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
)

// GormNoticeRepository implements notice.Repository using GORM
type GormNoticeRepository struct {
	db *gorm.DB
}

// NewGormNoticeRepository creates a new GormNoticeRepository
func NewGormNoticeRepository(db *gorm.DB) *GormNoticeRepository {
	return &GormNoticeRepository{db: db}
}

// FindByID finds a notice by its ID
func (r *GormNoticeRepository) FindByID(ctx context.Context, id uuid.UUID) (*notice.RentNotice, error) {
	var model models.RentNoticeModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByContract returns the contract's active notice rows
func (r *GormNoticeRepository) FindActiveByContract(ctx context.Context, contractID uuid.UUID) ([]*notice.RentNotice, error) {
	var modelList []models.RentNoticeModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ? AND status = ?", contractID, notice.StatusActive.String()).
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainNotices(modelList), nil
}

// FindByContract returns every notice for a contract, newest first
func (r *GormNoticeRepository) FindByContract(ctx context.Context, contractID uuid.UUID) ([]*notice.RentNotice, error) {
	var modelList []models.RentNoticeModel
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}
	return toDomainNotices(modelList), nil
}

// SaveBatch inserts a fan-out set of notices in one statement
func (r *GormNoticeRepository) SaveBatch(ctx context.Context, notices []*notice.RentNotice) error {
	if len(notices) == 0 {
		return nil
	}
	modelList := make([]models.RentNoticeModel, len(notices))
	for i, n := range notices {
		modelList[i].FromDomain(n)
	}
	return r.db.WithContext(ctx).Create(&modelList).Error
}

// Save creates or updates a notice
func (r *GormNoticeRepository) Save(ctx context.Context, n *notice.RentNotice) error {
	var model models.RentNoticeModel
	model.FromDomain(n)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toDomainNotices(modelList []models.RentNoticeModel) []*notice.RentNotice {
	notices := make([]*notice.RentNotice, len(modelList))
	for i := range modelList {
		notices[i] = modelList[i].ToDomain()
	}
	return notices
}
