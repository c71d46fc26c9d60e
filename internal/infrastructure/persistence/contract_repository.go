package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
)

// GormContractRepository implements contract.Repository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*contract.RentalContract, error) {
	var model models.RentalContractModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClaim finds the contract anchored to a claim
func (r *GormContractRepository) FindByClaim(ctx context.Context, claimID uuid.UUID) (*contract.RentalContract, error) {
	var model models.RentalContractModel
	if err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a contract with a FOR UPDATE row lock. Must be
// called inside a transaction; the lock holds until that transaction ends.
func (r *GormContractRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*contract.RentalContract, error) {
	var model models.RentalContractModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveEndingOn returns active contracts ending on the given calendar day
func (r *GormContractRepository) FindActiveEndingOn(ctx context.Context, day time.Time) ([]*contract.RentalContract, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var modelList []models.RentalContractModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND end_date >= ? AND end_date < ?", contract.StatusActive.String(), dayStart, dayEnd).
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	contracts := make([]*contract.RentalContract, len(modelList))
	for i := range modelList {
		contracts[i] = modelList[i].ToDomain()
	}
	return contracts, nil
}

// FindAll returns all contracts, newest first
func (r *GormContractRepository) FindAll(ctx context.Context) ([]*contract.RentalContract, error) {
	var modelList []models.RentalContractModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&modelList).Error; err != nil {
		return nil, err
	}

	contracts := make([]*contract.RentalContract, len(modelList))
	for i := range modelList {
		contracts[i] = modelList[i].ToDomain()
	}
	return contracts, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, c *contract.RentalContract) error {
	var model models.RentalContractModel
	model.FromDomain(c)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock saves with optimistic locking on the aggregate version.
// Select("*") writes every column so zero-valued settings are not skipped.
func (r *GormContractRepository) SaveWithLock(ctx context.Context, c *contract.RentalContract) error {
	var model models.RentalContractModel
	model.FromDomain(c)

	result := r.db.WithContext(ctx).
		Model(&model).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
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
