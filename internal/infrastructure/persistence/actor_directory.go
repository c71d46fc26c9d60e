package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/infrastructure/persistence/models"
)

// GormActorDirectory resolves actors from the users projection table
type GormActorDirectory struct {
	db *gorm.DB
}

// NewGormActorDirectory creates a new GormActorDirectory
func NewGormActorDirectory(db *gorm.DB) *GormActorDirectory {
	return &GormActorDirectory{db: db}
}

// FindManagers returns all staff members holding a manager role
func (d *GormActorDirectory) FindManagers(ctx context.Context) ([]shared.Actor, error) {
	var userList []models.UserModel
	if err := d.db.WithContext(ctx).
		Where("role = ?", "MANAGER").
		Find(&userList).Error; err != nil {
		return nil, err
	}

	actors := make([]shared.Actor, len(userList))
	for i := range userList {
		actors[i] = userList[i].ToActor()
	}
	return actors, nil
}
