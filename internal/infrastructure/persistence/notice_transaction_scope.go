package persistence

import (
	"context"

	"gorm.io/gorm"

	appnotice "github.com/propman/backend/internal/application/notice"
	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/notice"
)

// GormNoticeTransactionScope implements the notice TransactionScope using
// GORM transactions. The contract row lock taken inside the transaction
// serializes concurrent notice attempts on the same contract.
type GormNoticeTransactionScope struct {
	db *gorm.DB
}

// NewGormNoticeTransactionScope creates a new GormNoticeTransactionScope
func NewGormNoticeTransactionScope(db *gorm.DB) *GormNoticeTransactionScope {
	return &GormNoticeTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormNoticeTransactionScope) Execute(ctx context.Context, fn func(repos appnotice.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormNoticeRepositories{tx: tx})
	})
}

type gormNoticeRepositories struct {
	tx *gorm.DB
}

// Contracts returns the contract repository scoped to the current transaction
func (r *gormNoticeRepositories) Contracts() contract.Repository {
	return NewGormContractRepository(r.tx)
}

// Notices returns the notice repository scoped to the current transaction
func (r *gormNoticeRepositories) Notices() notice.Repository {
	return NewGormNoticeRepository(r.tx)
}

var _ appnotice.TransactionScope = (*GormNoticeTransactionScope)(nil)
var _ appnotice.TransactionalRepositories = (*gormNoticeRepositories)(nil)
