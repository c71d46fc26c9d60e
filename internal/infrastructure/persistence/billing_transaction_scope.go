package persistence

import (
	"context"

	"gorm.io/gorm"

	appbilling "github.com/propman/backend/internal/application/billing"
	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/contract"
)

// GormBillingTransactionScope implements the billing TransactionScope using
// GORM transactions. Schedule regeneration deletes and recreates invoices
// atomically through this scope.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormBillingRepositories{tx: tx})
	})
}

type gormBillingRepositories struct {
	tx *gorm.DB
}

// Contracts returns the contract repository scoped to the current transaction
func (r *gormBillingRepositories) Contracts() contract.Repository {
	return NewGormContractRepository(r.tx)
}

// Invoices returns the invoice repository scoped to the current transaction
func (r *gormBillingRepositories) Invoices() billing.RecurringInvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
