package billing

import (
	"context"

	"github.com/propman/backend/internal/domain/billing"
	"github.com/propman/backend/internal/domain/contract"
)

// TransactionalRepositories exposes the repositories participating in one
// billing transaction. Implementations bind every repository to the same
// underlying transaction so schedule regeneration is atomic.
type TransactionalRepositories interface {
	Contracts() contract.Repository
	Invoices() billing.RecurringInvoiceRepository
}

// TransactionScope executes a function within a storage transaction.
// If fn returns an error the transaction rolls back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope runs fn against the plain repositories without a
// surrounding transaction. Used in tests and single-writer setups.
type NoOpTransactionScope struct {
	contracts contract.Repository
	invoices  billing.RecurringInvoiceRepository
}

// NewNoOpTransactionScope creates a pass-through scope
func NewNoOpTransactionScope(contracts contract.Repository, invoices billing.RecurringInvoiceRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{contracts: contracts, invoices: invoices}
}

// Execute runs fn without transactional guarantees
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(noOpRepositories{contracts: s.contracts, invoices: s.invoices})
}

type noOpRepositories struct {
	contracts contract.Repository
	invoices  billing.RecurringInvoiceRepository
}

func (r noOpRepositories) Contracts() contract.Repository               { return r.contracts }
func (r noOpRepositories) Invoices() billing.RecurringInvoiceRepository { return r.invoices }
