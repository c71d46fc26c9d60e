package notice

import (
	"context"

	"github.com/propman/backend/internal/domain/contract"
	"github.com/propman/backend/internal/domain/notice"
)

// TransactionalRepositories exposes the repositories participating in one
// notice transaction. The contract repository must support row locking so
// concurrent notice attempts against the same contract serialize.
type TransactionalRepositories interface {
	Contracts() contract.Repository
	Notices() notice.Repository
}

// TransactionScope executes a function within a storage transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope runs fn against the plain repositories without a
// surrounding transaction. Used in tests.
type NoOpTransactionScope struct {
	contracts contract.Repository
	notices   notice.Repository
}

// NewNoOpTransactionScope creates a pass-through scope
func NewNoOpTransactionScope(contracts contract.Repository, notices notice.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{contracts: contracts, notices: notices}
}

// Execute runs fn without transactional guarantees
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(noOpRepositories{contracts: s.contracts, notices: s.notices})
}

type noOpRepositories struct {
	contracts contract.Repository
	notices   notice.Repository
}

func (r noOpRepositories) Contracts() contract.Repository { return r.contracts }
func (r noOpRepositories) Notices() notice.Repository     { return r.notices }
