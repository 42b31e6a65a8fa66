// Package uow scopes one logical operation to one storage transaction.
//
// A Manager runs a Work function inside a gorm transaction. The transaction
// commits only when the work returns nil and the caller's context is still
// live; any error, panic or cancellation rolls every step back. Interceptors
// wrap the whole scope so metrics, audit and logging observe the final outcome
// (after commit or rollback) in an explicit order.
package uow

import (
	"context"
	"errors"

	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/repository"
	"gorm.io/gorm"
)

// Call names one operation and carries its arguments for interceptors
type Call struct {
	Name string
	Args map[string]any
}

// UnitOfWork exposes repositories that share one transaction
type UnitOfWork struct {
	*repository.Set

	afterCommit []func()
}

// AfterCommit registers fn to run once the transaction has committed.
// Hooks never run after a rollback.
func (u *UnitOfWork) AfterCommit(fn func()) {
	u.afterCommit = append(u.afterCommit, fn)
}

// Work is the transactional body of an operation
type Work func(ctx context.Context, u *UnitOfWork) error

// Manager opens units of work over an explicitly injected storage handle
type Manager struct {
	db           *gorm.DB
	interceptors []Interceptor
}

// NewManager returns a manager over db. Interceptors run outermost first.
func NewManager(db *gorm.DB, interceptors ...Interceptor) *Manager {
	return &Manager{db: db, interceptors: interceptors}
}

// DB returns the handle outside any transaction
func (m *Manager) DB() *gorm.DB {
	return m.db
}

// Do runs work as one atomic unit, wrapped by the manager's interceptors
func (m *Manager) Do(ctx context.Context, call Call, work Work) error {
	body := func(ctx context.Context, _ Call) error {
		return m.run(ctx, work)
	}
	return Chain(m.interceptors...)(body)(ctx, call)
}

func (m *Manager) run(ctx context.Context, work Work) error {
	if err := ctx.Err(); err != nil {
		return errs.Cancelled(err)
	}

	var unit *UnitOfWork
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		unit = &UnitOfWork{Set: repository.NewSet(tx)}
		if err := work(ctx, unit); err != nil {
			return err
		}
		// A caller that gave up must not see its work committed
		if err := ctx.Err(); err != nil {
			return errs.Cancelled(err)
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !isDomain(err) {
			return errs.Cancelled(ctxErr)
		}
		return errs.Wrap("commit", err)
	}

	for _, fn := range unit.afterCommit {
		fn()
	}
	return nil
}

// isDomain reports whether err is a typed error other than a storage failure
func isDomain(err error) bool {
	var e *errs.Error
	return errors.As(err, &e) && e.Kind != errs.KindPersistence
}
