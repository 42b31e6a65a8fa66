// Package service is the inventory core: cross-entity validation, the
// transaction engine and the soft-delete engine, each run inside one unit of work.
package service

import (
	"context"
	"fmt"

	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/uow"
	"github.com/suteetoe/inventory-service/pkg/metrics"
	"github.com/suteetoe/inventory-service/pkg/password"
	"go.uber.org/zap"
)

// Options tune soft-delete behaviour
type Options struct {
	// RedirectSubcategories re-parents children of a deleted category to the
	// category sentinel instead of moving them to the top level.
	RedirectSubcategories bool
}

// Inventory exposes every core operation
type Inventory struct {
	uow     *uow.Manager
	reads   *repository.Set
	policy  *model.Policy
	hasher  password.Hasher
	log     *zap.Logger
	metrics *metrics.Metrics
	opts    Options
}

// New wires the core over an injected unit-of-work manager. m may be nil.
func New(manager *uow.Manager, policy *model.Policy, hasher password.Hasher, log *zap.Logger, m *metrics.Metrics, opts Options) *Inventory {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inventory{
		uow:     manager,
		reads:   repository.NewSet(manager.DB()),
		policy:  policy,
		hasher:  hasher,
		log:     log,
		metrics: m,
		opts:    opts,
	}
}

// Policy returns the read-only currency and enumeration policy
func (s *Inventory) Policy() *model.Policy {
	return s.policy
}

func call(op string, kind Kind, args map[string]any) uow.Call {
	return uow.Call{Name: fmt.Sprintf("%s_%s", op, kind), Args: args}
}

// withID prepends the target id to audit arguments
func withID(id uint, args map[string]any) map[string]any {
	if args == nil {
		args = map[string]any{}
	}
	args["id"] = id
	return args
}

func (s *Inventory) afterCommit(u *uow.UnitOfWork, fn func(m *metrics.Metrics)) {
	if s.metrics == nil {
		return
	}
	u.AfterCommit(func() { fn(s.metrics) })
}

func (s *Inventory) do(ctx context.Context, c uow.Call, work uow.Work) error {
	return s.uow.Do(ctx, c, work)
}
