package service

import (
	"context"

	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/uow"
)

// Create validates and inserts the entity described by in
func (s *Inventory) Create(ctx context.Context, in Input) (any, error) {
	var out any
	err := s.do(ctx, call("create", in.Kind(), in.args()), func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		switch v := in.(type) {
		case ProductInput:
			out, err = s.createProduct(ctx, u, v)
		case CategoryInput:
			out, err = s.createCategory(ctx, u, v)
		case UserInput:
			out, err = s.createUser(ctx, u, v)
		case AdminUserInput:
			out, err = s.createAdminUser(ctx, u, v)
		case TransactionInput:
			out, err = s.applyTransaction(ctx, u, v)
		default:
			err = errs.Validation(errs.CodeInvalidEntityKind, "cannot create entity type '%s'", in.Kind())
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByID applies patch to the entity with the given id
func (s *Inventory) UpdateByID(ctx context.Context, id uint, patch Patch) (any, error) {
	var out any
	err := s.do(ctx, call("update", patch.Kind(), withID(id, patch.args())), func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		switch v := patch.(type) {
		case ProductPatch:
			out, err = s.updateProduct(ctx, u, id, v)
		case CategoryPatch:
			out, err = s.updateCategory(ctx, u, id, v)
		case UserPatch:
			out, err = s.updateUser(ctx, u, id, v)
		default:
			err = errs.Validation(errs.CodeInvalidEntityKind, "cannot update entity type '%s'", patch.Kind())
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID soft-deletes the entity of kind with the given id.
// Transactions are ledger records and cannot be deleted.
func (s *Inventory) DeleteByID(ctx context.Context, kind Kind, id uint) error {
	return s.do(ctx, call("delete_by_id", kind, withID(id, nil)), func(ctx context.Context, u *uow.UnitOfWork) error {
		switch kind {
		case KindProduct:
			return s.deleteProduct(ctx, u, id)
		case KindCategory:
			return s.deleteCategory(ctx, u, id)
		case KindUser:
			return s.deleteUser(ctx, u, id, false)
		case KindAdminUser:
			return s.deleteUser(ctx, u, id, true)
		case KindTransaction:
			return errs.Validation(errs.CodeImmutableTransaction, "transactions cannot be deleted")
		default:
			return errs.Validation(errs.CodeInvalidEntityKind, "cannot delete entity type '%s'", kind)
		}
	})
}

// GetByID returns the entity of kind with the given id
func (s *Inventory) GetByID(ctx context.Context, kind Kind, id uint) (any, error) {
	switch kind {
	case KindProduct:
		return s.Product(ctx, id)
	case KindCategory:
		return s.Category(ctx, id)
	case KindUser:
		return s.User(ctx, id)
	case KindAdminUser:
		user, err := s.User(ctx, id)
		if err != nil {
			return nil, err
		}
		if !user.IsAdmin() {
			return nil, errs.NotFound(errs.CodeUserNotFound, "no admin user found with ID %d", id)
		}
		return user, nil
	case KindTransaction:
		return s.Transaction(ctx, id)
	default:
		return nil, errs.Validation(errs.CodeInvalidEntityKind, "unknown entity type '%s'", kind)
	}
}

// GetAll lists every entity of kind
func (s *Inventory) GetAll(ctx context.Context, kind Kind) (any, error) {
	switch kind {
	case KindProduct:
		return s.Products(ctx)
	case KindCategory:
		return s.Categories(ctx)
	case KindUser:
		return s.Users(ctx)
	case KindAdminUser:
		return s.AdminUsers(ctx)
	case KindTransaction:
		return s.Transactions(ctx)
	default:
		return nil, errs.Validation(errs.CodeInvalidEntityKind, "unknown entity type '%s'", kind)
	}
}
