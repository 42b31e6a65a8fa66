package service

import (
	"context"
	"strings"

	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/uow"
	"go.uber.org/zap"
)

func normalizeLookup(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *Inventory) createUser(ctx context.Context, u *uow.UnitOfWork, in UserInput) (*model.User, error) {
	if err := s.ValidateUser(ctx, u, &in); err != nil {
		return nil, err
	}
	return s.insertUser(ctx, u, in, model.KindPlainUser, "")
}

func (s *Inventory) createAdminUser(ctx context.Context, u *uow.UnitOfWork, in AdminUserInput) (*model.User, error) {
	status, err := s.ValidateAdminUser(ctx, u, &in)
	if err != nil {
		return nil, err
	}
	return s.insertUser(ctx, u, in.UserInput, model.KindAdminUser, status)
}

func (s *Inventory) insertUser(ctx context.Context, u *uow.UnitOfWork, in UserInput, kind model.UserKind, status model.AdminStatus) (*model.User, error) {
	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, errs.Persistence("hash password", err)
	}
	user := &model.User{
		Username:    in.Username,
		Email:       in.Email,
		Password:    hashed,
		Kind:        kind,
		AdminStatus: status,
	}
	if err := u.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Inventory) updateUser(ctx context.Context, u *uow.UnitOfWork, id uint, patch UserPatch) (*model.User, error) {
	existing, err := u.Users.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.admin && !existing.IsAdmin() {
		return nil, errs.NotFound(errs.CodeUserNotFound, "no admin user found with ID %d", id)
	}
	next, err := s.ValidateUpdateUser(ctx, u, existing, patch)
	if err != nil {
		return nil, err
	}
	if err := u.Users.UpdateColumns(ctx, next, patch.columns()...); err != nil {
		return nil, err
	}
	return next, nil
}

// Login verifies credentials and returns the user. Unknown users and wrong
// passwords fail identically.
func (s *Inventory) Login(ctx context.Context, username, password string) (*model.User, error) {
	invalid := errs.Validation(errs.CodeInvalidCredentials, "invalid username or password")

	user, err := s.reads.Users.FindBy(ctx, repository.Filters{"username": normalizeLookup(username)})
	if err != nil {
		return nil, err
	}
	ok := user != nil && s.hasher.Verify(user.Password, password)
	if s.metrics != nil {
		s.metrics.RecordLogin(ok)
	}
	if !ok {
		s.log.Debug("Login rejected", zap.String("username", normalizeLookup(username)))
		return nil, invalid
	}
	return user, nil
}

// User returns one user of either kind
func (s *Inventory) User(ctx context.Context, id uint) (*model.User, error) {
	return s.reads.Users.GetByID(ctx, id)
}

// Users lists every user of either kind
func (s *Inventory) Users(ctx context.Context) ([]model.User, error) {
	return s.reads.Users.GetAll(ctx)
}

// UsersBy lists users matching filters
func (s *Inventory) UsersBy(ctx context.Context, filters repository.Filters) ([]model.User, error) {
	return s.reads.Users.GetAllBy(ctx, filters)
}

// AdminUsers lists admin users only
func (s *Inventory) AdminUsers(ctx context.Context) ([]model.User, error) {
	return s.reads.Users.GetAllBy(ctx, repository.Filters{"type": model.KindAdminUser})
}
