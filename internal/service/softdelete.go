package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/uow"
	"github.com/suteetoe/inventory-service/pkg/metrics"
	"go.uber.org/zap"
)

// Soft delete: resolve the sentinel of the entity type, re-point every
// dependent foreign key at it, then remove the target row. Sentinels are
// persisted as soon as they are created so the redirect writes can reference them.

func (s *Inventory) categorySentinel(ctx context.Context, u *uow.UnitOfWork) (*model.Category, error) {
	repo := u.Categories.WithSentinels()
	sentinel, err := repo.FindBy(ctx, repository.Filters{"name": model.DeletedCategoryName})
	if err != nil || sentinel != nil {
		return sentinel, err
	}
	sentinel = &model.Category{
		Name:        model.DeletedCategoryName,
		Description: "Placeholder for deleted categories",
	}
	if err := repo.Create(ctx, sentinel); err != nil {
		return nil, err
	}
	s.log.Info("Created sentinel", zap.String("entity", "category"), zap.Uint("id", sentinel.ID))
	return sentinel, nil
}

func (s *Inventory) productSentinel(ctx context.Context, u *uow.UnitOfWork) (*model.Product, error) {
	repo := u.Products.WithSentinels()
	sentinel, err := repo.FindBy(ctx, repository.Filters{"name": model.DeletedProductName})
	if err != nil || sentinel != nil {
		return sentinel, err
	}
	category, err := s.categorySentinel(ctx, u)
	if err != nil {
		return nil, err
	}
	sentinel = &model.Product{
		Name:          model.DeletedProductName,
		Description:   "Placeholder for deleted products",
		CategoryID:    category.ID,
		PurchasePrice: 1,
		RestockPrice:  1,
		Currency:      s.policy.DefaultCurrency(),
		Quantity:      0,
	}
	if err := repo.Create(ctx, sentinel); err != nil {
		return nil, err
	}
	s.log.Info("Created sentinel", zap.String("entity", "product"), zap.Uint("id", sentinel.ID))
	return sentinel, nil
}

func (s *Inventory) userSentinel(ctx context.Context, u *uow.UnitOfWork) (*model.User, error) {
	repo := u.Users.WithSentinels()
	sentinel, err := repo.FindBy(ctx, repository.Filters{"username": model.DeletedUsername})
	if err != nil || sentinel != nil {
		return sentinel, err
	}
	// Nobody knows this password, so the sentinel can never log in
	hashed, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, errs.Persistence("hash password", err)
	}
	sentinel = &model.User{
		Username: model.DeletedUsername,
		Email:    model.DeletedUserEmail,
		Password: hashed,
		Kind:     model.KindPlainUser,
	}
	if err := repo.Create(ctx, sentinel); err != nil {
		return nil, err
	}
	s.log.Info("Created sentinel", zap.String("entity", "user"), zap.Uint("id", sentinel.ID))
	return sentinel, nil
}

func (s *Inventory) deleteProduct(ctx context.Context, u *uow.UnitOfWork, id uint) error {
	if _, err := u.Products.GetByID(ctx, id); err != nil {
		return err
	}
	sentinel, err := s.productSentinel(ctx, u)
	if err != nil {
		return err
	}
	redirected, err := u.Transactions.UpdateAllBy(ctx,
		repository.Filters{"product_id": id},
		map[string]any{"product_id": sentinel.ID})
	if err != nil {
		return err
	}
	if err := u.Products.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.afterCommit(u, func(m *metrics.Metrics) {
		m.RecordRedirects("product", redirected)
		m.ForgetProduct(id)
	})
	return nil
}

// deleteCategory re-points products at the category sentinel. Child categories
// move to the top level, or to the sentinel when RedirectSubcategories is set.
func (s *Inventory) deleteCategory(ctx context.Context, u *uow.UnitOfWork, id uint) error {
	if _, err := u.Categories.GetByID(ctx, id); err != nil {
		return err
	}
	sentinel, err := s.categorySentinel(ctx, u)
	if err != nil {
		return err
	}
	redirected, err := u.Products.WithSentinels().UpdateAllBy(ctx,
		repository.Filters{"category_id": id},
		map[string]any{"category_id": sentinel.ID})
	if err != nil {
		return err
	}

	var parent any
	if s.opts.RedirectSubcategories {
		parent = sentinel.ID
	}
	children, err := u.Categories.WithSentinels().UpdateAllBy(ctx,
		repository.Filters{"parent_id": id},
		map[string]any{"parent_id": parent})
	if err != nil {
		return err
	}

	if err := u.Categories.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.afterCommit(u, func(m *metrics.Metrics) {
		m.RecordRedirects("category", redirected)
		if s.opts.RedirectSubcategories {
			m.RecordRedirects("subcategory", children)
		}
	})
	return nil
}

// deleteUser removes a plain or admin user. With adminOnly a plain user is not found.
func (s *Inventory) deleteUser(ctx context.Context, u *uow.UnitOfWork, id uint, adminOnly bool) error {
	user, err := u.Users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if adminOnly && !user.IsAdmin() {
		return errs.NotFound(errs.CodeUserNotFound, "no admin user found with ID %d", id)
	}
	sentinel, err := s.userSentinel(ctx, u)
	if err != nil {
		return err
	}
	redirected, err := u.Transactions.UpdateAllBy(ctx,
		repository.Filters{"user_id": id},
		map[string]any{"user_id": sentinel.ID})
	if err != nil {
		return err
	}
	if err := u.Users.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.afterCommit(u, func(m *metrics.Metrics) {
		m.RecordRedirects("user", redirected)
	})
	return nil
}
