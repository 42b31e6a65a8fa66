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

// Preconditions checked before any write. Each returns the first failure found.

func reserved(field, value, sentinel string) error {
	if value == sentinel {
		return errs.Validation(errs.CodeReservedName, "%s '%s' is reserved", field, value)
	}
	return nil
}

// ValidateUser normalizes credentials and checks username and e-mail uniqueness
func (s *Inventory) ValidateUser(ctx context.Context, u *uow.UnitOfWork, in *UserInput) error {
	username, err := model.NormalizeUsername(in.Username)
	if err != nil {
		return err
	}
	email, err := model.NormalizeEmail(in.Email)
	if err != nil {
		return err
	}
	if strings.TrimSpace(in.Password) == "" {
		return errs.Validation(errs.CodeInvalidValue, "password cannot be empty")
	}
	if err := reserved("username", username, model.DeletedUsername); err != nil {
		return err
	}
	if err := reserved("email", email, model.DeletedUserEmail); err != nil {
		return err
	}
	in.Username, in.Email = username, email

	if taken, err := u.Users.Exists(ctx, repository.Filters{"username": username}); err != nil {
		return err
	} else if taken {
		return errs.Validation(errs.CodeDuplicateUsername, "a user with this username already exists")
	}
	if taken, err := u.Users.WithSentinels().Exists(ctx, repository.Filters{"email": email}); err != nil {
		return err
	} else if taken {
		return errs.Validation(errs.CodeDuplicateEmail, "a user with this email already exists")
	}
	return nil
}

// ValidateAdminUser runs ValidateUser and resolves the admin status
func (s *Inventory) ValidateAdminUser(ctx context.Context, u *uow.UnitOfWork, in *AdminUserInput) (model.AdminStatus, error) {
	if in.AdminStatus == "" {
		in.AdminStatus = string(model.AdminStatusRegular)
	}
	status, err := s.policy.ParseAdminStatus(in.AdminStatus)
	if err != nil {
		return "", err
	}
	if err := s.ValidateUser(ctx, u, &in.UserInput); err != nil {
		return "", err
	}
	return status, nil
}

// ValidateCategory checks the name and resolves the parent. A parent given by
// id must exist; a parent given by name is created when missing.
func (s *Inventory) ValidateCategory(ctx context.Context, u *uow.UnitOfWork, in *CategoryInput) (*uint, error) {
	if err := s.checkCategoryName(ctx, u, in.Name, 0); err != nil {
		return nil, err
	}
	switch {
	case in.ParentID != nil:
		parent, err := u.Categories.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		return &parent.ID, nil
	case in.ParentName != "":
		parent, err := s.findOrCreateCategory(ctx, u, in.ParentName)
		if err != nil {
			return nil, err
		}
		return &parent.ID, nil
	default:
		return nil, nil
	}
}

// ValidateProduct checks field values and name uniqueness and resolves the
// category, falling back to the default category when none is given.
func (s *Inventory) ValidateProduct(ctx context.Context, u *uow.UnitOfWork, in *ProductInput) (uint, error) {
	currency, err := s.checkProductFields(in.Name, in.PurchasePrice, in.RestockPrice, in.Currency, in.Quantity)
	if err != nil {
		return 0, err
	}
	in.Currency = currency

	if err := s.checkProductName(ctx, u, in.Name, 0); err != nil {
		return 0, err
	}

	switch {
	case in.CategoryID != nil:
		category, err := u.Categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return 0, err
		}
		return category.ID, nil
	case in.CategoryName != "":
		return s.categoryByName(ctx, u, in.CategoryName)
	default:
		category, err := s.defaultCategory(ctx, u)
		if err != nil {
			return 0, err
		}
		return category.ID, nil
	}
}

// ValidateUpdateProduct applies patch to a copy of existing and validates the result.
// The name check exempts existing itself.
func (s *Inventory) ValidateUpdateProduct(ctx context.Context, u *uow.UnitOfWork, existing *model.Product, patch ProductPatch) (*model.Product, error) {
	next := *existing
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.PurchasePrice != nil {
		next.PurchasePrice = *patch.PurchasePrice
	}
	if patch.RestockPrice != nil {
		next.RestockPrice = *patch.RestockPrice
	}
	if patch.Currency != nil {
		next.Currency = *patch.Currency
	}
	if patch.Quantity != nil {
		next.Quantity = *patch.Quantity
	}

	currency, err := s.checkProductFields(next.Name, next.PurchasePrice, next.RestockPrice, next.Currency, next.Quantity)
	if err != nil {
		return nil, err
	}
	next.Currency = currency

	if next.Name != existing.Name {
		if err := s.checkProductName(ctx, u, next.Name, existing.ID); err != nil {
			return nil, err
		}
	}

	switch {
	case patch.CategoryID != nil:
		category, err := u.Categories.GetByID(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		next.CategoryID = category.ID
	case patch.CategoryName != nil:
		id, err := s.categoryByName(ctx, u, *patch.CategoryName)
		if err != nil {
			return nil, err
		}
		next.CategoryID = id
	}
	return &next, nil
}

// ValidateUpdateCategory applies patch to a copy of existing, validates the
// name and rejects a parent that would close a cycle.
func (s *Inventory) ValidateUpdateCategory(ctx context.Context, u *uow.UnitOfWork, existing *model.Category, patch CategoryPatch) (*model.Category, error) {
	next := *existing
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if next.Name != existing.Name {
		if err := s.checkCategoryName(ctx, u, next.Name, existing.ID); err != nil {
			return nil, err
		}
	}

	switch {
	case patch.ClearParent:
		next.ParentID = nil
	case patch.ParentID != nil:
		parent, err := u.Categories.GetByID(ctx, *patch.ParentID)
		if err != nil {
			return nil, err
		}
		next.ParentID = &parent.ID
	case patch.ParentName != nil:
		parent, err := s.findOrCreateCategory(ctx, u, *patch.ParentName)
		if err != nil {
			return nil, err
		}
		next.ParentID = &parent.ID
	}

	if next.ParentID != nil {
		if err := s.checkNoCycle(ctx, u, existing.ID, *next.ParentID); err != nil {
			return nil, err
		}
	}
	return &next, nil
}

// ValidateUpdateUser applies patch to a copy of existing. Uniqueness checks
// exempt existing itself and a new password is hashed.
func (s *Inventory) ValidateUpdateUser(ctx context.Context, u *uow.UnitOfWork, existing *model.User, patch UserPatch) (*model.User, error) {
	next := *existing
	if patch.Username != nil {
		username, err := model.NormalizeUsername(*patch.Username)
		if err != nil {
			return nil, err
		}
		if err := reserved("username", username, model.DeletedUsername); err != nil {
			return nil, err
		}
		if username != existing.Username {
			other, err := u.Users.FindBy(ctx, repository.Filters{"username": username})
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != existing.ID {
				return nil, errs.Validation(errs.CodeDuplicateUsername, "a user with this username already exists")
			}
		}
		next.Username = username
	}
	if patch.Email != nil {
		email, err := model.NormalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		if err := reserved("email", email, model.DeletedUserEmail); err != nil {
			return nil, err
		}
		if email != existing.Email {
			other, err := u.Users.WithSentinels().FindBy(ctx, repository.Filters{"email": email})
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != existing.ID {
				return nil, errs.Validation(errs.CodeDuplicateEmail, "a user with this email already exists")
			}
		}
		next.Email = email
	}
	if patch.AdminStatus != nil {
		if !existing.IsAdmin() {
			return nil, errs.Validation(errs.CodeInvalidAdminStatus, "user %d is not an admin user", existing.ID)
		}
		status, err := s.policy.ParseAdminStatus(*patch.AdminStatus)
		if err != nil {
			return nil, err
		}
		next.AdminStatus = status
	}
	if patch.Password != nil {
		if strings.TrimSpace(*patch.Password) == "" {
			return nil, errs.Validation(errs.CodeInvalidValue, "password cannot be empty")
		}
		hashed, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, errs.Persistence("hash password", err)
		}
		next.Password = hashed
	}
	return &next, nil
}

// ResolvedTransaction is a transaction request that passed validation
type ResolvedTransaction struct {
	Product  *model.Product
	User     *model.User
	Type     model.TransactionType
	Currency string
}

// ValidateTransaction resolves the product and user, checks the type and
// currency, and for purchases checks the stock currently available.
func (s *Inventory) ValidateTransaction(ctx context.Context, u *uow.UnitOfWork, in TransactionInput) (*ResolvedTransaction, error) {
	if in.Quantity <= 0 {
		return nil, errs.Validation(errs.CodeInvalidValue, "quantity must be greater than 0")
	}
	product, err := u.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	txType, err := s.policy.ParseTransactionType(in.TransactionType)
	if err != nil {
		return nil, err
	}
	currency, err := s.policy.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	user, err := u.Users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if txType == model.TransactionPurchase && in.Quantity > product.Quantity {
		return nil, errs.InsufficientStock("not enough stock for purchase: requested %d, available %d",
			in.Quantity, product.Quantity)
	}
	return &ResolvedTransaction{Product: product, User: user, Type: txType, Currency: currency}, nil
}

func (s *Inventory) checkProductFields(name string, purchase, restock float64, currency string, quantity int) (string, error) {
	if err := model.ValidateName("product name", name); err != nil {
		return "", err
	}
	if err := reserved("product name", name, model.DeletedProductName); err != nil {
		return "", err
	}
	if err := model.ValidatePrice("purchase price", purchase); err != nil {
		return "", err
	}
	if err := model.ValidatePrice("restock price", restock); err != nil {
		return "", err
	}
	if err := model.ValidateQuantity(quantity); err != nil {
		return "", err
	}
	return s.policy.NormalizeCurrency(currency)
}

// checkProductName fails when another product than self already uses name
func (s *Inventory) checkProductName(ctx context.Context, u *uow.UnitOfWork, name string, self uint) error {
	other, err := u.Products.FindBy(ctx, repository.Filters{"name": name})
	if err != nil {
		return err
	}
	if other != nil && other.ID != self {
		return errs.Validation(errs.CodeDuplicateProductName, "a product with the name '%s' already exists", name)
	}
	return nil
}

func (s *Inventory) checkCategoryName(ctx context.Context, u *uow.UnitOfWork, name string, self uint) error {
	if err := model.ValidateName("category name", name); err != nil {
		return err
	}
	if err := reserved("category name", name, model.DeletedCategoryName); err != nil {
		return err
	}
	other, err := u.Categories.FindBy(ctx, repository.Filters{"name": name})
	if err != nil {
		return err
	}
	if other != nil && other.ID != self {
		return errs.Validation(errs.CodeDuplicateCategoryName, "a category with the name '%s' already exists", name)
	}
	return nil
}

// checkNoCycle walks up from parent and fails if it reaches category
func (s *Inventory) checkNoCycle(ctx context.Context, u *uow.UnitOfWork, category, parent uint) error {
	visited := map[uint]bool{}
	for id := &parent; id != nil; {
		if *id == category {
			return errs.Validation(errs.CodeCategoryCycle, "category %d cannot be its own ancestor", category)
		}
		if visited[*id] {
			return nil
		}
		visited[*id] = true

		node, err := u.Categories.WithSentinels().FindBy(ctx, repository.Filters{"id": *id})
		if err != nil {
			return err
		}
		if node == nil {
			return nil
		}
		id = node.ParentID
	}
	return nil
}

func (s *Inventory) categoryByName(ctx context.Context, u *uow.UnitOfWork, name string) (uint, error) {
	category, err := u.Categories.FindBy(ctx, repository.Filters{"name": name})
	if err != nil {
		return 0, err
	}
	if category == nil {
		return 0, errs.NotFound(errs.CodeCategoryNotFound, "no category found with name '%s'", name)
	}
	return category.ID, nil
}

func (s *Inventory) findOrCreateCategory(ctx context.Context, u *uow.UnitOfWork, name string) (*model.Category, error) {
	category, err := u.Categories.FindBy(ctx, repository.Filters{"name": name})
	if err != nil || category != nil {
		return category, err
	}
	if err := model.ValidateName("category name", name); err != nil {
		return nil, err
	}
	if err := reserved("category name", name, model.DeletedCategoryName); err != nil {
		return nil, err
	}
	category = &model.Category{Name: name}
	if err := u.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// defaultCategory returns the "Unknown" category, creating it on first use
func (s *Inventory) defaultCategory(ctx context.Context, u *uow.UnitOfWork) (*model.Category, error) {
	category, err := u.Categories.FindBy(ctx, repository.Filters{"name": model.DefaultCategoryName})
	if err != nil || category != nil {
		return category, err
	}
	category = &model.Category{Name: model.DefaultCategoryName, Description: model.DefaultCategoryDescription}
	if err := u.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	s.log.Info("Created default category", zap.Uint("category_id", category.ID))
	return category, nil
}
