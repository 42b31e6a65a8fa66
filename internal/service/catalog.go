package service

import (
	"context"
	"time"

	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/uow"
	"github.com/suteetoe/inventory-service/pkg/metrics"
)

func (s *Inventory) createProduct(ctx context.Context, u *uow.UnitOfWork, in ProductInput) (*model.Product, error) {
	categoryID, err := s.ValidateProduct(ctx, u, &in)
	if err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:          in.Name,
		Description:   in.Description,
		CategoryID:    categoryID,
		PurchasePrice: in.PurchasePrice,
		RestockPrice:  in.RestockPrice,
		Currency:      in.Currency,
		Quantity:      in.Quantity,
	}
	if err := u.Products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.afterCommit(u, func(m *metrics.Metrics) {
		m.UpdateProductInventory(product.ID, product.Quantity)
	})
	return product, nil
}

func (s *Inventory) updateProduct(ctx context.Context, u *uow.UnitOfWork, id uint, patch ProductPatch) (*model.Product, error) {
	existing, err := u.Products.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := s.ValidateUpdateProduct(ctx, u, existing, patch)
	if err != nil {
		return nil, err
	}
	next.ChangedDate = time.Now()
	// Stock moves use conditional updates, so quantity is only written when patched
	if err := u.Products.UpdateColumns(ctx, next, patch.columns()...); err != nil {
		return nil, err
	}
	s.afterCommit(u, func(m *metrics.Metrics) {
		m.UpdateProductInventory(next.ID, next.Quantity)
	})
	return next, nil
}

// createCategory makes sure the default category exists before adding a new one
func (s *Inventory) createCategory(ctx context.Context, u *uow.UnitOfWork, in CategoryInput) (*model.Category, error) {
	if _, err := s.defaultCategory(ctx, u); err != nil {
		return nil, err
	}
	parentID, err := s.ValidateCategory(ctx, u, &in)
	if err != nil {
		return nil, err
	}
	category := &model.Category{Name: in.Name, Description: in.Description, ParentID: parentID}
	if err := u.Categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Inventory) updateCategory(ctx context.Context, u *uow.UnitOfWork, id uint, patch CategoryPatch) (*model.Category, error) {
	existing, err := u.Categories.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := s.ValidateUpdateCategory(ctx, u, existing, patch)
	if err != nil {
		return nil, err
	}
	if err := u.Categories.UpdateColumns(ctx, next, patch.columns()...); err != nil {
		return nil, err
	}
	return next, nil
}

// Product returns one product
func (s *Inventory) Product(ctx context.Context, id uint) (*model.Product, error) {
	return s.reads.Products.GetByID(ctx, id)
}

// ProductBy returns the first product matching filters
func (s *Inventory) ProductBy(ctx context.Context, filters repository.Filters) (*model.Product, error) {
	return s.reads.Products.GetBy(ctx, filters)
}

// Products lists every product
func (s *Inventory) Products(ctx context.Context) ([]model.Product, error) {
	return s.reads.Products.GetAll(ctx)
}

// ProductsBy lists products matching filters
func (s *Inventory) ProductsBy(ctx context.Context, filters repository.Filters) ([]model.Product, error) {
	return s.reads.Products.GetAllBy(ctx, filters)
}

// ProductsWhere lists products satisfying every condition
func (s *Inventory) ProductsWhere(ctx context.Context, conds ...repository.Condition) ([]model.Product, error) {
	return s.reads.Products.GetAllWithCondition(ctx, conds...)
}

// SearchProducts lists products whose name contains term
func (s *Inventory) SearchProducts(ctx context.Context, term string) ([]model.Product, error) {
	return s.reads.Products.GetAllContaining(ctx, "name", term)
}

// Category returns one category
func (s *Inventory) Category(ctx context.Context, id uint) (*model.Category, error) {
	return s.reads.Categories.GetByID(ctx, id)
}

// Categories lists every category
func (s *Inventory) Categories(ctx context.Context) ([]model.Category, error) {
	return s.reads.Categories.GetAll(ctx)
}

// CategoriesBy lists categories matching filters
func (s *Inventory) CategoriesBy(ctx context.Context, filters repository.Filters) ([]model.Category, error) {
	return s.reads.Categories.GetAllBy(ctx, filters)
}

// TopLevelCategories lists categories without a parent
func (s *Inventory) TopLevelCategories(ctx context.Context) ([]model.Category, error) {
	return s.reads.Categories.GetAllWithCondition(ctx, repository.IsNull("parent_id"))
}

// Subcategories lists the children of a category, or every descendant when
// recursive is set. Descendants are returned breadth first and each at most once.
func (s *Inventory) Subcategories(ctx context.Context, id uint, recursive bool) ([]model.Category, error) {
	if _, err := s.reads.Categories.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var out []model.Category
	visited := map[uint]bool{id: true}
	frontier := []uint{id}
	for len(frontier) > 0 {
		children, err := s.reads.Categories.GetAllWithCondition(ctx, repository.In("parent_id", frontier))
		if err != nil {
			return nil, err
		}
		var next []uint
		for _, c := range children {
			if visited[c.ID] {
				continue
			}
			visited[c.ID] = true
			out = append(out, c)
			next = append(next, c.ID)
		}
		frontier = next
		if !recursive {
			break
		}
	}
	return out, nil
}

// Transaction returns one transaction
func (s *Inventory) Transaction(ctx context.Context, id uint) (*model.Transaction, error) {
	return s.reads.Transactions.GetByID(ctx, id)
}

// Transactions lists every transaction
func (s *Inventory) Transactions(ctx context.Context) ([]model.Transaction, error) {
	return s.reads.Transactions.GetAll(ctx)
}

// TransactionsBy lists transactions matching filters
func (s *Inventory) TransactionsBy(ctx context.Context, filters repository.Filters) ([]model.Transaction, error) {
	return s.reads.Transactions.GetAllBy(ctx, filters)
}

// TransactionsByProductName lists the transactions of the product called name
func (s *Inventory) TransactionsByProductName(ctx context.Context, name string) ([]model.Transaction, error) {
	product, err := s.reads.Products.FindBy(ctx, repository.Filters{"name": name})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errs.NotFound(errs.CodeProductNotFound, "no product found with name '%s'", name)
	}
	return s.reads.Transactions.GetAllBy(ctx, repository.Filters{"product_id": product.ID})
}

// TransactionsByUsername lists the transactions made by username
func (s *Inventory) TransactionsByUsername(ctx context.Context, username string) ([]model.Transaction, error) {
	user, err := s.reads.Users.FindBy(ctx, repository.Filters{"username": normalizeLookup(username)})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.NotFound(errs.CodeUserNotFound, "no user found with username '%s'", username)
	}
	return s.reads.Transactions.GetAllBy(ctx, repository.Filters{"user_id": user.ID})
}
