package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/service"
)

func (f *fixture) productSentinel(t *testing.T) *model.Product {
	t.Helper()
	p, err := f.raw.Products.WithSentinels().GetBy(context.Background(), repository.Filters{"name": model.DeletedProductName})
	require.NoError(t, err)
	return p
}

func (f *fixture) categorySentinel(t *testing.T) *model.Category {
	t.Helper()
	c, err := f.raw.Categories.WithSentinels().GetBy(context.Background(), repository.Filters{"name": model.DeletedCategoryName})
	require.NoError(t, err)
	return c
}

func TestDeleteProductRedirectsTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	p := f.product(t, "Laptop", 100, 50, 10)
	u := f.user(t, "buyer")
	tx, err := f.svc.CreateTransaction(ctx, p.ID, u.ID, 2, "purchase", "usd")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteByID(ctx, service.KindProduct, p.ID))

	_, err = f.svc.Product(ctx, p.ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeProductNotFound))

	products, err := f.svc.Products(ctx)
	require.NoError(t, err)
	assert.Empty(t, products, "sentinel is hidden from listings")

	sentinel := f.productSentinel(t)
	assert.Equal(t, 1.0, sentinel.PurchasePrice)
	assert.Equal(t, 1.0, sentinel.RestockPrice)
	assert.Equal(t, "usd", sentinel.Currency)
	assert.Zero(t, sentinel.Quantity)
	assert.Equal(t, f.categorySentinel(t).ID, sentinel.CategoryID)

	kept, err := f.svc.Transaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, sentinel.ID, kept.ProductID)
	assert.Equal(t, tx.Price, kept.Price, "ledger values are preserved")

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SentinelRedirects.WithLabelValues("product")))
}

func TestSentinelIsCreatedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	first := f.product(t, "Laptop", 100, 50, 1)
	second := f.product(t, "Phone", 80, 40, 1)

	require.NoError(t, f.svc.DeleteByID(ctx, service.KindProduct, first.ID))
	require.NoError(t, f.svc.DeleteByID(ctx, service.KindProduct, second.ID))

	n, err := f.raw.Products.WithSentinels().Count(ctx, repository.Filters{"name": model.DeletedProductName})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.raw.Categories.WithSentinels().Count(ctx, repository.Filters{"name": model.DeletedCategoryName})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSentinelCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	p := f.product(t, "Laptop", 100, 50, 1)
	require.NoError(t, f.svc.DeleteByID(ctx, service.KindProduct, p.ID))

	err := f.svc.DeleteByID(ctx, service.KindProduct, f.productSentinel(t).ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeProductNotFound))

	err = f.svc.DeleteByID(ctx, service.KindCategory, f.categorySentinel(t).ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeCategoryNotFound))

	err = f.svc.DeleteByID(ctx, service.KindProduct, p.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound, "already deleted")
}

func TestDeleteUserRedirectsTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	p := f.product(t, "Laptop", 100, 50, 10)
	u := f.user(t, "buyer")
	tx, err := f.svc.CreateTransaction(ctx, p.ID, u.ID, 1, "purchase", "usd")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteByID(ctx, service.KindUser, u.ID))

	_, err = f.svc.User(ctx, u.ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeUserNotFound))

	sentinel, err := f.raw.Users.WithSentinels().GetBy(ctx, repository.Filters{"username": model.DeletedUsername})
	require.NoError(t, err)
	assert.Equal(t, model.KindPlainUser, sentinel.Kind)

	kept, err := f.svc.Transaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, sentinel.ID, kept.UserID)

	users, err := f.svc.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = f.svc.Login(ctx, model.DeletedUsername, "")
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidCredentials))
}

func TestSentinelEmailIsReserved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	victim := f.user(t, "victim")
	other := f.user(t, "other")

	_, err := f.svc.Create(ctx, service.UserInput{Username: "squatter", Email: model.DeletedUserEmail, Password: "secret"})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeReservedName))

	_, err = f.svc.UpdateByID(ctx, other.ID, service.UserPatch{Email: ptr("Deleted_User@Deleted.Invalid")})
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeReservedName))

	require.NoError(t, f.svc.DeleteByID(ctx, service.KindUser, victim.ID))
	require.NoError(t, f.svc.DeleteByID(ctx, service.KindUser, other.ID), "sentinel is reused")
}

func TestDeleteAdminUserRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	plain := f.user(t, "plain")

	err := f.svc.DeleteByID(ctx, service.KindAdminUser, plain.ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeUserNotFound))

	out, err := f.svc.Create(ctx, service.AdminUserInput{UserInput: service.UserInput{
		Username: "boss", Email: "boss@example.com", Password: "secret",
	}})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteByID(ctx, service.KindAdminUser, out.(*model.User).ID))

	_, err = f.svc.User(ctx, plain.ID)
	assert.NoError(t, err)
}

func TestDeleteCategoryDetachesChildren(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	parent := f.category(t, "Electronics", nil)
	child := f.category(t, "Phones", parent)
	out, err := f.svc.Create(ctx, service.ProductInput{
		Name: "Laptop", CategoryID: &parent.ID, PurchasePrice: 100, RestockPrice: 50, Currency: "usd", Quantity: 1,
	})
	require.NoError(t, err)
	p := out.(*model.Product)

	require.NoError(t, f.svc.DeleteByID(ctx, service.KindCategory, parent.ID))

	moved, err := f.svc.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, f.categorySentinel(t).ID, moved.CategoryID)

	orphan, err := f.svc.Category(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, orphan.ParentID, "children move to the top level")

	categories, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	for _, c := range categories {
		assert.NotEqual(t, model.DeletedCategoryName, c.Name)
	}
}

func TestDeleteCategoryRedirectsChildren(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{RedirectSubcategories: true})
	parent := f.category(t, "Electronics", nil)
	child := f.category(t, "Phones", parent)

	require.NoError(t, f.svc.DeleteByID(ctx, service.KindCategory, parent.ID))

	moved, err := f.svc.Category(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, f.categorySentinel(t).ID, *moved.ParentID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SentinelRedirects.WithLabelValues("subcategory")))
}

func TestTransactionsAreImmutable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, service.Options{})
	p := f.product(t, "Laptop", 100, 50, 10)
	u := f.user(t, "buyer")
	tx, err := f.svc.CreateTransaction(ctx, p.ID, u.ID, 1, "purchase", "usd")
	require.NoError(t, err)

	err = f.svc.DeleteByID(ctx, service.KindTransaction, tx.ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeImmutableTransaction))

	_, err = f.svc.Transaction(ctx, tx.ID)
	assert.NoError(t, err)
}
