package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/storetest"
	"gorm.io/gorm"
)

func seedCategories(t *testing.T, repos *repository.Set, names ...string) []model.Category {
	t.Helper()
	out := make([]model.Category, 0, len(names))
	for _, name := range names {
		c := model.Category{Name: name}
		require.NoError(t, repos.Categories.Create(context.Background(), &c))
		out = append(out, c)
	}
	return out
}

func TestSentinelExcludedFromReads(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(storetest.Open(t))
	seeded := seedCategories(t, repos, "Tools", model.DeletedCategoryName, "Toys")
	sentinel := seeded[1]

	all, err := repos.Categories.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, c := range all {
		assert.NotEqual(t, model.DeletedCategoryName, c.Name)
	}

	_, err = repos.Categories.GetByID(ctx, sentinel.ID)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeCategoryNotFound))

	found, err := repos.Categories.FindBy(ctx, repository.Filters{"name": model.DeletedCategoryName})
	require.NoError(t, err)
	assert.Nil(t, found)

	containing, err := repos.Categories.GetAllContaining(ctx, "name", "o")
	require.NoError(t, err)
	assert.Len(t, containing, 2, "deleted_category contains an o too")

	n, err := repos.Categories.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	explicit, err := repos.Categories.WithSentinels().GetByID(ctx, sentinel.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeletedCategoryName, explicit.Name)
}

func TestGetByAndFilters(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(storetest.Open(t))
	seeded := seedCategories(t, repos, "Tools", "Garden")

	got, err := repos.Categories.GetBy(ctx, repository.Filters{"name": "Garden"})
	require.NoError(t, err)
	assert.Equal(t, seeded[1].ID, got.ID)

	_, err = repos.Categories.GetBy(ctx, repository.Filters{"name": "Kitchen"})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	exists, err := repos.Categories.Exists(ctx, repository.Filters{"name": "Tools"})
	require.NoError(t, err)
	assert.True(t, exists)

	byIDs, err := repos.Categories.GetAllWithCondition(ctx, repository.In("id", []uint{seeded[0].ID}))
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, "Tools", byIDs[0].Name)

	roots, err := repos.Categories.GetAllWithCondition(ctx, repository.IsNull("parent_id"))
	require.NoError(t, err)
	assert.Len(t, roots, 2)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(storetest.Open(t))
	seeded := seedCategories(t, repos, "Tools", "Garden")

	require.NoError(t, repos.Categories.UpdateByID(ctx, seeded[0].ID, map[string]any{"description": "hand tools"}))
	got, err := repos.Categories.GetByID(ctx, seeded[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "hand tools", got.Description)

	n, err := repos.Categories.UpdateAllBy(ctx, repository.Filters{"name": "Garden"}, map[string]any{"parent_id": seeded[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	children, err := repos.Categories.GetAllBy(ctx, repository.Filters{"parent_id": seeded[0].ID})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "Garden", children[0].Name)

	require.NoError(t, repos.Categories.DeleteByID(ctx, seeded[1].ID))
	err = repos.Categories.DeleteByID(ctx, seeded[1].ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(storetest.Open(t))
	seedCategories(t, repos, "A", "B", "C")

	desc, err := repos.Categories.GetAllWithCondition(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Order("id DESC").Limit(2)
	})
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.Equal(t, "C", desc[0].Name)
	assert.Equal(t, "B", desc[1].Name)
}

func TestUpdateColumnsKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(storetest.Open(t))
	p := &model.Product{Name: "Laptop", Currency: "usd", Quantity: 10}
	require.NoError(t, repos.Products.Create(ctx, p))

	stale, err := repos.Products.GetByIDForUpdate(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, repos.Products.UpdateByID(ctx, p.ID, map[string]any{"quantity": 3}))

	stale.Description = "refurbished"
	require.NoError(t, repos.Products.UpdateColumns(ctx, stale, "description"))

	got, err := repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "refurbished", got.Description)
	assert.Equal(t, 3, got.Quantity, "unlisted columns are not written back")

	_, err = repos.Products.GetByIDForUpdate(ctx, 999)
	assert.ErrorIs(t, err, errs.Code(errs.KindNotFound, errs.CodeProductNotFound))
}

func TestContainsMatchesLiterally(t *testing.T) {
	ctx := context.Background()
	repos := repository.NewSet(storetest.Open(t))
	seedCategories(t, repos, "Tools", "50% off", "snake_case", "Garden!")

	for term, want := range map[string][]string{
		"_":  {"snake_case"},
		"%":  {"50% off"},
		"!":  {"Garden!"},
		"oo": {"Tools"},
	} {
		found, err := repos.Categories.GetAllContaining(ctx, "name", term)
		require.NoError(t, err, term)
		names := make([]string, 0, len(found))
		for _, c := range found {
			names = append(names, c.Name)
		}
		assert.Equal(t, want, names, term)
	}
}
