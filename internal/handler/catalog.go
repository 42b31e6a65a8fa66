package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/service"
	"github.com/suteetoe/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// ListProducts handles retrieving products, optionally filtered by name or category
func (h *Handler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromEcho(c)

	var (
		products []model.Product
		err      error
	)
	categoryID, byCategory, err := queryID(c, "category_id")
	if err != nil {
		return fail(c, err, "Invalid category filter")
	}
	switch name := c.QueryParam("name"); {
	case name != "":
		log.Debug("Searching products by name", zap.String("name", name))
		products, err = h.svc.SearchProducts(ctx, name)
	case byCategory:
		products, err = h.svc.ProductsBy(ctx, repository.Filters{"category_id": categoryID})
	default:
		products, err = h.svc.Products(ctx)
	}
	if err != nil {
		return fail(c, err, "Failed to list products")
	}
	return c.JSON(http.StatusOK, products)
}

// GetProduct handles retrieving a single product by ID
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid product ID")
	}
	product, err := h.svc.Product(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Product not found")
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product
func (h *Handler) CreateProduct(c echo.Context) error {
	var req service.ProductInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	product, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Failed to create product")
	}
	logger.FromEcho(c).Info("Product created", zap.Uint("product_id", product.(*model.Product).ID))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles partial product updates
func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid product ID")
	}
	var req service.ProductPatch
	if ok, err := bind(c, &req); !ok {
		return err
	}
	product, err := h.svc.UpdateByID(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err, "Failed to update product")
	}
	return c.JSON(http.StatusOK, product)
}

// ListCategories handles retrieving categories; top_level=true keeps roots only
func (h *Handler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	var (
		categories []model.Category
		err        error
	)
	if topLevel, _ := strconv.ParseBool(c.QueryParam("top_level")); topLevel {
		categories, err = h.svc.TopLevelCategories(ctx)
	} else {
		categories, err = h.svc.Categories(ctx)
	}
	if err != nil {
		return fail(c, err, "Failed to list categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// GetCategory handles retrieving a single category by ID
func (h *Handler) GetCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid category ID")
	}
	category, err := h.svc.Category(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Category not found")
	}
	return c.JSON(http.StatusOK, category)
}

// ListSubcategories handles retrieving the children of a category; recursive=true returns all descendants
func (h *Handler) ListSubcategories(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid category ID")
	}
	recursive, _ := strconv.ParseBool(c.QueryParam("recursive"))
	children, err := h.svc.Subcategories(c.Request().Context(), id, recursive)
	if err != nil {
		return fail(c, err, "Failed to list subcategories")
	}
	if children == nil {
		children = []model.Category{}
	}
	return c.JSON(http.StatusOK, children)
}

// CreateCategory handles creating a new category
func (h *Handler) CreateCategory(c echo.Context) error {
	var req service.CategoryInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	category, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles partial category updates
func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid category ID")
	}
	var req service.CategoryPatch
	if ok, err := bind(c, &req); !ok {
		return err
	}
	category, err := h.svc.UpdateByID(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err, "Failed to update category")
	}
	return c.JSON(http.StatusOK, category)
}

// ListCurrencies handles retrieving the allowed currencies and the default one
func (h *Handler) ListCurrencies(c echo.Context) error {
	policy := h.svc.Policy()
	return c.JSON(http.StatusOK, echo.Map{
		"currencies": policy.Currencies(),
		"default":    policy.DefaultCurrency(),
	})
}
