package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/service"
	"github.com/suteetoe/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// ListTransactions handles retrieving transactions filtered by product_name,
// username, product_id or user_id
func (h *Handler) ListTransactions(c echo.Context) error {
	ctx := c.Request().Context()

	productID, byProduct, err := queryID(c, "product_id")
	if err != nil {
		return fail(c, err, "Invalid product filter")
	}
	userID, byUser, err := queryID(c, "user_id")
	if err != nil {
		return fail(c, err, "Invalid user filter")
	}

	var transactions []model.Transaction
	switch {
	case c.QueryParam("product_name") != "":
		transactions, err = h.svc.TransactionsByProductName(ctx, c.QueryParam("product_name"))
	case c.QueryParam("username") != "":
		transactions, err = h.svc.TransactionsByUsername(ctx, c.QueryParam("username"))
	case byProduct || byUser:
		filters := repository.Filters{}
		if byProduct {
			filters["product_id"] = productID
		}
		if byUser {
			filters["user_id"] = userID
		}
		transactions, err = h.svc.TransactionsBy(ctx, filters)
	default:
		transactions, err = h.svc.Transactions(ctx)
	}
	if err != nil {
		return fail(c, err, "Failed to list transactions")
	}
	return c.JSON(http.StatusOK, transactions)
}

// GetTransaction handles retrieving a single transaction by ID
func (h *Handler) GetTransaction(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid transaction ID")
	}
	transaction, err := h.svc.Transaction(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "Transaction not found")
	}
	return c.JSON(http.StatusOK, transaction)
}

// CreateTransaction handles purchases, refunds and restocks
func (h *Handler) CreateTransaction(c echo.Context) error {
	var req service.TransactionInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	transaction, err := h.svc.CreateTransaction(c.Request().Context(),
		req.ProductID, req.UserID, req.Quantity, req.TransactionType, req.Currency)
	if err != nil {
		return fail(c, err, "Failed to create transaction")
	}
	logger.FromEcho(c).Info("Transaction created",
		zap.Uint("transaction_id", transaction.ID),
		zap.String("type", string(transaction.TransactionType)),
		zap.Float64("price", transaction.Price))
	return c.JSON(http.StatusCreated, transaction)
}

// ListLogs handles retrieving audit log rows, newest first
func (h *Handler) ListLogs(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fail(c, errs.Validation(errs.CodeInvalidValue, "invalid limit '%s'", raw), "Invalid log limit")
		}
		limit = n
	}
	logs, err := h.logs.List(c.Request().Context(), limit)
	if err != nil {
		return fail(c, err, "Failed to list logs")
	}
	return c.JSON(http.StatusOK, logs)
}

// Delete returns a handler soft-deleting entities of kind
func (h *Handler) Delete(kind service.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.delete(c, kind)
	}
}

// DeleteEntity handles DELETE /api/entities/:kind/:id by generic dispatch
func (h *Handler) DeleteEntity(c echo.Context) error {
	kind, err := service.ParseKind(c.Param("kind"))
	if err != nil {
		return fail(c, err, "Unknown entity type")
	}
	return h.delete(c, kind)
}

func (h *Handler) delete(c echo.Context, kind service.Kind) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid ID")
	}
	if err := h.svc.DeleteByID(c.Request().Context(), kind, id); err != nil {
		return fail(c, err, "Failed to delete "+string(kind))
	}
	logger.FromEcho(c).Info("Entity deleted", zap.String("kind", string(kind)), zap.Uint("id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": string(kind) + " deleted successfully",
	})
}
