package service

import (
	"context"
	"time"

	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/uow"
	"github.com/suteetoe/inventory-service/pkg/metrics"
	"gorm.io/gorm"
)

// CreateTransaction moves stock and records the movement as one unit of work
func (s *Inventory) CreateTransaction(ctx context.Context, productID, userID uint, quantity int, transactionType, currency string) (*model.Transaction, error) {
	in := TransactionInput{
		ProductID:       productID,
		UserID:          userID,
		Quantity:        quantity,
		TransactionType: transactionType,
		Currency:        currency,
	}
	var out *model.Transaction
	err := s.do(ctx, call("create", KindTransaction, in.args()), func(ctx context.Context, u *uow.UnitOfWork) error {
		var err error
		out, err = s.applyTransaction(ctx, u, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// signedPrice returns the stock delta and the price in the product's currency.
// Purchases are positive income, refunds and restocks negative.
func signedPrice(product *model.Product, t model.TransactionType, quantity int) (int, float64, error) {
	q := float64(quantity)
	switch t {
	case model.TransactionPurchase:
		return -quantity, product.PurchasePrice * q, nil
	case model.TransactionRefund:
		return quantity, -product.PurchasePrice * q, nil
	case model.TransactionRestock:
		return quantity, -product.RestockPrice * q, nil
	default:
		return 0, 0, errs.Validation(errs.CodeInvalidTransactionType, "invalid transaction type '%s'", t)
	}
}

func (s *Inventory) applyTransaction(ctx context.Context, u *uow.UnitOfWork, in TransactionInput) (*model.Transaction, error) {
	resolved, err := s.ValidateTransaction(ctx, u, in)
	if err != nil {
		return nil, err
	}
	product := resolved.Product

	delta, signed, err := signedPrice(product, resolved.Type, in.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := s.policy.Convert(signed, product.Currency, resolved.Currency)
	if err != nil {
		return nil, err
	}

	quantity, err := s.moveStock(ctx, u, product.ID, delta)
	if err != nil {
		return nil, err
	}

	record := &model.Transaction{
		ProductID:       product.ID,
		UserID:          resolved.User.ID,
		Price:           price,
		Currency:        resolved.Currency,
		Quantity:        in.Quantity,
		TransactionType: resolved.Type,
	}
	if err := u.Transactions.Create(ctx, record); err != nil {
		return nil, err
	}

	s.afterCommit(u, func(m *metrics.Metrics) {
		m.RecordTransaction(string(record.TransactionType), record.Currency, product.ID, quantity)
	})
	return record, nil
}

// moveStock applies delta to the product quantity with a conditional update,
// so a concurrent purchase cannot drive the stock below zero. It returns the
// quantity after the move.
func (s *Inventory) moveStock(ctx context.Context, u *uow.UnitOfWork, productID uint, delta int) (int, error) {
	cond := func(db *gorm.DB) *gorm.DB {
		db = db.Where("id = ?", productID)
		if delta < 0 {
			db = db.Where("quantity >= ?", -delta)
		}
		return db
	}
	moved, err := u.Products.UpdateWithCondition(ctx, cond, map[string]any{
		"quantity":     gorm.Expr("quantity + ?", delta),
		"changed_date": time.Now(),
	})
	if err != nil {
		return 0, err
	}
	if moved == 0 {
		if delta < 0 {
			return 0, errs.InsufficientStock("not enough stock for purchase of %d", -delta)
		}
		return 0, errs.Conflict(errs.CodeConcurrentUpdate, "product %d changed during the transaction", productID)
	}

	product, err := u.Products.GetByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Quantity, nil
}
