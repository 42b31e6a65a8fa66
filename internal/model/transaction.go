package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionType is the kind of stock movement
type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionRefund   TransactionType = "refund"
	TransactionRestock  TransactionType = "restock"
)

// Transaction is an immutable ledger record of one stock movement.
// Price is signed: positive for purchase, negative for refund and restock.
type Transaction struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	UUID            string          `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	ProductID       uint            `json:"product_id" gorm:"index;not null"`
	UserID          uint            `json:"user_id" gorm:"index;not null"`
	Date            time.Time       `json:"date" gorm:"not null"`
	Price           float64         `json:"price" gorm:"not null"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null"`
	Quantity        int             `json:"quantity" gorm:"not null"`
	TransactionType TransactionType `json:"transaction_type" gorm:"type:varchar(20);not null"`
}

// BeforeCreate assigns the uuid and stamps the transaction date
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.UUID == "" {
		t.UUID = uuid.NewString()
	}
	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	return nil
}

// Log statuses
const (
	LogStatusOK   = "OK"
	LogStatusFail = "FAIL"
)

// Log is one audit trail entry for a mutating operation
type Log struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	UUID    string    `json:"uuid" gorm:"type:varchar(36);uniqueIndex;not null"`
	Date    time.Time `json:"date" gorm:"index;not null"`
	Func    string    `json:"func" gorm:"type:varchar(100);not null"`
	Kwargs  string    `json:"kwargs" gorm:"type:text"`
	Status  string    `json:"status" gorm:"type:varchar(10);not null"`
	Message string    `json:"message" gorm:"type:text"`
}

// BeforeCreate assigns the uuid and stamps the entry date
func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.UUID == "" {
		l.UUID = uuid.NewString()
	}
	if l.Date.IsZero() {
		l.Date = time.Now()
	}
	return nil
}

// All returns every persisted model, in migration order
func All() []any {
	return []any{&Category{}, &Product{}, &User{}, &Transaction{}, &Log{}}
}
