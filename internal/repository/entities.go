package repository

import (
	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"gorm.io/gorm"
)

// Set groups the repositories of every entity over one storage handle
type Set struct {
	Products     *Repository[model.Product]
	Categories   *Repository[model.Category]
	Users        *Repository[model.User]
	Transactions *Repository[model.Transaction]
	Logs         *Repository[model.Log]
}

// NewSet builds all repositories over db
func NewSet(db *gorm.DB) *Set {
	return &Set{
		Products: New[model.Product](db, Options{
			Entity:       "product",
			NotFoundCode: errs.CodeProductNotFound,
			Sentinel:     &Sentinel{Column: "name", Value: model.DeletedProductName},
		}),
		Categories: New[model.Category](db, Options{
			Entity:       "category",
			NotFoundCode: errs.CodeCategoryNotFound,
			Sentinel:     &Sentinel{Column: "name", Value: model.DeletedCategoryName},
		}),
		Users: New[model.User](db, Options{
			Entity:       "user",
			NotFoundCode: errs.CodeUserNotFound,
			Sentinel:     &Sentinel{Column: "username", Value: model.DeletedUsername},
		}),
		Transactions: New[model.Transaction](db, Options{Entity: "transaction"}),
		Logs:         New[model.Log](db, Options{Entity: "log"}),
	}
}
