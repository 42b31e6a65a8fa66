package service

import (
	"strings"

	"github.com/suteetoe/inventory-service/internal/errs"
)

// Kind is the closed set of entity types reachable through generic dispatch
type Kind string

const (
	KindProduct     Kind = "product"
	KindCategory    Kind = "category"
	KindUser        Kind = "user"
	KindAdminUser   Kind = "admin_user"
	KindTransaction Kind = "transaction"
)

var kindAliases = map[string]Kind{
	"product":      KindProduct,
	"products":     KindProduct,
	"category":     KindCategory,
	"categories":   KindCategory,
	"user":         KindUser,
	"users":        KindUser,
	"admin_user":   KindAdminUser,
	"admin_users":  KindAdminUser,
	"admin-users":  KindAdminUser,
	"transaction":  KindTransaction,
	"transactions": KindTransaction,
}

// ParseKind resolves singular and plural entity names
func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", errs.Validation(errs.CodeInvalidEntityKind, "unknown entity type '%s'", s)
	}
	return k, nil
}

// Input is a create request for one entity kind
type Input interface {
	Kind() Kind
	args() map[string]any
}

// Patch is a partial update for one entity kind. Nil fields are left unchanged.
type Patch interface {
	Kind() Kind
	args() map[string]any
}

// ProductInput creates a product. CategoryID and CategoryName are optional;
// with neither the product lands in the default category.
type ProductInput struct {
	Name          string  `json:"name" validate:"required,max=50"`
	Description   string  `json:"description"`
	CategoryID    *uint   `json:"category_id,omitempty"`
	CategoryName  string  `json:"category_name,omitempty"`
	PurchasePrice float64 `json:"purchase_price" validate:"gte=0"`
	RestockPrice  float64 `json:"restock_price" validate:"gte=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	Quantity      int     `json:"quantity" validate:"gte=0"`
}

func (ProductInput) Kind() Kind { return KindProduct }

func (in ProductInput) args() map[string]any {
	a := map[string]any{
		"name":           in.Name,
		"description":    in.Description,
		"purchase_price": in.PurchasePrice,
		"restock_price":  in.RestockPrice,
		"currency":       in.Currency,
		"quantity":       in.Quantity,
	}
	if in.CategoryID != nil {
		a["category_id"] = *in.CategoryID
	}
	if in.CategoryName != "" {
		a["category_name"] = in.CategoryName
	}
	return a
}

// CategoryInput creates a category. ParentName creates the parent when missing.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id,omitempty"`
	ParentName  string `json:"parent_name,omitempty"`
}

func (CategoryInput) Kind() Kind { return KindCategory }

func (in CategoryInput) args() map[string]any {
	a := map[string]any{"name": in.Name, "description": in.Description}
	if in.ParentID != nil {
		a["parent_id"] = *in.ParentID
	}
	if in.ParentName != "" {
		a["parent_name"] = in.ParentName
	}
	return a
}

// UserInput creates a plain user
type UserInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (UserInput) Kind() Kind { return KindUser }

func (in UserInput) args() map[string]any {
	return map[string]any{"username": in.Username, "email": in.Email, "password": in.Password}
}

// AdminUserInput creates an admin user. AdminStatus defaults to regular.
type AdminUserInput struct {
	UserInput
	AdminStatus string `json:"admin_status,omitempty"`
}

func (AdminUserInput) Kind() Kind { return KindAdminUser }

func (in AdminUserInput) args() map[string]any {
	a := in.UserInput.args()
	a["admin_status"] = in.AdminStatus
	return a
}

// TransactionInput records one stock movement
type TransactionInput struct {
	ProductID       uint   `json:"product_id" validate:"required"`
	UserID          uint   `json:"user_id" validate:"required"`
	Quantity        int    `json:"quantity" validate:"required"`
	TransactionType string `json:"transaction_type" validate:"required"`
	Currency        string `json:"currency" validate:"required"`
}

func (TransactionInput) Kind() Kind { return KindTransaction }

func (in TransactionInput) args() map[string]any {
	return map[string]any{
		"product_id":       in.ProductID,
		"user_id":          in.UserID,
		"quantity":         in.Quantity,
		"transaction_type": in.TransactionType,
		"currency":         in.Currency,
	}
}

// ProductPatch updates a product
type ProductPatch struct {
	Name          *string  `json:"name,omitempty"`
	Description   *string  `json:"description,omitempty"`
	CategoryID    *uint    `json:"category_id,omitempty"`
	CategoryName  *string  `json:"category_name,omitempty"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	RestockPrice  *float64 `json:"restock_price,omitempty"`
	Currency      *string  `json:"currency,omitempty"`
	Quantity      *int     `json:"quantity,omitempty"`
}

func (ProductPatch) Kind() Kind { return KindProduct }

// columns names the stored fields the patch writes
func (p ProductPatch) columns() []string {
	cols := []string{"changed_date"}
	cols = appendIf(cols, p.Name != nil, "name")
	cols = appendIf(cols, p.Description != nil, "description")
	cols = appendIf(cols, p.CategoryID != nil || p.CategoryName != nil, "category_id")
	cols = appendIf(cols, p.PurchasePrice != nil, "purchase_price")
	cols = appendIf(cols, p.RestockPrice != nil, "restock_price")
	cols = appendIf(cols, p.Currency != nil, "currency")
	return appendIf(cols, p.Quantity != nil, "quantity")
}

func (p ProductPatch) args() map[string]any {
	a := map[string]any{}
	setArg(a, "name", p.Name)
	setArg(a, "description", p.Description)
	setArg(a, "category_id", p.CategoryID)
	setArg(a, "category_name", p.CategoryName)
	setArg(a, "purchase_price", p.PurchasePrice)
	setArg(a, "restock_price", p.RestockPrice)
	setArg(a, "currency", p.Currency)
	setArg(a, "quantity", p.Quantity)
	return a
}

// CategoryPatch updates a category. ClearParent moves it to the top level.
type CategoryPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ParentID    *uint   `json:"parent_id,omitempty"`
	ParentName  *string `json:"parent_name,omitempty"`
	ClearParent bool    `json:"clear_parent,omitempty"`
}

func (CategoryPatch) Kind() Kind { return KindCategory }

func (p CategoryPatch) columns() []string {
	var cols []string
	cols = appendIf(cols, p.Name != nil, "name")
	cols = appendIf(cols, p.Description != nil, "description")
	return appendIf(cols, p.ClearParent || p.ParentID != nil || p.ParentName != nil, "parent_id")
}

func (p CategoryPatch) args() map[string]any {
	a := map[string]any{}
	setArg(a, "name", p.Name)
	setArg(a, "description", p.Description)
	setArg(a, "parent_id", p.ParentID)
	setArg(a, "parent_name", p.ParentName)
	if p.ClearParent {
		a["clear_parent"] = true
	}
	return a
}

// UserPatch updates a user. AdminStatus is only accepted for admin users.
type UserPatch struct {
	Username    *string `json:"username,omitempty"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Password    *string `json:"password,omitempty"`
	AdminStatus *string `json:"admin_status,omitempty"`
	admin       bool
}

func (p UserPatch) Kind() Kind {
	if p.admin {
		return KindAdminUser
	}
	return KindUser
}

func (p UserPatch) columns() []string {
	var cols []string
	cols = appendIf(cols, p.Username != nil, "username")
	cols = appendIf(cols, p.Email != nil, "email")
	cols = appendIf(cols, p.Password != nil, "password")
	return appendIf(cols, p.AdminStatus != nil, "admin_status")
}

// AsAdmin returns the patch addressed to an admin user
func (p UserPatch) AsAdmin() UserPatch {
	p.admin = true
	return p
}

func (p UserPatch) args() map[string]any {
	a := map[string]any{}
	setArg(a, "username", p.Username)
	setArg(a, "email", p.Email)
	setArg(a, "password", p.Password)
	setArg(a, "admin_status", p.AdminStatus)
	return a
}

func setArg[V any](a map[string]any, key string, v *V) {
	if v != nil {
		a[key] = *v
	}
}

func appendIf(cols []string, ok bool, col string) []string {
	if ok {
		return append(cols, col)
	}
	return cols
}
