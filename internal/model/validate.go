package model

import (
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/suteetoe/inventory-service/internal/errs"
)

// Column limits shared by validators and gorm tags
const (
	MaxNameLength     = 50
	MaxUsernameLength = 50
	MaxEmailLength    = 100
	MinUsernameLength = 3
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	validate        = validator.New()
)

// Policy holds the read-only enumerations and the conversion rate table.
// It is built once at startup and never mutated.
type Policy struct {
	currencies      map[string]float64
	defaultCurrency string
	types           map[TransactionType]struct{}
	statuses        map[AdminStatus]struct{}
}

// NewPolicy builds a policy from the allowed currencies and their rates relative to a common base.
// Currency codes are lower-cased.
func NewPolicy(rates map[string]float64, defaultCurrency string) *Policy {
	p := &Policy{
		currencies: make(map[string]float64, len(rates)),
		types: map[TransactionType]struct{}{
			TransactionPurchase: {},
			TransactionRefund:   {},
			TransactionRestock:  {},
		},
		statuses: map[AdminStatus]struct{}{
			AdminStatusNone:    {},
			AdminStatusRegular: {},
			AdminStatusFull:    {},
		},
	}
	for code, rate := range rates {
		p.currencies[strings.ToLower(code)] = rate
	}
	p.defaultCurrency = strings.ToLower(defaultCurrency)
	return p
}

// Currencies returns the sorted allow-list
func (p *Policy) Currencies() []string {
	out := make([]string, 0, len(p.currencies))
	for c := range p.currencies {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DefaultCurrency is used for sentinel products
func (p *Policy) DefaultCurrency() string {
	return p.defaultCurrency
}

// NormalizeCurrency lower-cases currency and checks it against the allow-list
func (p *Policy) NormalizeCurrency(currency string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(currency))
	if _, ok := p.currencies[c]; !ok {
		return "", errs.Validation(errs.CodeInvalidCurrency,
			"invalid currency '%s', allowed currencies are %v", c, p.Currencies())
	}
	return c, nil
}

// Convert rescales amount from one allowed currency to another
func (p *Policy) Convert(amount float64, from, to string) (float64, error) {
	fromRate, ok := p.currencies[strings.ToLower(from)]
	if !ok {
		return 0, errs.Validation(errs.CodeInvalidCurrency, "invalid currency '%s'", from)
	}
	toRate, ok := p.currencies[strings.ToLower(to)]
	if !ok {
		return 0, errs.Validation(errs.CodeInvalidCurrency, "invalid currency '%s'", to)
	}
	return amount * toRate / fromRate, nil
}

// ParseTransactionType checks t against the allowed transaction types
func (p *Policy) ParseTransactionType(t string) (TransactionType, error) {
	tt := TransactionType(t)
	if _, ok := p.types[tt]; !ok {
		return "", errs.Validation(errs.CodeInvalidTransactionType,
			"invalid transaction type '%s', allowed types are [purchase refund restock]", t)
	}
	return tt, nil
}

// ParseAdminStatus checks s against the allowed admin statuses
func (p *Policy) ParseAdminStatus(s string) (AdminStatus, error) {
	st := AdminStatus(s)
	if _, ok := p.statuses[st]; !ok {
		return "", errs.Validation(errs.CodeInvalidAdminStatus, "invalid admin status '%s'", s)
	}
	return st, nil
}

// ValidatePrice rejects negative prices
func ValidatePrice(field string, price float64) error {
	if price < 0 {
		return errs.Validation(errs.CodeInvalidValue, "%s must be positive", field)
	}
	return nil
}

// ValidateQuantity rejects negative quantities; zero is allowed
func ValidateQuantity(quantity int) error {
	if quantity < 0 {
		return errs.Validation(errs.CodeInvalidValue, "quantity must be 0 or more")
	}
	return nil
}

// ValidateName rejects empty names and names longer than the column
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.Validation(errs.CodeInvalidValue, "%s cannot be empty", field)
	}
	if len(name) > MaxNameLength {
		return errs.Validation(errs.CodeInvalidValue, "%s must be less than %d characters", field, MaxNameLength)
	}
	return nil
}

// NormalizeUsername validates and lower-cases a username
func NormalizeUsername(username string) (string, error) {
	if len(username) < MinUsernameLength {
		return "", errs.Validation(errs.CodeInvalidUsername, "username must be at least %d characters long", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return "", errs.Validation(errs.CodeInvalidUsername, "username must be less than %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return "", errs.Validation(errs.CodeInvalidUsername, "username can only contain letters, numbers, and underscores")
	}
	return strings.ToLower(username), nil
}

// NormalizeEmail validates and lower-cases an e-mail address
func NormalizeEmail(email string) (string, error) {
	if len(email) > MaxEmailLength || strings.HasSuffix(email, ".") || validate.Var(email, "required,email") != nil {
		return "", errs.Validation(errs.CodeInvalidEmail, "invalid email address")
	}
	return strings.ToLower(email), nil
}
