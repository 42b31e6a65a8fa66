package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/inventory-service/internal/errs"
)

func testPolicy() *Policy {
	return NewPolicy(map[string]float64{"USD": 1, "eur": 0.5, "sek": 10}, "USD")
}

func TestNormalizeCurrency(t *testing.T) {
	p := testPolicy()

	c, err := p.NormalizeCurrency(" EUR ")
	require.NoError(t, err)
	assert.Equal(t, "eur", c)

	_, err = p.NormalizeCurrency("jpy")
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidCurrency))

	assert.Equal(t, []string{"eur", "sek", "usd"}, p.Currencies())
	assert.Equal(t, "usd", p.DefaultCurrency())
}

func TestConvert(t *testing.T) {
	p := testPolicy()

	same, err := p.Convert(500, "usd", "usd")
	require.NoError(t, err)
	assert.Equal(t, 500.0, same)

	toSek, err := p.Convert(100, "usd", "sek")
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, toSek, 1e-9)

	toEur, err := p.Convert(-250, "sek", "eur")
	require.NoError(t, err)
	assert.InDelta(t, -12.5, toEur, 1e-9)

	_, err = p.Convert(1, "usd", "gbp")
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidCurrency))
}

func TestParseEnums(t *testing.T) {
	p := testPolicy()

	for _, s := range []string{"purchase", "refund", "restock"} {
		tt, err := p.ParseTransactionType(s)
		require.NoError(t, err)
		assert.Equal(t, TransactionType(s), tt)
	}
	_, err := p.ParseTransactionType("gift")
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidTransactionType))

	for _, s := range []string{"none", "regular", "full"} {
		_, err := p.ParseAdminStatus(s)
		assert.NoError(t, err)
	}
	_, err = p.ParseAdminStatus("super")
	assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidAdminStatus))
}

func TestFieldValidators(t *testing.T) {
	assert.NoError(t, ValidatePrice("purchase price", 0))
	assert.ErrorIs(t, ValidatePrice("purchase price", -0.01), errs.Code(errs.KindValidation, errs.CodeInvalidValue))
	assert.NoError(t, ValidateQuantity(0))
	assert.ErrorIs(t, ValidateQuantity(-1), errs.Code(errs.KindValidation, errs.CodeInvalidValue))

	assert.Error(t, ValidateName("product name", "   "))
	assert.Error(t, ValidateName("product name", string(make([]byte, MaxNameLength+1))))
	assert.NoError(t, ValidateName("product name", "Laptop"))
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "TestUser", want: "testuser"},
		{in: "user_01", want: "user_01"},
		{in: "ab", wantErr: true},
		{in: "bad name", wantErr: true},
		{in: "bad-name", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeUsername(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidUsername))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("Jane.Doe@Example.COM")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", got)

	got, err = NormalizeEmail("jane+stock@mail.example.com")
	require.NoError(t, err)
	assert.Equal(t, "jane+stock@mail.example.com", got)

	for _, bad := range []string{
		"jane", "jane@example", "@example.com", "jane doe@example.com",
		"a@b..c", "a@b.c.", "a@-.-", ".a@b.c",
	} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, errs.Code(errs.KindValidation, errs.CodeInvalidEmail), bad)
	}
}

func TestUserProfile(t *testing.T) {
	plain := &User{Kind: KindPlainUser}
	assert.Equal(t, PlainProfile{}, plain.Profile())
	assert.False(t, plain.IsAdmin())

	admin := &User{Kind: KindAdminUser, AdminStatus: AdminStatusFull}
	assert.Equal(t, AdminProfile{Status: AdminStatusFull}, admin.Profile())
	assert.True(t, admin.IsAdmin())
}
