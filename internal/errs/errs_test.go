package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindAndCode(t *testing.T) {
	err := Validation(CodeDuplicateUsername, "a user with this username already exists")

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, Code(KindValidation, CodeDuplicateUsername))
	assert.NotErrorIs(t, err, Code(KindValidation, CodeDuplicateEmail))
	assert.NotErrorIs(t, err, ErrNotFound)

	wrapped := fmt.Errorf("create user: %w", err)
	assert.ErrorIs(t, wrapped, ErrValidation)
	assert.Equal(t, CodeDuplicateUsername, CodeOf(wrapped))
	assert.Equal(t, KindValidation, KindOf(wrapped))
}

func TestPersistenceHidesCause(t *testing.T) {
	cause := errors.New("dial tcp 10.0.0.5:5432: password authentication failed for user admin")
	err := Persistence("create product", cause)

	assert.NotContains(t, err.Error(), "10.0.0.5")
	assert.NotContains(t, PublicMessage(err), "password")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestForeignErrors(t *testing.T) {
	foreign := errors.New("boom")

	assert.Equal(t, KindPersistence, KindOf(foreign))
	assert.Equal(t, CodeStorage, CodeOf(foreign))
	assert.Equal(t, "internal error", PublicMessage(foreign))
	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, "", CodeOf(nil))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("op", nil))

	typed := NotFound(CodeProductNotFound, "no product found with ID %d", 7)
	assert.Same(t, typed, Wrap("op", typed))

	wrapped := Wrap("list products", errors.New("connection reset"))
	assert.Equal(t, KindPersistence, KindOf(wrapped))
	assert.Equal(t, "storage failure during list products", PublicMessage(wrapped))
}
