package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hashed, err := HashPassword("superstrong", bcrypt.MinCost)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "superstrong", hashed)

	assert.NoError(t, ComparePassword(hashed, "superstrong"))
	assert.Error(t, ComparePassword(hashed, "superstron"))
	assert.Error(t, ComparePassword(hashed, ""))
}
