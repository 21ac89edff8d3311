package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/inventa/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	names := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestNewUser(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		user, err := NewUser(" alice ", "alice@example.com", "secret1", "secret1")
		require.NoError(t, err)

		assert.Equal(t, "alice", user.Name)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.NotEqual(t, "secret1", user.PasswordHash)
		assert.True(t, user.VerifyPassword("secret1"))
		assert.False(t, user.VerifyPassword("wrong"))
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("alice", "alice@example.com", "12345", "12345")
		require.Error(t, err)
		assert.Equal(t, []string{"password"}, fieldNames(t, err))
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		_, err := NewUser("alice", "alice@example.com", "secret1", "secret2")
		require.Error(t, err)
		assert.Equal(t, []string{"password_confirmation"}, fieldNames(t, err))
	})

	t.Run("rejects bad name and email together", func(t *testing.T) {
		_, err := NewUser(strings.Repeat("a", 256), "not-an-email", "secret1", "secret1")
		require.Error(t, err)
		assert.ElementsMatch(t, []string{"name", "email"}, fieldNames(t, err))
	})
}

func TestUser_Update(t *testing.T) {
	user, err := NewUser("alice", "alice@example.com", "secret1", "secret1")
	require.NoError(t, err)
	oldHash := user.PasswordHash

	t.Run("keeps hash when password is empty", func(t *testing.T) {
		require.NoError(t, user.Update("alice2", "alice2@example.com", "", ""))
		assert.Equal(t, "alice2", user.Name)
		assert.Equal(t, oldHash, user.PasswordHash)
	})

	t.Run("rehashes new password", func(t *testing.T) {
		require.NoError(t, user.Update("alice2", "alice2@example.com", "secret9", "secret9"))
		assert.NotEqual(t, oldHash, user.PasswordHash)
		assert.True(t, user.VerifyPassword("secret9"))
	})

	t.Run("validates confirmation without password", func(t *testing.T) {
		err := user.Update("alice2", "alice2@example.com", "", "secret9")
		require.Error(t, err)
		assert.Equal(t, []string{"password"}, fieldNames(t, err))
	})
}

func TestUser_Snapshot(t *testing.T) {
	user, err := NewUser("alice", "alice@example.com", "secret1", "secret1")
	require.NoError(t, err)
	user.ID = 7

	snap := user.Snapshot()
	assert.Equal(t, uint64(7), snap["id"])
	assert.Equal(t, "alice", snap["name"])
	assert.Equal(t, "alice@example.com", snap["email"])
	assert.Equal(t, user.PasswordHash, snap["password_hash"])
	assert.Nil(t, snap["deleted_at"])
}
