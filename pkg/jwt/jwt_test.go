package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", 60)

	token, err := m.Issue("user-1", "provider")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UID)
	assert.Equal(t, "provider", claims.Role)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", 60).Issue("user-1", "user")
	require.NoError(t, err)

	_, err = NewManager("secret-b", 60).Verify(token)
	assert.Error(t, err)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := NewManager("test-secret", 60).Verify("not-a-token")
	assert.Error(t, err)
}
