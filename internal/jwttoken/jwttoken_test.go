package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manager = NewManager("test-signing-key")

func Test_IssueAndValidate(t *testing.T) {
	token, err := manager.Issue("agent-007", "colombo-01", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-007", claims.AgentID)
	assert.Equal(t, "colombo-01", claims.Branch)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := manager.ValidateToken("invalid-token-string")
	require.Error(t, err)
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := manager.Issue("agent-007", "colombo-01", -time.Hour)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	require.Error(t, err)
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewManager("a-different-key")
	token, err := other.Issue("agent-007", "colombo-01", time.Hour)
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	require.Error(t, err)
}
