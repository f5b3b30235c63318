package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret"

func TestIssueAndParseActorToken(t *testing.T) {
	token, err := IssueActorToken("alice", secret, time.Minute, "gl_engine")
	require.NoError(t, err)

	actor, err := ParseActorToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "alice", actor)
}

func TestParseActorToken_WrongSecret(t *testing.T) {
	token, err := IssueActorToken("alice", secret, time.Minute, "gl_engine")
	require.NoError(t, err)

	_, err = ParseActorToken(token, "other-secret")
	assert.ErrorIs(t, err, jwt.ErrSignatureInvalid)
}

func TestParseActorToken_Expired(t *testing.T) {
	token, err := IssueActorToken("alice", secret, -time.Minute, "gl_engine")
	require.NoError(t, err)

	_, err = ParseActorToken(token, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestIssueActorToken_RequiresActor(t *testing.T) {
	_, err := IssueActorToken("  ", secret, time.Minute, "gl_engine")
	assert.ErrorIs(t, err, ErrMissingActor)
}
