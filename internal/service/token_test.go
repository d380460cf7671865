package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceTokenManager_RoundTrip(t *testing.T) {
	manager := NewServiceTokenManager("secret-for-tests-at-least-32-chars!", time.Hour)

	token, err := manager.Generate("faucet-backend")
	require.NoError(t, err)

	svc, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "faucet-backend", svc)
}

func TestServiceTokenManager_RejectsWrongSecret(t *testing.T) {
	issuer := NewServiceTokenManager("secret-one-at-least-32-characters!!", time.Hour)
	verifier := NewServiceTokenManager("secret-two-at-least-32-characters!!", time.Hour)

	token, err := issuer.Generate("faucet-backend")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestServiceTokenManager_RejectsExpiredToken(t *testing.T) {
	manager := NewServiceTokenManager("secret-for-tests-at-least-32-chars!", time.Nanosecond)

	token, err := manager.Generate("faucet-backend")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	_, err = manager.Parse(token)
	assert.Error(t, err)
}

func TestServiceTokenManager_RejectsGarbage(t *testing.T) {
	manager := NewServiceTokenManager("secret-for-tests-at-least-32-chars!", time.Hour)

	_, err := manager.Parse("definitely.not.a-jwt")
	assert.Error(t, err)
}
