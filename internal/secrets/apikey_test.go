package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestBackendAPIKeyKeychain(t *testing.T) {
	keyring.MockInit()

	_, err := GetBackendAPIKey("cc:test", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)

	require.NoError(t, SetBackendAPIKey("cc:test", " sk-123 "))
	key, err := GetBackendAPIKey("cc:test", nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-123", key)

	require.NoError(t, DeleteBackendAPIKey("cc:test"))
	_, err = GetBackendAPIKey("cc:test", nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestBackendAPIKeyEnvFallback(t *testing.T) {
	keyring.MockInit()
	env := func(k string) (string, bool) {
		if k == EnvAPIKey {
			return "from-env", true
		}
		return "", false
	}
	key, err := GetBackendAPIKey("cc:none", env)
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestSetBackendAPIKeyValidates(t *testing.T) {
	keyring.MockInit()
	assert.Error(t, SetBackendAPIKey("", "x"))
	assert.Error(t, SetBackendAPIKey("acct", "  "))
	assert.Error(t, DeleteBackendAPIKey(""))
}
