package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the engine's secrets in the OS keychain.
	KeyringService = "commandcenter"

	// EnvAPIKey is consulted when the keychain has no entry (headless hosts).
	EnvAPIKey = "COMMANDCENTER_BACKEND_API_KEY"
)

var ErrNoAPIKey = errors.New("backend API key not found (set it in keychain or via env)")

// GetBackendAPIKey reads the key from the keychain, then from lookupEnv.
func GetBackendAPIKey(account string, lookupEnv func(string) (string, bool)) (string, error) {
	if strings.TrimSpace(account) != "" {
		key, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), nil
		}
	}
	if lookupEnv != nil {
		if v, ok := lookupEnv(EnvAPIKey); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", ErrNoAPIKey
}

func SetBackendAPIKey(account string, key string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, account, strings.TrimSpace(key))
}

func DeleteBackendAPIKey(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
