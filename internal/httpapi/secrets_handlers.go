package httpapi

import (
	"net/http"
	"strings"
	"sync/atomic"

	"commandcenter/internal/config"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
	Set    func(account, key string) error
	Delete func(account string) error
}

// SetBackendKey stores the backend API key in the OS keychain. An empty key
// removes it.
func (h SecretsHandler) SetBackendKey(w http.ResponseWriter, r *http.Request) {
	var req setAPIKeyReq
	if err := decodeBody(w, r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	account := cfg.Backend.KeyringAccount
	key := strings.TrimSpace(req.APIKey)

	var err error
	if key == "" {
		err = h.Delete(account)
	} else {
		err = h.Set(account, key)
	}
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "keyring_failed", "failed to store API key: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
