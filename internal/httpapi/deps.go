package httpapi

import (
	"database/sql"
	"sync/atomic"

	"go.uber.org/zap"

	"commandcenter/internal/action"
	"commandcenter/internal/config"
	"commandcenter/internal/events"
	"commandcenter/internal/mode"
	"commandcenter/internal/poll"
	"commandcenter/internal/session"
)

type Deps struct {
	DB *sql.DB

	Hub    *events.Hub
	Logger *zap.Logger

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath    string
	LoadCfg        func() (config.Config, error)
	OnConfigReload func(config.Config)

	Mode       *mode.Holder
	Poller     *poll.Poller
	Dispatcher *action.Dispatcher
	Sessions   *session.Manager

	// Keychain writes (inject for testability)
	SetAPIKey    func(account, key string) error
	DeleteAPIKey func(account string) error
}
