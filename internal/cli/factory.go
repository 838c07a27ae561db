// Package cli wires configuration into the adapters used by the parley commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/file"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/compiler"
	"github.com/aretw0/parley/pkg/engine"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/session"
)

// Backend bundles the session store and, for redis, the distributed locker.
type Backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewLogger builds the process logger from the log section.
func NewLogger(cfg config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(os.Stderr, level, cfg.Format), nil
}

// CompilerOptions turns the configuration into compiler options.
func CompilerOptions(cfg config.Config, logger *slog.Logger) []compiler.Option {
	return []compiler.Option{
		compiler.WithLayout(cfg.Layout),
		compiler.WithLogger(logger),
	}
}

// NewBackend opens the configured session store.
func NewBackend(cfg config.SessionsConfig, logger *slog.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{Store: memory.NewStore()}, nil
	case config.BackendFile:
		return &Backend{Store: file.New(cfg.Dir)}, nil
	case config.BackendRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithPrefix(cfg.RedisPrefix),
			redis.WithTTL(cfg.TTL),
		)
		logger.Debug("redis session store", "addr", cfg.RedisAddr, "prefix", cfg.RedisPrefix)
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), cfg.RedisPrefix),
			close:  store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// NewManager builds a session manager over a backend.
func NewManager(b *Backend, scripts ports.ScriptLoader, lockTTL time.Duration, logger *slog.Logger, engineOpts ...engine.Option) *session.Manager {
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEngineOptions(append([]engine.Option{engine.WithLogger(logger)}, engineOpts...)...),
	}
	if b.Locker != nil {
		opts = append(opts, session.WithLocker(b.Locker), session.WithLockTTL(lockTTL))
	}
	return session.NewManager(b.Store, scripts, opts...)
}
