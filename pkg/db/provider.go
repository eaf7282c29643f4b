package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/healthsync/backend/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUnavailable is returned once the connection attempt has failed.
// Callers surface it as a service-unavailable condition instead of retrying.
var ErrUnavailable = errors.New("database unavailable")

// State tracks the lifecycle of the shared connection.
type State int

const (
	StateUninitialized State = iota
	StateConnected
	StateFailed
)

// SetupFunc runs once against a freshly opened connection, before any
// repository sees it (schema migration, seeding).
type SetupFunc func(*gorm.DB) error

// Provider owns the shared gorm connection. The connection is established
// lazily by the first caller; the outcome (connected handle or failure) is
// sticky for the process lifetime so later requests short-circuit instead of
// re-dialing a broken database on every call.
type Provider struct {
	mu    sync.Mutex
	state State
	conn  *gorm.DB

	cfg   config.Config
	log   *zap.Logger
	setup SetupFunc
}

// NewProvider builds an unconnected Provider. setup may be nil.
func NewProvider(cfg config.Config, log *zap.Logger, setup SetupFunc) *Provider {
	return &Provider{
		cfg:   cfg,
		log:   log.Named("db"),
		setup: setup,
	}
}

// Get returns the shared connection, establishing it on first use. Only the
// first caller pays the dial cost; concurrent callers block on that single
// attempt and then observe its cached outcome.
func (p *Provider) Get(ctx context.Context) (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateConnected:
		return p.conn.WithContext(ctx), nil
	case StateFailed:
		return nil, ErrUnavailable
	}

	conn, err := p.open()
	if err != nil {
		p.state = StateFailed
		p.log.Warn("database connection failed, storage disabled", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	p.state = StateConnected
	p.conn = conn
	p.log.Info("database connected", zap.String("type", p.cfg.DBType))
	return p.conn.WithContext(ctx), nil
}

// State reports the current connection state.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Provider) open() (*gorm.DB, error) {
	dialector, err := Dialect(p.cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(p.cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(p.cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(p.cfg.DBConnMaxLifetime) * time.Second)

	if p.setup != nil {
		if err := p.setup(conn); err != nil {
			return nil, fmt.Errorf("database setup: %w", err)
		}
	}

	return conn, nil
}
