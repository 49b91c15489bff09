package database

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"

	"github.com/jaekwang-park/todo-resolver/internal/secret"
)

const driverName = "postgres"

type Options struct {
	SSLMode string
	// MaxOpenConns caps the pool. Values below 1 are treated as 1.
	MaxOpenConns int
}

// Provider lazily opens one database handle from credentials held in a secret
// store and returns the same handle for the rest of the process lifetime.
// Concurrent first callers share a single secret fetch. Failures are not
// memoized, so the next call tries again.
type Provider struct {
	source secret.Source
	opts   Options
	logger *slog.Logger
	open   func(driverName, dsn string) (*sqlx.DB, error)

	group singleflight.Group
	mu    sync.RWMutex
	db    *sqlx.DB
}

func NewProvider(source secret.Source, opts Options, logger *slog.Logger) *Provider {
	if opts.MaxOpenConns < 1 {
		opts.MaxOpenConns = 1
	}
	return &Provider{
		source: source,
		opts:   opts,
		logger: logger,
		open:   sqlx.Open,
	}
}

// Handle returns the memoized handle, opening it on first use.
func (p *Provider) Handle(ctx context.Context) (*sqlx.DB, error) {
	if db := p.current(); db != nil {
		return db, nil
	}

	v, err, _ := p.group.Do("handle", func() (any, error) {
		if db := p.current(); db != nil {
			return db, nil
		}
		return p.connect(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*sqlx.DB), nil
}

func (p *Provider) connect(ctx context.Context) (*sqlx.DB, error) {
	creds, err := p.source.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database credentials: %w", err)
	}

	db, err := p.open(driverName, creds.DSN(p.opts.SSLMode))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(p.opts.MaxOpenConns)
	db.SetMaxIdleConns(p.opts.MaxOpenConns)

	p.mu.Lock()
	p.db = db
	p.mu.Unlock()

	p.logger.InfoContext(ctx, "database handle opened",
		"host", creds.Host,
		"dbname", creds.DBName,
		"max_open_conns", p.opts.MaxOpenConns,
	)
	return db, nil
}

func (p *Provider) current() *sqlx.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db
}

// Connected reports whether a handle has been opened.
func (p *Provider) Connected() bool {
	return p.current() != nil
}

// Close closes the handle if one was opened.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
