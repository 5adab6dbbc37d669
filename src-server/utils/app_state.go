package utils

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config      *Config
	RawDB       *sql.DB
	BunDB       *bun.DB
	When        *when.Parser
	MetricChans *Metric

	// receives SIGINT/SIGTERM, or a synthetic SIGTERM when the HTTP server dies
	AppCloseSignalChan chan os.Signal

	gracefulShutdownMu     sync.Mutex
	gracefulShutdownChans  []chan struct{}
	gracefulShutdownClosed bool
}

func NewAppState(cfg *Config) (*AppState, error) {
	as := &AppState{
		Config:             cfg,
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}

	// date parser
	as.When = when.New(nil)
	as.When.Add(en.All...)
	as.When.Add(common.All...)

	// database
	dsn := cfg.GetDatabasePath()
	inMemory := strings.Contains(dsn, ":memory:")
	if !inMemory {
		dsn += "?mode=rwc"
	}
	rawDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("NewAppState: can't open sqlite database: %w", err)
	}
	if inMemory {
		// every connection to :memory: is a fresh database
		rawDB.SetMaxOpenConns(1)
	} else {
		rawDB.SetMaxIdleConns(8)
	}
	as.RawDB = rawDB

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	return as, nil
}

// Returns a channel that gets closed once GracefulShutdown is called.
func (as *AppState) CreateGracefulShutdownChan() chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()

	ch := make(chan struct{})
	if as.gracefulShutdownClosed {
		close(ch)
		return ch
	}
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, ch)
	return ch
}

// Stops background workers and closes the database. Safe to call more than once.
func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	if as.gracefulShutdownClosed {
		as.gracefulShutdownMu.Unlock()
		return
	}
	as.gracefulShutdownClosed = true
	for _, ch := range as.gracefulShutdownChans {
		close(ch)
	}
	as.gracefulShutdownChans = nil
	as.gracefulShutdownMu.Unlock()

	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}
