// Package serverapp owns the demo server lifecycle: config-driven startup,
// database and observability wiring, schema construction, and graceful
// shutdown.
package serverapp

import (
	"database/sql"
	"fmt"
	"net/http"
	"sync"

	"graphql-pager/internal/config"
	"graphql-pager/internal/logging"
	"graphql-pager/internal/resolver"
)

// App owns runtime resources for the graphql-pager server lifecycle.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	db       *sql.DB
	resolver *resolver.Resolver

	handler    http.Handler
	serverAddr string
	srv        *http.Server

	cleanup cleanupStack

	stateMu      sync.Mutex
	initialized  bool
	started      bool
	serverErrors chan error

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &App{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// InitLogger builds the process logger from configuration.
func InitLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(cfg.Logging)
}
