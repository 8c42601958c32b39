package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/i18n"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/metrics"
	"github/chapool/iao-solana/internal/util"

	// Import postgres driver for database/sql package
	_ "github.com/lib/pq"
)

var ErrProgramStateNotConfigured = errors.New("program state address is not configured")

type Router struct {
	Routes            []*echo.Route
	Root              *echo.Group
	Management        *echo.Group
	APIV1Program      *echo.Group
	APIV1Tokens       *echo.Group
	APIV1Transactions *echo.Group
}

// Server is a central struct keeping all the dependencies.
// It is initialized with wire, which handles making the new instances of the components
// in the right order. To add a new component, 3 steps are required:
// - declaring it in this struct
// - adding a provider function in providers.go
// - adding the provider's function name to the arguments of wire.Build() in wire.go
//
// Components labeled as `wire:"-"` will be skipped and have to be initialized after the InitNewServer* call.
// For more information about wire refer to https://pkg.go.dev/github.com/google/wire
type Server struct {
	// skip wire:
	// -> initialized with router.Init(s) function
	Echo   *echo.Echo `wire:"-"`
	Router *Router    `wire:"-"`
	// -> only present with the PostgreSQL ledger enabled
	DB *sql.DB `wire:"-"`

	Config  config.Server
	I18n    *i18n.Service
	Metrics *metrics.Service
	Env     *anchor.Env
	Program *boomerfun.Client
	Ledger  ledger.Ledger

	stateMu sync.RWMutex
	state   solana.PublicKey
}

// newServerWithComponents is used by wire to initialize the server components.
// Components not listed here won't be handled by wire and should be initialized separately.
// Components which shouldn't be handled must be labeled `wire:"-"` in Server struct.
func newServerWithComponents(
	cfg config.Server,
	db *sql.DB,
	i18n *i18n.Service,
	metrics *metrics.Service,
	env *anchor.Env,
	program *boomerfun.Client,
	ledger ledger.Ledger,
) (*Server, error) {
	s := &Server{
		// Anchor.toml may have filled in provider and cluster
		Config:  env.Config,
		DB:      db,
		I18n:    i18n,
		Metrics: metrics,
		Env:     env,
		Program: program,
		Ledger:  ledger,
	}

	if cfg.Program.StateAddress != "" {
		state, err := solana.PublicKeyFromBase58(cfg.Program.StateAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid program state address %q: %w", cfg.Program.StateAddress, err)
		}
		s.state = state
	}

	return s, nil
}

func (s *Server) Ready() bool {
	if err := util.IsStructInitialized(s); err != nil {
		log.Debug().Err(err).Msg("Server is not fully initialized")
		return false
	}

	return true
}

// StateAddress is the ProgramState account used when a request names none.
func (s *Server) StateAddress() (solana.PublicKey, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if s.state.IsZero() {
		return solana.PublicKey{}, ErrProgramStateNotConfigured
	}

	return s.state, nil
}

// RememberStateAddress sets the default ProgramState account unless one is configured already.
func (s *Server) RememberStateAddress(state solana.PublicKey) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if !s.state.IsZero() {
		return false
	}

	s.state = state

	return true
}

func (s *Server) Start() error {
	if !s.Ready() {
		return errors.New("server is not ready")
	}

	if err := s.Echo.Start(s.Config.Echo.ListenAddress); err != nil {
		return fmt.Errorf("failed to start echo server: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) []error {
	log.Warn().Msg("Shutting down server")

	var errs []error

	if s.DB != nil {
		log.Debug().Msg("Closing database connection")

		if err := s.DB.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			log.Error().Err(err).Msg("Failed to close database connection")
			errs = append(errs, err)
		}
	}

	if s.Echo != nil {
		log.Debug().Msg("Shutting down echo server")

		if err := s.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Failed to shutdown echo server")
			errs = append(errs, err)
		}
	}

	if s.Env != nil {
		log.Debug().Msg("Closing RPC connection and wiping wallet")
		s.Env.Close()
	}

	return errs
}
