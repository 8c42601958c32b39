package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/api/router"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/keystore"
)

// TestServer is a fully wired api.Server running against a FakeValidator
// that executes the IaoSolana program.
type TestServer struct {
	*api.Server

	Validator  *FakeValidator
	IaoProgram *IaoProgram
	Wallet     solana.PrivateKey
}

// NewTestServerConfig returns a server config pointing at v with a freshly
// generated wallet keypair file. The ledger database is disabled.
func NewTestServerConfig(t *testing.T, v *FakeValidator) (config.Server, solana.PrivateKey) {
	t.Helper()

	wallet := solana.NewWallet().PrivateKey
	walletPath := filepath.Join(t.TempDir(), "id.json")
	if err := keystore.SaveKeypairFile(walletPath, wallet); err != nil {
		t.Fatalf("failed to write wallet keypair: %v", err)
	}

	cfg := config.Server{}
	cfg.Echo.Debug = false
	cfg.Echo.ListenAddress = ":0"
	cfg.Management.ReadinessTimeout = time.Second
	cfg.Management.LivenessTimeout = time.Second
	cfg.Logger.Level = zerolog.DebugLevel
	cfg.Logger.RequestLevel = zerolog.DebugLevel
	cfg.Provider.URL = v.URL()
	cfg.Provider.WalletPath = walletPath
	cfg.Provider.Commitment = "confirmed"
	cfg.Provider.PreflightCommitment = "processed"
	cfg.Provider.ConfirmTimeout = 5 * time.Second
	cfg.Provider.PollInterval = 5 * time.Millisecond
	cfg.Program.WorkspaceName = "IaoSolana"
	cfg.Program.WorkspaceDir = t.TempDir()
	cfg.I18n.DefaultLanguage = "en"

	return cfg, wallet
}

// WithTestServer runs closure against a server with default test configuration.
func WithTestServer(t *testing.T, closure func(s *api.Server)) {
	t.Helper()

	WithTestServerConfigurable(t, nil, func(ts *TestServer) {
		closure(ts.Server)
	})
}

// WithTestServerConfigurable lets configure adjust the config before the
// server is wired. The closure has access to the validator and the fake program.
func WithTestServerConfigurable(t *testing.T, configure func(cfg *config.Server), closure func(ts *TestServer)) {
	t.Helper()

	v := NewFakeValidator(t)
	iao := NewIaoProgram(t, v)

	cfg, wallet := NewTestServerConfig(t, v)
	if configure != nil {
		configure(&cfg)
	}

	ctx := context.Background()

	s, _, err := api.InitNewServerWithDB(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	if err := router.Init(s); err != nil {
		t.Fatalf("failed to init router: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if errs := s.Shutdown(ctx); len(errs) > 0 {
			t.Logf("failed to shutdown server: %v", errs)
		}
	})

	closure(&TestServer{
		Server:     s,
		Validator:  v,
		IaoProgram: iao,
		Wallet:     wallet,
	})
}
