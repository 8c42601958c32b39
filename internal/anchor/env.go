package anchor

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/chain"
	"github/chapool/iao-solana/internal/config"
	"github/chapool/iao-solana/internal/metrics"
	"github/chapool/iao-solana/internal/signer"
	"github/chapool/iao-solana/internal/util"
)

// Env bundles everything a client of an Anchor workspace needs: the
// provider, its RPC connection, the loaded wallet and the workspace.
type Env struct {
	Provider  *Provider
	Client    *chain.RPCClient
	Wallet    signer.Manager
	Workspace *Workspace
	Config    config.Server
}

// NewEnv builds the provider from the environment the way `anchor test`
// sets it up: ANCHOR_PROVIDER_URL and ANCHOR_WALLET, falling back to the
// [provider] section of Anchor.toml. The returned Env must be closed.
func NewEnv(ctx context.Context, cfg config.Server, m *metrics.Service) (*Env, error) {
	log := util.LogFromContext(ctx)

	ws, err := LoadWorkspace(cfg.Program.WorkspaceDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load workspace")
	}

	if manifest := ws.Manifest(); manifest != nil {
		if err := cfg.ApplyAnchorToml(manifest); err != nil {
			return nil, errors.Wrap(err, "failed to apply Anchor.toml")
		}
	}

	if cfg.Provider.URL == "" {
		return nil, ErrProviderURLMissing
	}

	wallet, err := signer.LoadWallet(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := chain.NewRPCClient(cfg.Provider.URLs(), m)
	if err != nil {
		wallet.Clear()
		return nil, err
	}

	provider := NewProvider(client, wallet, ConfirmOptionsFromConfig(cfg.Provider))

	log.Debug().
		Str("url", cfg.Provider.URL).
		Str("wallet", wallet.PublicKey().String()).
		Str("commitment", string(provider.Opts.Commitment)).
		Msg("Anchor provider ready")

	return &Env{
		Provider:  provider,
		Client:    client,
		Wallet:    wallet,
		Workspace: ws,
		Config:    cfg,
	}, nil
}

// Program resolves the configured workspace program (IAO_WORKSPACE_PROGRAM).
func (e *Env) Program() (*Program, error) {
	return e.ProgramByName(e.Config.Program.WorkspaceName)
}

// ProgramByName resolves a workspace program, honoring IAO_PROGRAM_ID and IAO_CLUSTER.
func (e *Env) ProgramByName(name string) (*Program, error) {
	opts := []ProgramOption{WithCluster(e.Config.Program.Cluster)}

	if e.Config.Program.ProgramID != "" {
		id, err := solana.PublicKeyFromBase58(e.Config.Program.ProgramID)
		if err != nil {
			return nil, errors.Wrap(err, "invalid IAO_PROGRAM_ID")
		}
		opts = append(opts, WithProgramID(id))
	}

	return e.Workspace.Program(name, e.Provider, opts...)
}

// Close wipes the wallet and releases the RPC connection.
func (e *Env) Close() {
	if e.Wallet != nil {
		e.Wallet.Clear()
	}
	if e.Client != nil {
		e.Client.Close()
	}
}

// ConfirmOptionsFromConfig maps provider settings onto ConfirmOptions.
func ConfirmOptionsFromConfig(cfg config.Provider) ConfirmOptions {
	opts := DefaultConfirmOptions()
	opts.Commitment = ParseCommitment(cfg.Commitment)
	opts.PreflightCommitment = ParseCommitment(cfg.PreflightCommitment)
	opts.SkipPreflight = cfg.SkipPreflight

	if cfg.ConfirmTimeout > 0 {
		opts.Timeout = cfg.ConfirmTimeout
	}
	if cfg.PollInterval > 0 {
		opts.PollInterval = cfg.PollInterval
	}

	return opts
}
