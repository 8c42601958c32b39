package boomerfun

import (
	"context"

	"github.com/aarondl/null/v8"
	"github.com/gagliardetto/solana-go"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/keystore"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/metrics"
	"github/chapool/iao-solana/internal/util"
)

// Client calls the program through an anchor.Program handle and books every
// submitted transaction into the ledger.
type Client struct {
	program *anchor.Program
	metrics *metrics.Service
	ledger  ledger.Ledger
}

type Option func(*Client)

func WithMetrics(m *metrics.Service) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLedger(l ledger.Ledger) Option {
	return func(c *Client) {
		if l != nil {
			c.ledger = l
		}
	}
}

func NewClient(program *anchor.Program, opts ...Option) *Client {
	c := &Client{
		program: program,
		ledger:  ledger.Noop{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Program() *anchor.Program {
	return c.program
}

// Wallet is the provider wallet paying for and signing all calls.
func (c *Client) Wallet() solana.PublicKey {
	return c.program.Provider().Wallet.PublicKey()
}

type InitializeOptions struct {
	// State is the keypair of the new ProgramState account; a fresh one is generated when nil.
	State solana.PrivateKey
}

type InitializeResult struct {
	Signature solana.Signature `json:"signature"`
	State     solana.PublicKey `json:"state"`
}

// Initialize creates the ProgramState account.
func (c *Client) Initialize(ctx context.Context, opts InitializeOptions) (*InitializeResult, error) {
	log := util.LogFromContext(ctx)

	state := opts.State
	if state == nil {
		var err error
		state, err = solana.NewRandomPrivateKey()
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate program state keypair")
		}
	} else if err := keystore.ValidateKeypair(state); err != nil {
		return nil, errors.Wrap(err, "invalid program state keypair")
	}

	res, err := c.program.Methods(InstructionInitialize).
		Accounts(anchor.Accounts{"program_state": state.PublicKey()}).
		Signers(state).
		Send(ctx)
	c.book(ctx, InstructionInitialize, res, state.PublicKey(), nil, err)
	if err != nil {
		return nil, translateError(err)
	}

	log.Debug().Str("signature", res.Signature.String()).Str("state", state.PublicKey().String()).Msg("Program state initialized")

	return &InitializeResult{
		Signature: res.Signature,
		State:     state.PublicKey(),
	}, nil
}

// State fetches and decodes the ProgramState account.
func (c *Client) State(ctx context.Context, address solana.PublicKey) (*ProgramState, error) {
	var state ProgramState
	if err := c.program.FetchAccount(ctx, AccountProgramState, address, &state); err != nil {
		return nil, err
	}

	return &state, nil
}

type CreateTokenParams struct {
	State  solana.PublicKey
	Mint   solana.PublicKey
	Name   string
	Symbol string
	// SkipSizeCheck sends the transaction even if the new token cannot fit
	// into the state account.
	SkipSizeCheck bool
}

type CreateTokenResult struct {
	Signature solana.Signature `json:"signature"`
	TokenID   uint64           `json:"tokenId"`
}

// CreateToken appends a token to the program state.
func (c *Client) CreateToken(ctx context.Context, p CreateTokenParams) (*CreateTokenResult, error) {
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(p.Name, "name"),
		vala.StringNotEmpty(p.Symbol, "symbol"),
		vala.Not(vala.Equals(p.State, solana.PublicKey{}, "state")),
		vala.Not(vala.Equals(p.Mint, solana.PublicKey{}, "mint")),
	).Check()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidParams, err.Error())
	}

	info, err := c.program.Provider().Connection.AccountInfo(ctx, p.State, c.program.Provider().Opts.Commitment)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch program state %s", p.State)
	}

	data := info.Data.GetBinary()

	var state ProgramState
	if err := c.program.DecodeAccount(AccountProgramState, data, &state); err != nil {
		return nil, err
	}

	token := TokenInfo{Mint: p.Mint, Name: p.Name, Symbol: p.Symbol, Creator: c.Wallet()}
	needed := anchor.DiscriminatorLength + state.Size() + token.Size()
	if needed > len(data) && !p.SkipSizeCheck {
		return nil, errors.Wrapf(ErrStateAccountTooSmall, "need %d bytes, account has %d", needed, len(data))
	}

	tokenID := uint64(len(state.Tokens))
	args := map[string]any{"name": p.Name, "symbol": p.Symbol, "mint": p.Mint.String()}

	res, err := c.program.Methods(InstructionCreateToken).
		Accounts(anchor.Accounts{"program_state": p.State, "token_mint": p.Mint}).
		Args(p.Name, p.Symbol).
		Send(ctx)
	c.book(ctx, InstructionCreateToken, res, p.State, args, err)
	if err != nil {
		return nil, translateError(err)
	}

	return &CreateTokenResult{
		Signature: res.Signature,
		TokenID:   tokenID,
	}, nil
}

// TradeAccounts are the token accounts moved by purchase_token and
// sell_token. Zero user accounts default to associated token accounts of
// the wallet.
type TradeAccounts struct {
	UserCurrency    solana.PublicKey
	VaultCurrency   solana.PublicKey
	UserAgentToken  solana.PublicKey
	VaultAgentToken solana.PublicKey
	VaultAuthority  solana.PublicKey
	// CurrencyMint derives UserCurrency when it is not set.
	CurrencyMint solana.PublicKey
}

type TradeParams struct {
	State    solana.PublicKey
	TokenID  uint64
	Amount   uint64
	Accounts TradeAccounts
}

type PurchaseResult struct {
	Signature solana.Signature `json:"signature"`
	Quote     *PurchaseQuote   `json:"quote"`
}

type SellResult struct {
	Signature solana.Signature `json:"signature"`
	Quote     *SellQuote       `json:"quote"`
}

// PurchaseToken buys tokens of p.TokenID for p.Amount currency units.
func (c *Client) PurchaseToken(ctx context.Context, p TradeParams) (*PurchaseResult, error) {
	state, token, err := c.tradeToken(ctx, p)
	if err != nil {
		return nil, err
	}

	quote, err := QuotePurchase(p.TokenID, *token, p.Amount)
	if err != nil {
		return nil, err
	}

	accounts, err := c.resolveTradeAccounts(token, p.Accounts)
	if err != nil {
		return nil, err
	}

	res, err := c.program.Methods(InstructionPurchaseToken).
		Accounts(anchor.Accounts{
			"program_state":             p.State,
			"user_currency_account":     accounts.UserCurrency,
			"vault_currency_account":    accounts.VaultCurrency,
			"user_agent_token_account":  accounts.UserAgentToken,
			"vault_agent_token_account": accounts.VaultAgentToken,
			"vault_authority":           accounts.VaultAuthority,
		}).
		Args(p.TokenID, p.Amount).
		Send(ctx)
	c.book(ctx, InstructionPurchaseToken, res, state, map[string]any{"tokenId": p.TokenID, "amount": p.Amount}, err)
	if err != nil {
		return nil, translateError(err)
	}

	return &PurchaseResult{Signature: res.Signature, Quote: quote}, nil
}

// SellToken sells p.Amount tokens of p.TokenID back to the curve.
func (c *Client) SellToken(ctx context.Context, p TradeParams) (*SellResult, error) {
	state, token, err := c.tradeToken(ctx, p)
	if err != nil {
		return nil, err
	}

	quote, err := QuoteSell(p.TokenID, *token, p.Amount)
	if err != nil {
		return nil, err
	}

	accounts, err := c.resolveTradeAccounts(token, p.Accounts)
	if err != nil {
		return nil, err
	}

	res, err := c.program.Methods(InstructionSellToken).
		Accounts(anchor.Accounts{
			"program_state":             p.State,
			"user_agent_token_account":  accounts.UserAgentToken,
			"vault_agent_token_account": accounts.VaultAgentToken,
			"user_currency_account":     accounts.UserCurrency,
			"vault_currency_account":    accounts.VaultCurrency,
			"vault_authority":           accounts.VaultAuthority,
		}).
		Args(p.TokenID, p.Amount).
		Send(ctx)
	c.book(ctx, InstructionSellToken, res, state, map[string]any{"tokenId": p.TokenID, "amount": p.Amount}, err)
	if err != nil {
		return nil, translateError(err)
	}

	return &SellResult{Signature: res.Signature, Quote: quote}, nil
}

// QuotePurchase fetches the current state and quotes a purchase.
func (c *Client) QuotePurchase(ctx context.Context, stateAddress solana.PublicKey, tokenID uint64, amount uint64) (*PurchaseQuote, error) {
	state, err := c.State(ctx, stateAddress)
	if err != nil {
		return nil, err
	}

	token, err := state.Token(tokenID)
	if err != nil {
		return nil, err
	}

	return QuotePurchase(tokenID, *token, amount)
}

// QuoteSell fetches the current state and quotes a sale.
func (c *Client) QuoteSell(ctx context.Context, stateAddress solana.PublicKey, tokenID uint64, amount uint64) (*SellQuote, error) {
	state, err := c.State(ctx, stateAddress)
	if err != nil {
		return nil, err
	}

	token, err := state.Token(tokenID)
	if err != nil {
		return nil, err
	}

	return QuoteSell(tokenID, *token, amount)
}

func (c *Client) tradeToken(ctx context.Context, p TradeParams) (solana.PublicKey, *TokenInfo, error) {
	if p.State.IsZero() {
		return solana.PublicKey{}, nil, errors.Wrap(ErrInvalidParams, "state address is required")
	}

	state, err := c.State(ctx, p.State)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	token, err := state.Token(p.TokenID)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}

	return p.State, token, nil
}

func (c *Client) resolveTradeAccounts(token *TokenInfo, accounts TradeAccounts) (TradeAccounts, error) {
	wallet := c.Wallet()

	if accounts.UserCurrency.IsZero() {
		if accounts.CurrencyMint.IsZero() {
			return accounts, errors.Wrap(ErrInvalidParams, "user currency account or currency mint is required")
		}

		ata, _, err := solana.FindAssociatedTokenAddress(wallet, accounts.CurrencyMint)
		if err != nil {
			return accounts, errors.Wrap(err, "failed to derive user currency account")
		}
		accounts.UserCurrency = ata
	}

	if accounts.UserAgentToken.IsZero() {
		ata, _, err := solana.FindAssociatedTokenAddress(wallet, token.Mint)
		if err != nil {
			return accounts, errors.Wrap(err, "failed to derive user token account")
		}
		accounts.UserAgentToken = ata
	}

	err := vala.BeginValidation().Validate(
		vala.Not(vala.Equals(accounts.VaultCurrency, solana.PublicKey{}, "vault_currency_account")),
		vala.Not(vala.Equals(accounts.VaultAgentToken, solana.PublicKey{}, "vault_agent_token_account")),
		vala.Not(vala.Equals(accounts.VaultAuthority, solana.PublicKey{}, "vault_authority")),
	).Check()
	if err != nil {
		return accounts, errors.Wrap(ErrInvalidParams, err.Error())
	}

	return accounts, nil
}

// book records a submitted transaction; a failing ledger never fails the call.
func (c *Client) book(ctx context.Context, instruction string, res anchor.Confirmed, state solana.PublicKey, args map[string]any, callErr error) {
	c.metrics.ObserveTransaction(instruction, callErr)

	if res.Signature.IsZero() {
		return
	}

	entry := &ledger.Transaction{
		Signature:    res.Signature.String(),
		ProgramID:    c.program.ID().String(),
		Instruction:  instruction,
		Wallet:       c.Wallet().String(),
		ProgramState: null.StringFrom(state.String()),
		Status:       ledger.StatusConfirmed,
	}

	switch {
	case callErr == nil:
		entry.Slot = null.Int64From(int64(res.Slot)) //nolint:gosec // slots fit into int64
	case errors.Is(callErr, context.DeadlineExceeded), errors.Is(callErr, context.Canceled):
		// sent but not confirmed yet, left to ReconcilePending
		entry.Status = ledger.StatusPending
	default:
		entry.Status = ledger.StatusFailed
		entry.Error = null.StringFrom(callErr.Error())
	}

	log := util.LogFromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	if args != nil {
		if err := entry.SetArgs(args); err != nil {
			log.Warn().Err(err).Msg("Failed to encode instruction args for ledger")
		}
	}

	if err := c.ledger.Record(ctx, entry); err != nil {
		log.Warn().Err(err).Str("signature", entry.Signature).Msg("Failed to record transaction in ledger")
	}
}
