package anchor_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/chain"
	"github/chapool/iao-solana/internal/keystore"
	"github/chapool/iao-solana/internal/signer"
	"github/chapool/iao-solana/internal/test"
)

const demoProgramID = "D7dQejiULpCMewkTHH4nTYNEhSEMwWyYdczQ9HKqdsaE"

const demoIDL = `{
  "address": "D7dQejiULpCMewkTHH4nTYNEhSEMwWyYdczQ9HKqdsaE",
  "metadata": {"name": "demo_program", "version": "0.1.0", "spec": "0.1.0"},
  "instructions": [
    {
      "name": "initialize",
      "discriminator": [175, 175, 109, 31, 13, 152, 155, 237],
      "accounts": [
        {"name": "program_state", "writable": true, "signer": true},
        {"name": "user", "writable": true, "signer": true},
        {"name": "system_program", "address": "11111111111111111111111111111111"}
      ],
      "args": []
    },
    {
      "name": "purchase_token",
      "accounts": [
        {"name": "program_state", "writable": true},
        {"name": "user", "signer": true},
        {"name": "vault", "writable": true},
        {"name": "token_program"}
      ],
      "args": [
        {"name": "token_id", "type": "u64"},
        {"name": "amount", "type": "u64"}
      ]
    }
  ],
  "accounts": [
    {"name": "ProgramState", "discriminator": [77, 209, 137, 229, 149, 67, 167, 230]}
  ],
  "errors": [
    {"code": 6000, "name": "InvalidTokenId", "msg": "Invalid token ID"}
  ]
}`

func newWallet(t *testing.T) signer.Manager {
	t.Helper()

	m := signer.NewManager()
	require.NoError(t, m.Initialize(solana.NewWallet().PrivateKey))
	t.Cleanup(m.Clear)

	return m
}

func writeKeypair(t *testing.T) (string, solana.PrivateKey) {
	t.Helper()

	key := solana.NewWallet().PrivateKey
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, keystore.SaveKeypairFile(path, key))

	return path, key
}

// newDemoProgram wires the demo IDL to a fake validator through the real RPC client.
func newDemoProgram(t *testing.T) (*anchor.Program, *test.FakeValidator) {
	t.Helper()

	v := test.NewFakeValidator(t)

	client, err := chain.NewRPCClient([]string{v.URL()}, nil)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	opts := anchor.DefaultConfirmOptions()
	opts.PollInterval = 5 * time.Millisecond

	provider := anchor.NewProvider(client, newWallet(t), opts)

	idl, err := anchor.ParseIDL([]byte(demoIDL))
	require.NoError(t, err)

	return anchor.NewProgram(idl, solana.MustPublicKeyFromBase58(demoProgramID), provider), v
}

// fakeConn is an in-memory Connection for confirmation tests.
type fakeConn struct {
	mu        sync.Mutex
	height    uint64
	lastValid uint64
	statuses  []*rpc.SignatureStatusesResult
	polls     int
	sent      []*solana.Transaction
	accounts  map[solana.PublicKey]*rpc.Account
}

func (c *fakeConn) LatestBlockhash(_ context.Context, _ rpc.CommitmentType) (solana.Hash, uint64, error) {
	return solana.Hash{7}, c.lastValid, nil
}

func (c *fakeConn) BlockHeight(_ context.Context, _ rpc.CommitmentType) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.height, nil
}

func (c *fakeConn) SendTransaction(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, tx)

	return tx.Signatures[0], nil
}

// SignatureStatus replays statuses in order and repeats the last one.
func (c *fakeConn) SignatureStatus(_ context.Context, _ solana.Signature, _ bool) (*rpc.SignatureStatusesResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.polls++
	if len(c.statuses) == 0 {
		return nil, nil
	}

	idx := c.polls - 1
	if idx >= len(c.statuses) {
		idx = len(c.statuses) - 1
	}

	return c.statuses[idx], nil
}

func (c *fakeConn) AccountInfo(_ context.Context, account solana.PublicKey, _ rpc.CommitmentType) (*rpc.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc, ok := c.accounts[account]
	if !ok {
		return nil, chain.ErrAccountNotFound
	}

	return acc, nil
}

func (c *fakeConn) pollCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.polls
}
