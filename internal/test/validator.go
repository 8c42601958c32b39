package test

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
)

// ProgramFailure makes the fake validator reject a transaction the way a
// validator reports a failing instruction.
type ProgramFailure struct {
	Instruction int
	Code        uint32
}

func (f *ProgramFailure) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: custom program error: 0x%x", f.Instruction, f.Code)
}

// FakeAccount is an account served by getAccountInfo.
type FakeAccount struct {
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

type fakeStatus struct {
	slot    uint64
	failure *ProgramFailure
}

// FakeValidator is a minimal Solana JSON-RPC endpoint backed by echo.
// It decodes submitted transactions, lets tests hook into their execution
// and serves the resulting accounts and signature statuses.
type FakeValidator struct {
	Server *httptest.Server

	mu          sync.Mutex
	accounts    map[solana.PublicKey]*FakeAccount
	statuses    map[solana.Signature]*fakeStatus
	sent        []*solana.Transaction
	calls       map[string]int
	blockhash   solana.Hash
	blockHeight uint64
	lastValid   uint64
	slot        uint64
	skipStatus  bool

	// OnTransaction is called for every accepted transaction. Returning a
	// *ProgramFailure simulates an on-chain instruction error.
	OnTransaction func(v *FakeValidator, tx *solana.Transaction) error
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// NewFakeValidator starts a fake validator that is shut down when the test ends.
func NewFakeValidator(t *testing.T) *FakeValidator {
	t.Helper()

	v := &FakeValidator{
		accounts:    make(map[solana.PublicKey]*FakeAccount),
		statuses:    make(map[solana.Signature]*fakeStatus),
		calls:       make(map[string]int),
		blockHeight: 10,
		lastValid:   150,
		slot:        100,
	}
	v.blockhash = randomHash(t)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.POST("/", v.handle)

	v.Server = httptest.NewServer(e)
	t.Cleanup(v.Server.Close)

	return v
}

// URL of the JSON-RPC endpoint.
func (v *FakeValidator) URL() string {
	return v.Server.URL
}

// SetAccount stores or replaces an account.
func (v *FakeValidator) SetAccount(address solana.PublicKey, account *FakeAccount) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.accounts[address] = account
}

// Account returns a copy of a stored account.
func (v *FakeValidator) Account(address solana.PublicKey) (*FakeAccount, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	acc, ok := v.accounts[address]
	if !ok {
		return nil, false
	}

	cp := *acc
	cp.Data = append([]byte(nil), acc.Data...)

	return &cp, true
}

// Sent returns all transactions accepted so far.
func (v *FakeValidator) Sent() []*solana.Transaction {
	v.mu.Lock()
	defer v.mu.Unlock()

	return append([]*solana.Transaction(nil), v.sent...)
}

// Calls returns how often method was invoked.
func (v *FakeValidator) Calls(method string) int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.calls[method]
}

// SetBlockHeight moves the chain forward, e.g. past a blockhash's validity.
func (v *FakeValidator) SetBlockHeight(height uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.blockHeight = height
}

// WithholdStatuses makes getSignatureStatuses report every signature as unknown.
func (v *FakeValidator) WithholdStatuses(withhold bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.skipStatus = withhold
}

func (v *FakeValidator) handle(c echo.Context) error {
	var req rpcRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"jsonrpc": "2.0",
			"id":      nil,
			"error":   rpcError{Code: -32700, Message: "Parse error"},
		})
	}

	v.mu.Lock()
	v.calls[req.Method]++
	v.mu.Unlock()

	result, rerr := v.dispatch(req)
	if rerr != nil {
		return c.JSON(http.StatusOK, map[string]any{"jsonrpc": "2.0", "id": req.ID, "error": rerr})
	}

	return c.JSON(http.StatusOK, map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
}

func (v *FakeValidator) dispatch(req rpcRequest) (any, *rpcError) {
	switch req.Method {
	case "getHealth":
		return "ok", nil
	case "getLatestBlockhash":
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.withContext(map[string]any{
			"blockhash":            v.blockhash.String(),
			"lastValidBlockHeight": v.lastValid,
		}), nil
	case "getBlockHeight":
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.blockHeight, nil
	case "getBalance":
		key, rerr := paramPublicKey(req, 0)
		if rerr != nil {
			return nil, rerr
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		var lamports uint64
		if acc, ok := v.accounts[key]; ok {
			lamports = acc.Lamports
		}
		return v.withContext(lamports), nil
	case "getAccountInfo":
		return v.getAccountInfo(req)
	case "sendTransaction":
		return v.sendTransaction(req)
	case "getSignatureStatuses":
		return v.getSignatureStatuses(req)
	case "requestAirdrop":
		return v.requestAirdrop(req)
	default:
		return nil, &rpcError{Code: -32601, Message: "Method not found"}
	}
}

func (v *FakeValidator) withContext(value any) map[string]any {
	return map[string]any{
		"context": map[string]any{"slot": v.slot},
		"value":   value,
	}
}

func (v *FakeValidator) getAccountInfo(req rpcRequest) (any, *rpcError) {
	key, rerr := paramPublicKey(req, 0)
	if rerr != nil {
		return nil, rerr
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	acc, ok := v.accounts[key]
	if !ok {
		return v.withContext(nil), nil
	}

	return v.withContext(map[string]any{
		"lamports":   acc.Lamports,
		"owner":      acc.Owner.String(),
		"data":       []string{base64.StdEncoding.EncodeToString(acc.Data), "base64"},
		"executable": false,
		"rentEpoch":  0,
		"space":      len(acc.Data),
	}), nil
}

func (v *FakeValidator) sendTransaction(req rpcRequest) (any, *rpcError) {
	var encoded string
	if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &encoded) != nil {
		return nil, &rpcError{Code: -32602, Message: "Invalid params"}
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &rpcError{Code: -32602, Message: "invalid transaction: expected base64 encoding"}
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, &rpcError{Code: -32602, Message: "failed to deserialize transaction: " + err.Error()}
	}

	if len(tx.Signatures) == 0 {
		return nil, &rpcError{Code: -32602, Message: "transaction has no signatures"}
	}

	if err := tx.VerifySignatures(); err != nil {
		return nil, &rpcError{Code: -32003, Message: "Transaction signature verification failure"}
	}

	v.mu.Lock()
	hook := v.OnTransaction
	v.mu.Unlock()

	var failure *ProgramFailure
	if hook != nil {
		if err := hook(v, tx); err != nil {
			pf, ok := err.(*ProgramFailure)
			if !ok {
				return nil, &rpcError{Code: -32002, Message: "Transaction simulation failed: " + err.Error()}
			}
			failure = pf
		}
	}

	if failure != nil && !skipPreflight(req) {
		return nil, &rpcError{
			Code:    -32002,
			Message: "Transaction simulation failed: " + failure.Error(),
			Data: map[string]any{
				"err":  instructionError(failure),
				"logs": []string{fmt.Sprintf("Program log: AnchorError occurred. Error Code: %d.", failure.Code)},
			},
		}
	}

	sig := tx.Signatures[0]

	v.mu.Lock()
	defer v.mu.Unlock()

	v.sent = append(v.sent, tx)
	v.slot++
	v.statuses[sig] = &fakeStatus{slot: v.slot, failure: failure}

	return sig.String(), nil
}

func (v *FakeValidator) getSignatureStatuses(req rpcRequest) (any, *rpcError) {
	var sigs []string
	if len(req.Params) == 0 || json.Unmarshal(req.Params[0], &sigs) != nil {
		return nil, &rpcError{Code: -32602, Message: "Invalid params"}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	values := make([]any, 0, len(sigs))
	for _, s := range sigs {
		sig, err := solana.SignatureFromBase58(s)
		status, ok := v.statuses[sig]
		if err != nil || !ok || v.skipStatus {
			values = append(values, nil)
			continue
		}

		var txErr any
		if status.failure != nil {
			txErr = instructionError(status.failure)
		}

		values = append(values, map[string]any{
			"slot":               status.slot,
			"confirmations":      nil,
			"err":                txErr,
			"confirmationStatus": "finalized",
		})
	}

	return v.withContext(values), nil
}

func (v *FakeValidator) requestAirdrop(req rpcRequest) (any, *rpcError) {
	key, rerr := paramPublicKey(req, 0)
	if rerr != nil {
		return nil, rerr
	}

	var lamports uint64
	if len(req.Params) < 2 || json.Unmarshal(req.Params[1], &lamports) != nil {
		return nil, &rpcError{Code: -32602, Message: "Invalid params"}
	}

	var sig solana.Signature
	if _, err := rand.Read(sig[:]); err != nil {
		return nil, &rpcError{Code: -32603, Message: err.Error()}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	acc, ok := v.accounts[key]
	if !ok {
		acc = &FakeAccount{Owner: solana.SystemProgramID}
		v.accounts[key] = acc
	}
	acc.Lamports += lamports
	v.slot++
	v.statuses[sig] = &fakeStatus{slot: v.slot}

	return sig.String(), nil
}

func paramPublicKey(req rpcRequest, idx int) (solana.PublicKey, *rpcError) {
	var s string
	if len(req.Params) <= idx || json.Unmarshal(req.Params[idx], &s) != nil {
		return solana.PublicKey{}, &rpcError{Code: -32602, Message: "Invalid params"}
	}

	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, &rpcError{Code: -32602, Message: "Invalid param: " + err.Error()}
	}

	return key, nil
}

func skipPreflight(req rpcRequest) bool {
	if len(req.Params) < 2 {
		return false
	}

	var opts struct {
		SkipPreflight bool `json:"skipPreflight"`
	}
	if err := json.Unmarshal(req.Params[1], &opts); err != nil {
		return false
	}

	return opts.SkipPreflight
}

func instructionError(f *ProgramFailure) map[string]any {
	return map[string]any{
		"InstructionError": []any{f.Instruction, map[string]any{"Custom": f.Code}},
	}
}

func randomHash(t *testing.T) solana.Hash {
	t.Helper()

	var h solana.Hash
	if _, err := rand.Read(h[:]); err != nil {
		t.Fatalf("failed to generate blockhash: %v", err)
	}

	return h
}
