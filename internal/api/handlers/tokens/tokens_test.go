package tokens_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/test"
)

func seedState(t *testing.T, ts *test.TestServer, tokens ...boomerfun.TokenInfo) solana.PublicKey {
	t.Helper()

	address := solana.NewWallet().PublicKey()
	test.SeedState(t, ts.Validator, address, &boomerfun.ProgramState{
		TokenCount: uint64(len(tokens)) + 1,
		Tokens:     tokens,
	}, 4096)

	return address
}

func tradeAccounts() test.GenericPayload {
	return test.GenericPayload{
		"vaultCurrency":   solana.NewWallet().PublicKey().String(),
		"vaultAgentToken": solana.NewWallet().PublicKey().String(),
		"vaultAuthority":  solana.NewWallet().PublicKey().String(),
		"currencyMint":    solana.WrappedSol.String(),
	}
}

func errorType(t *testing.T, body []byte) string {
	t.Helper()

	var payload struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	return payload.Type
}

func TestPostCreateToken(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		state := seedState(t, ts)
		mint := solana.NewWallet().PublicKey()

		res := test.PerformRequest(t, ts.Server, "POST", "/api/v1/tokens", test.GenericPayload{
			"state":  state.String(),
			"mint":   mint.String(),
			"name":   "Boomer",
			"symbol": "BMR",
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body test.GenericPayload
		test.ParseResponseBody(t, res, &body)
		assert.InDelta(t, 0, body["tokenId"], 0)
		assert.NotEmpty(t, body["signature"])

		current, err := ts.Program.State(t.Context(), state)
		require.NoError(t, err)
		require.Len(t, current.Tokens, 1)
		assert.Equal(t, mint, current.Tokens[0].Mint)
		assert.Equal(t, "BMR", current.Tokens[0].Symbol)
	})
}

func TestPostCreateTokenValidation(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		state := seedState(t, ts)

		tests := []struct {
			name    string
			payload test.GenericPayload
		}{
			{"missing mint", test.GenericPayload{"state": state.String(), "name": "Boomer", "symbol": "BMR"}},
			{"invalid mint", test.GenericPayload{"state": state.String(), "mint": "0OIl", "name": "Boomer", "symbol": "BMR"}},
			{"missing name", test.GenericPayload{"state": state.String(), "mint": solana.NewWallet().PublicKey().String(), "symbol": "BMR"}},
			{"missing symbol", test.GenericPayload{"state": state.String(), "mint": solana.NewWallet().PublicKey().String(), "name": "Boomer"}},
			{"invalid state", test.GenericPayload{"state": "nope", "mint": solana.NewWallet().PublicKey().String(), "name": "Boomer", "symbol": "BMR"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := test.PerformRequest(t, ts.Server, "POST", "/api/v1/tokens", tt.payload, nil)
				require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
				assert.Equal(t, "INVALID_PARAMS", errorType(t, res.Body.Bytes()))
			})
		}

		assert.Empty(t, ts.Validator.Sent())
	})
}

func TestPostCreateTokenAfterInitialize(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		res := test.PerformRequest(t, ts.Server, "POST", "/api/v1/program/initialize", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		payload := test.GenericPayload{
			"mint":   solana.NewWallet().PublicKey().String(),
			"name":   "Boomer",
			"symbol": "BMR",
		}

		// initialize only allocates room for an empty token list
		res = test.PerformRequest(t, ts.Server, "POST", "/api/v1/tokens", payload, nil)
		require.Equal(t, http.StatusUnprocessableEntity, res.Result().StatusCode)
		assert.Equal(t, "STATE_ACCOUNT_TOO_SMALL", errorType(t, res.Body.Bytes()))
		assert.Len(t, ts.Validator.Sent(), 1)

		payload["skipSizeCheck"] = true
		res = test.PerformRequest(t, ts.Server, "POST", "/api/v1/tokens", payload, nil)
		require.Equal(t, http.StatusUnprocessableEntity, res.Result().StatusCode)

		var body test.GenericPayload
		test.ParseResponseBody(t, res, &body)
		assert.Equal(t, "PROGRAM_ERROR", body["type"])
		assert.Contains(t, body["title"], "3004")
	})
}

func TestTokenTrade(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		state := seedState(t, ts, boomerfun.TokenInfo{Mint: solana.NewWallet().PublicKey(), Name: "Boomer", Symbol: "BMR"})
		accounts := tradeAccounts()

		res := test.PerformRequest(t, ts.Server, "GET", "/api/v1/tokens/0/quote?side=purchase&amount=1000000000&state="+state.String(), nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var quote test.GenericPayload
		test.ParseResponseBody(t, res, &quote)
		assert.Equal(t, "1073000189926999809000000012", quote["tokenAmount"])
		assert.InDelta(t, 5_000_000, quote["fee"], 0)
		assert.Equal(t, true, quote["truncated"])
		assert.Empty(t, ts.Validator.Sent())

		res = test.PerformRequest(t, ts.Server, "POST", "/api/v1/tokens/0/purchase", test.GenericPayload{
			"state":    state.String(),
			"amount":   1_000_000_000,
			"accounts": accounts,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var bought struct {
			Signature solana.Signature `json:"signature"`
			Quote     struct {
				TokenAmount          string `json:"tokenAmount"`
				NewCurrencyCollected uint64 `json:"newCurrencyCollected"`
			} `json:"quote"`
		}
		test.ParseResponseBody(t, res, &bought)
		assert.Equal(t, quote["tokenAmount"], bought.Quote.TokenAmount)
		assert.Equal(t, uint64(995_000_000), bought.Quote.NewCurrencyCollected)
		require.Len(t, ts.Validator.Sent(), 1)
		assert.Equal(t, bought.Signature, ts.Validator.Sent()[0].Signatures[0])

		res = test.PerformRequest(t, ts.Server, "GET", "/api/v1/tokens/0/quote?side=sell&amount=6&state="+state.String(), nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		test.ParseResponseBody(t, res, &quote)
		assert.InDelta(t, 489_282_295, quote["netPayout"], 0)

		res = test.PerformRequest(t, ts.Server, "POST", "/api/v1/tokens/0/sell", test.GenericPayload{
			"state":    state.String(),
			"amount":   6,
			"accounts": accounts,
		}, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var sold test.GenericPayload
		test.ParseResponseBody(t, res, &sold)
		assert.InDelta(t, 489_282_295, sold["quote"].(map[string]any)["netPayout"], 0)

		transfers := ts.IaoProgram.Transfers()
		require.Len(t, transfers, 4)
		assert.Equal(t, boomerfun.InstructionSellToken, transfers[3].Instruction)
		assert.Equal(t, uint64(489_282_295), transfers[3].Amount)
	})
}

func TestTradeErrors(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		state := seedState(t, ts, boomerfun.TokenInfo{Mint: solana.NewWallet().PublicKey(), Name: "Boomer", Symbol: "BMR"})

		tests := []struct {
			name     string
			path     string
			payload  test.GenericPayload
			status   int
			errType  string
			language string
			title    string
		}{
			{
				name:    "unknown token",
				path:    "/api/v1/tokens/7/purchase",
				payload: test.GenericPayload{"state": state.String(), "amount": 10, "accounts": tradeAccounts()},
				status:  http.StatusUnprocessableEntity,
				errType: "INVALID_TOKEN_ID",
			},
			{
				name:     "unknown token localized",
				path:     "/api/v1/tokens/7/sell",
				payload:  test.GenericPayload{"state": state.String(), "amount": 1, "accounts": tradeAccounts()},
				status:   http.StatusUnprocessableEntity,
				errType:  "INVALID_TOKEN_ID",
				language: "de-DE,de;q=0.9",
				title:    "Ungültige Token-ID",
			},
			{
				name:    "sell nothing",
				path:    "/api/v1/tokens/0/sell",
				payload: test.GenericPayload{"state": state.String(), "amount": 0, "accounts": tradeAccounts()},
				status:  http.StatusUnprocessableEntity,
				errType: "INVALID_AMOUNT",
			},
			{
				name:    "sell more than sold",
				path:    "/api/v1/tokens/0/sell",
				payload: test.GenericPayload{"state": state.String(), "amount": 1, "accounts": tradeAccounts()},
				status:  http.StatusUnprocessableEntity,
				errType: "CURVE_ARITHMETIC",
			},
			{
				name:    "missing vault",
				path:    "/api/v1/tokens/0/purchase",
				payload: test.GenericPayload{"state": state.String(), "amount": 10, "accounts": test.GenericPayload{"currencyMint": solana.WrappedSol.String()}},
				status:  http.StatusBadRequest,
				errType: "INVALID_PARAMS",
			},
			{
				name:    "no currency account",
				path:    "/api/v1/tokens/0/purchase",
				payload: test.GenericPayload{"state": state.String(), "amount": 10, "accounts": func() test.GenericPayload { a := tradeAccounts(); delete(a, "currencyMint"); return a }()},
				status:  http.StatusBadRequest,
				errType: "INVALID_PARAMS",
			},
			{
				name:    "no state configured",
				path:    "/api/v1/tokens/0/purchase",
				payload: test.GenericPayload{"amount": 10, "accounts": tradeAccounts()},
				status:  http.StatusBadRequest,
				errType: "PROGRAM_STATE_NOT_CONFIGURED",
			},
			{
				name:    "invalid token id",
				path:    "/api/v1/tokens/abc/purchase",
				payload: test.GenericPayload{"state": state.String(), "amount": 10, "accounts": tradeAccounts()},
				status:  http.StatusBadRequest,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				headers := http.Header{}
				if tt.language != "" {
					headers.Set("Accept-Language", tt.language)
				}

				res := test.PerformRequest(t, ts.Server, "POST", tt.path, tt.payload, headers)
				require.Equal(t, tt.status, res.Result().StatusCode, res.Body.String())

				var body test.GenericPayload
				test.ParseResponseBody(t, res, &body)
				if tt.errType != "" {
					assert.Equal(t, tt.errType, body["type"])
				}
				if tt.title != "" {
					assert.Equal(t, tt.title, body["title"])
				}
			})
		}

		assert.Empty(t, ts.Validator.Sent())
	})
}

func TestGetQuoteValidation(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		state := seedState(t, ts, boomerfun.TokenInfo{Mint: solana.NewWallet().PublicKey(), Name: "Boomer", Symbol: "BMR"})

		for _, query := range []string{"amount=1", "side=swap&amount=1"} {
			res := test.PerformRequest(t, ts.Server, "GET", "/api/v1/tokens/0/quote?"+query+"&state="+state.String(), nil, nil)
			require.Equal(t, http.StatusBadRequest, res.Result().StatusCode, query)
			assert.Equal(t, "INVALID_PARAMS", errorType(t, res.Body.Bytes()))
		}
	})
}
