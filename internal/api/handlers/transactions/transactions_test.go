package transactions_test

import (
	"net/http"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/ledger"
	"github/chapool/iao-solana/internal/test"
)

type listResponse struct {
	Transactions []*ledger.Transaction `json:"transactions"`
}

func initialize(t *testing.T, ts *test.TestServer) solana.Signature {
	t.Helper()

	res := test.PerformRequest(t, ts.Server, "POST", "/api/v1/program/initialize", nil, nil)
	require.Equal(t, http.StatusOK, res.Result().StatusCode)

	var body struct {
		Signature solana.Signature `json:"signature"`
	}
	test.ParseResponseBody(t, res, &body)

	return body.Signature
}

func TestGetTransactions(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		first := initialize(t, ts)
		second := initialize(t, ts)

		res := test.PerformRequest(t, ts.Server, "GET", "/api/v1/transactions", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var body listResponse
		test.ParseResponseBody(t, res, &body)
		require.Len(t, body.Transactions, 2)
		assert.Equal(t, second.String(), body.Transactions[0].Signature)
		assert.Equal(t, first.String(), body.Transactions[1].Signature)
		assert.Equal(t, ledger.StatusConfirmed, body.Transactions[0].Status)
		assert.Equal(t, ts.Wallet.PublicKey().String(), body.Transactions[0].Wallet)

		res = test.PerformRequest(t, ts.Server, "GET", "/api/v1/transactions?limit=1&offset=1", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		test.ParseResponseBody(t, res, &body)
		require.Len(t, body.Transactions, 1)
		assert.Equal(t, first.String(), body.Transactions[0].Signature)

		res = test.PerformRequest(t, ts.Server, "GET", "/api/v1/transactions?instruction="+boomerfun.InstructionSellToken, nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		test.ParseResponseBody(t, res, &body)
		assert.Empty(t, body.Transactions)
	})
}

func TestGetTransactionsInvalidParams(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		for _, query := range []string{"limit=-1", "offset=-5", "limit=100000", "limit=many"} {
			res := test.PerformRequest(t, ts.Server, "GET", "/api/v1/transactions?"+query, nil, nil)
			assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode, query)
		}
	})
}

func TestGetTransaction(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		sig := initialize(t, ts)

		res := test.PerformRequest(t, ts.Server, "GET", "/api/v1/transactions/"+sig.String(), nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var tx ledger.Transaction
		test.ParseResponseBody(t, res, &tx)
		assert.Equal(t, sig.String(), tx.Signature)
		assert.Equal(t, boomerfun.InstructionInitialize, tx.Instruction)
		assert.Equal(t, ledger.StatusConfirmed, tx.Status)
		assert.True(t, tx.Slot.Valid)
	})
}

func TestGetTransactionUnknown(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		var sig solana.Signature
		sig[0] = 1

		res := test.PerformRequest(t, ts.Server, "GET", "/api/v1/transactions/"+sig.String(), nil, nil)
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)

		var body test.GenericPayload
		test.ParseResponseBody(t, res, &body)
		assert.Equal(t, "TRANSACTION_NOT_FOUND", body["type"])

		res = test.PerformRequest(t, ts.Server, "GET", "/api/v1/transactions/not-a-signature", nil, nil)
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)
	})
}
