package common_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/test"
)

func TestGetHealthy(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		res := test.PerformRequest(t, ts.Server, "GET", "/-/healthy", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.Equal(t, "rpc: ok\ndatabase: disabled", res.Body.String())
		assert.Equal(t, 1, ts.Validator.Calls("getHealth"))
	})
}

func TestGetHealthyRPCDown(t *testing.T) {
	test.WithTestServerConfigurable(t, nil, func(ts *test.TestServer) {
		ts.Validator.Server.Close()

		res := test.PerformRequest(t, ts.Server, "GET", "/-/healthy", nil, nil)
		require.Equal(t, 521, res.Result().StatusCode)
		assert.Contains(t, res.Body.String(), "database: disabled")
		assert.NotContains(t, res.Body.String(), "rpc: ok")
	})
}

func TestGetMetrics(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		// produce at least one RPC observation
		res := test.PerformRequest(t, s, "GET", "/-/healthy", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "GET", "/metrics", nil, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.Contains(t, res.Body.String(), "iao_rpc_")
	})
}
