package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"initialize":     "initialize",
		"createToken":    "create_token",
		"purchase_token": "purchase_token",
		"IaoSolana":      "iao_solana",
		"ProgramState":   "program_state",
		"HTTPServer":     "http_server",
		"token2Mint":     "token2_mint",
		"":               "",
	}

	for in, want := range tests {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
