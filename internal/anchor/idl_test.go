package anchor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/iao-solana/internal/anchor"
)

func TestParseIDL(t *testing.T) {
	idl, err := anchor.ParseIDL([]byte(demoIDL))
	require.NoError(t, err)

	assert.Equal(t, "demo_program", idl.ProgramName())

	addr, ok := idl.ProgramAddress()
	require.True(t, ok)
	assert.Equal(t, solana.MustPublicKeyFromBase58(demoProgramID), addr)

	ix, ok := idl.Instruction("initialize")
	require.True(t, ok)
	assert.Equal(t, [8]byte{175, 175, 109, 31, 13, 152, 155, 237}, ix.DiscriminatorBytes())
	require.Len(t, ix.Accounts, 3)
	assert.True(t, ix.Accounts[0].Writable)
	assert.True(t, ix.Accounts[0].Signer)

	// computed, not declared
	ix, ok = idl.Instruction("purchaseToken")
	require.True(t, ok)
	assert.Equal(t, [8]byte{119, 226, 211, 96, 33, 236, 251, 96}, ix.DiscriminatorBytes())

	_, ok = idl.Instruction("unknown")
	assert.False(t, ok)

	acc, ok := idl.Account("ProgramState")
	require.True(t, ok)
	assert.Equal(t, [8]byte{77, 209, 137, 229, 149, 67, 167, 230}, acc.DiscriminatorBytes())
}

func TestParseLegacyIDL(t *testing.T) {
	raw := `{
	  "version": "0.1.0",
	  "name": "legacyProgram",
	  "instructions": [
	    {
	      "name": "createToken",
	      "accounts": [
	        {"name": "programState", "isMut": true, "isSigner": false},
	        {"name": "user", "isMut": true, "isSigner": true}
	      ],
	      "args": [{"name": "name", "type": "string"}]
	    }
	  ],
	  "accounts": [{"name": "ProgramState", "type": {"kind": "struct", "fields": []}}],
	  "metadata": {"address": "D7dQejiULpCMewkTHH4nTYNEhSEMwWyYdczQ9HKqdsaE"}
	}`

	idl, err := anchor.ParseIDL([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "legacy_program", idl.ProgramName())

	addr, ok := idl.ProgramAddress()
	require.True(t, ok)
	assert.Equal(t, demoProgramID, addr.String())

	ix, ok := idl.Instruction("create_token")
	require.True(t, ok)
	assert.Equal(t, [8]byte{84, 52, 204, 228, 24, 140, 234, 75}, ix.DiscriminatorBytes())
	assert.True(t, ix.Accounts[0].Writable)
	assert.False(t, ix.Accounts[0].Signer)
	assert.True(t, ix.Accounts[1].Signer)

	acc, ok := idl.Account("ProgramState")
	require.True(t, ok)
	assert.Equal(t, anchor.AccountDiscriminator("ProgramState"), acc.DiscriminatorBytes())
}

func TestParseIDLInvalid(t *testing.T) {
	_, err := anchor.ParseIDL([]byte(`{`))
	require.Error(t, err)

	_, err = anchor.ParseIDL([]byte(`{"instructions": []}`))
	require.Error(t, err)

	_, err = anchor.ParseIDL([]byte(`{"metadata": {"name": "x"}, "instructions": [{"name": "a", "discriminator": [1, 2], "accounts": [], "args": []}]}`))
	require.Error(t, err)

	_, err = anchor.ParseIDL([]byte(`{"metadata": {"name": "x"}, "instructions": [{"name": "a", "discriminator": [1, 2, 3, 4, 5, 6, 7, 300], "accounts": [], "args": []}]}`))
	require.Error(t, err)
}

func TestLoadIDLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo_program.json")
	require.NoError(t, os.WriteFile(path, []byte(demoIDL), 0o600))

	idl, err := anchor.LoadIDLFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo_program", idl.ProgramName())

	_, err = anchor.LoadIDLFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestDiscriminators(t *testing.T) {
	assert.Equal(t, [8]byte{175, 175, 109, 31, 13, 152, 155, 237}, anchor.InstructionDiscriminator("initialize"))
	assert.Equal(t, anchor.InstructionDiscriminator("sell_token"), anchor.InstructionDiscriminator("sellToken"))
	assert.Equal(t, [8]byte{109, 61, 40, 187, 230, 176, 135, 174}, anchor.InstructionDiscriminator("sell_token"))
	assert.Equal(t, [8]byte{77, 209, 137, 229, 149, 67, 167, 230}, anchor.AccountDiscriminator("ProgramState"))
}
