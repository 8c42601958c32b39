// Package boomerfun is the typed client of the IaoSolana token launch
// program: program state, bonding curve quotes and the four instructions.
package boomerfun

import (
	_ "embed"

	"github.com/gagliardetto/solana-go"
	"github/chapool/iao-solana/internal/anchor"
)

const (
	ProgramName   = "iao_solana"
	WorkspaceName = "IaoSolana"

	InstructionInitialize    = "initialize"
	InstructionCreateToken   = "create_token"
	InstructionPurchaseToken = "purchase_token"
	InstructionSellToken     = "sell_token"

	AccountProgramState = "ProgramState"

	// StateAccountSpace is the size initialize allocates for ProgramState:
	// discriminator, two u64 and the in-memory size of the tokens Vec.
	StateAccountSpace = 8 + 8 + 8 + 24
)

var ProgramID = solana.MustPublicKeyFromBase58("D7dQejiULpCMewkTHH4nTYNEhSEMwWyYdczQ9HKqdsaE")

//go:embed idl/iao_solana.json
var idlJSON []byte

var builtinIDL *anchor.IDL

func init() {
	idl, err := anchor.RegisterIDL(idlJSON)
	if err != nil {
		panic("boomerfun: embedded IDL is invalid: " + err.Error())
	}
	builtinIDL = idl
}

// IDL returns the embedded program descriptor.
func IDL() *anchor.IDL {
	return builtinIDL
}

// IDLJSON returns a copy of the embedded descriptor as generated by anchor build.
func IDLJSON() []byte {
	return append([]byte(nil), idlJSON...)
}
