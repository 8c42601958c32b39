package anchor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/signer"
)

var (
	ErrProgramNotFound       = errors.New("program not found in workspace")
	ErrInstructionNotFound   = errors.New("instruction not found in IDL")
	ErrAccountTypeNotFound   = errors.New("account type not found in IDL")
	ErrMissingAccount        = errors.New("missing instruction account")
	ErrArgumentCount         = errors.New("wrong number of instruction arguments")
	ErrDiscriminatorMismatch = errors.New("account discriminator mismatch")
	ErrAccountOwnerMismatch  = errors.New("account is not owned by program")
	ErrBlockhashExpired      = errors.New("blockhash expired before the transaction was confirmed")
	ErrWalletNotConfigured   = signer.ErrWalletNotConfigured
	ErrProviderURLMissing    = errors.New("ANCHOR_PROVIDER_URL is not defined")
)

// ProgramError is a custom error code returned by an on-chain program,
// resolved against the program IDL or the Anchor framework codes.
type ProgramError struct {
	Code      uint32
	Name      string
	Msg       string
	Signature solana.Signature
}

func (e *ProgramError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("custom program error: %#x", e.Code)
	}

	return fmt.Sprintf("AnchorError occurred. Error Code: %s. Error Number: %d. Error Message: %s.", e.Name, e.Code, e.Msg)
}

// TransactionError is a transaction that landed but failed.
type TransactionError struct {
	Signature solana.Signature
	Err       any
}

func (e *TransactionError) Error() string {
	raw, err := json.Marshal(e.Err)
	if err != nil {
		raw = []byte(fmt.Sprint(e.Err))
	}

	return fmt.Sprintf("transaction %s failed: %s", e.Signature, raw)
}

// frameworkErrors is the subset of Anchor's own error codes a client is
// likely to run into when the program and the client disagree.
var frameworkErrors = map[uint32]IDLErrorCode{
	100:  {Code: 100, Name: "InstructionMissing", Msg: "8 byte instruction identifier not provided"},
	101:  {Code: 101, Name: "InstructionFallbackNotFound", Msg: "Fallback functions are not supported"},
	102:  {Code: 102, Name: "InstructionDidNotDeserialize", Msg: "The program could not deserialize the given instruction"},
	103:  {Code: 103, Name: "InstructionDidNotSerialize", Msg: "The program could not serialize the given instruction"},
	2000: {Code: 2000, Name: "ConstraintMut", Msg: "A mut constraint was violated"},
	2001: {Code: 2001, Name: "ConstraintHasOne", Msg: "A has one constraint was violated"},
	2002: {Code: 2002, Name: "ConstraintSigner", Msg: "A signer constraint was violated"},
	3000: {Code: 3000, Name: "AccountDiscriminatorAlreadySet", Msg: "The account discriminator was already set on this account"},
	3001: {Code: 3001, Name: "AccountDiscriminatorNotFound", Msg: "No 8 byte discriminator was found on the account"},
	3002: {Code: 3002, Name: "AccountDiscriminatorMismatch", Msg: "8 byte discriminator did not match what was expected"},
	3003: {Code: 3003, Name: "AccountDidNotDeserialize", Msg: "Failed to deserialize the account"},
	3004: {Code: 3004, Name: "AccountDidNotSerialize", Msg: "Failed to serialize the account"},
	3005: {Code: 3005, Name: "AccountNotEnoughKeys", Msg: "Not enough account keys given to the instruction"},
	3006: {Code: 3006, Name: "AccountNotMutable", Msg: "The given account is not mutable"},
	3007: {Code: 3007, Name: "AccountOwnedByWrongProgram", Msg: "The given account is owned by a different program than expected"},
	3010: {Code: 3010, Name: "AccountNotSigner", Msg: "The given account did not sign"},
	3011: {Code: 3011, Name: "AccountNotSystemOwned", Msg: "The given account is not owned by the system program"},
	3012: {Code: 3012, Name: "AccountNotInitialized", Msg: "The program expected this account to be already initialized"},
}

var customErrorRe = regexp.MustCompile(`custom program error: 0x([0-9a-fA-F]+)`)

// ExtractErrorCode finds a custom program error code in err, either in a
// failed transaction status or in a preflight simulation message.
func ExtractErrorCode(err error) (uint32, bool) {
	if err == nil {
		return 0, false
	}

	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe.Code, true
	}

	var txErr *TransactionError
	if errors.As(err, &txErr) {
		if code, ok := customCodeFromStatus(txErr.Err); ok {
			return code, true
		}
	}

	m := customErrorRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}

	code, perr := strconv.ParseUint(m[1], 16, 32)
	if perr != nil {
		return 0, false
	}

	return uint32(code), true
}

// customCodeFromStatus reads {"InstructionError":[idx,{"Custom":code}]}.
func customCodeFromStatus(status any) (uint32, bool) {
	obj, ok := status.(map[string]any)
	if !ok {
		return 0, false
	}

	pair, ok := obj["InstructionError"].([]any)
	if !ok || len(pair) != 2 {
		return 0, false
	}

	detail, ok := pair[1].(map[string]any)
	if !ok {
		return 0, false
	}

	return toUint32(detail["Custom"])
}

func toUint32(v any) (uint32, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 || n > float64(^uint32(0)) {
			return 0, false
		}
		return uint32(n), true
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 32)
		return uint32(u), err == nil
	case int:
		return uint32(n), n >= 0
	case int64:
		return uint32(n), n >= 0
	case uint32:
		return n, true
	case uint64:
		return uint32(n), n <= uint64(^uint32(0))
	default:
		return 0, false
	}
}

func lookupError(code uint32, table map[uint32]IDLErrorCode) *ProgramError {
	if e, ok := table[code]; ok {
		return &ProgramError{Code: code, Name: e.Name, Msg: e.Msg}
	}

	if e, ok := frameworkErrors[code]; ok {
		return &ProgramError{Code: code, Name: e.Name, Msg: e.Msg}
	}

	return &ProgramError{Code: code}
}
