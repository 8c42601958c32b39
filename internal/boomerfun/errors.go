package boomerfun

import (
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/anchor"
)

// Custom error codes of the program.
const (
	ErrCodeInvalidTokenID    uint32 = 6000
	ErrCodeAlreadyInDexPhase uint32 = 6001
	ErrCodeInvalidAmount     uint32 = 6002
)

var (
	ErrInvalidTokenID       = errors.New("Invalid token ID")     //nolint:stylecheck // mirrors the on-chain message
	ErrAlreadyInDexPhase    = errors.New("Already in DEX phase") //nolint:stylecheck // mirrors the on-chain message
	ErrInvalidAmount        = errors.New("Invalid amount")       //nolint:stylecheck // mirrors the on-chain message
	ErrCurveArithmetic      = errors.New("bonding curve arithmetic overflow or underflow")
	ErrStateAccountTooSmall = errors.New("program state account is too small for the new token")
	ErrInvalidParams        = errors.New("invalid parameters")
)

var codeErrors = map[uint32]error{
	ErrCodeInvalidTokenID:    ErrInvalidTokenID,
	ErrCodeAlreadyInDexPhase: ErrAlreadyInDexPhase,
	ErrCodeInvalidAmount:     ErrInvalidAmount,
}

// programError wraps an on-chain failure so errors.Is works with the
// client side sentinels as well as with *anchor.ProgramError.
type programError struct {
	*anchor.ProgramError
	sentinel error
}

func (e *programError) Unwrap() []error {
	return []error{e.ProgramError, e.sentinel}
}

// translateError maps custom program codes onto the package sentinels.
func translateError(err error) error {
	var pe *anchor.ProgramError
	if !errors.As(err, &pe) {
		return err
	}

	sentinel, ok := codeErrors[pe.Code]
	if !ok {
		return err
	}

	return &programError{ProgramError: pe, sentinel: sentinel}
}

// ErrorCode returns the custom program error code contained in err.
func ErrorCode(err error) (uint32, bool) {
	return anchor.ExtractErrorCode(err)
}
