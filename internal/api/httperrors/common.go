package httperrors

import (
	"net/http"
)

const (
	TypeGeneric              = "generic"
	TypeInvalidParams        = "INVALID_PARAMS"
	TypeInvalidTokenID       = "INVALID_TOKEN_ID"
	TypeAlreadyInDexPhase    = "ALREADY_IN_DEX_PHASE"
	TypeInvalidAmount        = "INVALID_AMOUNT"
	TypeProgramError         = "PROGRAM_ERROR"
	TypeStateAccountTooSmall = "STATE_ACCOUNT_TOO_SMALL"
	TypeCurveArithmetic      = "CURVE_ARITHMETIC"
	TypeStateNotConfigured   = "PROGRAM_STATE_NOT_CONFIGURED"
	TypeStateNotFound        = "PROGRAM_STATE_NOT_FOUND"
	TypeTransactionNotFound  = "TRANSACTION_NOT_FOUND"
	TypeConfirmationTimeout  = "CONFIRMATION_TIMEOUT"
	TypeBlockhashExpired     = "BLOCKHASH_EXPIRED"
	TypeRPCUnavailable       = "RPC_UNAVAILABLE"
)

var (
	ErrBadRequestInvalidParams       = NewHTTPError(http.StatusBadRequest, TypeInvalidParams, "Invalid parameters.")
	ErrBadRequestStateNotConfigured  = NewHTTPError(http.StatusBadRequest, TypeStateNotConfigured, "No program state account is configured.").WithMessage("ProgramStateNotConfigured")
	ErrNotFoundProgramState          = NewHTTPError(http.StatusNotFound, TypeStateNotFound, "The program state account does not exist.").WithMessage("ProgramStateNotFound")
	ErrNotFoundTransaction           = NewHTTPError(http.StatusNotFound, TypeTransactionNotFound, "Transaction not found.")
	ErrGatewayTimeoutConfirmation    = NewHTTPError(http.StatusGatewayTimeout, TypeConfirmationTimeout, "The transaction was not confirmed in time.").WithMessage("ConfirmationTimeout")
	ErrConflictBlockhashExpired      = NewHTTPError(http.StatusConflict, TypeBlockhashExpired, "The transaction expired before it was confirmed.").WithMessage("BlockhashExpired")
	ErrBadGatewayRPCUnavailable      = NewHTTPError(http.StatusBadGateway, TypeRPCUnavailable, "The Solana cluster is not reachable.").WithMessage("RPCUnavailable")
	ErrUnprocessableInvalidTokenID   = NewHTTPError(http.StatusUnprocessableEntity, TypeInvalidTokenID, "Invalid token ID").WithMessage("ProgramErrorInvalidTokenId")
	ErrUnprocessableDexPhase         = NewHTTPError(http.StatusUnprocessableEntity, TypeAlreadyInDexPhase, "Already in DEX phase").WithMessage("ProgramErrorAlreadyInDexPhase")
	ErrUnprocessableInvalidAmount    = NewHTTPError(http.StatusUnprocessableEntity, TypeInvalidAmount, "Invalid amount").WithMessage("ProgramErrorInvalidAmount")
	ErrUnprocessableStateTooSmall    = NewHTTPError(http.StatusUnprocessableEntity, TypeStateAccountTooSmall, "The program state account has no room for another token.").WithMessage("StateAccountTooSmall")
	ErrUnprocessableCurveArithmetic  = NewHTTPError(http.StatusUnprocessableEntity, TypeCurveArithmetic, "The bonding curve cannot price this trade.").WithMessage("CurveArithmetic")
	ErrUnprocessableProgramRejection = NewHTTPError(http.StatusUnprocessableEntity, TypeProgramError, "The program rejected the transaction.")
)
