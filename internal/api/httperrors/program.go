package httperrors

import (
	"context"
	"errors"
	"strconv"

	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
	"github/chapool/iao-solana/internal/chain"
	"github/chapool/iao-solana/internal/i18n"
	"github/chapool/iao-solana/internal/ledger"
)

// FromError maps client and program errors onto HTTP errors. Unknown errors
// are returned unchanged and end up as 500.
func FromError(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	switch {
	case errors.Is(err, boomerfun.ErrInvalidTokenID):
		return ErrUnprocessableInvalidTokenID.Wrap(err)
	case errors.Is(err, boomerfun.ErrAlreadyInDexPhase):
		return ErrUnprocessableDexPhase.Wrap(err)
	case errors.Is(err, boomerfun.ErrInvalidAmount):
		return ErrUnprocessableInvalidAmount.Wrap(err)
	case errors.Is(err, boomerfun.ErrStateAccountTooSmall):
		return ErrUnprocessableStateTooSmall.Wrap(err)
	case errors.Is(err, boomerfun.ErrCurveArithmetic):
		return ErrUnprocessableCurveArithmetic.Wrap(err)
	case errors.Is(err, boomerfun.ErrInvalidParams):
		return ErrBadRequestInvalidParams.WithDetail(err.Error()).WithMessage("InvalidParams", i18n.Data{"Reason": err.Error()}).Wrap(err)
	case errors.Is(err, chain.ErrAccountNotFound),
		errors.Is(err, anchor.ErrAccountOwnerMismatch),
		errors.Is(err, anchor.ErrDiscriminatorMismatch):
		return ErrNotFoundProgramState.WithDetail(err.Error()).Wrap(err)
	case errors.Is(err, api.ErrProgramStateNotConfigured):
		return ErrBadRequestStateNotConfigured.Wrap(err)
	case errors.Is(err, ledger.ErrNotFound):
		return ErrNotFoundTransaction.Wrap(err)
	case errors.Is(err, anchor.ErrBlockhashExpired):
		return ErrConflictBlockhashExpired.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return ErrGatewayTimeoutConfirmation.Wrap(err)
	case errors.Is(err, chain.ErrNodesUnavailable):
		return ErrBadGatewayRPCUnavailable.Wrap(err)
	}

	var pe *anchor.ProgramError
	if errors.As(err, &pe) {
		e := ErrUnprocessableProgramRejection.WithDetail(pe.Error()).
			WithMessage("ProgramErrorCustom", i18n.Data{"Code": strconv.FormatUint(uint64(pe.Code), 10)})
		return e.Wrap(err)
	}

	return err
}
