package boomerfun

import (
	"math/big"

	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/anchor"
)

// Curve parameters as deployed.
const (
	CurveA          = 1073000191
	CurveB          = 32190005730
	PlatformFeeBP   = 50
	DexFeeBP        = 50
	basisPointScale = 10000
	curveDivisor    = 3000
)

var (
	e18               = pow10(18)
	e30               = pow10(30)
	curveOffset       = new(big.Int).Mul(big.NewInt(3), pow10(22))
	scaledA           = new(big.Int).Mul(big.NewInt(CurveA), e18)
	scaledB           = new(big.Int).Mul(big.NewInt(CurveB), e30)
	maxU64            = new(big.Int).SetUint64(^uint64(0))
	progressThreshold = new(big.Int).Mul(big.NewInt(263300), e18)
)

// ProgressThreshold is the collected currency at which a token switches to
// the DEX phase (263300·10^18). CurrencyCollected is a u64, so it is never reached.
func ProgressThreshold() *big.Int {
	return new(big.Int).Set(progressThreshold)
}

// PurchaseQuote is the outcome of purchase_token for a token in its current state.
// The program books TokenAmount but transfers only its low 64 bits; Truncated
// reports when the two differ.
type PurchaseQuote struct {
	TokenID                uint64      `json:"tokenId"`
	CurrencyAmount         uint64      `json:"currencyAmount"`
	Fee                    uint64      `json:"fee"`
	NetFunds               uint64      `json:"netFunds"`
	TokenAmount            anchor.U128 `json:"tokenAmount"`
	TokenAmountTransferred uint64      `json:"tokenAmountTransferred"`
	Truncated              bool        `json:"truncated"`
	NewTokenSold           anchor.U128 `json:"newTokenSold"`
	NewCurrencyCollected   uint64      `json:"newCurrencyCollected"`
	ReachesDexPhase        bool        `json:"reachesDexPhase"`
}

// SellQuote is the outcome of sell_token for a token in its current state.
type SellQuote struct {
	TokenID                  uint64      `json:"tokenId"`
	SellAmount               uint64      `json:"sellAmount"`
	CurrencyToPay            anchor.U128 `json:"currencyToPay"`
	CurrencyToPayTransferred uint64      `json:"currencyToPayTransferred"`
	Truncated                bool        `json:"truncated"`
	Fee                      uint64      `json:"fee"`
	NetPayout                uint64      `json:"netPayout"`
	NewTokenSold             anchor.U128 `json:"newTokenSold"`
	NewCurrencyCollected     uint64      `json:"newCurrencyCollected"`
}

// Fee is the platform fee in basis points, rounded down.
func Fee(amount uint64) uint64 {
	fee := new(big.Int).Mul(new(big.Int).SetUint64(amount), big.NewInt(PlatformFeeBP))
	return fee.Div(fee, big.NewInt(basisPointScale)).Uint64()
}

// QuotePurchase reproduces purchase_token:
//
//	fee = amount·50/10000, net = amount - fee
//	y2  = A·10^18 - B·10^30 / (3·10^22 + (collected + net)/3000)
//	tokens = y2 - sold
func QuotePurchase(tokenID uint64, token TokenInfo, amount uint64) (*PurchaseQuote, error) {
	if token.IsDexPhase {
		return nil, errors.Wrapf(ErrAlreadyInDexPhase, "token %d", tokenID)
	}

	fee := Fee(amount)
	net := amount - fee

	x1 := new(big.Int).SetUint64(token.CurrencyCollected)
	x1.Add(x1, new(big.Int).SetUint64(net))
	den := x1.Quo(x1, big.NewInt(curveDivisor))
	den.Add(den, curveOffset)

	y2 := new(big.Int).Quo(scaledB, den)
	y2.Sub(scaledA, y2)
	if y2.Sign() < 0 {
		return nil, errors.Wrap(ErrCurveArithmetic, "curve supply below zero")
	}

	sold := token.TokenSold.BigInt()
	tokens := new(big.Int).Sub(y2, sold)
	if tokens.Sign() < 0 {
		return nil, errors.Wrapf(ErrCurveArithmetic, "curve supply %s below tokens sold %s", y2, sold)
	}

	tokenAmount, err := anchor.U128FromBig(tokens)
	if err != nil {
		return nil, errors.Wrap(ErrCurveArithmetic, err.Error())
	}

	newSold, err := anchor.U128FromBig(new(big.Int).Add(sold, tokens))
	if err != nil {
		return nil, errors.Wrap(ErrCurveArithmetic, "tokens sold overflow u128")
	}

	if token.CurrencyCollected > ^uint64(0)-net {
		return nil, errors.Wrap(ErrCurveArithmetic, "currency collected overflows u64")
	}
	collected := token.CurrencyCollected + net

	return &PurchaseQuote{
		TokenID:                tokenID,
		CurrencyAmount:         amount,
		Fee:                    fee,
		NetFunds:               net,
		TokenAmount:            tokenAmount,
		TokenAmountTransferred: tokenAmount.Lo,
		Truncated:              tokens.Cmp(maxU64) > 0,
		NewTokenSold:           newSold,
		NewCurrencyCollected:   collected,
		ReachesDexPhase:        new(big.Int).SetUint64(collected).Cmp(progressThreshold) >= 0,
	}, nil
}

// QuoteSell reproduces sell_token:
//
//	y2 = sold - amount
//	x2 = (B·10^30 / (A·10^18 - y2) - 3·10^22)·3000
//	pay = collected - x2, fee = pay·50/10000 on the u64 truncated pay
func QuoteSell(tokenID uint64, token TokenInfo, amount uint64) (*SellQuote, error) {
	if token.IsDexPhase {
		return nil, errors.Wrapf(ErrAlreadyInDexPhase, "token %d", tokenID)
	}
	if amount == 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "sell amount must be greater than zero")
	}

	y2 := token.TokenSold.BigInt()
	y2.Sub(y2, new(big.Int).SetUint64(amount))
	if y2.Sign() < 0 {
		return nil, errors.Wrapf(ErrCurveArithmetic, "selling %d exceeds tokens sold %s", amount, token.TokenSold)
	}

	den := new(big.Int).Sub(scaledA, y2)
	if den.Sign() <= 0 {
		return nil, errors.Wrap(ErrCurveArithmetic, "tokens sold exceed curve supply")
	}

	x2 := new(big.Int).Quo(scaledB, den)
	x2.Sub(x2, curveOffset)
	if x2.Sign() < 0 {
		return nil, errors.Wrap(ErrCurveArithmetic, "curve reserve below offset")
	}
	x2.Mul(x2, big.NewInt(curveDivisor))

	pay := new(big.Int).SetUint64(token.CurrencyCollected)
	pay.Sub(pay, x2)
	if pay.Sign() < 0 {
		return nil, errors.Wrapf(ErrCurveArithmetic, "payout exceeds currency collected %d", token.CurrencyCollected)
	}

	currencyToPay, err := anchor.U128FromBig(pay)
	if err != nil {
		return nil, errors.Wrap(ErrCurveArithmetic, err.Error())
	}

	newSold, err := anchor.U128FromBig(y2)
	if err != nil {
		return nil, errors.Wrap(ErrCurveArithmetic, err.Error())
	}

	transferred := currencyToPay.Lo
	fee := Fee(transferred)

	// pay ≤ collected and collected is a u64, so x2 fits as well
	return &SellQuote{
		TokenID:                  tokenID,
		SellAmount:               amount,
		CurrencyToPay:            currencyToPay,
		CurrencyToPayTransferred: transferred,
		Truncated:                pay.Cmp(maxU64) > 0,
		Fee:                      fee,
		NetPayout:                transferred - fee,
		NewTokenSold:             newSold,
		NewCurrencyCollected:     x2.Uint64(),
	}, nil
}

// Apply books the purchase into token and state the way the program does.
func (q *PurchaseQuote) Apply(state *ProgramState) error {
	token, err := state.Token(q.TokenID)
	if err != nil {
		return err
	}

	if state.TotalFeeCollected > ^uint64(0)-q.Fee {
		return errors.Wrap(ErrCurveArithmetic, "total fee overflows u64")
	}

	state.TotalFeeCollected += q.Fee
	token.CurrencyCollected = q.NewCurrencyCollected
	token.TokenSold = q.NewTokenSold
	if q.ReachesDexPhase {
		token.IsDexPhase = true
	}

	return nil
}

// Apply books the sale into token and state the way the program does.
func (q *SellQuote) Apply(state *ProgramState) error {
	token, err := state.Token(q.TokenID)
	if err != nil {
		return err
	}

	if state.TotalFeeCollected > ^uint64(0)-q.Fee {
		return errors.Wrap(ErrCurveArithmetic, "total fee overflows u64")
	}

	state.TotalFeeCollected += q.Fee
	token.CurrencyCollected = q.NewCurrencyCollected
	token.TokenSold = q.NewTokenSold

	return nil
}

func pow10(n int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(n), nil)
}
