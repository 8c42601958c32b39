package tokens

import (
	"github/chapool/iao-solana/internal/api"
	"github/chapool/iao-solana/internal/boomerfun"
)

type tokenPathParams struct {
	TokenID uint64 `param:"id"`
}

func (p *tokenPathParams) Validate() error {
	return nil
}

type tradePayload struct {
	State    string                 `json:"state"`
	Amount   uint64                 `json:"amount"`
	Accounts api.TradeAccountsInput `json:"accounts"`
}

// Validate leaves amount checks to the program rules: purchases of zero are
// allowed, sales of zero fail with InvalidAmount.
func (p *tradePayload) Validate() error {
	return nil
}

// params turns the payload into client parameters for token id.
func (p *tradePayload) params(s *api.Server, tokenID uint64) (boomerfun.TradeParams, error) {
	state, err := s.ResolveStateAddress(p.State)
	if err != nil {
		return boomerfun.TradeParams{}, err
	}

	accounts, err := p.Accounts.Resolve("accounts.")
	if err != nil {
		return boomerfun.TradeParams{}, err
	}

	return boomerfun.TradeParams{
		State:    state,
		TokenID:  tokenID,
		Amount:   p.Amount,
		Accounts: accounts,
	}, nil
}
