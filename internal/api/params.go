package api

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/boomerfun"
)

// ParsePublicKey parses a base58 request field. Empty optional fields yield the zero key.
func ParsePublicKey(field string, value string, required bool) (solana.PublicKey, error) {
	if value == "" {
		if required {
			return solana.PublicKey{}, errors.Wrapf(boomerfun.ErrInvalidParams, "%s is required", field)
		}
		return solana.PublicKey{}, nil
	}

	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, errors.Wrapf(boomerfun.ErrInvalidParams, "%s is not a valid public key", field)
	}

	return key, nil
}

// ResolveStateAddress returns the state account named by a request or the server default.
func (s *Server) ResolveStateAddress(value string) (solana.PublicKey, error) {
	if value != "" {
		return ParsePublicKey("state", value, true)
	}

	return s.StateAddress()
}

// TradeAccountsInput holds the base58 token accounts of a trade request.
// Empty user accounts are derived from the wallet.
type TradeAccountsInput struct {
	UserCurrency    string `json:"userCurrency"`
	VaultCurrency   string `json:"vaultCurrency"`
	UserAgentToken  string `json:"userAgentToken"`
	VaultAgentToken string `json:"vaultAgentToken"`
	VaultAuthority  string `json:"vaultAuthority"`
	CurrencyMint    string `json:"currencyMint"`
}

// Resolve parses the accounts. prefix is prepended to field names in errors.
func (in TradeAccountsInput) Resolve(prefix string) (boomerfun.TradeAccounts, error) {
	var accounts boomerfun.TradeAccounts

	fields := []struct {
		name     string
		value    string
		required bool
		dst      *solana.PublicKey
	}{
		{"userCurrency", in.UserCurrency, false, &accounts.UserCurrency},
		{"vaultCurrency", in.VaultCurrency, true, &accounts.VaultCurrency},
		{"userAgentToken", in.UserAgentToken, false, &accounts.UserAgentToken},
		{"vaultAgentToken", in.VaultAgentToken, true, &accounts.VaultAgentToken},
		{"vaultAuthority", in.VaultAuthority, true, &accounts.VaultAuthority},
		{"currencyMint", in.CurrencyMint, false, &accounts.CurrencyMint},
	}

	for _, f := range fields {
		key, err := ParsePublicKey(prefix+f.name, f.value, f.required)
		if err != nil {
			return accounts, err
		}
		*f.dst = key
	}

	if accounts.UserCurrency.IsZero() && accounts.CurrencyMint.IsZero() {
		return accounts, errors.Wrapf(boomerfun.ErrInvalidParams, "%suserCurrency or %scurrencyMint is required", prefix, prefix)
	}

	return accounts, nil
}
