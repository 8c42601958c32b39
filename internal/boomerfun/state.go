package boomerfun

import (
	"bytes"
	"unicode/utf8"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/anchor"
)

// ProgramState is the single account created by initialize.
type ProgramState struct {
	TokenCount        uint64      `json:"tokenCount"`
	TotalFeeCollected uint64      `json:"totalFeeCollected"`
	Tokens            []TokenInfo `json:"tokens"`
}

// TokenInfo is one launched token. TokenSold is a u128 on chain.
type TokenInfo struct {
	Mint              solana.PublicKey `json:"mint"`
	Name              string           `json:"name"`
	Symbol            string           `json:"symbol"`
	Creator           solana.PublicKey `json:"creator"`
	TokenSold         anchor.U128      `json:"tokenSold"`
	CurrencyCollected uint64           `json:"currencyCollected"`
	IsDexPhase        bool             `json:"isDexPhase"`
}

// Token returns the token with id, checking against the stored tokens
// rather than TokenCount, which starts at 1 and runs one ahead.
func (s *ProgramState) Token(id uint64) (*TokenInfo, error) {
	if id >= uint64(len(s.Tokens)) {
		return nil, errors.Wrapf(ErrInvalidTokenID, "token %d (known tokens: %d)", id, len(s.Tokens))
	}

	return &s.Tokens[id], nil
}

// Size is the Borsh encoded size without discriminator.
func (s *ProgramState) Size() int {
	size := 8 + 8 + 4
	for i := range s.Tokens {
		size += s.Tokens[i].Size()
	}

	return size
}

func (t *TokenInfo) Size() int {
	return solana.PublicKeyLength + 4 + len(t.Name) + 4 + len(t.Symbol) + solana.PublicKeyLength + 16 + 8 + 1
}

func (s *ProgramState) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if s.TokenCount, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(err, "token_count")
	}
	if s.TotalFeeCollected, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(err, "total_fee_collected")
	}

	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return errors.Wrap(err, "tokens length")
	}
	if int(n) > dec.Remaining() {
		return errors.Errorf("tokens length %d exceeds account data", n)
	}

	s.Tokens = make([]TokenInfo, n)
	for i := range s.Tokens {
		if err := s.Tokens[i].UnmarshalWithDecoder(dec); err != nil {
			return errors.Wrapf(err, "tokens[%d]", i)
		}
	}

	return nil
}

func (s ProgramState) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint64(s.TokenCount, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(s.TotalFeeCollected, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(s.Tokens)), bin.LE); err != nil { //nolint:gosec // bounded by account size
		return err
	}
	for i := range s.Tokens {
		if err := s.Tokens[i].MarshalWithEncoder(enc); err != nil {
			return err
		}
	}

	return nil
}

func (t *TokenInfo) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if t.Mint, err = readPublicKey(dec); err != nil {
		return errors.Wrap(err, "mint")
	}
	if t.Name, err = readString(dec); err != nil {
		return errors.Wrap(err, "name")
	}
	if t.Symbol, err = readString(dec); err != nil {
		return errors.Wrap(err, "symbol")
	}
	if t.Creator, err = readPublicKey(dec); err != nil {
		return errors.Wrap(err, "creator")
	}
	if err = t.TokenSold.UnmarshalWithDecoder(dec); err != nil {
		return errors.Wrap(err, "token_sold")
	}
	if t.CurrencyCollected, err = dec.ReadUint64(bin.LE); err != nil {
		return errors.Wrap(err, "currency_collected")
	}
	if t.IsDexPhase, err = dec.ReadBool(); err != nil {
		return errors.Wrap(err, "is_dex_phase")
	}

	return nil
}

func (t TokenInfo) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(t.Mint[:], false); err != nil {
		return err
	}
	if err := writeString(enc, t.Name); err != nil {
		return err
	}
	if err := writeString(enc, t.Symbol); err != nil {
		return err
	}
	if err := enc.WriteBytes(t.Creator[:], false); err != nil {
		return err
	}
	if err := t.TokenSold.MarshalWithEncoder(enc); err != nil {
		return err
	}
	if err := enc.WriteUint64(t.CurrencyCollected, bin.LE); err != nil {
		return err
	}

	return enc.WriteBool(t.IsDexPhase)
}

// EncodeAccount returns discriminator + Borsh encoding, the raw account data layout.
func (s *ProgramState) EncodeAccount() ([]byte, error) {
	buf := new(bytes.Buffer)

	disc := anchor.AccountDiscriminator(AccountProgramState)
	buf.Write(disc[:])

	if err := s.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, errors.Wrap(err, "failed to encode program state")
	}

	return buf.Bytes(), nil
}

func readPublicKey(dec *bin.Decoder) (solana.PublicKey, error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}

	return solana.PublicKeyFromBytes(raw), nil
}

func readString(dec *bin.Decoder) (string, error) {
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return "", err
	}
	if int(n) > dec.Remaining() {
		return "", errors.Errorf("string length %d exceeds account data", n)
	}

	raw, err := dec.ReadNBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errors.New("string is not valid utf-8")
	}

	return string(raw), nil
}

func writeString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), bin.LE); err != nil { //nolint:gosec // bounded by account size
		return err
	}

	return enc.WriteBytes([]byte(s), false)
}
