package anchor

import (
	"encoding/json"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"
)

// U128 is a little endian Borsh u128.
type U128 struct {
	Lo uint64
	Hi uint64
}

var maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// U128FromBig converts v, failing for negative values or values above 2^128-1.
func U128FromBig(v *big.Int) (U128, error) {
	if v.Sign() < 0 || v.Cmp(maxU128) > 0 {
		return U128{}, errors.Errorf("value %s does not fit into u128", v)
	}

	lo := new(big.Int).And(v, new(big.Int).SetUint64(^uint64(0)))
	hi := new(big.Int).Rsh(v, 64)

	return U128{Lo: lo.Uint64(), Hi: hi.Uint64()}, nil
}

func (u U128) BigInt() *big.Int {
	v := new(big.Int).SetUint64(u.Hi)
	v.Lsh(v, 64)

	return v.Or(v, new(big.Int).SetUint64(u.Lo))
}

func (u U128) String() string {
	return u.BigInt().String()
}

func (u U128) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u U128) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteUint64(u.Lo, bin.LE); err != nil {
		return err
	}

	return enc.WriteUint64(u.Hi, bin.LE)
}

func (u *U128) UnmarshalWithDecoder(dec *bin.Decoder) error {
	lo, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return errors.Wrap(err, "failed to read u128 low half")
	}

	hi, err := dec.ReadUint64(bin.LE)
	if err != nil {
		return errors.Wrap(err, "failed to read u128 high half")
	}

	u.Lo, u.Hi = lo, hi

	return nil
}
