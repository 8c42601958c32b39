package anchor

import (
	"encoding/json"
	"os"
	"strings"
	"unicode"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// IDL is an Anchor interface descriptor. Both the current layout
// (`address`, `writable`, `signer`, explicit discriminators) and the legacy
// layout (`isMut`, `isSigner`, `metadata.address`) are understood.
type IDL struct {
	Address      string           `json:"address,omitempty"`
	Name         string           `json:"name,omitempty"`
	Version      string           `json:"version,omitempty"`
	Metadata     IDLMetadata      `json:"metadata"`
	Instructions []IDLInstruction `json:"instructions"`
	Accounts     []IDLAccountDef  `json:"accounts,omitempty"`
	Errors       []IDLErrorCode   `json:"errors,omitempty"`
	Types        json.RawMessage  `json:"types,omitempty"`
}

type IDLMetadata struct {
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	Spec        string `json:"spec,omitempty"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
}

type IDLInstruction struct {
	Name          string                  `json:"name"`
	Discriminator []int                   `json:"discriminator,omitempty"`
	Accounts      []IDLInstructionAccount `json:"accounts"`
	Args          []IDLField              `json:"args"`

	disc [DiscriminatorLength]byte
}

type IDLInstructionAccount struct {
	Name     string `json:"name"`
	Writable bool   `json:"writable,omitempty"`
	Signer   bool   `json:"signer,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Address  string `json:"address,omitempty"`
	IsMut    bool   `json:"isMut,omitempty"`
	IsSigner bool   `json:"isSigner,omitempty"`
}

type IDLField struct {
	Name string          `json:"name"`
	Type json.RawMessage `json:"type"`
}

type IDLAccountDef struct {
	Name          string `json:"name"`
	Discriminator []int  `json:"discriminator,omitempty"`

	disc [DiscriminatorLength]byte
}

type IDLErrorCode struct {
	Code uint32 `json:"code"`
	Name string `json:"name"`
	Msg  string `json:"msg,omitempty"`
}

// ParseIDL decodes and normalizes an IDL document.
func ParseIDL(raw []byte) (*IDL, error) {
	var idl IDL
	if err := json.Unmarshal(raw, &idl); err != nil {
		return nil, errors.Wrap(err, "failed to decode IDL")
	}

	if err := idl.normalize(); err != nil {
		return nil, err
	}

	return &idl, nil
}

// LoadIDLFile reads an IDL from disk.
func LoadIDLFile(path string) (*IDL, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read IDL %s", path)
	}

	idl, err := ParseIDL(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid IDL %s", path)
	}

	return idl, nil
}

// ProgramName is the snake_case crate name of the program.
func (idl *IDL) ProgramName() string {
	if idl.Metadata.Name != "" {
		return idl.Metadata.Name
	}

	return snakeCase(idl.Name)
}

// ProgramAddress returns the address declared in the IDL, if any.
func (idl *IDL) ProgramAddress() (solana.PublicKey, bool) {
	addr := idl.Address
	if addr == "" {
		addr = idl.Metadata.Address
	}

	if addr == "" {
		return solana.PublicKey{}, false
	}

	key, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return solana.PublicKey{}, false
	}

	return key, true
}

// Instruction looks an instruction up by snake_case or camelCase name.
func (idl *IDL) Instruction(name string) (*IDLInstruction, bool) {
	want := snakeCase(name)
	for i := range idl.Instructions {
		if snakeCase(idl.Instructions[i].Name) == want {
			return &idl.Instructions[i], true
		}
	}

	return nil, false
}

// Account looks an account type up by name.
func (idl *IDL) Account(name string) (*IDLAccountDef, bool) {
	for i := range idl.Accounts {
		if idl.Accounts[i].Name == name {
			return &idl.Accounts[i], true
		}
	}

	return nil, false
}

// Discriminator of the instruction.
func (ix *IDLInstruction) DiscriminatorBytes() [DiscriminatorLength]byte {
	return ix.disc
}

// Discriminator of the account type.
func (a *IDLAccountDef) DiscriminatorBytes() [DiscriminatorLength]byte {
	return a.disc
}

func (idl *IDL) normalize() error {
	if idl.ProgramName() == "" {
		return errors.New("IDL has no program name")
	}

	for i := range idl.Instructions {
		ix := &idl.Instructions[i]

		disc, err := discriminatorFromIDL(ix.Discriminator)
		if err != nil {
			return errors.Wrapf(err, "instruction %s", ix.Name)
		}
		if disc == nil {
			computed := InstructionDiscriminator(ix.Name)
			disc = computed[:]
		}
		copy(ix.disc[:], disc)

		for j := range ix.Accounts {
			acc := &ix.Accounts[j]
			acc.Writable = acc.Writable || acc.IsMut
			acc.Signer = acc.Signer || acc.IsSigner
		}
	}

	for i := range idl.Accounts {
		acc := &idl.Accounts[i]

		disc, err := discriminatorFromIDL(acc.Discriminator)
		if err != nil {
			return errors.Wrapf(err, "account %s", acc.Name)
		}
		if disc == nil {
			computed := AccountDiscriminator(acc.Name)
			disc = computed[:]
		}
		copy(acc.disc[:], disc)
	}

	return nil
}

func discriminatorFromIDL(values []int) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}

	if len(values) != DiscriminatorLength {
		return nil, errors.Errorf("discriminator must be %d bytes, got %d", DiscriminatorLength, len(values))
	}

	out := make([]byte, DiscriminatorLength)
	for i, v := range values {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("discriminator byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}

	return out, nil
}

// snakeCase converts camelCase / PascalCase to snake_case. Names already in
// snake_case pass through unchanged.
func snakeCase(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && runes[i-1] != '_' && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
