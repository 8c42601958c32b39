package anchor

import (
	"bytes"
	"context"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// Accounts maps instruction account names (snake_case or camelCase) to keys.
type Accounts map[string]solana.PublicKey

// Program is a handle to a deployed program described by an IDL.
type Program struct {
	idl      *IDL
	id       solana.PublicKey
	provider *Provider
	errors   map[uint32]IDLErrorCode
}

func NewProgram(idl *IDL, programID solana.PublicKey, provider *Provider) *Program {
	table := make(map[uint32]IDLErrorCode, len(idl.Errors))
	for _, e := range idl.Errors {
		table[e.Code] = e
	}

	return &Program{
		idl:      idl,
		id:       programID,
		provider: provider,
		errors:   table,
	}
}

func (p *Program) ID() solana.PublicKey {
	return p.id
}

func (p *Program) IDL() *IDL {
	return p.idl
}

func (p *Program) Provider() *Provider {
	return p.provider
}

// Methods starts building a call of the named instruction.
func (p *Program) Methods(name string) *MethodBuilder {
	b := &MethodBuilder{
		program:  p,
		name:     name,
		accounts: make(map[string]solana.PublicKey),
	}

	ix, ok := p.idl.Instruction(name)
	if !ok {
		b.err = errors.Wrapf(ErrInstructionNotFound, "%s.%s", p.idl.ProgramName(), name)
		return b
	}
	b.ix = ix

	return b
}

// ParseError resolves a custom program error code contained in err.
func (p *Program) ParseError(err error) (*ProgramError, bool) {
	code, ok := ExtractErrorCode(err)
	if !ok {
		return nil, false
	}

	pe := lookupError(code, p.errors)

	var txErr *TransactionError
	if errors.As(err, &txErr) {
		pe.Signature = txErr.Signature
	}

	return pe, true
}

// FetchAccount loads address, verifies owner and discriminator of the named
// account type and decodes the remaining bytes into dst.
func (p *Program) FetchAccount(ctx context.Context, accountName string, address solana.PublicKey, dst bin.BinaryUnmarshaler) error {
	info, err := p.provider.Connection.AccountInfo(ctx, address, p.provider.Opts.Commitment)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %s %s", accountName, address)
	}

	if !info.Owner.Equals(p.id) {
		return errors.Wrapf(ErrAccountOwnerMismatch, "%s is owned by %s, expected %s", address, info.Owner, p.id)
	}

	return p.DecodeAccount(accountName, info.Data.GetBinary(), dst)
}

// DecodeAccount verifies the discriminator of raw account data and decodes it.
func (p *Program) DecodeAccount(accountName string, data []byte, dst bin.BinaryUnmarshaler) error {
	def, ok := p.idl.Account(accountName)
	if !ok {
		return errors.Wrapf(ErrAccountTypeNotFound, "%s", accountName)
	}

	want := def.DiscriminatorBytes()
	if len(data) < DiscriminatorLength || !bytes.Equal(data[:DiscriminatorLength], want[:]) {
		return errors.Wrapf(ErrDiscriminatorMismatch, "account type %s", accountName)
	}

	if err := dst.UnmarshalWithDecoder(bin.NewBorshDecoder(data[DiscriminatorLength:])); err != nil {
		return errors.Wrapf(err, "failed to decode %s", accountName)
	}

	return nil
}

// MethodBuilder assembles a single instruction of a Program.
type MethodBuilder struct {
	program   *Program
	name      string
	ix        *IDLInstruction
	accounts  map[string]solana.PublicKey
	args      []any
	signers   []solana.PrivateKey
	remaining []*solana.AccountMeta
	err       error
}

func (b *MethodBuilder) Accounts(accounts Accounts) *MethodBuilder {
	for name, key := range accounts {
		b.accounts[snakeCase(name)] = key
	}

	return b
}

// Args sets the instruction arguments in IDL order. Values are Borsh encoded.
func (b *MethodBuilder) Args(args ...any) *MethodBuilder {
	b.args = args
	return b
}

// Signers adds keys that must sign besides the provider wallet.
func (b *MethodBuilder) Signers(signers ...solana.PrivateKey) *MethodBuilder {
	b.signers = append(b.signers, signers...)
	return b
}

func (b *MethodBuilder) RemainingAccounts(metas ...*solana.AccountMeta) *MethodBuilder {
	b.remaining = append(b.remaining, metas...)
	return b
}

// Instruction resolves accounts and encodes the instruction data.
func (b *MethodBuilder) Instruction() (solana.Instruction, error) {
	if b.err != nil {
		return nil, b.err
	}

	if len(b.args) != len(b.ix.Args) {
		return nil, errors.Wrapf(ErrArgumentCount, "%s expects %d, got %d", b.ix.Name, len(b.ix.Args), len(b.args))
	}

	metas, err := b.accountMetas()
	if err != nil {
		return nil, err
	}

	data, err := b.encodeData()
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(b.program.id, metas, data), nil
}

// RPC sends the instruction and waits for confirmation. Custom program
// errors are returned as *ProgramError.
func (b *MethodBuilder) RPC(ctx context.Context) (solana.Signature, error) {
	res, err := b.Send(ctx)
	return res.Signature, err
}

// Send is RPC reporting the confirmation slot as well.
func (b *MethodBuilder) Send(ctx context.Context) (Confirmed, error) {
	ix, err := b.Instruction()
	if err != nil {
		return Confirmed{}, err
	}

	res, err := b.program.provider.Send(ctx, []solana.Instruction{ix}, b.signers...)
	if err != nil {
		if pe, ok := b.program.ParseError(err); ok {
			if pe.Signature == (solana.Signature{}) {
				pe.Signature = res.Signature
			}
			return res, pe
		}
		return res, errors.Wrapf(err, "%s failed", b.ix.Name)
	}

	return res, nil
}

func (b *MethodBuilder) accountMetas() (solana.AccountMetaSlice, error) {
	metas := make(solana.AccountMetaSlice, 0, len(b.ix.Accounts)+len(b.remaining))

	for _, acc := range b.ix.Accounts {
		key, err := b.resolveAccount(acc)
		if err != nil {
			return nil, err
		}

		metas = append(metas, solana.NewAccountMeta(key, acc.Writable, acc.Signer))
	}

	return append(metas, b.remaining...), nil
}

func (b *MethodBuilder) resolveAccount(acc IDLInstructionAccount) (solana.PublicKey, error) {
	if key, ok := b.accounts[snakeCase(acc.Name)]; ok {
		return key, nil
	}

	if acc.Address != "" {
		key, err := solana.PublicKeyFromBase58(acc.Address)
		if err != nil {
			return solana.PublicKey{}, errors.Wrapf(err, "invalid fixed address of account %s", acc.Name)
		}
		return key, nil
	}

	if key, ok := wellKnownAccounts[snakeCase(acc.Name)]; ok {
		return key, nil
	}

	if acc.Signer {
		return b.program.provider.Wallet.PublicKey(), nil
	}

	if acc.Optional {
		// Anchor marks an absent optional account with the program id.
		return b.program.id, nil
	}

	return solana.PublicKey{}, errors.Wrapf(ErrMissingAccount, "%s.%s", b.ix.Name, acc.Name)
}

func (b *MethodBuilder) encodeData() ([]byte, error) {
	disc := b.ix.DiscriminatorBytes()

	buf := new(bytes.Buffer)
	buf.Write(disc[:])

	enc := bin.NewBorshEncoder(buf)
	for i, arg := range b.args {
		if err := enc.Encode(arg); err != nil {
			return nil, errors.Wrapf(err, "failed to encode argument %s of %s", b.ix.Args[i].Name, b.ix.Name)
		}
	}

	return buf.Bytes(), nil
}

var wellKnownAccounts = map[string]solana.PublicKey{
	"system_program":           solana.SystemProgramID,
	"token_program":            solana.TokenProgramID,
	"associated_token_program": solana.SPLAssociatedTokenAccountProgramID,
	"rent":                     solana.SysVarRentPubkey,
}
