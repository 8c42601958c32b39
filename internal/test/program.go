package test

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/anchor"
	"github/chapool/iao-solana/internal/boomerfun"
)

// anchorAccountDidNotSerialize is raised when the account data outgrows its allocation.
const anchorAccountDidNotSerialize = 3004

// Transfer is a token movement performed by purchase_token or sell_token.
type Transfer struct {
	Instruction string
	From        solana.PublicKey
	To          solana.PublicKey
	Amount      uint64
}

// IaoProgram executes the four program instructions against the accounts
// of a FakeValidator using the client side curve.
type IaoProgram struct {
	// StateSpace is the data size initialize allocates.
	StateSpace int

	mu        sync.Mutex
	transfers []Transfer
	before    func(v *FakeValidator)
}

// NewIaoProgram installs the program on v. initialize allocates
// boomerfun.StateAccountSpace bytes unless StateSpace is changed.
func NewIaoProgram(t *testing.T, v *FakeValidator) *IaoProgram {
	t.Helper()

	p := &IaoProgram{StateSpace: boomerfun.StateAccountSpace}

	v.mu.Lock()
	v.OnTransaction = p.execute
	v.mu.Unlock()

	return p
}

// Transfers returns all token movements so far.
func (p *IaoProgram) Transfers() []Transfer {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Transfer(nil), p.transfers...)
}

// SeedState stores state at address with the given allocation size.
func SeedState(t *testing.T, v *FakeValidator, address solana.PublicKey, state *boomerfun.ProgramState, space int) {
	t.Helper()

	data, err := state.EncodeAccount()
	if err != nil {
		t.Fatalf("failed to encode program state: %v", err)
	}
	if len(data) > space {
		t.Fatalf("program state needs %d bytes, space is %d", len(data), space)
	}

	padded := make([]byte, space)
	copy(padded, data)

	v.SetAccount(address, &FakeAccount{Owner: boomerfun.ProgramID, Lamports: 1_000_000, Data: padded})
}

// Before runs fn ahead of every transaction, e.g. to change state behind the client's back.
func (p *IaoProgram) Before(fn func(v *FakeValidator)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.before = fn
}

func (p *IaoProgram) execute(v *FakeValidator, tx *solana.Transaction) error {
	p.mu.Lock()
	before := p.before
	p.mu.Unlock()

	if before != nil {
		before(v)
	}

	for idx, inst := range tx.Message.Instructions {
		programID, err := tx.Message.Program(inst.ProgramIDIndex)
		if err != nil {
			return err
		}
		if !programID.Equals(boomerfun.ProgramID) {
			continue
		}

		metas, err := inst.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			return err
		}

		if err := p.dispatch(v, metas, inst.Data); err != nil {
			var code interface{ ProgramErrorCode() uint32 }
			if errors.As(err, &code) {
				return &ProgramFailure{Instruction: idx, Code: code.ProgramErrorCode()}
			}
			return err
		}
	}

	return nil
}

type failureCode uint32

func (c failureCode) Error() string {
	return fmt.Sprintf("custom program error: %d", uint32(c))
}

func (c failureCode) ProgramErrorCode() uint32 {
	return uint32(c)
}

func (p *IaoProgram) dispatch(v *FakeValidator, metas []*solana.AccountMeta, data []byte) error {
	if len(data) < anchor.DiscriminatorLength {
		return errors.New("instruction data shorter than discriminator")
	}

	disc := data[:anchor.DiscriminatorLength]
	args := bin.NewBorshDecoder(data[anchor.DiscriminatorLength:])

	switch {
	case matches(disc, boomerfun.InstructionInitialize):
		return p.initialize(v, metas)
	case matches(disc, boomerfun.InstructionCreateToken):
		var in struct {
			Name   string
			Symbol string
		}
		if err := args.Decode(&in); err != nil {
			return errors.Wrap(err, "create_token args")
		}
		return p.createToken(v, metas, in.Name, in.Symbol)
	case matches(disc, boomerfun.InstructionPurchaseToken), matches(disc, boomerfun.InstructionSellToken):
		var in struct {
			TokenID uint64
			Amount  uint64
		}
		if err := args.Decode(&in); err != nil {
			return errors.Wrap(err, "trade args")
		}
		if matches(disc, boomerfun.InstructionPurchaseToken) {
			return p.purchase(v, metas, in.TokenID, in.Amount)
		}
		return p.sell(v, metas, in.TokenID, in.Amount)
	default:
		return failureCode(101) // InstructionFallbackNotFound
	}
}

func (p *IaoProgram) initialize(v *FakeValidator, metas []*solana.AccountMeta) error {
	address := metas[0].PublicKey
	if _, exists := v.Account(address); exists {
		return errors.Errorf("account %s already in use", address)
	}

	data, err := (&boomerfun.ProgramState{TokenCount: 1}).EncodeAccount()
	if err != nil {
		return err
	}

	padded := make([]byte, p.StateSpace)
	copy(padded, data)

	v.SetAccount(address, &FakeAccount{Owner: boomerfun.ProgramID, Lamports: 1_000_000, Data: padded})

	return nil
}

func (p *IaoProgram) createToken(v *FakeValidator, metas []*solana.AccountMeta, name string, symbol string) error {
	state, acc, err := loadState(v, metas[0].PublicKey)
	if err != nil {
		return err
	}

	state.Tokens = append(state.Tokens, boomerfun.TokenInfo{
		Mint:    metas[2].PublicKey,
		Name:    name,
		Symbol:  symbol,
		Creator: metas[1].PublicKey,
	})
	state.TokenCount++

	return storeState(v, metas[0].PublicKey, acc, state)
}

func (p *IaoProgram) purchase(v *FakeValidator, metas []*solana.AccountMeta, tokenID uint64, amount uint64) error {
	state, acc, err := loadState(v, metas[0].PublicKey)
	if err != nil {
		return err
	}

	token, err := state.Token(tokenID)
	if err != nil {
		return asFailure(err)
	}

	quote, err := boomerfun.QuotePurchase(tokenID, *token, amount)
	if err != nil {
		return asFailure(err)
	}
	if err := quote.Apply(state); err != nil {
		return err
	}

	p.record(
		Transfer{Instruction: boomerfun.InstructionPurchaseToken, From: metas[2].PublicKey, To: metas[3].PublicKey, Amount: amount},
		Transfer{Instruction: boomerfun.InstructionPurchaseToken, From: metas[5].PublicKey, To: metas[4].PublicKey, Amount: quote.TokenAmountTransferred},
	)

	return storeState(v, metas[0].PublicKey, acc, state)
}

func (p *IaoProgram) sell(v *FakeValidator, metas []*solana.AccountMeta, tokenID uint64, amount uint64) error {
	state, acc, err := loadState(v, metas[0].PublicKey)
	if err != nil {
		return err
	}

	token, err := state.Token(tokenID)
	if err != nil {
		return asFailure(err)
	}

	quote, err := boomerfun.QuoteSell(tokenID, *token, amount)
	if err != nil {
		return asFailure(err)
	}
	if err := quote.Apply(state); err != nil {
		return err
	}

	p.record(
		Transfer{Instruction: boomerfun.InstructionSellToken, From: metas[2].PublicKey, To: metas[3].PublicKey, Amount: amount},
		Transfer{Instruction: boomerfun.InstructionSellToken, From: metas[5].PublicKey, To: metas[4].PublicKey, Amount: quote.NetPayout},
	)

	return storeState(v, metas[0].PublicKey, acc, state)
}

func (p *IaoProgram) record(transfers ...Transfer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transfers = append(p.transfers, transfers...)
}

func loadState(v *FakeValidator, address solana.PublicKey) (*boomerfun.ProgramState, *FakeAccount, error) {
	acc, ok := v.Account(address)
	if !ok {
		return nil, nil, failureCode(3012) // AccountNotInitialized
	}
	if !acc.Owner.Equals(boomerfun.ProgramID) {
		return nil, nil, failureCode(3007) // AccountOwnedByWrongProgram
	}

	if !matchesAccount(acc.Data) {
		return nil, nil, failureCode(3002) // AccountDiscriminatorMismatch
	}

	var state boomerfun.ProgramState
	if err := state.UnmarshalWithDecoder(bin.NewBorshDecoder(acc.Data[anchor.DiscriminatorLength:])); err != nil {
		return nil, nil, failureCode(3003) // AccountDidNotDeserialize
	}

	return &state, acc, nil
}

func storeState(v *FakeValidator, address solana.PublicKey, acc *FakeAccount, state *boomerfun.ProgramState) error {
	data, err := state.EncodeAccount()
	if err != nil {
		return err
	}
	if len(data) > len(acc.Data) {
		return failureCode(anchorAccountDidNotSerialize)
	}

	copy(acc.Data, data)
	v.SetAccount(address, acc)

	return nil
}

func asFailure(err error) error {
	switch {
	case errors.Is(err, boomerfun.ErrInvalidTokenID):
		return failureCode(boomerfun.ErrCodeInvalidTokenID)
	case errors.Is(err, boomerfun.ErrAlreadyInDexPhase):
		return failureCode(boomerfun.ErrCodeAlreadyInDexPhase)
	case errors.Is(err, boomerfun.ErrInvalidAmount):
		return failureCode(boomerfun.ErrCodeInvalidAmount)
	default:
		// arithmetic panics abort the transaction without a custom code
		return err
	}
}

func matches(disc []byte, instruction string) bool {
	want := anchor.InstructionDiscriminator(instruction)
	return bytes.Equal(disc, want[:])
}

func matchesAccount(data []byte) bool {
	want := anchor.AccountDiscriminator(boomerfun.AccountProgramState)
	return len(data) >= anchor.DiscriminatorLength && bytes.Equal(data[:anchor.DiscriminatorLength], want[:])
}
