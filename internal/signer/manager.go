package signer

import (
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/iao-solana/internal/keystore"
)

var (
	ErrNotInitialized     = errors.New("signer not initialized")
	ErrAlreadyInitialized = errors.New("signer already initialized")
	ErrMissingSigner      = errors.New("transaction requires a signature from an unknown key")
)

// manager implements key management with thread-safe access
type manager struct {
	key         solana.PrivateKey
	mu          sync.RWMutex
	initialized bool
}

// NewManager creates a new signer Manager
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewManager() Manager {
	return &manager{
		key:         nil,
		initialized: false,
	}
}

// Initialize keeps a private copy of key
func (m *manager) Initialize(key solana.PrivateKey) error {
	if err := keystore.ValidateKeypair(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return ErrAlreadyInitialized
	}

	m.key = append(solana.PrivateKey(nil), key...)
	m.initialized = true

	return nil
}

func (m *manager) PublicKey() solana.PublicKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return solana.PublicKey{}
	}

	return m.key.PublicKey()
}

// SignTransaction fills every required signature slot the wallet or extra
// keypairs can sign for. Slots of other keys cause ErrMissingSigner.
func (m *manager) SignTransaction(tx *solana.Transaction, extra ...solana.PrivateKey) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return ErrNotInitialized
	}

	keys := make(map[solana.PublicKey]*solana.PrivateKey, len(extra)+1)
	wallet := m.key
	keys[wallet.PublicKey()] = &wallet
	for i := range extra {
		keys[extra[i].PublicKey()] = &extra[i]
	}

	_, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		return keys[pub]
	})
	if err != nil {
		return errors.Wrap(ErrMissingSigner, err.Error())
	}

	return nil
}

// IsInitialized checks if a keypair is loaded
func (m *manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.initialized
}

// Clear clears the keypair from memory
func (m *manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key != nil {
		for i := range m.key {
			m.key[i] = 0
		}
		m.key = nil
	}
	m.initialized = false
}
