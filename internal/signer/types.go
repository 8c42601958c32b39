package signer

import "github.com/gagliardetto/solana-go"

// Manager holds the wallet keypair in memory and signs transactions with it
type Manager interface {
	// Initialize loads the keypair (called at startup)
	Initialize(key solana.PrivateKey) error

	// PublicKey returns the wallet address, zero if not initialized
	PublicKey() solana.PublicKey

	// SignTransaction signs tx with the wallet and any extra keypairs
	SignTransaction(tx *solana.Transaction, extra ...solana.PrivateKey) error

	// IsInitialized checks if a keypair is loaded
	IsInitialized() bool

	// Clear wipes the keypair from memory
	Clear()
}
