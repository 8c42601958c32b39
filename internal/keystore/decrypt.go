package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/scrypt"
)

// minDerivedKeyLen covers the AES key and the MAC key.
const minDerivedKeyLen = 32

// decryptKey decrypts an ed25519 keypair from the keystore v3 format
func decryptKey(keystoreJSON *KeystoreJSON, password string) (solana.PrivateKey, error) {
	if keystoreJSON.Crypto.KDF != "scrypt" || keystoreJSON.Crypto.Cipher != "aes-128-ctr" {
		return nil, fmt.Errorf("unsupported keystore kdf/cipher %s/%s", keystoreJSON.Crypto.KDF, keystoreJSON.Crypto.Cipher)
	}

	salt, err := hex.DecodeString(keystoreJSON.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	//nolint:varnamelen // iv is a common abbreviation for initialization vector
	iv, err := hex.DecodeString(keystoreJSON.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("failed to decode IV: %w", err)
	}

	ciphertext, err := hex.DecodeString(keystoreJSON.Crypto.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	expectedMAC, err := hex.DecodeString(keystoreJSON.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MAC: %w", err)
	}

	derivedKey, err := scryptKey(password, salt, keystoreJSON)
	if err != nil {
		return nil, err
	}

	mac := calculateMAC(derivedKey[16:32], ciphertext)
	if subtle.ConstantTimeCompare(mac, expectedMAC) != 1 {
		return nil, ErrInvalidKeystorePassword
	}

	plaintext, err := decryptAES128CTR(derivedKey[:16], iv, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt key: %w", err)
	}

	return solana.PrivateKey(plaintext), nil
}

// scryptKey derives the key with the parameters stored in the keystore file,
// so files written with other cost settings still decrypt.
func scryptKey(password string, salt []byte, keystoreJSON *KeystoreJSON) ([]byte, error) {
	params := keystoreJSON.Crypto.KDFParams
	if params.DKLen < minDerivedKeyLen {
		return nil, fmt.Errorf("%w: dklen %d is shorter than %d", ErrInvalidKeystore, params.DKLen, minDerivedKeyLen)
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	return derivedKey, nil
}

// decryptAES128CTR decrypts data using AES-128-CTR mode
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func decryptAES128CTR(key []byte, iv []byte, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	plaintext := make([]byte, len(ciphertext))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(plaintext, ciphertext)

	return plaintext, nil
}
