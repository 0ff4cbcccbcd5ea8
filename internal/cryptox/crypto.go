// Package cryptox protects the local signer key at rest: the ed25519 seed is
// sealed with AES-GCM under a key derived from the user's passphrase.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"

	"github.com/dmitrijs2005/sealstream/internal/common"
	"golang.org/x/crypto/argon2"
)

const saltSize = 16

// DeriveKey stretches a passphrase into a 32-byte AES key with Argon2id.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// SealedKey is the on-disk form of a protected signer seed.
type SealedKey struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// SealSeed encrypts an ed25519 seed under the passphrase and serializes the
// result. A fresh salt and nonce are generated per call.
func SealSeed(seed, passphrase []byte) ([]byte, error) {
	salt := common.GenerateRandByteArray(saltSize)

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext := aesgcm.Seal(nil, nonce, seed, nil)

	return json.Marshal(SealedKey{Salt: salt, Nonce: nonce, Ciphertext: ciphertext})
}

// OpenSeed decrypts a serialized SealedKey with the passphrase and returns
// the ed25519 seed. The caller should wipe the seed when done.
func OpenSeed(data, passphrase []byte) ([]byte, error) {
	var sk SealedKey
	if err := json.Unmarshal(data, &sk); err != nil {
		return nil, err
	}

	key := DeriveKey(passphrase, sk.Salt)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return aesgcm.Open(nil, sk.Nonce, sk.Ciphertext, nil)
}
