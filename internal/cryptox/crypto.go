// Package cryptox holds the passphrase-based primitives behind the keystore:
// an Argon2id key derivation and AES-256-GCM authenticated encryption.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/walletkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// SaltSize is the length of the random Argon2id salt.
	SaltSize = 16
	// KeySize is the length of the derived AES-256 key.
	KeySize = 32
)

// ErrDecrypt is returned when authenticated decryption fails, which for a
// passphrase-derived key almost always means a wrong passphrase.
var ErrDecrypt = errors.New("could not decrypt with given passphrase")

// KDFParams are the Argon2id cost parameters. They are persisted next to the
// ciphertext so that changing defaults never locks out existing files.
type KDFParams struct {
	Time      uint32 `json:"time" yaml:"time"`
	MemoryKiB uint32 `json:"memory" yaml:"memory"`
	Threads   uint8  `json:"threads" yaml:"threads"`
}

// Upper bounds accepted by Validate. Parameters are read back from files on
// disk, so they cap what a tampered file can make DeriveKey allocate.
const (
	MaxKDFTime      = 64
	MaxKDFMemoryKiB = 4 * 1024 * 1024
	MaxKDFThreads   = 64
)

// DefaultKDFParams follow the Argon2id RFC 9106 second recommended option.
var DefaultKDFParams = KDFParams{Time: 3, MemoryKiB: 64 * 1024, Threads: 4}

// Validate rejects parameters argon2 would panic on or that are useless.
func (p KDFParams) Validate() error {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
		return fmt.Errorf("invalid kdf params: time=%d memory=%d threads=%d", p.Time, p.MemoryKiB, p.Threads)
	}
	if p.Time > MaxKDFTime || p.MemoryKiB > MaxKDFMemoryKiB || p.Threads > MaxKDFThreads {
		return fmt.Errorf("kdf params out of range: time=%d memory=%d threads=%d (max %d, %d, %d)",
			p.Time, p.MemoryKiB, p.Threads, MaxKDFTime, MaxKDFMemoryKiB, MaxKDFThreads)
	}
	return nil
}

// DeriveKey stretches passphrase with salt into a KeySize-byte key.
// The caller owns the returned slice and should wipe it after use.
func DeriveKey(passphrase, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(passphrase, salt, p.Time, p.MemoryKiB, p.Threads, KeySize)
}

// NewSalt returns a fresh random salt.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// Encrypt seals plaintext with AES-GCM under key, binding aad.
//
// A new random nonce is generated for every call. The ciphertext carries the
// GCM tag, so any modification or a wrong key is detected by Decrypt.
func Encrypt(plaintext, key, aad []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, aad)

	return ciphertext, nonce, nil
}

// Decrypt opens a ciphertext produced by Encrypt. Authentication failures
// are reported as ErrDecrypt; the plaintext is never returned partially.
func Decrypt(ciphertext, nonce, key, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, fmt.Errorf("invalid nonce size %d", len(nonce))
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
