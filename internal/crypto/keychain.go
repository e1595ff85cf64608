// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

// SealedPrefix marks a sealed payload blob.
const SealedPrefix = "sealed:v1:"

// SaltSize is the length of the key derivation salt in bytes.
const SaltSize = 16

var (
	// ErrSealedPayload is returned when a sealed blob is opened by a sealer
	// without a key.
	ErrSealedPayload = errors.New("payload is sealed and no passphrase is configured")
	// ErrCiphertextTooShort is returned for truncated blobs.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	// ErrEmptyPassphrase is returned when a sealer is built without a passphrase.
	ErrEmptyPassphrase = errors.New("empty passphrase")
)

// KDFParams are the Argon2id tuning parameters.
type KDFParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultKDFParams are the Argon2id parameters recommended by OWASP (2024):
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
var DefaultKDFParams = KDFParams{
	Time:    1,
	Memory:  64 * 1024,
	Threads: 4,
	KeyLen:  32,
}

// aeadSealer is the AES-256-GCM implementation of [SecretSealer].
type aeadSealer struct {
	gcm cipher.AEAD
}

// GenerateSalt reads SaltSize random bytes from the OS CSPRNG.
// The salt is not a secret; it is stored next to the sealed data.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveKey derives a key from passphrase and salt with Argon2id.
func DeriveKey(passphrase string, salt []byte, p KDFParams) []byte {
	return argon2.IDKey([]byte(passphrase), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

// NewSecretSealer derives the sealing key from passphrase and salt with the
// default parameters.
func NewSecretSealer(passphrase string, salt []byte) (SecretSealer, error) {
	return NewSecretSealerWithParams(passphrase, salt, DefaultKDFParams)
}

// NewSecretSealerWithParams is NewSecretSealer with explicit KDF parameters.
func NewSecretSealerWithParams(passphrase string, salt []byte, p KDFParams) (SecretSealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	if len(salt) == 0 {
		return nil, errors.New("empty salt")
	}

	block, err := aes.NewCipher(DeriveKey(passphrase, salt, p))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	return &aeadSealer{gcm: gcm}, nil
}

func (s *aeadSealer) Enabled() bool {
	return true
}

// Seal prepends a random nonce to the ciphertext: blob = nonce ‖ ciphertext.
func (s *aeadSealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nil, nonce, plaintext, nil)
	blob := append(nonce, ciphertext...)

	return SealedPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

func (s *aeadSealer) Open(blob string) ([]byte, error) {
	encoded, sealed := strings.CutPrefix(blob, SealedPrefix)
	if !sealed {
		return []byte(blob), nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}

	nonceSize := s.gcm.NonceSize()
	if len(raw) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]

	// A failure here almost always means a wrong passphrase.
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}

	return plaintext, nil
}

// plainSealer stores payloads unchanged.
type plainSealer struct{}

// NewPlainSealer returns a [SecretSealer] that does not encrypt. It refuses
// to open sealed blobs.
func NewPlainSealer() SecretSealer {
	return plainSealer{}
}

func (plainSealer) Enabled() bool {
	return false
}

func (plainSealer) Seal(plaintext []byte) (string, error) {
	return string(plaintext), nil
}

func (plainSealer) Open(blob string) ([]byte, error) {
	if strings.HasPrefix(blob, SealedPrefix) {
		return nil, ErrSealedPayload
	}
	return []byte(blob), nil
}
