// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// SecretSealer protects entity payloads at rest in the local database.
// It knows nothing about the network or the sync protocol: payloads are
// sealed on write and opened on read by the store.
//
// Scheme:
//
//	Salt = GenerateSalt()                       (once per database)
//	Key  = Argon2id(passphrase, Salt)           (in memory only)
//	Blob = "sealed:v1:" + base64(nonce ‖ AES-GCM(Key, payload))
type SecretSealer interface {
	// Enabled reports whether Seal actually encrypts.
	Enabled() bool

	// Seal encrypts plaintext and returns a printable blob.
	Seal(plaintext []byte) (string, error)

	// Open reverses Seal. Blobs without the sealed prefix are returned
	// unchanged, so databases written before sealing was enabled stay
	// readable.
	Open(blob string) ([]byte, error)
}
