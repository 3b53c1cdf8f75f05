package mlfairy

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
)

// SealedPayload is a serialized payload encrypted with a hybrid scheme: the
// payload itself under a one-time AES-256-GCM key, and that key wrapped
// with the recipient's RSA public key (OAEP, SHA-256). Stateless and
// independent of the acquisition pipeline.
type SealedPayload struct {
	// Key is the RSA-OAEP-wrapped AES key.
	Key []byte `json:"key"`

	// Nonce is the GCM nonce used for Data.
	Nonce []byte `json:"nonce"`

	// Data is the AES-GCM ciphertext, authentication tag included.
	Data []byte `json:"data"`
}

// SealPayload encrypts payload for the holder of the private key matching
// pub.
func SealPayload(pub *rsa.PublicKey, payload []byte) (*SealedPayload, error) {
	if pub == nil {
		return nil, errors.New("mlfairy: nil public key")
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating data key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
	if err != nil {
		return nil, fmt.Errorf("wrapping data key: %w", err)
	}

	return &SealedPayload{
		Key:   wrapped,
		Nonce: nonce,
		Data:  gcm.Seal(nil, nonce, payload, nil),
	}, nil
}

// OpenPayload decrypts a SealedPayload with the matching private key.
func OpenPayload(priv *rsa.PrivateKey, sealed *SealedPayload) ([]byte, error) {
	if priv == nil {
		return nil, errors.New("mlfairy: nil private key")
	}
	if sealed == nil {
		return nil, errors.New("mlfairy: nil payload")
	}

	key, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, sealed.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("unwrapping data key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}

	payload, err := gcm.Open(nil, sealed.Nonce, sealed.Data, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting payload: %w", err)
	}
	return payload, nil
}
