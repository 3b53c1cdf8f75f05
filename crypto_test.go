package mlfairy

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"testing"
)

func TestSealPayload(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		payload := []byte(`{"input":[1,2,3],"output":"cat"}`)

		sealed, err := SealPayload(&key.PublicKey, payload)
		if err != nil {
			t.Fatalf("SealPayload() error = %v", err)
		}
		if bytes.Contains(sealed.Data, payload) {
			t.Error("ciphertext contains the plaintext")
		}

		got, err := OpenPayload(key, sealed)
		if err != nil {
			t.Fatalf("OpenPayload() error = %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("OpenPayload() = %q, want %q", got, payload)
		}
	})

	t.Run("fresh key per seal", func(t *testing.T) {
		payload := []byte("same payload")

		a, err := SealPayload(&key.PublicKey, payload)
		if err != nil {
			t.Fatalf("SealPayload() error = %v", err)
		}
		b, err := SealPayload(&key.PublicKey, payload)
		if err != nil {
			t.Fatalf("SealPayload() error = %v", err)
		}

		if bytes.Equal(a.Data, b.Data) {
			t.Error("two seals of the same payload produced identical ciphertext")
		}
	})

	t.Run("wrong private key fails", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("GenerateKey() error = %v", err)
		}

		sealed, err := SealPayload(&key.PublicKey, []byte("secret"))
		if err != nil {
			t.Fatalf("SealPayload() error = %v", err)
		}

		if _, err := OpenPayload(other, sealed); err == nil {
			t.Error("OpenPayload() with wrong key succeeded, want error")
		}
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		sealed, err := SealPayload(&key.PublicKey, []byte("secret"))
		if err != nil {
			t.Fatalf("SealPayload() error = %v", err)
		}
		sealed.Data[0] ^= 0xff

		if _, err := OpenPayload(key, sealed); err == nil {
			t.Error("OpenPayload() on tampered data succeeded, want error")
		}
	})

	t.Run("nil arguments", func(t *testing.T) {
		if _, err := SealPayload(nil, []byte("x")); err == nil {
			t.Error("SealPayload(nil) succeeded, want error")
		}
		if _, err := OpenPayload(nil, &SealedPayload{}); err == nil {
			t.Error("OpenPayload(nil key) succeeded, want error")
		}
		if _, err := OpenPayload(key, nil); err == nil {
			t.Error("OpenPayload(nil payload) succeeded, want error")
		}
	})
}
