package bundle

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Default key file names, matching the layout consumers already embed.
const (
	PrivateKeyName = "bundle_signing_key.private"
	PublicKeyName  = "bundle_signing_key.public"
)

// Keypair holds an Ed25519 signing keypair.
//
// The private key must never leave the producer's restricted key store; the
// public key is safe to embed in any consumer.
type Keypair struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// GenerateKeypair creates a fresh Ed25519 keypair.
func GenerateKeypair() (Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return Keypair{Private: priv, Public: pub}, nil
}

// WriteKeypair persists the keypair under dir as two single-line hex files:
// the private key file holds the 32-byte seed, the public key file the
// 32-byte public key. The private key file is created with owner-only
// permissions.
//
// Returns ErrKeyExists rather than overwriting either file, so an active
// signing key cannot be clobbered silently.
func (k Keypair) WriteKeypair(dir string) (privPath, pubPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create key directory: %w", err)
	}

	privPath = filepath.Join(dir, PrivateKeyName)
	pubPath = filepath.Join(dir, PublicKeyName)

	privHex := hex.EncodeToString(k.Private.Seed())
	if err := writeKeyFile(privPath, privHex, 0o600); err != nil {
		return "", "", err
	}
	pubHex := hex.EncodeToString(k.Public)
	if err := writeKeyFile(pubPath, pubHex, 0o644); err != nil {
		// Do not leave a private key behind without its public half.
		os.Remove(privPath)
		return "", "", err
	}

	return privPath, pubPath, nil
}

func writeKeyFile(path, hexKey string, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrKeyExists, path)
		}
		return fmt.Errorf("write key file: %w", err)
	}
	if _, err := f.WriteString(hexKey + "\n"); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write key file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// LoadPrivateKey reads an Ed25519 private key from a hex seed file.
//
// Returns ErrKeyNotFound when the file is absent and ErrKeyFormat when the
// hex does not decode to a 32-byte seed.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	seed, err := loadKeyBytes(path, ed25519.SeedSize)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// LoadPublicKey reads an Ed25519 public key from a hex file.
//
// Returns ErrKeyNotFound when the file is absent and ErrKeyFormat when the
// hex does not decode to a 32-byte key.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	raw, err := loadKeyBytes(path, ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}

// ParsePublicKey decodes a public key from its hex form, e.g. one embedded
// directly in consumer code.
func ParsePublicKey(hexKey string) (ed25519.PublicKey, error) {
	raw, err := decodeKeyHex(strings.TrimSpace(hexKey), ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}

func loadKeyBytes(path string, wantLen int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
		}
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return decodeKeyHex(strings.TrimSpace(string(data)), wantLen)
}

func decodeKeyHex(hexKey string, wantLen int) ([]byte, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyFormat, err)
	}
	if len(raw) != wantLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeyFormat, len(raw), wantLen)
	}
	return raw, nil
}
