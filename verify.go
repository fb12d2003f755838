package bundle

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Verify checks a detached signature against the exact archive bytes and a
// trusted public key.
//
// The check fails closed: malformed hex or a wrong decoded length returns
// ErrSignatureEncoding without attempting a partial comparison, and a
// signature that does not verify returns ErrVerificationFailed. A nil
// return is the only outcome under which the archive may be trusted.
//
// Verify must run before any contents of the archive are extracted, parsed,
// or executed; the archive's own decompression logic could be
// attacker-controlled. It is a pure function of its inputs.
func Verify(archive []byte, sigHex string, pub ed25519.PublicKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrKeyFormat, len(pub), ed25519.PublicKeySize)
	}

	sig, err := hex.DecodeString(strings.TrimSpace(sigHex))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureEncoding, err)
	}
	if len(sig) != SignatureSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrSignatureEncoding, len(sig), SignatureSize)
	}

	if !ed25519.Verify(pub, archive, sig) {
		return ErrVerificationFailed
	}
	return nil
}

// VerifyFile verifies the archive at archivePath against the signature file
// at sigPath.
//
// It reads both files and applies Verify; the archive contents are never
// interpreted. Callers must treat any error as a rejection of the archive.
func VerifyFile(archivePath, sigPath string, pub ed25519.PublicKey) error {
	archive, err := os.ReadFile(archivePath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	sigHex, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("read signature: %w", err)
	}
	return Verify(archive, string(sigHex), pub)
}
