package bundle

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/bundle/internal/fsutil"
)

// SignatureSize is the length of a raw Ed25519 signature in bytes.
const SignatureSize = ed25519.SignatureSize

// Signature is a detached Ed25519 signature over an archive's exact bytes.
type Signature []byte

// Hex returns the lowercase hex encoding used in .sig files.
func (s Signature) Hex() string {
	return hex.EncodeToString(s)
}

// Sign computes an Ed25519 signature over the full archive byte sequence.
//
// The signature covers the raw bytes, not a pre-hashed digest; any byte
// change to the archive invalidates it.
func Sign(archive []byte, priv ed25519.PrivateKey) (Signature, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrKeyFormat, len(priv), ed25519.PrivateKeySize)
	}
	return Signature(ed25519.Sign(priv, archive)), nil
}

// SignResult reports the artifacts of signing an archive on disk.
type SignResult struct {
	// SignaturePath is the emitted <archive>.sig file.
	SignaturePath string

	// Signature is the detached signature.
	Signature Signature

	// Checksum is the SHA-256 digest of the archive, reported for operator
	// cross-checking. It is not part of the trust decision; only the
	// signature is.
	Checksum digest.Digest
}

// SignFile signs the archive at path and writes <path>.sig containing the
// lowercase hex signature followed by a newline.
//
// The signature file is written atomically so an interrupted signing run
// never leaves a partial .sig visible.
func SignFile(path string, priv ed25519.PrivateKey) (SignResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SignResult{}, fmt.Errorf("read archive: %w", err)
	}

	sig, err := Sign(data, priv)
	if err != nil {
		return SignResult{}, err
	}

	sigPath := path + ".sig"
	if err := fsutil.WriteFileAtomic(sigPath, []byte(sig.Hex()+"\n"), 0o644); err != nil {
		return SignResult{}, fmt.Errorf("write signature: %w", err)
	}

	return SignResult{
		SignaturePath: sigPath,
		Signature:     sig,
		Checksum:      digest.FromBytes(data),
	}, nil
}
