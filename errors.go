package bundle

import "errors"

// Sentinel errors for bundle operations.
var (
	// ErrInvalidVersion is returned when a version string is not exactly
	// three dot-separated non-negative integers.
	ErrInvalidVersion = errors.New("bundle: invalid version format")

	// ErrMissingVersion is returned when no version record is resolvable.
	ErrMissingVersion = errors.New("bundle: missing version")

	// ErrMissingRuntime is returned when neither the runtime tree nor its
	// fallback path exists.
	ErrMissingRuntime = errors.New("bundle: missing runtime tree")

	// ErrKeyExists is returned when key generation would overwrite an
	// existing key file.
	ErrKeyExists = errors.New("bundle: key file already exists")

	// ErrKeyNotFound is returned when a key file is absent.
	ErrKeyNotFound = errors.New("bundle: key not found")

	// ErrKeyFormat is returned when key material does not decode to the
	// length the scheme requires.
	ErrKeyFormat = errors.New("bundle: malformed key")

	// ErrSignatureEncoding is returned when a signature hex string is
	// malformed or decodes to the wrong length.
	ErrSignatureEncoding = errors.New("bundle: malformed signature encoding")

	// ErrVerificationFailed is returned when a signature does not verify
	// against the archive bytes and public key. A consumer observing it
	// must refuse to use the archive.
	ErrVerificationFailed = errors.New("bundle: signature verification failed")
)
