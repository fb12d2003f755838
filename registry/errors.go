package registry

import "errors"

// Sentinel errors for registry operations.
var (
	// ErrNotFound is returned when no bundle exists at the reference.
	ErrNotFound = errors.New("registry: not found")

	// ErrInvalidReference is returned when a reference string is malformed.
	ErrInvalidReference = errors.New("registry: invalid reference")

	// ErrInvalidManifest is returned when a manifest is not a bundle
	// artifact manifest.
	ErrInvalidManifest = errors.New("registry: invalid bundle manifest")

	// ErrMissingArchive is returned when the manifest has no archive layer.
	ErrMissingArchive = errors.New("registry: missing archive layer")

	// ErrMissingSignature is returned when the manifest has no signature
	// layer, or when publishing a bundle that has not been signed.
	ErrMissingSignature = errors.New("registry: missing signature")

	// ErrDigestMismatch is returned when fetched content does not match
	// its manifest digest.
	ErrDigestMismatch = errors.New("registry: digest mismatch")
)
