package oci

import "errors"

// Sentinel errors for low-level OCI operations.
var (
	// ErrInvalidDescriptor is returned when a descriptor is missing
	// required fields.
	ErrInvalidDescriptor = errors.New("oci: invalid descriptor")

	// ErrManifestInvalid is returned when a manifest cannot be encoded or
	// decoded.
	ErrManifestInvalid = errors.New("oci: invalid manifest")
)
