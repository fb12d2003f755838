// Package registry ships bundle archives and their detached signatures to
// OCI registries.
//
// A published bundle is an OCI 1.1 artifact with two layers: the archive
// blob and the signature blob. The registry is an untrusted transport; the
// signature travels with the archive, and consumers must verify it against
// an independently obtained public key before extracting anything.
package registry
