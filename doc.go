// Package bundle builds, signs, and verifies versioned distribution
// archives for engine bundles.
//
// A bundle is a gzip-compressed tar of an engine's source tree plus its
// runtime dependencies, named <identifier>-<version>.tar.gz. Bundles are
// protected by a detached Ed25519 signature stored next to the archive as
// <archive>.sig, and consumers must verify the signature against a trusted
// public key before extracting or executing anything from the archive.
//
// # Quick Start
//
// Build and sign a bundle:
//
//	store := bundle.NewStore(bundle.NewFileBackend("VERSION"))
//	version, err := store.Current()
//	if err != nil {
//	    return err
//	}
//	result, err := bundle.Build(ctx, "./src",
//	    bundle.WithIdentifier("hand_near_face"),
//	    bundle.WithVersion(version),
//	    bundle.WithRuntime("./python_runtime"),
//	)
//	if err != nil {
//	    return err
//	}
//	priv, err := bundle.LoadPrivateKey("keys/bundle_signing_key.private")
//	if err != nil {
//	    return err
//	}
//	_, err = bundle.SignFile(result.Path, priv)
//
// Verify before trusting:
//
//	pub, err := bundle.LoadPublicKey("bundle_signing_key.public")
//	if err != nil {
//	    return err
//	}
//	if err := bundle.VerifyFile(archivePath, archivePath+".sig", pub); err != nil {
//	    return err // reject the archive outright
//	}
//
// The [registry] subpackage ships bundles to OCI registries; cmd/bundlectl
// exposes the operator CLI.
package bundle
