package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/meigma/bundle"
	"github.com/meigma/bundle/internal/fsutil"
)

// FetchResult describes the artifacts written by a Fetch.
type FetchResult struct {
	// ArchivePath is the downloaded archive.
	ArchivePath string

	// SignaturePath is the downloaded detached signature.
	SignaturePath string

	// Identifier and Version are taken from the manifest annotations.
	Identifier string
	Version    bundle.Version
}

// Fetch downloads a bundle artifact's archive and signature into destDir.
//
// Both blobs are digest-verified against the manifest while downloading and
// written atomically. Fetch performs no signature verification: the caller
// must apply bundle.Verify with a trusted public key before extracting or
// executing anything from the archive.
func Fetch(ctx context.Context, c *Client, ref, destDir string) (FetchResult, error) {
	parsed, err := parseClientRef(ref)
	if err != nil {
		return FetchResult{}, err
	}
	if parsed.tag == "" {
		return FetchResult{}, fmt.Errorf("%w: reference must include a tag or digest", ErrInvalidReference)
	}

	desc, err := c.oci.Resolve(ctx, ref, parsed.tag)
	if err != nil {
		return FetchResult{}, mapOCIError(err)
	}
	manifest, err := c.oci.FetchManifest(ctx, ref, &desc)
	if err != nil {
		return FetchResult{}, mapOCIError(err)
	}
	if manifest.ArtifactType != ArtifactType {
		return FetchResult{}, fmt.Errorf("%w: artifact type %q", ErrInvalidManifest, manifest.ArtifactType)
	}

	archiveDesc, sigDesc, err := bundleLayers(&manifest)
	if err != nil {
		return FetchResult{}, err
	}

	identifier := manifest.Annotations[AnnotationIdentifier]
	version, err := bundle.ParseVersion(manifest.Annotations[AnnotationVersion])
	if err != nil {
		return FetchResult{}, fmt.Errorf("%w: bad version annotation", ErrInvalidManifest)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return FetchResult{}, fmt.Errorf("create destination: %w", err)
	}

	archiveName := layerFileName(archiveDesc, bundle.ArchiveName(identifier, version))
	archivePath := filepath.Join(destDir, archiveName)
	if err := fetchBlobToFile(ctx, c, ref, archiveDesc, archivePath); err != nil {
		return FetchResult{}, fmt.Errorf("fetch archive: %w", err)
	}

	sigName := layerFileName(sigDesc, archiveName+".sig")
	sigPath := filepath.Join(destDir, sigName)
	if err := fetchBlobToFile(ctx, c, ref, sigDesc, sigPath); err != nil {
		os.Remove(archivePath)
		return FetchResult{}, fmt.Errorf("fetch signature: %w", err)
	}

	return FetchResult{
		ArchivePath:   archivePath,
		SignaturePath: sigPath,
		Identifier:    identifier,
		Version:       version,
	}, nil
}

// bundleLayers extracts the archive and signature descriptors from a bundle
// manifest.
func bundleLayers(manifest *ocispec.Manifest) (archive, sig *ocispec.Descriptor, err error) {
	for i := range manifest.Layers {
		layer := &manifest.Layers[i]
		switch layer.MediaType {
		case MediaTypeArchive:
			archive = layer
		case MediaTypeSignature:
			sig = layer
		}
	}
	if archive == nil {
		return nil, nil, ErrMissingArchive
	}
	if sig == nil {
		return nil, nil, ErrMissingSignature
	}
	return archive, sig, nil
}

// layerFileName prefers the layer's title annotation, falling back to the
// derived name.
func layerFileName(desc *ocispec.Descriptor, fallback string) string {
	if title := desc.Annotations[ocispec.AnnotationTitle]; title != "" {
		// Never let a hostile annotation escape the destination directory.
		if base := filepath.Base(title); base == title {
			return title
		}
	}
	return fallback
}

// fetchBlobToFile streams a blob to destPath, verifying its digest along
// the way and renaming into place only on a clean verified download.
func fetchBlobToFile(ctx context.Context, c *Client, ref string, desc *ocispec.Descriptor, destPath string) error {
	rc, err := c.oci.FetchBlob(ctx, ref, desc)
	if err != nil {
		return mapOCIError(err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	verifier := desc.Digest.Verifier()
	n, err := io.Copy(io.MultiWriter(tmp, verifier), io.LimitReader(rc, desc.Size))
	if err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if n != desc.Size || !verifier.Verified() {
		return fmt.Errorf("%w: %s", ErrDigestMismatch, desc.Digest)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return fsutil.RenameAtomic(tmpName, destPath)
}
