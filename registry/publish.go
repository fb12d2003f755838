package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/meigma/bundle"
)

// Publish pushes a signed bundle archive and its detached signature to an
// OCI registry as a single artifact.
//
// The ref must include a tag. The archive at archivePath must already have
// its <archive>.sig next to it; unsigned bundles are not publishable.
// Returns the descriptor of the pushed manifest.
func Publish(ctx context.Context, c *Client, ref, archivePath string) (ocispec.Descriptor, error) {
	parsed, err := parseClientRef(ref)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	if parsed.tag == "" {
		return ocispec.Descriptor{}, fmt.Errorf("%w: reference must include a tag", ErrInvalidReference)
	}

	name := filepath.Base(archivePath)
	identifier, version, err := bundle.ParseArchiveName(name)
	if err != nil {
		return ocispec.Descriptor{}, err
	}

	sigPath := archivePath + ".sig"
	sigData, err := os.ReadFile(sigPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ocispec.Descriptor{}, fmt.Errorf("%w: %s (sign the bundle first)", ErrMissingSignature, sigPath)
		}
		return ocispec.Descriptor{}, fmt.Errorf("read signature: %w", err)
	}

	// Empty JSON config blob required by the OCI spec.
	config := []byte("{}")
	configDesc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeEmptyJSON,
		Digest:    digest.FromBytes(config),
		Size:      int64(len(config)),
	}
	if err := c.oci.PushBlob(ctx, ref, &configDesc, bytes.NewReader(config)); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push config: %w", mapOCIError(err))
	}

	archiveDesc, err := archiveDescriptor(archivePath, name)
	if err != nil {
		return ocispec.Descriptor{}, err
	}
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("read archive: %w", err)
	}
	err = c.oci.PushBlob(ctx, ref, &archiveDesc, archiveFile)
	archiveFile.Close()
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push archive blob: %w", mapOCIError(err))
	}

	sigDesc := ocispec.Descriptor{
		MediaType: MediaTypeSignature,
		Digest:    digest.FromBytes(sigData),
		Size:      int64(len(sigData)),
		Annotations: map[string]string{
			ocispec.AnnotationTitle: name + ".sig",
		},
	}
	if err := c.oci.PushBlob(ctx, ref, &sigDesc, bytes.NewReader(sigData)); err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push signature blob: %w", mapOCIError(err))
	}

	manifest := ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       configDesc,
		Layers:       []ocispec.Descriptor{archiveDesc, sigDesc},
		Annotations: map[string]string{
			AnnotationIdentifier:      identifier,
			AnnotationVersion:         version.String(),
			ocispec.AnnotationCreated: time.Now().UTC().Format(time.RFC3339),
		},
	}
	desc, err := c.oci.PushManifest(ctx, ref, parsed.tag, &manifest)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("push manifest: %w", mapOCIError(err))
	}
	return desc, nil
}

// archiveDescriptor builds the archive layer descriptor by digesting the
// file on disk.
func archiveDescriptor(archivePath, name string) (ocispec.Descriptor, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("read archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("stat archive: %w", err)
	}
	d, err := digest.Canonical.FromReader(f)
	if err != nil {
		return ocispec.Descriptor{}, fmt.Errorf("digest archive: %w", err)
	}

	return ocispec.Descriptor{
		MediaType: MediaTypeArchive,
		Digest:    d,
		Size:      info.Size(),
		Annotations: map[string]string{
			ocispec.AnnotationTitle: name,
		},
	}, nil
}
