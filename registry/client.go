package registry

import (
	"context"
	"errors"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/errdef"
	orasregistry "oras.land/oras-go/v2/registry"

	"github.com/meigma/bundle/registry/oci"
)

// OCIClient defines the low-level OCI operations the bundle client needs.
//
// The default implementation wraps ORAS; tests substitute an in-memory
// fake.
type OCIClient interface {
	// PushBlob pushes a blob whose descriptor carries a pre-computed
	// digest and size.
	PushBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor, r io.Reader) error

	// FetchBlob fetches a blob. The caller closes the returned reader.
	FetchBlob(ctx context.Context, repoRef string, desc *ocispec.Descriptor) (io.ReadCloser, error)

	// PushManifest pushes a manifest under the given tag.
	PushManifest(ctx context.Context, repoRef, tag string, manifest *ocispec.Manifest) (ocispec.Descriptor, error)

	// FetchManifest fetches a manifest by descriptor.
	FetchManifest(ctx context.Context, repoRef string, expected *ocispec.Descriptor) (ocispec.Manifest, error)

	// Resolve resolves a tag or digest to a descriptor.
	Resolve(ctx context.Context, repoRef, ref string) (ocispec.Descriptor, error)
}

// Client publishes and fetches bundle artifacts.
type Client struct {
	oci OCIClient

	// ociOpts are passed through to the ORAS client when no custom
	// OCIClient is provided.
	ociOpts []oci.Option
}

// Option configures a Client.
type Option func(*Client)

// WithOCIClient substitutes a custom low-level client.
func WithOCIClient(c OCIClient) Option {
	return func(client *Client) { client.oci = c }
}

// WithPlainHTTP enables plain HTTP for local development registries.
func WithPlainHTTP(enabled bool) Option {
	return func(client *Client) {
		client.ociOpts = append(client.ociOpts, oci.WithPlainHTTP(enabled))
	}
}

// WithDockerConfig reads credentials from ~/.docker/config.json.
func WithDockerConfig() Option {
	return func(client *Client) {
		client.ociOpts = append(client.ociOpts, oci.WithDockerConfig())
	}
}

// WithAnonymous disables all authentication.
func WithAnonymous() Option {
	return func(client *Client) {
		client.ociOpts = append(client.ociOpts, oci.WithAnonymous())
	}
}

// New creates a Client. When no OCIClient is injected, a default
// ORAS-based client is built from the pass-through options.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	if c.oci == nil {
		c.oci = oci.New(c.ociOpts...)
	}
	return c
}

// parsedRef is a validated registry reference.
type parsedRef struct {
	repoRef string // full reference passed to the OCI layer
	tag     string // tag portion, empty when the ref is repo-only
}

// parseClientRef validates a reference and extracts its tag.
func parseClientRef(ref string) (parsedRef, error) {
	r, err := orasregistry.ParseReference(ref)
	if err != nil {
		return parsedRef{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return parsedRef{repoRef: ref, tag: r.Reference}, nil
}

// mapOCIError converts low-level OCI errors into package sentinels.
func mapOCIError(err error) error {
	if errors.Is(err, errdef.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
