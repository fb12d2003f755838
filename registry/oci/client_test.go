package oci

import (
	"bytes"
	"context"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2/registry/remote/auth"
)

func TestValidateDescriptor(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, validateDescriptor(nil), ErrInvalidDescriptor)
	assert.ErrorIs(t, validateDescriptor(&ocispec.Descriptor{}), ErrInvalidDescriptor)
	assert.ErrorIs(t, validateDescriptor(&ocispec.Descriptor{
		Digest: digest.FromString("x"),
		Size:   -1,
	}), ErrInvalidDescriptor)

	assert.NoError(t, validateDescriptor(&ocispec.Descriptor{
		Digest: digest.FromString("x"),
		Size:   1,
	}))
}

func TestPushBlobValidation(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	err := c.PushBlob(ctx, "example.com/repo", nil, bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrInvalidDescriptor)

	desc := &ocispec.Descriptor{Digest: digest.FromString("x"), Size: 1}
	err = c.PushBlob(ctx, "example.com/repo", desc, nil)
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestPushManifestValidation(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.PushManifest(context.Background(), "example.com/repo", "latest", nil)
	assert.ErrorIs(t, err, ErrManifestInvalid)
}

func TestAnonymousCredential(t *testing.T) {
	t.Parallel()

	c := New(WithAnonymous())
	cred, err := c.authClient.Credential(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, auth.EmptyCredential, cred)
}

func TestUserAgentDefault(t *testing.T) {
	t.Parallel()

	c := New()
	assert.Equal(t, "bundle-client/1.0", c.userAgent)

	c = New(WithUserAgent("custom/2.0"))
	assert.Equal(t, "custom/2.0", c.userAgent)
}

func TestRepositoryRejectsBadReference(t *testing.T) {
	t.Parallel()

	c := New()
	_, err := c.repository("not a valid ref!!")
	assert.Error(t, err)
}
