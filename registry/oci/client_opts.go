package oci

import "oras.land/oras-go/v2/registry/remote/credentials"

// Option configures an OCI Client.
type Option func(*Client)

// WithCredentialStore sets the credential store for authentication.
func WithCredentialStore(store credentials.Store) Option {
	return func(c *Client) { c.credStore = store }
}

// WithDockerConfig enables reading credentials from ~/.docker/config.json.
// When the docker config cannot be loaded, the client falls back to no
// credentials.
func WithDockerConfig() Option {
	return func(c *Client) {
		store, err := credentials.NewStoreFromDocker(credentials.StoreOptions{})
		if err != nil {
			return
		}
		c.credStore = store
	}
}

// WithPlainHTTP enables plain HTTP (no TLS), for local development
// registries.
func WithPlainHTTP(enabled bool) Option {
	return func(c *Client) { c.plainHTTP = enabled }
}

// WithAnonymous disables all authentication, including credential store
// lookups.
func WithAnonymous() Option {
	return func(c *Client) { c.anonymous = true }
}

// WithUserAgent sets the User-Agent header for requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}
