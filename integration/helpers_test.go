//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/meigma/bundle"
	"github.com/meigma/bundle/registry"
)

// --- Registry Container Setup ---

var (
	registryOnce sync.Once
	registryAddr string
	registryErr  error
)

// getRegistry returns the shared registry address, starting the container if needed.
// The container is shared across all tests for performance.
func getRegistry(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	registryOnce.Do(func() {
		ctx := context.Background()
		registryAddr, registryErr = startRegistryContainer(ctx)
	})

	if registryErr != nil {
		tb.Fatalf("start registry container: %v", registryErr)
	}

	return registryAddr
}

// startRegistryContainer starts a registry:2 container and returns the host:port address.
func startRegistryContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "registry:2",
		ExposedPorts: []string{"5000/tcp"},
		WaitingFor:   wait.ForHTTP("/v2/").WithPort("5000/tcp").WithStatusCodeMatcher(isOKStatus),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start registry container: %w", err)
	}

	// Note: Container cleanup is handled by testcontainers Reaper.

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve registry host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5000/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve registry port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// --- Test Client Factory ---

// newTestClient creates a registry client configured for the local test registry.
func newTestClient(opts ...registry.Option) *registry.Client {
	// Always use plain HTTP and no credentials against the local registry.
	allOpts := append([]registry.Option{
		registry.WithPlainHTTP(true),
		registry.WithAnonymous(),
	}, opts...)

	return registry.New(allOpts...)
}

// --- Test Reference Helpers ---

// testRef generates a unique reference for a test to avoid collisions.
func testRef(registryAddr, testName, tag string) string {
	return fmt.Sprintf("%s/test/%s:%s", registryAddr, testName, tag)
}

// --- Test Data Helpers ---

// createTestFiles writes test files to a directory.
func createTestFiles(tb testing.TB, dir string, files map[string][]byte) {
	tb.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		require.NoError(tb, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(tb, os.WriteFile(fullPath, content, 0o644))
	}
}

// buildSignedBundle builds and signs a bundle from files, returning the
// archive path and the verifying public key.
func buildSignedBundle(tb testing.TB, identifier string, version bundle.Version, files map[string][]byte) (string, []byte) {
	tb.Helper()

	source := filepath.Join(tb.TempDir(), identifier)
	createTestFiles(tb, source, files)

	result, err := bundle.Build(context.Background(), source,
		bundle.WithVersion(version),
		bundle.WithOutputDir(tb.TempDir()),
	)
	require.NoError(tb, err, "build bundle")

	kp, err := bundle.GenerateKeypair()
	require.NoError(tb, err, "generate keypair")
	_, err = bundle.SignFile(result.Path, kp.Private)
	require.NoError(tb, err, "sign bundle")

	return result.Path, kp.Public
}

// --- Standard Test Fixtures ---

// smallBundle is a simple flat source tree with 3 small files.
var smallBundle = map[string][]byte{
	"main.py":     []byte("print('hello')\n"),
	"helper.py":   []byte("x = 1\n"),
	"config.json": []byte(`{"version": 1, "name": "test"}`),
}
