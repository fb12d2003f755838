package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/bundle/internal/fsutil"
	"github.com/meigma/bundle/internal/tarball"
)

// Result describes a built archive.
type Result struct {
	// Path is the emitted archive, <outDir>/<identifier>-<version>.tar.gz.
	Path string

	// Name is the archive's base name. The name alone determines the
	// version of the bundle it carries.
	Name string

	// Digest is the SHA-256 digest of the final archive bytes, reported
	// for out-of-band integrity reference. It is not a trust decision;
	// the detached signature is.
	Digest digest.Digest

	// Size is the archive size in bytes.
	Size int64
}

// Build assembles a bundle archive from the tree at sourceDir.
//
// The source tree is staged under a directory named after the bundle
// identifier, the runtime tree (if configured) is staged next to it, the
// exclusion policy is applied, and the staging root is serialized to
// <identifier>-<version>.tar.gz with the strongest available gzip level.
//
// Every invocation stages into its own private temp directory, which is
// removed on all exit paths. The archive is written to a temp file and
// renamed into place, so an interrupted build never leaves a partial
// archive under the final name. Two concurrent builds never share state.
func Build(ctx context.Context, sourceDir string, opts ...BuildOption) (Result, error) {
	cfg := buildConfig{
		identifier: filepath.Base(filepath.Clean(sourceDir)),
		outDir:     ".",
		level:      gzip.BestCompression,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	version, err := cfg.resolveVersion()
	if err != nil {
		return Result{}, err
	}

	staging, err := os.MkdirTemp("", "bundle-stage-*")
	if err != nil {
		return Result{}, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := stage(staging, sourceDir, &cfg); err != nil {
		return Result{}, err
	}

	rules := cfg.rules
	if rules == nil {
		rules = DefaultRules()
	}
	if err := applyRules(staging, rules); err != nil {
		return Result{}, fmt.Errorf("apply exclusion policy: %w", err)
	}

	name := fmt.Sprintf("%s-%s.tar.gz", cfg.identifier, version)
	return emit(ctx, staging, name, &cfg)
}

// resolveVersion picks the explicit version when one was set, otherwise
// consults the configured store.
func (c *buildConfig) resolveVersion() (Version, error) {
	if c.versionSet {
		return c.version, nil
	}
	if c.store != nil {
		return c.store.Current()
	}
	return Version{}, ErrMissingVersion
}

// stage copies the source tree (and runtime tree, when configured) into the
// staging root.
func stage(staging, sourceDir string, cfg *buildConfig) error {
	appRoot := filepath.Join(staging, cfg.identifier)
	if err := fsutil.CopyTree(appRoot, sourceDir); err != nil {
		return fmt.Errorf("stage source tree: %w", err)
	}

	if cfg.runtimeDir == "" {
		return nil
	}

	runtime := cfg.runtimeDir
	if _, err := os.Stat(runtime); err != nil {
		runtime = cfg.runtimeFallback
		if runtime == "" {
			return fmt.Errorf("%w: %s", ErrMissingRuntime, cfg.runtimeDir)
		}
		if _, err := os.Stat(runtime); err != nil {
			return fmt.Errorf("%w: %s (fallback %s)", ErrMissingRuntime, cfg.runtimeDir, cfg.runtimeFallback)
		}
	}

	dest := filepath.Join(staging, filepath.Base(filepath.Clean(runtime)))
	if err := fsutil.CopyTree(dest, runtime); err != nil {
		return fmt.Errorf("stage runtime tree: %w", err)
	}
	return nil
}

// emit serializes the staging root and moves the archive into place.
func emit(ctx context.Context, staging, name string, cfg *buildConfig) (Result, error) {
	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(cfg.outDir, "."+name+".tmp-*")
	if err != nil {
		return Result{}, fmt.Errorf("create archive temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	digester := digest.Canonical.Digester()
	counting := &countingWriter{w: io.MultiWriter(tmp, digester.Hash())}

	if err := tarball.Create(ctx, staging, counting, cfg.level); err != nil {
		tmp.Close()
		return Result{}, fmt.Errorf("serialize archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, fmt.Errorf("close archive temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return Result{}, fmt.Errorf("set archive permissions: %w", err)
	}

	dest := filepath.Join(cfg.outDir, name)
	if err := fsutil.RenameAtomic(tmpName, dest); err != nil {
		return Result{}, fmt.Errorf("move archive into place: %w", err)
	}

	return Result{
		Path:   dest,
		Name:   name,
		Digest: digester.Digest(),
		Size:   counting.n,
	}, nil
}

// countingWriter tracks the number of bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
