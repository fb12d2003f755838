package bundle

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree materializes a map of relative path to content under dir.
func writeTree(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(tb, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(tb, os.WriteFile(p, []byte(content), 0o644))
	}
}

// archiveEntries reads back an archive's sorted file entries.
func archiveEntries(tb testing.TB, archivePath string) []string {
	tb.Helper()

	f, err := os.Open(archivePath)
	require.NoError(tb, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(tb, err)
	defer gz.Close()

	var entries []string
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(tb, err)
		if hdr.Typeflag == tar.TypeReg {
			entries = append(entries, hdr.Name)
		}
	}
	sort.Strings(entries)
	return entries
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("archive name and contents", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "hand_near_face")
		writeTree(t, source, map[string]string{
			"main.py":       "print('hi')\n",
			"lib/helper.py": "x = 1\n",
		})
		outDir := t.TempDir()

		result, err := Build(context.Background(), source,
			WithVersion(Version{1, 0, 0}),
			WithOutputDir(outDir),
		)
		require.NoError(t, err)

		assert.Equal(t, "hand_near_face-1.0.0.tar.gz", result.Name)
		assert.Equal(t, filepath.Join(outDir, result.Name), result.Path)
		assert.Positive(t, result.Size)

		info, err := os.Stat(result.Path)
		require.NoError(t, err)
		assert.Equal(t, result.Size, info.Size())

		entries := archiveEntries(t, result.Path)
		assert.Equal(t, []string{
			"hand_near_face/lib/helper.py",
			"hand_near_face/main.py",
		}, entries)
	})

	t.Run("exclusion policy prunes staged tree", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "engine")
		writeTree(t, source, map[string]string{
			"main.py":                          "code\n",
			"__pycache__/main.cpython-311.pyc": "bc\n",
			"util.pyc":                         "bc\n",
			"tests/test_main.py":               "test\n",
			"docs/index.html":                  "doc\n",
			"README.md":                        "readme\n",
			"LICENSE":                          "license\n",
			"vendor/requests.dist-info/RECORD": "meta\n",
			"vendor/pip/__init__.py":           "pip\n",
			"vendor/types.pyi":                 "stub\n",
			// mediapipe subtrees are exempt from the test rules.
			"vendor/mediapipe/tests/data.bin":             "runtime data\n",
			"vendor/mediapipe/test_graph.py":              "runtime data\n",
			"vendor/mediapipe-0.10.dist-info/METADATA":    "kept metadata\n",
			"vendor/mediapipe/modules/graph.binarypb":     "graph\n",
			"vendor/numpy/core/multiarray.cpython-311.so": "elf\n",
		})

		result, err := Build(context.Background(), source,
			WithVersion(Version{2, 1, 0}),
			WithOutputDir(t.TempDir()),
		)
		require.NoError(t, err)

		entries := archiveEntries(t, result.Path)
		assert.Equal(t, []string{
			"engine/main.py",
			"engine/vendor/mediapipe-0.10.dist-info/METADATA",
			"engine/vendor/mediapipe/modules/graph.binarypb",
			"engine/vendor/mediapipe/test_graph.py",
			"engine/vendor/mediapipe/tests/data.bin",
			"engine/vendor/numpy/core/multiarray.cpython-311.so",
		}, entries)
	})

	t.Run("identifier override", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "src")
		writeTree(t, source, map[string]string{"app.py": "x\n"})

		result, err := Build(context.Background(), source,
			WithIdentifier("renamed"),
			WithVersion(Version{0, 1, 0}),
			WithOutputDir(t.TempDir()),
		)
		require.NoError(t, err)
		assert.Equal(t, "renamed-0.1.0.tar.gz", result.Name)
		assert.Equal(t, []string{"renamed/app.py"}, archiveEntries(t, result.Path))
	})

	t.Run("runtime staged beside source", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		source := filepath.Join(base, "engine")
		runtime := filepath.Join(base, "python-runtime")
		writeTree(t, source, map[string]string{"main.py": "x\n"})
		writeTree(t, runtime, map[string]string{"bin/python3": "elf\n"})

		result, err := Build(context.Background(), source,
			WithVersion(Version{1, 0, 0}),
			WithRuntime(runtime),
			WithOutputDir(t.TempDir()),
		)
		require.NoError(t, err)

		entries := archiveEntries(t, result.Path)
		assert.Equal(t, []string{
			"engine/main.py",
			"python-runtime/bin/python3",
		}, entries)
	})

	t.Run("missing runtime", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "engine")
		writeTree(t, source, map[string]string{"main.py": "x\n"})

		_, err := Build(context.Background(), source,
			WithVersion(Version{1, 0, 0}),
			WithRuntime(filepath.Join(t.TempDir(), "absent")),
			WithOutputDir(t.TempDir()),
		)
		assert.ErrorIs(t, err, ErrMissingRuntime)
	})

	t.Run("runtime fallback", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		source := filepath.Join(base, "engine")
		fallback := filepath.Join(base, "runtime-fallback")
		writeTree(t, source, map[string]string{"main.py": "x\n"})
		writeTree(t, fallback, map[string]string{"bin/python3": "elf\n"})

		result, err := Build(context.Background(), source,
			WithVersion(Version{1, 0, 0}),
			WithRuntime(filepath.Join(base, "absent")),
			WithRuntimeFallback(fallback),
			WithOutputDir(t.TempDir()),
		)
		require.NoError(t, err)

		entries := archiveEntries(t, result.Path)
		assert.Contains(t, entries, "runtime-fallback/bin/python3")
	})

	t.Run("missing version", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "engine")
		writeTree(t, source, map[string]string{"main.py": "x\n"})

		_, err := Build(context.Background(), source, WithOutputDir(t.TempDir()))
		assert.ErrorIs(t, err, ErrMissingVersion)
	})

	t.Run("version from store", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "engine")
		writeTree(t, source, map[string]string{"main.py": "x\n"})

		store := NewStore(&MemoryBackend{})
		_, err := store.Set("3.1.4")
		require.NoError(t, err)

		result, err := Build(context.Background(), source,
			WithVersionStore(store),
			WithOutputDir(t.TempDir()),
		)
		require.NoError(t, err)
		assert.Equal(t, "engine-3.1.4.tar.gz", result.Name)
	})

	t.Run("source untouched", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "engine")
		writeTree(t, source, map[string]string{
			"main.py":   "x\n",
			"README.md": "readme\n",
		})

		_, err := Build(context.Background(), source,
			WithVersion(Version{1, 0, 0}),
			WithOutputDir(t.TempDir()),
		)
		require.NoError(t, err)

		// Exclusions apply to the staged copy only.
		_, err = os.Stat(filepath.Join(source, "README.md"))
		assert.NoError(t, err)
	})
}

func TestBuildReproducible(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "engine")
	writeTree(t, source, map[string]string{
		"main.py":       "code\n",
		"lib/helper.py": "more code\n",
	})

	first, err := Build(context.Background(), source,
		WithVersion(Version{1, 0, 0}),
		WithOutputDir(t.TempDir()),
	)
	require.NoError(t, err)

	second, err := Build(context.Background(), source,
		WithVersion(Version{1, 0, 0}),
		WithOutputDir(t.TempDir()),
	)
	require.NoError(t, err)

	assert.Equal(t, first.Digest, second.Digest)
	assert.Equal(t, first.Size, second.Size)
}

func TestBuildConcurrent(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	sourceA := filepath.Join(base, "engine_a")
	sourceB := filepath.Join(base, "engine_b")
	writeTree(t, sourceA, map[string]string{"a.py": "a\n"})
	writeTree(t, sourceB, map[string]string{"b.py": "b\n"})
	outDir := t.TempDir()

	var wg sync.WaitGroup
	results := make([]Result, 2)
	errs := make([]error, 2)
	for i, source := range []string{sourceA, sourceB} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = Build(context.Background(), source,
				WithVersion(Version{1, 0, 0}),
				WithOutputDir(outDir),
			)
		}()
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, []string{"engine_a/a.py"}, archiveEntries(t, results[0].Path))
	assert.Equal(t, []string{"engine_b/b.py"}, archiveEntries(t, results[1].Path))
}

func TestBuildCancelled(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "engine")
	writeTree(t, source, map[string]string{"main.py": "x\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, source,
		WithVersion(Version{1, 0, 0}),
		WithOutputDir(t.TempDir()),
	)
	assert.ErrorIs(t, err, context.Canceled)
}
