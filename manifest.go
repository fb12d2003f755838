package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/meigma/bundle/internal/fsutil"
)

// Platform describes one published bundle within a release.
type Platform struct {
	URL       string `json:"url"`
	Signature string `json:"signature"`
	Size      int64  `json:"size"`
	Checksum  string `json:"checksum"`
}

// Release is the engines.json manifest consumers poll to discover bundle
// versions and download locations.
type Release struct {
	Version   string              `json:"version"`
	PubDate   string              `json:"pub_date"`
	Platforms map[string]Platform `json:"platforms"`
}

// ManifestOptions configures release manifest generation.
type ManifestOptions struct {
	// DistDir is the directory holding built archives.
	DistDir string

	// Version selects which archives to describe.
	Version Version

	// BaseURL is the download location prefix. A "{version}" placeholder
	// is replaced with the release version.
	BaseURL string

	// Platforms lists the platform identifiers to include, e.g.
	// "macos-arm64". Platforms whose archive is missing or empty are
	// skipped with a warning rather than failing the release.
	Platforms []string
}

// GenerateManifest builds a Release describing the archives in DistDir.
//
// Checksums are computed concurrently, one goroutine per platform. Returns
// an error when no platform has a usable archive.
func GenerateManifest(ctx context.Context, opts ManifestOptions) (Release, []string, error) {
	baseURL := strings.ReplaceAll(opts.BaseURL, "{version}", opts.Version.String())

	results := make([]*Platform, len(opts.Platforms))
	warnings := make([]string, len(opts.Platforms))

	g, ctx := errgroup.WithContext(ctx)
	for i, platform := range opts.Platforms {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			name := fmt.Sprintf("%s-%s.tar.gz", platform, opts.Version)
			archivePath := filepath.Join(opts.DistDir, name)

			info, err := os.Stat(archivePath)
			if err != nil || info.Size() == 0 {
				warnings[i] = fmt.Sprintf("bundle not found or empty: %s", archivePath)
				return nil
			}

			checksum, err := checksumFile(archivePath)
			if err != nil {
				return fmt.Errorf("checksum %s: %w", archivePath, err)
			}

			results[i] = &Platform{
				URL:       baseURL + "/" + name,
				Signature: baseURL + "/" + name + ".sig",
				Size:      info.Size(),
				Checksum:  checksum,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Release{}, nil, err
	}

	platforms := make(map[string]Platform)
	var warned []string
	for i, platform := range opts.Platforms {
		if results[i] != nil {
			platforms[platform] = *results[i]
		} else if warnings[i] != "" {
			warned = append(warned, warnings[i])
		}
	}
	if len(platforms) == 0 {
		return Release{}, warned, fmt.Errorf("no valid platforms found with built artifacts")
	}

	return Release{
		Version:   opts.Version.String(),
		PubDate:   time.Now().UTC().Format("2006-01-02T15:04:05Z"),
		Platforms: platforms,
	}, warned, nil
}

// WriteManifest serializes the release to path atomically.
func WriteManifest(path string, release Release) error {
	data, err := json.MarshalIndent(release, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return fsutil.WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// checksumFile returns the bare hex SHA-256 of the file at path.
func checksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	d, err := digest.Canonical.FromReader(f)
	if err != nil {
		return "", err
	}
	return d.Encoded(), nil
}
