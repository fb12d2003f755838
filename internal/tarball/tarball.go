// Package tarball serializes a staged directory tree into a gzip-compressed
// tar archive with deterministic output.
package tarball

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// epoch is the fixed timestamp written into every tar header. Identical
// input trees must produce identical archive bytes.
var epoch = time.Unix(0, 0)

// Create walks dir and writes its contents to w as a tar.gz stream.
//
// Entries are written in lexical path order. Header timestamps and
// ownership are normalized so the archive is byte-for-byte reproducible
// for a given input tree and compression level. Symbolic links are stored
// as links, never followed.
//
// The requested gzip level falls back to the default level when the local
// implementation rejects it.
func Create(ctx context.Context, dir string, w io.Writer, level int) error {
	gz, err := gzip.NewWriterLevel(w, level)
	if err != nil {
		gz = gzip.NewWriter(w)
	}

	tw := tar.NewWriter(gz)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return err
	}
	defer root.Close()

	buf := make([]byte, 32*1024)
	walkErr := fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return werr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		return writeEntry(root, tw, buf, path, d)
	})
	if walkErr != nil {
		return walkErr
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip stream: %w", err)
	}
	return nil
}

// writeEntry emits one tar entry for the directory entry at path.
func writeEntry(root *os.Root, tw *tar.Writer, buf []byte, path string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	var link string
	if d.Type()&fs.ModeSymlink != 0 {
		fsPath := filepath.FromSlash(path)
		link, err = root.Readlink(fsPath)
		if err != nil {
			return err
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("header for %s: %w", path, err)
	}
	hdr.Name = path
	if d.IsDir() {
		hdr.Name += "/"
	}
	normalizeHeader(hdr)

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", path, err)
	}

	if !d.Type().IsRegular() {
		return nil
	}

	f, err := openNoFollow(root, filepath.FromSlash(path))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.CopyBuffer(tw, io.LimitReader(f, info.Size()), buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// normalizeHeader clears everything that varies between otherwise identical
// input trees.
func normalizeHeader(hdr *tar.Header) {
	hdr.ModTime = epoch
	hdr.AccessTime = time.Time{}
	hdr.ChangeTime = time.Time{}
	hdr.Uid = 0
	hdr.Gid = 0
	hdr.Uname = ""
	hdr.Gname = ""
	hdr.Format = tar.FormatPAX
}
