//go:build !unix

package tarball

import (
	"fmt"
	"io/fs"
	"os"
)

// openNoFollow opens a file for reading, rejecting symlinks.
func openNoFollow(root *os.Root, name string) (*os.File, error) {
	info, err := root.Lstat(name)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, fmt.Errorf("unexpected symlink: %s", name)
	}
	return root.Open(name)
}
