//go:build unix

package tarball

import (
	"os"
	"syscall"
)

// openNoFollow opens a file for reading, failing if the final path
// component was swapped for a symlink after the walk observed it.
func openNoFollow(root *os.Root, name string) (*os.File, error) {
	return root.OpenFile(name, os.O_RDONLY|syscall.O_NOFOLLOW, 0)
}
