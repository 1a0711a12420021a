package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

type Filesystem struct {
	root string
	dfd  int
}

func newFilesystem(root string) (Filesystem, error) {
	dfd, err := unix.Open(root, unix.O_DIRECTORY|unix.O_PATH|unix.O_CLOEXEC, 0)
	if err != nil {
		return Filesystem{}, err
	}
	return Filesystem{
		root: root,
		dfd:  dfd,
	}, nil
}

func (f Filesystem) Close() error {
	return unix.Close(f.dfd)
}

func (f Filesystem) Open(name string) (File, error) {
	return f.openFile(name, os.O_RDONLY, 0)
}

func (f Filesystem) Create(name string) (File, error) {
	return f.openFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

// openFile resolves name inside the uploads root via openat2 with
// RESOLVE_IN_ROOT, so upload names can never escape the directory.
func (f Filesystem) openFile(name string, flag int, perm fs.FileMode) (File, error) {
	for {
		how := unix.OpenHow{
			Flags:   uint64(flag) | unix.O_CLOEXEC,
			Mode:    uint64(perm),
			Resolve: unix.RESOLVE_IN_ROOT,
		}
		fd, err := unix.Openat2(f.dfd, name, &how)
		if err != nil {
			// need to check for EINTR - Go issues 11180, 39237
			// also EAGAIN in case of unsafe race
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return nil, err
		}

		return os.NewFile(uintptr(fd), name), nil
	}
}

// Remove unlinks via the parent directory fd; unlinkat has no
// RESOLVE_IN_ROOT equivalent.
func (f Filesystem) Remove(name string) error {
	parentPath := filepath.Dir(name)
	parent, err := f.openFile(parentPath, unix.O_DIRECTORY|unix.O_PATH, 0)
	if err != nil {
		return err
	}
	parentFile, ok := parent.(*os.File)
	if !ok {
		return errors.New("unexpected parent file type")
	}
	defer parentFile.Close()

	return unix.Unlinkat(int(parentFile.Fd()), filepath.Base(name), 0)
}
