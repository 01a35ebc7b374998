//go:build unix

package internal

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenView maps path read-only. Every failure wraps ErrOpen.
// Empty files yield an empty view without a mapping.
func OpenView(path string) (*View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer f.Close()

	size, err := mappableSize(f)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return &View{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %s: %v", ErrOpen, path, err)
	}
	return &View{
		data:    data,
		release: func() error { return unix.Munmap(data) },
	}, nil
}
