//go:build !unix && !windows

package internal

import (
	"fmt"
	"io"
	"os"
)

// OpenView reads path into memory on platforms without a mapping facility.
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
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrOpen, path, err)
	}
	return &View{data: data}, nil
}
