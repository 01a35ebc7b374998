//go:build windows

package internal

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
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

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, uint32(uint64(size)>>32), uint32(size), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateFileMapping %s: %v", ErrOpen, path, err)
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	_ = windows.CloseHandle(h)
	if err != nil {
		return nil, fmt.Errorf("%w: MapViewOfFile %s: %v", ErrOpen, path, err)
	}
	return &View{
		data:    unsafe.Slice((*byte)(unsafe.Pointer(addr)), size),
		release: func() error { return windows.UnmapViewOfFile(addr) },
	}, nil
}
