package internal

import (
	"fmt"
	"math"
	"os"
)

// View is a read-only window over the whole content of one file.
// It is owned by a single search and must be closed when the search returns.
type View struct {
	data    []byte
	release func() error
}

// Bytes returns the mapped content. The slice is invalid after Close.
func (v *View) Bytes() []byte { return v.data }

// Len is the file size at open time.
func (v *View) Len() int { return len(v.data) }

// Close unmaps the file. Calling it more than once is a no-op.
func (v *View) Close() error {
	release := v.release
	v.data, v.release = nil, nil
	if release == nil {
		return nil
	}
	return release()
}

// mappableSize returns the size of a regular file that fits in the address space.
func mappableSize(f *os.File) (int, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if !st.Mode().IsRegular() {
		return 0, fmt.Errorf("%w: %s: not a regular file", ErrOpen, f.Name())
	}
	if st.Size() > math.MaxInt {
		return 0, fmt.Errorf("%w: %s: too large to map (%d bytes)", ErrOpen, f.Name(), st.Size())
	}
	return int(st.Size()), nil
}
