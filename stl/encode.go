package stl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// DefaultHeader is the header text used when none is configured.
const DefaultHeader = "binary STL lithophane"

// ErrSizeMismatch is returned when a file's length disagrees with its
// declared triangle count.
var ErrSizeMismatch = errors.New("size does not match triangle count")

// Size returns the exact encoded size of a file holding n triangles.
func Size(n int) int64 {
	return HeaderSize + 4 + int64(n)*RecordSize
}

// Validate checks that size is the exact length of a binary STL file
// declaring count triangles.
func Validate(size int64, count uint32) error {
	if want := Size(int(count)); size != want {
		return fmt.Errorf("%v bytes for %v triangles, want %v: %w", size, count, want, ErrSizeMismatch)
	}
	return nil
}

// Header returns text as a zero-padded STL header, truncated to
// HeaderSize bytes. Text starting with "solid" is prefixed so that
// readers do not mistake the file for ASCII STL.
func Header(text string) [HeaderSize]byte {
	if strings.HasPrefix(strings.ToLower(text), "solid") {
		text = "binary " + text
	}
	var h [HeaderSize]byte
	copy(h[:], text)
	return h
}

// Encode writes a complete binary STL file containing tris to w and
// returns the number of bytes written.
func Encode(w io.Writer, header string, tris []Tri) (int64, error) {
	if uint64(len(tris)) > math.MaxUint32 {
		return 0, fmt.Errorf("%v triangles do not fit in a binary STL", len(tris))
	}

	cw := &countWriter{w: w}
	bw := bufio.NewWriter(cw)
	h := struct {
		Text  [HeaderSize]byte
		Count uint32
	}{Text: Header(header), Count: uint32(len(tris))}
	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return cw.n, fmt.Errorf("write header: %w", err)
	}
	for i := range tris {
		if err := binary.Write(bw, binary.LittleEndian, &tris[i]); err != nil {
			return cw.n, fmt.Errorf("write triangle %v: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("flush: %w", err)
	}
	return cw.n, nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
