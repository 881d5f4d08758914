package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Mesh is a decoded binary STL file.
type Mesh struct {
	Header string
	Tris   []Tri
}

// Read decodes a binary STL file. The payload must hold exactly the
// declared number of triangles.
func Read(r io.Reader) (*Mesh, error) {
	var header struct {
		H    [HeaderSize]byte
		NTri uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	m := &Mesh{
		Header: string(bytes.TrimRight(header.H[:], "\x00 ")),
		Tris:   make([]Tri, 0, min(header.NTri, 1<<20)),
	}
	for i := 0; i < int(header.NTri); i++ {
		var t Tri
		if err := binary.Read(r, binary.LittleEndian, &t); err != nil {
			return nil, fmt.Errorf("read triangle %v of %v: %w", i, header.NTri, ErrSizeMismatch)
		}
		m.Tris = append(m.Tris, t)
	}

	var extra [1]byte
	if n, _ := io.ReadFull(r, extra[:]); n > 0 {
		return nil, fmt.Errorf("trailing data after %v triangles: %w", header.NTri, ErrSizeMismatch)
	}
	return m, nil
}

// ReadFile reads the binary STL file at filename.
func ReadFile(filename string) (*Mesh, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}
