// Package stl reads and writes binary STL files.
package stl

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	// HeaderSize is the size of the free-form header in bytes.
	HeaderSize = 80
	// RecordSize is the size of one encoded triangle in bytes.
	RecordSize = 50

	bufSize = 10000
)

// Client is a streaming binary STL file writer client.
//
// Triangles are written to a temporary file next to the destination
// which only replaces the destination once Close succeeds.
type Client struct {
	wg sync.WaitGroup // ensures file is closed
	ch chan Tri

	filename string
	tmpName  string

	mu    sync.RWMutex
	err   error
	count uint32
}

// Tri represents an STL triangle.
type Tri struct {
	// Normal plus three vertex triplets: [3]float{x,y,z}
	N, V1, V2, V3 [3]float32
	_             uint16 // unused attribute byte count
}

// New creates a new streaming binary STL file writer.
// header is stored in the 80-byte file header (see Header).
func New(filename, header string) (*Client, error) {
	out, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*.tmp")
	if err != nil {
		return nil, err
	}
	// Write header
	h := struct {
		Text  [HeaderSize]byte
		Count uint32 // count will be overwritten on channel close.
	}{Text: Header(header)}
	if err := binary.Write(out, binary.LittleEndian, &h); err != nil {
		out.Close()
		os.Remove(out.Name())
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	c := &Client{
		ch:       make(chan Tri, bufSize),
		filename: filename,
		tmpName:  out.Name(),
	}
	c.start(out)
	return c, nil
}

func (c *Client) start(out writeSeekCloser) {
	c.wg.Add(1)
	go func() {
		count, err := writer(out, c.ch, func(err error) {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
		})
		c.mu.Lock()
		c.count, c.err = count, err
		c.mu.Unlock()
		c.wg.Done()
	}()
}

// Write writes a triangle to the STL file. Writes are asynchronous, so
// a failure of the underlying file is returned by a later Write and
// always by Close.
func (c *Client) Write(t *Tri) error {
	c.ch <- *t
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Close finalizes the STL file and moves it into place.
// On error, the temporary file is removed and the destination is
// left untouched.
func (c *Client) Close() error {
	close(c.ch)
	c.wg.Wait()
	if c.tmpName == "" {
		return c.err
	}
	if c.err != nil {
		os.Remove(c.tmpName)
		return c.err
	}
	if err := os.Rename(c.tmpName, c.filename); err != nil {
		os.Remove(c.tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Abort stops writing and discards everything written so far.
func (c *Client) Abort() {
	close(c.ch)
	c.wg.Wait()
	if c.tmpName != "" {
		os.Remove(c.tmpName)
	}
}

// Count returns the number of triangles written. It is only valid
// after Close.
func (c *Client) Count() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}

type writeSeekCloser interface {
	io.Writer
	io.Seeker
	io.Closer
}

// writer copies triangles from ch to out until ch is closed. The first
// write error is passed to report as soon as it happens.
func writer(out writeSeekCloser, ch <-chan Tri, report func(error)) (uint32, error) {
	var count uint32
	var err error
	for t := range ch {
		if err != nil {
			continue // keep draining so Write never blocks
		}
		if werr := binary.Write(out, binary.LittleEndian, &t); werr != nil {
			err = fmt.Errorf("write triangle %#v: %w", t, werr)
			report(err)
			continue
		}
		count++
	}
	if err != nil {
		out.Close()
		return count, err
	}

	if _, err := out.Seek(HeaderSize, io.SeekStart); err != nil {
		out.Close()
		return count, fmt.Errorf("seek: %w", err)
	}

	if err := binary.Write(out, binary.LittleEndian, &count); err != nil {
		out.Close()
		return count, fmt.Errorf("write count %v: %w", count, err)
	}

	return count, out.Close()
}
