/*
 * compress.go, part of goConf.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package confio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/goconf"
)

//Compression is the compression applied to a stream.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

//CompressionFor returns the compression implied by the extension of name:
//".gz" for gzip and ".zst" for zstd.
func CompressionFor(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	}
	return None
}

//Format returns the format of name, "json" or "xyz", ignoring compression extensions.
func Format(name string) string {
	name = strings.ToLower(name)
	if CompressionFor(name) != None {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.TrimPrefix(filepath.Ext(name), ".")
}

type multiCloser struct {
	io.Writer
	closers []io.Closer
}

//Close closes the compressor first, then the file.
func (M *multiCloser) Close() error {
	var first error
	for _, c := range M.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

//NewWriter wraps w with the compressor c. Closing the result flushes the compressor,
//but doesn't close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case Gzip:
		g, err := gzip.NewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, newError(ErrIO, err.Error(), "NewWriter")
		}
		return g, nil
	case Zstd:
		z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return nil, newError(ErrIO, err.Error(), "NewWriter")
		}
		return z, nil
	case None:
		return &multiCloser{Writer: w}, nil
	}
	return nil, newError(ErrUnsupported, "unknown compression", "NewWriter")
}

//NewReader returns a reader for the stream r compressed with c.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case Gzip:
		g, err := gzip.NewReader(r)
		if err != nil {
			return nil, newError(ErrFormat, err.Error(), "NewReader")
		}
		return g, nil
	case Zstd:
		z, err := zstd.NewReader(r)
		if err != nil {
			return nil, newError(ErrFormat, err.Error(), "NewReader")
		}
		return z.IOReadCloser(), nil
	case None:
		return io.NopCloser(bufio.NewReader(r)), nil
	}
	return nil, newError(ErrUnsupported, "unknown compression", "NewReader")
}

//Create creates the file name and returns a writer for it, compressed according to
//its extension. Closing the writer closes the file.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, newError(ErrIO, err.Error(), "Create")
	}
	w, err := NewWriter(f, CompressionFor(name))
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "Create")
	}
	return &multiCloser{Writer: w, closers: []io.Closer{w, f}}, nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (R *readCloser) Close() error {
	var first error
	for _, c := range R.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

//Open opens the file name for reading, decompressing it according to its extension.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, newError(ErrIO, err.Error(), "Open")
	}
	r, err := NewReader(f, CompressionFor(name))
	if err != nil {
		f.Close()
		return nil, errDecorate(err, "Open")
	}
	return &readCloser{Reader: r, closers: []io.Closer{r, f}}, nil
}

//ReadFile reads a molecule from the JSON file name, which may be compressed.
func ReadFile(name string) (*chem.Molecule, error) {
	if f := Format(name); f != "json" {
		return nil, newError(ErrUnsupported, "can't read format "+f, "ReadFile")
	}
	r, err := Open(name)
	if err != nil {
		return nil, errDecorate(err, "ReadFile")
	}
	defer r.Close()
	mol, err := ReadJSON(r)
	if err != nil {
		return nil, errDecorate(err, "ReadFile")
	}
	return mol, nil
}

//WriteFile writes mol to the file name, in JSON or XYZ format, compressed or not,
//according to the extensions of name.
func WriteFile(name string, mol *chem.Molecule) error {
	var write func(io.Writer, *chem.Molecule) error
	switch f := Format(name); f {
	case "json":
		write = WriteJSON
	case "xyz":
		write = WriteXYZ
	default:
		return newError(ErrUnsupported, "can't write format "+f, "WriteFile")
	}
	w, err := Create(name)
	if err != nil {
		return errDecorate(err, "WriteFile")
	}
	if err := write(w, mol); err != nil {
		w.Close()
		return errDecorate(err, "WriteFile")
	}
	if err := w.Close(); err != nil {
		return newError(ErrIO, err.Error(), "WriteFile")
	}
	return nil
}
