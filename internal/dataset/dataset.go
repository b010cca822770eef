// Package dataset reads TEXMEX benchmark vector files (http://corpus-texmex.irisa.fr/):
// .fvecs (float32 vectors), .ivecs (int32 vectors, typically ground-truth
// neighbor ids), and .bvecs (unsigned byte vectors). Every record is
// stored little-endian as a 4-byte dimension prefix followed by that many
// elements.
//
// Grounded on original_source/src/readers/BinaryFileReader.py,
// FvecsReader.py, and IvecsReader.py for the exact on-disk layout. The
// Python original's abstract Reader base class plus ReaderFactory is
// replaced here by a tagged Format variant and a package-level Registry,
// following the same mutex-guarded-map-plus-global-instance idiom the
// teacher uses for its own registries (internal/quant/registry.go,
// internal/index/registry.go in xDarkicex/libravdb).
package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lborges/ivfadc/internal/errs"
)

// Format tags which TEXMEX binary layout a file uses.
type Format int

const (
	FormatFvecs Format = iota
	FormatIvecs
	FormatBvecs
	FormatCustom
)

func (f Format) String() string {
	switch f {
	case FormatFvecs:
		return "fvecs"
	case FormatIvecs:
		return "ivecs"
	case FormatBvecs:
		return "bvecs"
	default:
		return "custom"
	}
}

// ReadFloat32 reads a .fvecs (or .bvecs, widened to float32) file into an
// N x D matrix. Every record must share the same dimension; a mismatch
// fails with ErrMalformedFile.
func ReadFloat32(path string, format Format) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, errs.ErrMalformedFile)
	}
	defer f.Close()

	var rows [][]float32
	var dim int
	first := true

	for {
		d, err := readDim(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading dimension in %s: %w", path, errs.ErrMalformedFile)
		}
		if first {
			dim = d
			first = false
		} else if d != dim {
			return nil, fmt.Errorf("dataset: %s: row dimension %d, want %d: %w", path, d, dim, errs.ErrMalformedFile)
		}

		row, err := readRowFloat32(f, d, format)
		if err != nil {
			return nil, fmt.Errorf("dataset: reading row in %s: %w", path, errs.ErrMalformedFile)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadInt32 reads a .ivecs file into an N x D matrix of int32, typically
// ground-truth neighbor ids.
func ReadInt32(path string) ([][]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, errs.ErrMalformedFile)
	}
	defer f.Close()

	var rows [][]int32
	var dim int
	first := true

	for {
		d, err := readDim(f)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: reading dimension in %s: %w", path, errs.ErrMalformedFile)
		}
		if first {
			dim = d
			first = false
		} else if d != dim {
			return nil, fmt.Errorf("dataset: %s: row dimension %d, want %d: %w", path, d, dim, errs.ErrMalformedFile)
		}

		row := make([]int32, d)
		if err := binary.Read(f, binary.LittleEndian, row); err != nil {
			return nil, fmt.Errorf("dataset: reading row in %s: %w", path, errs.ErrMalformedFile)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readDim(r io.Reader) (int, error) {
	var d int32
	if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
		return 0, err
	}
	return int(d), nil
}

func readRowFloat32(r io.Reader, dim int, format Format) ([]float32, error) {
	switch format {
	case FormatFvecs, FormatCustom:
		row := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, row); err != nil {
			return nil, err
		}
		return row, nil
	case FormatBvecs:
		raw := make([]uint8, dim)
		if err := binary.Read(r, binary.LittleEndian, raw); err != nil {
			return nil, err
		}
		row := make([]float32, dim)
		for i, v := range raw {
			row[i] = float32(v)
		}
		return row, nil
	default:
		return nil, fmt.Errorf("dataset: unsupported format %v", format)
	}
}

// Registry maps a file extension to the Format used to read it, mirroring
// ReaderFactory.getFormat/getReader/registerReader — owned by the driver
// (cmd/ivfadc-bench), never by the core index.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Format
}

// NewRegistry returns a Registry preloaded with the three built-in TEXMEX
// extensions.
func NewRegistry() *Registry {
	return &Registry{
		byExt: map[string]Format{
			"fvecs": FormatFvecs,
			"ivecs": FormatIvecs,
			"bvecs": FormatBvecs,
		},
	}
}

// Register associates ext (without the leading dot) with format, adding or
// overriding an entry.
func (r *Registry) Register(ext string, format Format) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byExt[ext] = format
}

// FormatFor returns the Format registered for path's extension, or
// FormatCustom if none matches.
func (r *Registry) FormatFor(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.byExt[ext]; ok {
		return f
	}
	return FormatCustom
}

var defaultRegistry = NewRegistry()

// Register adds ext to the process-wide default registry.
func Register(ext string, format Format) { defaultRegistry.Register(ext, format) }

// FormatFor resolves path's extension against the process-wide default
// registry.
func FormatFor(path string) Format { return defaultRegistry.FormatFor(path) }
