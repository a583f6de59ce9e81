package scanadc

import (
	"fmt"
	"io"

	"github.com/sbinet/npyio"
)

// WriteSnapshot writes the current capture-buffer contents to w in numpy's
// .npy format for offline inspection: uint16 codes for an independent
// buffer, uint32 packed words for a dual-mode buffer. The snapshot is a
// copy, taken under the same single-generation assumption as any read.
func WriteSnapshot(w io.Writer, buf *CaptureBuffer) error {
	if buf == nil {
		return fmt.Errorf("WriteSnapshot: nil capture buffer")
	}
	if buf.Combined != nil {
		words := make([]uint32, len(buf.Combined))
		for i, v := range buf.Combined {
			words[i] = uint32(v)
		}
		return npyio.Write(w, words)
	}
	codes := make([]uint16, len(buf.Independent))
	for i, v := range buf.Independent {
		codes[i] = uint16(v)
	}
	return npyio.Write(w, codes)
}

// WriteRankSnapshot writes one rank's samples across every captured scan
// cycle, already demuxed from the interleaved (and, in dual mode, packed)
// layout.
func WriteRankSnapshot(w io.Writer, e *Engine, rank int) error {
	if e.buf == nil || e.ranks == nil {
		return fmt.Errorf("WriteRankSnapshot: engine not initialized")
	}
	nchan := e.ranks.NumActive()
	if rank < 0 || nchan < 1 || rank >= nchan {
		return fmt.Errorf("%w: rank %d with %d active channels", ErrRankNotFound, rank, nchan)
	}
	view := e.rankView()
	cycles := len(view) / nchan
	codes := make([]uint16, 0, cycles)
	for i := 0; i < cycles; i++ {
		v, err := sampleAt(view, rank, i, nchan)
		if err != nil {
			return err
		}
		codes = append(codes, uint16(v))
	}
	return npyio.Write(w, codes)
}
