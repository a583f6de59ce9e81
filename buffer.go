package scanadc

import "fmt"

// RawType holds one converted sample code.
type RawType uint16

// PackedType holds one dual-mode conversion: the master instance's code in
// the high 16 bits, the slave's in the low 16 bits.
type PackedType uint32

// Master extracts the master instance's code from a packed word.
func (w PackedType) Master() RawType {
	return RawType(w >> 16)
}

// Slave extracts the slave instance's code from a packed word.
func (w PackedType) Slave() RawType {
	return RawType(w)
}

// PackCombined builds the packed word a lock-step converter pair produces
// for one scan position.
func PackCombined(master, slave RawType) PackedType {
	return PackedType(master)<<16 | PackedType(slave)
}

// Default capture geometry, overridable through BufferConfig.
const (
	DefaultBufferSize = 256 // samples (or packed words) in the capture buffer
	DefaultWindow     = 16  // scan cycles averaged per read
)

// BufferConfig describes the capture memory geometry.
type BufferConfig struct {
	Size   int // total samples (or packed words); must hold whole scan cycles
	Window int // scan cycles averaged per read, at least 1
}

func (cfg BufferConfig) withDefaults() BufferConfig {
	if cfg.Size <= 0 {
		cfg.Size = DefaultBufferSize
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return cfg
}

// CaptureBuffer is the memory a streaming transfer deposits conversions
// into. Samples are interleaved: each scan cycle appends one code per active
// channel, so the code for rank r in cycle i sits at offset i*N+r. The
// transfer wraps when the buffer is full.
//
// The hardware owns and continuously overwrites this memory; the engine
// holds a read-only view and takes no lock. A read is correct as long as it
// completes within one buffer generation, i.e. before the transfer wraps
// past the offsets being probed. That single-writer/snapshot-reader
// assumption is part of this type's contract.
type CaptureBuffer struct {
	// Independent holds one 16-bit code per conversion (independent mode).
	Independent []RawType
	// Combined holds one packed word per scan position (dual mode).
	Combined []PackedType
}

// NewCaptureBuffer allocates capture memory of the given total size, in the
// layout the converter mode requires.
func NewCaptureBuffer(size int, combined bool) *CaptureBuffer {
	b := new(CaptureBuffer)
	if combined {
		b.Combined = make([]PackedType, size)
	} else {
		b.Independent = make([]RawType, size)
	}
	return b
}

// Size returns the buffer's capacity in samples (or packed words).
func (b *CaptureBuffer) Size() int {
	if b.Combined != nil {
		return len(b.Combined)
	}
	return len(b.Independent)
}

// splitCombined extracts one instance's codes from the packed dual-mode
// words: the master's when primary is true, the slave's otherwise. The
// split is a pure transform recomputed on every read, so it always reflects
// the current buffer contents.
func (b *CaptureBuffer) splitCombined(primary bool) []RawType {
	out := make([]RawType, len(b.Combined))
	if primary {
		for i, w := range b.Combined {
			out[i] = w.Master()
		}
	} else {
		for i, w := range b.Combined {
			out[i] = w.Slave()
		}
	}
	return out
}

// sampleAt returns the code for the given rank in scan cycle `cycle`
// (0-based, oldest first) from an interleaved view with nchan samples per
// cycle.
func sampleAt(view []RawType, rank, cycle, nchan int) (RawType, error) {
	id := cycle*nchan + rank
	if id < 0 || id >= len(view) {
		return 0, fmt.Errorf("%w: offset %d in a buffer of %d samples (cycle %d, rank %d, %d channels)",
			ErrIndexOutOfRange, id, len(view), cycle, rank, nchan)
	}
	return view[id], nil
}
