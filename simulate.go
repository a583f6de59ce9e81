package scanadc

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// SimConfig describes a simulated converter instance.
type SimConfig struct {
	// Channels is the active scan set in rank order. Ignored when Registers
	// is set.
	Channels []int
	// Registers optionally supplies a register-level sequencer snapshot;
	// the sim then decodes its scan set exactly as register-backed hardware
	// would.
	Registers *SequencerSnapshot

	Resolution uint32 // maximum code; defaults to 4095 (12-bit)
	Continuous bool   // hardware re-triggers after each scan cycle
	Combined   bool   // lock-step dual-converter pair
	Streaming  bool   // deposits conversions through a streaming transfer
	Circular   bool   // streaming transfer wraps and refills on its own
	Primary    bool   // designated master of a combined pair

	// SingleValues scripts successive LatestSingleValue pulls. When the
	// script runs out, the last value repeats.
	SingleValues []RawType
	// FailStart forces Start and the capture-arming calls to fail, for
	// exercising degraded re-arm paths.
	FailStart bool
}

// SimPeripheral is a hardware-free Peripheral for tests and demos. It
// errors on misuse (stopping a stopped converter, arming the wrong capture
// kind) the way real bring-up code would.
type SimPeripheral struct {
	cfg       SimConfig
	running   bool
	singleIdx int

	startCalls     int
	streamingCalls int
	combinedCalls  int

	streamBuf   []RawType
	combinedBuf []PackedType
}

// NewSimPeripheral builds a stopped simulated converter.
func NewSimPeripheral(cfg SimConfig) *SimPeripheral {
	if cfg.Resolution == 0 {
		cfg.Resolution = 4095
	}
	return &SimPeripheral{cfg: cfg}
}

// Running implements Peripheral.
func (sp *SimPeripheral) Running() bool { return sp.running }

// ContinuousMode implements Peripheral.
func (sp *SimPeripheral) ContinuousMode() bool { return sp.cfg.Continuous }

// CombinedMode implements Peripheral.
func (sp *SimPeripheral) CombinedMode() bool { return sp.cfg.Combined }

// StreamingEnabled implements Peripheral.
func (sp *SimPeripheral) StreamingEnabled() bool { return sp.cfg.Streaming }

// StreamingCircular implements Peripheral.
func (sp *SimPeripheral) StreamingCircular() bool { return sp.cfg.Circular }

// Primary implements Peripheral.
func (sp *SimPeripheral) Primary() bool { return sp.cfg.Primary }

// Resolution implements Peripheral.
func (sp *SimPeripheral) Resolution() uint32 { return sp.cfg.Resolution }

// Start begins conversions.
func (sp *SimPeripheral) Start() error {
	if sp.cfg.FailStart {
		return fmt.Errorf("SimPeripheral.Start: forced failure")
	}
	sp.running = true
	sp.startCalls++
	return nil
}

// Stop halts conversions. It errors when the converter is already stopped.
func (sp *SimPeripheral) Stop() error {
	if !sp.running {
		return fmt.Errorf("SimPeripheral.Stop: not running")
	}
	sp.running = false
	return nil
}

// StartStreaming arms an independent-mode capture into buf.
func (sp *SimPeripheral) StartStreaming(buf []RawType) error {
	if sp.cfg.FailStart {
		return fmt.Errorf("SimPeripheral.StartStreaming: forced failure")
	}
	if sp.cfg.Combined {
		return fmt.Errorf("SimPeripheral.StartStreaming called on a combined-mode converter: %s",
			spew.Sdump(sp.cfg))
	}
	sp.streamBuf = buf
	sp.running = true
	sp.streamingCalls++
	return nil
}

// StartCombined arms a dual-mode capture into buf.
func (sp *SimPeripheral) StartCombined(buf []PackedType) error {
	if sp.cfg.FailStart {
		return fmt.Errorf("SimPeripheral.StartCombined: forced failure")
	}
	if !sp.cfg.Combined || !sp.cfg.Primary {
		return fmt.Errorf("SimPeripheral.StartCombined requires a primary combined-mode converter: %s",
			spew.Sdump(sp.cfg))
	}
	sp.combinedBuf = buf
	sp.running = true
	sp.combinedCalls++
	return nil
}

// LatestSingleValue pulls the next scripted conversion.
func (sp *SimPeripheral) LatestSingleValue() RawType {
	script := sp.cfg.SingleValues
	if len(script) == 0 {
		return 0
	}
	if sp.singleIdx >= len(script) {
		return script[len(script)-1]
	}
	v := script[sp.singleIdx]
	sp.singleIdx++
	return v
}

// LatestCombinedValue packs the next scripted conversion into both halves.
func (sp *SimPeripheral) LatestCombinedValue() PackedType {
	v := sp.LatestSingleValue()
	return PackCombined(v, v)
}

// SequencerActiveChannelCount implements Peripheral.
func (sp *SimPeripheral) SequencerActiveChannelCount() uint32 {
	if sp.cfg.Registers != nil {
		return sp.cfg.Registers.ActiveChannelCount()
	}
	return uint32(len(sp.cfg.Channels))
}

// SequencerChannelAtPosition implements Peripheral.
func (sp *SimPeripheral) SequencerChannelAtPosition(pos int) int {
	if sp.cfg.Registers != nil {
		return sp.cfg.Registers.ChannelAtPosition(pos)
	}
	return sp.cfg.Channels[pos]
}

// StreamingBuffer returns the independent capture memory last armed, so a
// test or demo can play the hardware's role and fill it.
func (sp *SimPeripheral) StreamingBuffer() []RawType { return sp.streamBuf }

// CombinedBuffer returns the dual-mode capture memory last armed.
func (sp *SimPeripheral) CombinedBuffer() []PackedType { return sp.combinedBuf }

// StartCount returns how many times Start succeeded, for asserting restart
// behavior.
func (sp *SimPeripheral) StartCount() int { return sp.startCalls }

// StreamingStartCount returns how many times StartStreaming succeeded.
func (sp *SimPeripheral) StreamingStartCount() int { return sp.streamingCalls }

// CombinedStartCount returns how many times StartCombined succeeded.
func (sp *SimPeripheral) CombinedStartCount() int { return sp.combinedCalls }
