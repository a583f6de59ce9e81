// Package scanadc is a channel-multiplexed sampling engine for scan-sequenced
// analog-to-digital converters. A hardware sequencer assigns each active
// input channel a scan position ("rank") and the converter deposits one code
// per rank per scan cycle, either directly or through a streaming (DMA)
// transfer into a capture buffer. The engine resolves ranks from the
// sequencer configuration, extracts per-channel samples from the interleaved
// capture buffer, and averages a window of recent scan cycles into one
// reading.
package scanadc

// Peripheral is the boundary to the converter hardware. Register bring-up,
// calibration and interrupt wiring stay behind this interface; the engine
// only queries latched state, pulls converted values and re-arms captures.
//
// In combined mode two converter instances run in lock-step and produce one
// packed word per scan position; Primary reports whether this instance is
// the designated master of such a pair.
type Peripheral interface {
	// Running reports whether conversions are in progress.
	Running() bool
	// ContinuousMode reports whether the converter re-triggers itself in
	// hardware after each scan cycle.
	ContinuousMode() bool
	// CombinedMode reports whether this converter is half of a lock-step
	// dual-converter pair.
	CombinedMode() bool
	// StreamingEnabled reports whether a streaming (DMA) transfer deposits
	// conversions into a capture buffer.
	StreamingEnabled() bool
	// StreamingCircular reports whether the streaming transfer wraps and
	// refills the capture buffer on its own. A non-circular transfer stops
	// after one buffer fill and must be re-armed.
	StreamingCircular() bool
	// Primary reports whether this is the designated master instance.
	Primary() bool
	// Resolution returns the maximum code the converter can produce.
	Resolution() uint32

	Start() error
	Stop() error
	// StartStreaming arms an independent-mode streaming capture into buf.
	StartStreaming(buf []RawType) error
	// StartCombined arms a dual-mode streaming capture into buf. Only legal
	// on the primary instance.
	StartCombined(buf []PackedType) error

	// LatestSingleValue returns the most recent single conversion.
	LatestSingleValue() RawType
	// LatestCombinedValue returns the most recent packed dual conversion.
	LatestCombinedValue() PackedType

	// SequencerActiveChannelCount returns the number of channels the
	// sequencer converts per scan cycle.
	SequencerActiveChannelCount() uint32
	// SequencerChannelAtPosition returns the channel converted at scan
	// position pos, for pos in [0, SequencerActiveChannelCount()).
	SequencerChannelAtPosition(pos int) int
}
