package scanadc

import "fmt"

// ScalingPolicy converts an averaged raw code into a physical value. The
// engine depends only on this capability; callers with nonlinear sensors
// install their own implementation.
type ScalingPolicy interface {
	Scale(raw RawType, resolution uint32, fullScale float64) float64
}

// LinearScaling is the default policy: fullScale * raw / resolution.
type LinearScaling struct{}

// Scale implements ScalingPolicy.
func (LinearScaling) Scale(raw RawType, resolution uint32, fullScale float64) float64 {
	return fullScale * float64(raw) / float64(resolution)
}

// Engine answers channel read requests for one converter instance. A read
// resolves the channel's rank, then either pulls fresh single conversions
// (streaming transfer off) or averages a window of captured scan cycles
// (streaming transfer on), and re-arms the capture when the hardware does
// not do so itself.
//
// Reads execute synchronously on the caller's goroutine, complete in O(N)
// or O(window) time and never block beyond reading latched hardware state.
type Engine struct {
	p       Peripheral
	buf     *CaptureBuffer
	ranks   *RankTable
	window  int
	scaling ScalingPolicy

	// latest keeps the last single conversion seen per rank, the scratch
	// the no-streaming path reads its result back from.
	latest [MaxChannels]RawType
}

// Initialize prepares the engine for one converter instance: restarts the
// converter, rebuilds the rank table from its sequencer and, when a
// streaming transfer is enabled, allocates the capture buffer and arms the
// capture. In combined mode the capture is instead armed by a later
// InitializeCombined call on the primary instance, so a combined converter
// with streaming enabled is stopped here for reconfiguration.
//
// ranks may be nil, in which case the engine owns a private table; passing
// one lets several engines share a caller-owned table.
func (e *Engine) Initialize(p Peripheral, cfg BufferConfig, ranks *RankTable) error {
	cfg = cfg.withDefaults()
	if ranks == nil {
		ranks = new(RankTable)
	}

	if p.Running() {
		if err := p.Stop(); err != nil {
			return fmt.Errorf("%w: stopping for reconfiguration: %v", ErrPeripheralStart, err)
		}
	}
	if err := p.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrPeripheralStart, err)
	}
	if err := ranks.Rebuild(p); err != nil {
		return err
	}

	e.p = p
	e.ranks = ranks
	e.window = cfg.Window
	if e.scaling == nil {
		e.scaling = LinearScaling{}
	}
	e.buf = NewCaptureBuffer(cfg.Size, p.CombinedMode())

	if !p.StreamingEnabled() {
		return nil
	}
	if p.CombinedMode() {
		// Dual-mode capture is armed on the primary instance only.
		if err := p.Stop(); err != nil {
			return fmt.Errorf("%w: stopping for combined capture: %v", ErrPeripheralStart, err)
		}
		return nil
	}
	if err := p.StartStreaming(e.buf.Independent); err != nil {
		return fmt.Errorf("%w: arming streaming capture: %v", ErrPeripheralStart, err)
	}
	return nil
}

// InitializeCombined arms the dual-mode capture on the designated primary
// converter instance. Initialize must have run first so the packed capture
// buffer exists.
func (e *Engine) InitializeCombined(master Peripheral, cfg BufferConfig) error {
	if !master.Primary() {
		return fmt.Errorf("%w: combined capture must be armed on the primary instance", ErrUnsupportedMode)
	}
	if e.buf == nil || e.buf.Combined == nil {
		cfg = cfg.withDefaults()
		e.buf = NewCaptureBuffer(cfg.Size, true)
		if e.window == 0 {
			e.window = cfg.Window
		}
	}
	if err := master.StartCombined(e.buf.Combined); err != nil {
		return fmt.Errorf("%w: arming combined capture: %v", ErrPeripheralStart, err)
	}
	return nil
}

// Window returns the number of scan cycles averaged per read.
func (e *Engine) Window() int {
	return e.window
}

// SetWindow changes the number of scan cycles averaged per read. The new
// window must fit the capture buffer: window * N <= buffer size.
func (e *Engine) SetWindow(window int) error {
	if window < 1 {
		return fmt.Errorf("%w: averaging window %d, want at least 1", ErrIndexOutOfRange, window)
	}
	if e.buf != nil && e.ranks != nil && e.ranks.NumActive() > 0 {
		if window*e.ranks.NumActive() > e.buf.Size() {
			return fmt.Errorf("%w: window %d needs %d samples, buffer holds %d",
				ErrIndexOutOfRange, window, window*e.ranks.NumActive(), e.buf.Size())
		}
	}
	e.window = window
	return nil
}

// SetScalingPolicy replaces the raw-to-physical conversion used by
// ReadChannelScaled. Passing nil restores LinearScaling.
func (e *Engine) SetScalingPolicy(sp ScalingPolicy) {
	if sp == nil {
		sp = LinearScaling{}
	}
	e.scaling = sp
}

// Ranks exposes the engine's rank table.
func (e *Engine) Ranks() *RankTable {
	return e.ranks
}

// Buffer exposes the engine's capture buffer.
func (e *Engine) Buffer() *CaptureBuffer {
	return e.buf
}

// ReadChannel returns one reading for the given channel: the floor mean of
// the configured window when a streaming capture is running, or a freshly
// pulled single conversion otherwise. Errors are never retried here; a
// caller-level policy may try again on the next poll cycle.
func (e *Engine) ReadChannel(channel int) (RawType, error) {
	p := e.p
	if p == nil || !p.Running() {
		return 0, fmt.Errorf("%w: converter is not running", ErrConversionNotStarted)
	}
	if channel < 0 || channel >= MaxChannels {
		return 0, fmt.Errorf("%w: channel %d, want 0..%d", ErrInvalidChannel, channel, MaxChannels-1)
	}
	rank, err := e.ranks.Resolve(channel)
	if err != nil {
		return 0, err
	}
	if !p.StreamingEnabled() {
		return e.readSingle(rank)
	}
	return e.readWindow(rank)
}

// readSingle drains one conversion per scan position up to and including
// the requested rank, keeping the value observed at the rank itself. The
// sequencer advances one position per pull, so position i's pull belongs to
// rank i.
func (e *Engine) readSingle(rank int) (RawType, error) {
	p := e.p
	if p.CombinedMode() {
		// A packed single pull has nowhere to persist its result; dual-mode
		// reads require a streaming capture.
		return 0, fmt.Errorf("%w: combined-mode reads require streaming capture", ErrUnsupportedMode)
	}
	resolution := p.Resolution()
	for i := 0; i <= rank; i++ {
		v := p.LatestSingleValue()
		if uint32(v) > resolution {
			return 0, fmt.Errorf("%w: value %d at scan position %d exceeds resolution %d",
				ErrOutOfRangeSample, v, i, resolution)
		}
		if i == rank {
			e.latest[rank] = v
		}
	}
	value := e.latest[rank]

	// A continuous-mode converter re-triggers itself; restarting it here
	// would double-trigger. One-shot conversions need an explicit restart.
	if !p.ContinuousMode() {
		if err := p.Start(); err != nil {
			return 0, fmt.Errorf("%w: restarting one-shot conversion: %v", ErrPeripheralStart, err)
		}
	}
	return value, nil
}

// readWindow averages the configured window for one rank out of the capture
// buffer, then re-arms a non-circular capture so the buffer stays fresh.
func (e *Engine) readWindow(rank int) (RawType, error) {
	p := e.p
	mean, err := windowAverage(e.rankView(), rank, e.ranks.NumActive(), e.window)
	if err != nil {
		return 0, err
	}
	if uint32(mean) > p.Resolution() {
		return 0, fmt.Errorf("%w: averaged value %d exceeds resolution %d",
			ErrOutOfRangeSample, mean, p.Resolution())
	}
	if !p.StreamingCircular() {
		if p.CombinedMode() {
			if err := p.StartCombined(e.buf.Combined); err != nil {
				return 0, fmt.Errorf("%w: re-arming combined capture: %v", ErrPeripheralStart, err)
			}
		} else {
			if err := p.StartStreaming(e.buf.Independent); err != nil {
				return 0, fmt.Errorf("%w: re-arming streaming capture: %v", ErrPeripheralStart, err)
			}
		}
	}
	return mean, nil
}

// rankView returns the uniform per-rank sample view the averaging engine
// indexes: the independent buffer, or this instance's half of the packed
// dual-mode buffer.
func (e *Engine) rankView() []RawType {
	if e.p.CombinedMode() {
		return e.buf.splitCombined(e.p.Primary())
	}
	return e.buf.Independent
}

// ReadChannelScaled reads the channel and applies the engine's scaling
// policy with the given full-scale value.
func (e *Engine) ReadChannelScaled(channel int, fullScale float64) (float64, error) {
	raw, err := e.ReadChannel(channel)
	if err != nil {
		return 0, err
	}
	scaling := e.scaling
	if scaling == nil {
		scaling = LinearScaling{}
	}
	return scaling.Scale(raw, e.p.Resolution(), fullScale), nil
}

// ChannelNoise reports the floating-point mean and sample standard
// deviation of the channel's averaging window, a diagnostic for judging
// signal quality. It requires a running streaming capture.
func (e *Engine) ChannelNoise(channel int) (mean, stddev float64, err error) {
	p := e.p
	if p == nil || !p.Running() {
		return 0, 0, fmt.Errorf("%w: converter is not running", ErrConversionNotStarted)
	}
	if !p.StreamingEnabled() {
		return 0, 0, fmt.Errorf("%w: noise diagnostics require streaming capture", ErrUnsupportedMode)
	}
	if channel < 0 || channel >= MaxChannels {
		return 0, 0, fmt.Errorf("%w: channel %d, want 0..%d", ErrInvalidChannel, channel, MaxChannels-1)
	}
	rank, err := e.ranks.Resolve(channel)
	if err != nil {
		return 0, 0, err
	}
	return WindowStats(e.rankView(), rank, e.ranks.NumActive(), e.window)
}
