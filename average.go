package scanadc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// windowAverage computes the floor mean of the codes for one rank over the
// oldest `window` scan cycles of an interleaved view. The accumulator is 64
// bits wide so no supported window length or code width can overflow it.
// The same view-plus-rank arithmetic serves independent buffers and either
// half of a split dual-mode buffer, so the two modes average identically.
func windowAverage(view []RawType, rank, nchan, window int) (RawType, error) {
	if window < 1 {
		return 0, fmt.Errorf("%w: averaging window %d, want at least 1", ErrIndexOutOfRange, window)
	}
	if nchan < 1 || len(view)%nchan != 0 {
		return 0, fmt.Errorf("%w: buffer of %d samples is not a whole number of %d-channel scan cycles",
			ErrIndexOutOfRange, len(view), nchan)
	}
	var sum uint64
	for i := 0; i < window; i++ {
		v, err := sampleAt(view, rank, i, nchan)
		if err != nil {
			return 0, err
		}
		sum += uint64(v)
	}
	return RawType(sum / uint64(window)), nil
}

// WindowStats reports the mean and sample standard deviation of the same
// window windowAverage sums, in floating point. It is a diagnostic for
// judging channel noise, not part of the read path: reads stay on the exact
// integer mean.
func WindowStats(view []RawType, rank, nchan, window int) (mean, stddev float64, err error) {
	if window < 1 {
		return 0, 0, fmt.Errorf("%w: averaging window %d, want at least 1", ErrIndexOutOfRange, window)
	}
	xs := make([]float64, window)
	for i := 0; i < window; i++ {
		v, err := sampleAt(view, rank, i, nchan)
		if err != nil {
			return 0, 0, err
		}
		xs[i] = float64(v)
	}
	mean = stat.Mean(xs, nil)
	stddev = math.Sqrt(stat.Variance(xs, nil))
	return mean, stddev, nil
}
