package scanadc

import "fmt"

// MaxChannels is the hardware limit on channels per scan sequence.
const MaxChannels = 16

// RankTable maps scan positions ("ranks") to the channels the sequencer
// converts there. For the N active channels, ranks 0..N-1 each hold exactly
// one channel. The table is rebuilt only by an explicit Rebuild; between
// rebuilds it is immutable.
type RankTable struct {
	channels [MaxChannels]int
	nactive  int
}

// Rebuild rereads the channel-scan configuration from the peripheral's
// sequencer. It fails with ErrInvalidChannelCount when the sequencer
// reports zero or more than MaxChannels active channels.
func (rt *RankTable) Rebuild(p Peripheral) error {
	count := p.SequencerActiveChannelCount()
	if count < 1 || count > MaxChannels {
		return fmt.Errorf("%w: sequencer reports %d active channels, want 1..%d",
			ErrInvalidChannelCount, count, MaxChannels)
	}
	for pos := 0; pos < int(count); pos++ {
		rt.channels[pos] = p.SequencerChannelAtPosition(pos)
	}
	rt.nactive = int(count)
	return nil
}

// NumActive returns the number of channels converted per scan cycle.
func (rt *RankTable) NumActive() int {
	return rt.nactive
}

// Resolve returns the rank assigned to the given channel, or
// ErrRankNotFound when the channel is not part of the active scan set.
func (rt *RankTable) Resolve(channel int) (int, error) {
	for rank := 0; rank < rt.nactive; rank++ {
		if rt.channels[rank] == channel {
			return rank, nil
		}
	}
	return 0, fmt.Errorf("%w: channel %d is not in the active scan set", ErrRankNotFound, channel)
}

// ChannelAtRank returns the channel converted at the given rank.
func (rt *RankTable) ChannelAtRank(rank int) (int, error) {
	if rank < 0 || rank >= rt.nactive {
		return 0, fmt.Errorf("%w: rank %d with %d active channels", ErrRankNotFound, rank, rt.nactive)
	}
	return rt.channels[rank], nil
}
