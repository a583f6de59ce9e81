package scanadc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestThreeRegisterLayoutDecode builds register words by hand and checks
// the decoded scan set against the field map.
func TestThreeRegisterLayoutDecode(t *testing.T) {
	var regs SequencerRegisters
	// 3 active channels: length field holds count-1 in word 0 bits [23:20].
	regs[0] = 2 << 20
	// Positions 0..2 live in word 2 at shifts 0, 5, 10.
	regs[2] = 4 | 7<<5 | 9<<10

	layout := ThreeRegisterLayout{}
	assert.Equal(t, uint32(3), layout.ActiveChannelCount(regs))
	assert.Equal(t, 4, layout.ChannelAtPosition(regs, 0))
	assert.Equal(t, 7, layout.ChannelAtPosition(regs, 1))
	assert.Equal(t, 9, layout.ChannelAtPosition(regs, 2))
}

// TestFourRegisterLayoutDecode does the same for the 6-bit-boundary layout.
func TestFourRegisterLayoutDecode(t *testing.T) {
	var regs SequencerRegisters
	// 5 active channels: length field holds count-1 in word 0 bits [3:0].
	regs[0] = 4 | 10<<6 | 11<<12 | 12<<18 | 13<<24
	// Position 4 is the first field of word 1.
	regs[1] = 14

	layout := FourRegisterLayout{}
	assert.Equal(t, uint32(5), layout.ActiveChannelCount(regs))
	for pos, want := range []int{10, 11, 12, 13, 14} {
		assert.Equal(t, want, layout.ChannelAtPosition(regs, pos), "position %d", pos)
	}
}

// TestEncodeSequenceRoundTrip checks that EncodeSequence inverts
// ChannelAtPosition for both layouts, across every position.
func TestEncodeSequenceRoundTrip(t *testing.T) {
	channels := []int{4, 7, 9, 0, 15, 1, 8, 2, 11, 3, 14, 5, 10, 6, 12, 13}
	layouts := []SequencerLayout{ThreeRegisterLayout{}, FourRegisterLayout{}}
	for _, layout := range layouts {
		for n := 1; n <= len(channels); n++ {
			regs := EncodeSequence(layout, channels[:n])
			if got := layout.ActiveChannelCount(regs); got != uint32(n) {
				t.Fatalf("%T: ActiveChannelCount=%d, want %d", layout, got, n)
			}
			for pos := 0; pos < n; pos++ {
				if got := layout.ChannelAtPosition(regs, pos); got != channels[pos] {
					t.Errorf("%T: ChannelAtPosition(%d)=%d, want %d", layout, pos, got, channels[pos])
				}
			}
		}
	}
}

// TestSequencerSnapshotFeedsRankTable checks the register-backed path end
// to end: registers -> snapshot -> sim peripheral -> rank table.
func TestSequencerSnapshotFeedsRankTable(t *testing.T) {
	channels := []int{4, 7, 9}
	snap := &SequencerSnapshot{
		Layout: FourRegisterLayout{},
		Regs:   EncodeSequence(FourRegisterLayout{}, channels),
	}
	sim := NewSimPeripheral(SimConfig{Registers: snap})

	var rt RankTable
	if err := rt.Rebuild(sim); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	rank, err := rt.Resolve(7)
	if err != nil || rank != 1 {
		t.Errorf("Resolve(7) = (%d, %v), want (1, nil)", rank, err)
	}
}
