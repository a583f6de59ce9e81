package scanadc

// The scan sequence is configured in up to four 32-bit sequencer registers.
// Two register arrangements exist across converter families: a 3-register
// variant with 5-bit channel fields packed six to a word, and a 4-register
// variant with fields on 6-bit boundaries. Both are decoded here through the
// SequencerLayout strategy, selected once when the peripheral is built.

// SequencerRegisters is a snapshot of the sequencer configuration words.
// Unused words read as zero on families with fewer registers.
type SequencerRegisters [4]uint32

// SequencerLayout decodes the channel-scan configuration of one converter
// family from a register snapshot.
type SequencerLayout interface {
	// ActiveChannelCount decodes the number of channels converted per scan
	// cycle.
	ActiveChannelCount(regs SequencerRegisters) uint32
	// ChannelAtPosition decodes the channel number assigned to scan
	// position pos.
	ChannelAtPosition(regs SequencerRegisters, pos int) int
}

// Channel fields are 5 bits wide in both layouts.
const sequenceChannelMask = 0x1f

// seqField locates one scan position's channel field: register word index
// and bit position of the field's LSB.
type seqField struct {
	word  int
	shift uint
}

// ThreeRegisterLayout decodes families whose sequence lives in three words:
// positions 0-5 in word 2, 6-11 in word 1, 12-15 plus the length field in
// word 0.
type ThreeRegisterLayout struct{}

var threeRegFields = [MaxChannels]seqField{
	{2, 0}, {2, 5}, {2, 10}, {2, 15}, {2, 20}, {2, 25},
	{1, 0}, {1, 5}, {1, 10}, {1, 15}, {1, 20}, {1, 25},
	{0, 0}, {0, 5}, {0, 10}, {0, 15},
}

// ActiveChannelCount decodes the length field in word 0 bits [23:20], which
// stores count-1.
func (ThreeRegisterLayout) ActiveChannelCount(regs SequencerRegisters) uint32 {
	return ((regs[0] >> 20) & 0xf) + 1
}

// ChannelAtPosition decodes the 5-bit channel field for scan position pos.
func (ThreeRegisterLayout) ChannelAtPosition(regs SequencerRegisters, pos int) int {
	f := threeRegFields[pos]
	return int((regs[f.word] >> f.shift) & sequenceChannelMask)
}

// FourRegisterLayout decodes families whose sequence spans four words with
// fields on 6-bit boundaries: positions 0-3 in word 0 above the length
// field, 4-8 in word 1, 9-13 in word 2, 14-15 in word 3.
type FourRegisterLayout struct{}

var fourRegFields = [MaxChannels]seqField{
	{0, 6}, {0, 12}, {0, 18}, {0, 24},
	{1, 0}, {1, 6}, {1, 12}, {1, 18}, {1, 24},
	{2, 0}, {2, 6}, {2, 12}, {2, 18}, {2, 24},
	{3, 0}, {3, 6},
}

// ActiveChannelCount decodes the length field in word 0 bits [3:0], which
// stores count-1.
func (FourRegisterLayout) ActiveChannelCount(regs SequencerRegisters) uint32 {
	return (regs[0] & 0xf) + 1
}

// ChannelAtPosition decodes the 5-bit channel field for scan position pos.
func (FourRegisterLayout) ChannelAtPosition(regs SequencerRegisters, pos int) int {
	f := fourRegFields[pos]
	return int((regs[f.word] >> f.shift) & sequenceChannelMask)
}

// SequencerSnapshot binds a register snapshot to the layout that decodes it.
// Peripheral implementations backed by memory-mapped registers embed one and
// forward the two sequencer queries to it.
type SequencerSnapshot struct {
	Layout SequencerLayout
	Regs   SequencerRegisters
}

// ActiveChannelCount decodes the active channel count from the snapshot.
func (s *SequencerSnapshot) ActiveChannelCount() uint32 {
	return s.Layout.ActiveChannelCount(s.Regs)
}

// ChannelAtPosition decodes the channel at scan position pos.
func (s *SequencerSnapshot) ChannelAtPosition(pos int) int {
	return s.Layout.ChannelAtPosition(s.Regs, pos)
}

// EncodeSequence builds the register snapshot that a sequencer configured
// for the given channels (in rank order) would present under the layout.
// It is the test/simulation inverse of ChannelAtPosition.
func EncodeSequence(layout SequencerLayout, channels []int) SequencerRegisters {
	var fields [MaxChannels]seqField
	var countWord uint32
	switch layout.(type) {
	case ThreeRegisterLayout:
		fields = threeRegFields
		countWord = uint32(len(channels)-1) << 20
	case FourRegisterLayout:
		fields = fourRegFields
		countWord = uint32(len(channels) - 1)
	}
	var regs SequencerRegisters
	regs[0] = countWord
	for pos, ch := range channels {
		f := fields[pos]
		regs[f.word] |= (uint32(ch) & sequenceChannelMask) << f.shift
	}
	return regs
}
