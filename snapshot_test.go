package scanadc

import (
	"bytes"
	"testing"

	"github.com/sbinet/npyio"
)

func TestWriteSnapshotIndependent(t *testing.T) {
	buf := NewCaptureBuffer(6, false)
	copy(buf.Independent, []RawType{100, 200, 110, 210, 120, 220})

	var out bytes.Buffer
	if err := WriteSnapshot(&out, buf); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	var codes []uint16
	if err := npyio.Read(bytes.NewReader(out.Bytes()), &codes); err != nil {
		t.Fatalf("could not read snapshot back: %v", err)
	}
	want := []uint16{100, 200, 110, 210, 120, 220}
	if len(codes) != len(want) {
		t.Fatalf("snapshot holds %d codes, want %d", len(codes), len(want))
	}
	for i, w := range want {
		if codes[i] != w {
			t.Errorf("snapshot[%d]=%d, want %d", i, codes[i], w)
		}
	}
}

func TestWriteSnapshotCombined(t *testing.T) {
	buf := NewCaptureBuffer(3, true)
	for i := range buf.Combined {
		buf.Combined[i] = PackCombined(RawType(100+i), RawType(900+i))
	}

	var out bytes.Buffer
	if err := WriteSnapshot(&out, buf); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}
	var words []uint32
	if err := npyio.Read(bytes.NewReader(out.Bytes()), &words); err != nil {
		t.Fatalf("could not read snapshot back: %v", err)
	}
	for i, w := range words {
		packed := PackedType(w)
		if packed.Master() != RawType(100+i) || packed.Slave() != RawType(900+i) {
			t.Errorf("word %d unpacks to (%d,%d), want (%d,%d)",
				i, packed.Master(), packed.Slave(), 100+i, 900+i)
		}
	}
}

func TestWriteSnapshotNilBuffer(t *testing.T) {
	var out bytes.Buffer
	if err := WriteSnapshot(&out, nil); err == nil {
		t.Error("WriteSnapshot(nil) succeeded, want error")
	}
}

func TestWriteRankSnapshot(t *testing.T) {
	sim := NewSimPeripheral(SimConfig{Channels: []int{4, 7, 9}, Streaming: true, Circular: true})
	engine := new(Engine)
	if err := engine.Initialize(sim, BufferConfig{Size: 9, Window: 3}, nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	copy(sim.StreamingBuffer(), []RawType{100, 200, 300, 110, 210, 310, 120, 220, 320})

	var out bytes.Buffer
	if err := WriteRankSnapshot(&out, engine, 1); err != nil {
		t.Fatalf("WriteRankSnapshot failed: %v", err)
	}
	var codes []uint16
	if err := npyio.Read(bytes.NewReader(out.Bytes()), &codes); err != nil {
		t.Fatalf("could not read rank snapshot back: %v", err)
	}
	want := []uint16{200, 210, 220}
	if len(codes) != len(want) {
		t.Fatalf("rank snapshot holds %d codes, want %d", len(codes), len(want))
	}
	for i, w := range want {
		if codes[i] != w {
			t.Errorf("rank snapshot[%d]=%d, want %d", i, codes[i], w)
		}
	}

	if err := WriteRankSnapshot(&out, engine, 3); err == nil {
		t.Error("WriteRankSnapshot with rank beyond the scan set succeeded, want error")
	}
}
