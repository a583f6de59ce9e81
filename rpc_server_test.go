package scanadc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func controlForTest(t *testing.T, readings chan ReadingUpdate) (*EngineControl, *SimPeripheral) {
	sim := NewSimPeripheral(SimConfig{Channels: []int{4, 7, 9}, Streaming: true, Circular: true})
	engine := new(Engine)
	if err := engine.Initialize(sim, BufferConfig{Size: 9, Window: 3}, nil); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	copy(sim.StreamingBuffer(), []RawType{100, 200, 300, 110, 210, 310, 120, 220, 320})
	return NewEngineControl(engine, readings), sim
}

func TestControlStatus(t *testing.T) {
	control, sim := controlForTest(t, nil)
	var status EngineStatus
	dummy := "dummy"
	if err := control.Status(&dummy, &status); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	assert.True(t, status.Running)
	assert.Equal(t, 3, status.ActiveChannels)
	assert.Equal(t, 3, status.Window)
	assert.Equal(t, 3.3, status.FullScale)

	sim.Stop()
	if err := control.Status(&dummy, &status); err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	assert.False(t, status.Running)
}

func TestControlConfigure(t *testing.T) {
	control, _ := controlForTest(t, nil)
	var okay bool
	if err := control.Configure(&EngineSettings{Window: 2, FullScale: 5.0}, &okay); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	assert.True(t, okay)
	assert.Equal(t, 2, control.engine.Window())
	assert.Equal(t, 5.0, control.fullScale)

	// An oversized window is rejected and leaves the settings alone.
	if err := control.Configure(&EngineSettings{Window: 4}, &okay); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Configure with oversized window returned %v, want ErrIndexOutOfRange", err)
	}
	assert.False(t, okay)
	assert.Equal(t, 2, control.engine.Window())
}

func TestControlReads(t *testing.T) {
	readings := make(chan ReadingUpdate, 4)
	control, _ := controlForTest(t, readings)

	channel := 7
	var raw uint16
	if err := control.ReadChannel(&channel, &raw); err != nil {
		t.Fatalf("ReadChannel failed: %v", err)
	}
	assert.Equal(t, uint16(210), raw)

	var scaled float64
	if err := control.ReadScaled(&ScaledReadArgs{Channel: 7}, &scaled); err != nil {
		t.Fatalf("ReadScaled failed: %v", err)
	}
	assert.InDelta(t, 3.3*210/4095, scaled, 1e-12)
	if err := control.ReadScaled(&ScaledReadArgs{Channel: 7, FullScale: 5.0}, &scaled); err != nil {
		t.Fatalf("ReadScaled failed: %v", err)
	}
	assert.InDelta(t, 5.0*210/4095, scaled, 1e-12)

	// Every serviced read was published.
	assert.Equal(t, 3, len(readings))
	first := <-readings
	assert.Equal(t, "READING", first.Tag)
	assert.Equal(t, uint16(210), first.Raw)

	missing := 5
	if err := control.ReadChannel(&missing, &raw); !errors.Is(err, ErrRankNotFound) {
		t.Errorf("ReadChannel(5) returned %v, want ErrRankNotFound", err)
	}
}

func TestControlChannelNoise(t *testing.T) {
	control, _ := controlForTest(t, nil)
	channel := 7
	var reply NoiseReply
	if err := control.ChannelNoise(&channel, &reply); err != nil {
		t.Fatalf("ChannelNoise failed: %v", err)
	}
	assert.InDelta(t, 210.0, reply.Mean, 1e-12)
	assert.InDelta(t, 10.0, reply.StdDev, 1e-9)
}
