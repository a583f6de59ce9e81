package scanadc

import (
	"fmt"
	"log"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/spf13/viper"
)

// EngineControl is the sub-server that handles configuration and operation
// of a sampling engine over JSON-RPC.
type EngineControl struct {
	engine    *Engine
	readings  chan<- ReadingUpdate
	fullScale float64
}

// NewEngineControl wraps an initialized engine for RPC use. readings may be
// nil when no publisher is running.
func NewEngineControl(engine *Engine, readings chan<- ReadingUpdate) *EngineControl {
	return &EngineControl{engine: engine, readings: readings, fullScale: 3.3}
}

// EngineStatus is the state EngineControl reports to clients.
type EngineStatus struct {
	Running        bool
	ActiveChannels int
	Window         int
	FullScale      float64
}

// EngineSettings holds the client-adjustable settings, persisted to the
// config file on change.
type EngineSettings struct {
	Window    int
	FullScale float64
}

// Status reports the engine state.
func (c *EngineControl) Status(dummy *string, reply *EngineStatus) error {
	reply.Running = c.engine.p != nil && c.engine.p.Running()
	if c.engine.ranks != nil {
		reply.ActiveChannels = c.engine.ranks.NumActive()
	}
	reply.Window = c.engine.Window()
	reply.FullScale = c.fullScale
	return nil
}

// Configure applies new settings and persists them through viper.
func (c *EngineControl) Configure(settings *EngineSettings, reply *bool) error {
	log.Printf("Configure: window=%d fullscale=%.3f\n", settings.Window, settings.FullScale)
	if settings.Window > 0 {
		if err := c.engine.SetWindow(settings.Window); err != nil {
			*reply = false
			return err
		}
	}
	if settings.FullScale > 0 {
		c.fullScale = settings.FullScale
	}
	viper.Set("engine", settings)
	if err := viper.WriteConfig(); err != nil {
		ProblemLogger.Printf("could not persist engine settings: %v", err)
	}
	*reply = true
	return nil
}

// ReadChannel services one raw read request.
func (c *EngineControl) ReadChannel(channel *int, reply *uint16) error {
	raw, err := c.engine.ReadChannel(*channel)
	if err != nil {
		return err
	}
	*reply = uint16(raw)
	c.publish(ReadingUpdate{Channel: *channel, Raw: uint16(raw), Tag: "READING"})
	return nil
}

// ScaledReadArgs holds the arguments to a ReadScaled operation.
type ScaledReadArgs struct {
	Channel   int
	FullScale float64 // 0 means use the configured full scale
}

// ReadScaled services one scaled read request.
func (c *EngineControl) ReadScaled(args *ScaledReadArgs, reply *float64) error {
	fullScale := args.FullScale
	if fullScale == 0 {
		fullScale = c.fullScale
	}
	scaled, err := c.engine.ReadChannelScaled(args.Channel, fullScale)
	if err != nil {
		return err
	}
	*reply = scaled
	c.publish(ReadingUpdate{Channel: args.Channel, Scaled: scaled, Tag: "SCALED"})
	return nil
}

// NoiseReply reports window statistics for one channel.
type NoiseReply struct {
	Mean   float64
	StdDev float64
}

// ChannelNoise services one noise-diagnostic request.
func (c *EngineControl) ChannelNoise(channel *int, reply *NoiseReply) error {
	mean, stddev, err := c.engine.ChannelNoise(*channel)
	if err != nil {
		return err
	}
	reply.Mean = mean
	reply.StdDev = stddev
	return nil
}

func (c *EngineControl) publish(update ReadingUpdate) {
	if c.readings == nil {
		return
	}
	select {
	case c.readings <- update:
	default:
		// A stalled publisher must not block the read path.
	}
}

// RunRPCServer sets up and runs a permanent JSON-RPC server around the
// EngineControl.
func RunRPCServer(control *EngineControl, portrpc int, block bool) {
	// Load stored settings.
	var settings EngineSettings
	log.Printf("scanadc is using config file %s\n", viper.ConfigFileUsed())
	if err := viper.UnmarshalKey("engine", &settings); err == nil {
		var okay bool
		if settings.Window > 0 || settings.FullScale > 0 {
			if err := control.Configure(&settings, &okay); err != nil {
				ProblemLogger.Printf("stored engine settings rejected: %v", err)
			}
		}
	}

	server := rpc.NewServer()
	if err := server.Register(control); err != nil {
		log.Fatal("RPC register error:", err)
	}
	server.HandleHTTP(rpc.DefaultRPCPath, rpc.DefaultDebugPath)
	port := fmt.Sprintf(":%d", portrpc)
	listener, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatal("listen error:", err)
	}
	serve := func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				log.Fatal("accept error: " + err.Error())
			}
			UpdateLogger.Printf("new RPC connection established at %v", time.Now())
			go server.ServeCodec(jsonrpc.NewServerCodec(conn))
		}
	}
	if block {
		serve()
	} else {
		go serve()
	}
}
