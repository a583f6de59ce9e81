// Command scanadcd runs the scanadc sampling engine against a simulated
// converter and serves readings over JSON-RPC, publishing each serviced
// read on a ZMQ socket and recording it to ClickHouse when a server is
// reachable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	sysctl "github.com/lorenzosaino/go-sysctl"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekoenergy/scanadc"
	"github.com/ekoenergy/scanadc/internal/readingdb"
)

var githash = "githash not computed"
var buildDate = "build date not computed"

// makeFileExist checks that dir/filename exists, and creates the directory
// and file if it doesn't.
func makeFileExist(dir, filename string) (string, error) {
	if strings.Contains(dir, "$HOME") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = strings.Replace(dir, "$HOME", home, 1)
	}

	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err2 := os.MkdirAll(dir, 0775); err2 != nil {
			return "", err2
		}
	}

	fullname := path.Join(dir, filename)
	_, err := os.Stat(fullname)
	if os.IsNotExist(err) {
		f, err2 := os.OpenFile(fullname, os.O_WRONLY|os.O_CREATE, 0664)
		if err2 != nil {
			return "", err2
		}
		f.Close()
	}
	return fullname, nil
}

// setupViper sets up the viper configuration manager: says where to find
// config files and the filename and suffix. Sets some defaults.
func setupViper() error {
	viper.SetDefault("Verbose", false)

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Error finding User Home Dir: %s\n", err)
	}
	dotScanadc := filepath.Join(home, ".scanadc")
	const filename string = "config"
	const suffix string = ".yaml"
	if _, err := makeFileExist(dotScanadc, filename+suffix); err != nil {
		return err
	}

	viper.SetConfigName(filename)
	viper.AddConfigPath(filepath.FromSlash("/etc/scanadc"))
	viper.AddConfigPath(dotScanadc)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %s", err)
	}
	return nil
}

func startLogger(pfname string) *log.Logger {
	probFile, err := os.OpenFile(pfname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		msg := fmt.Sprintf("Could not open log file '%s'", pfname)
		panic(msg)
	}
	probLogger := log.New(probFile, "", log.LstdFlags)
	probLogger.SetOutput(&lumberjack.Logger{
		Filename:   pfname,
		MaxSize:    10,   // megabytes after which new file is created
		MaxBackups: 4,    // number of backups
		MaxAge:     180,  // days
		Compress:   true, // whether to gzip the backups
	})
	return probLogger
}

// checkKernelTuning warns when the host is tuned against low-latency
// periodic sampling. Failures only warn; the daemon still runs.
func checkKernelTuning() {
	if swappiness, err := sysctl.Get("vm.swappiness"); err == nil {
		if v, err := strconv.Atoi(swappiness); err == nil && v > 60 {
			scanadc.ProblemLogger.Printf("vm.swappiness=%d; capture buffers may be paged out under memory pressure", v)
		}
	}
	if rt, err := sysctl.Get("kernel.sched_rt_runtime_us"); err == nil {
		if v, err := strconv.Atoi(rt); err == nil && v < 0 {
			scanadc.ProblemLogger.Printf("kernel.sched_rt_runtime_us=%d; unbounded RT tasks can starve the sampling loop", v)
		}
	}
}

// runTriangleFiller plays the hardware's role for the demo capture: it
// continuously rewrites the sim's streaming buffer with a triangle wave per
// scan cycle, one phase offset per rank.
func runTriangleFiller(sim *scanadc.SimPeripheral, nchan int, period time.Duration, abort <-chan struct{}) {
	buf := sim.StreamingBuffer()
	if buf == nil || nchan < 1 {
		return
	}
	cycles := len(buf) / nchan
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	phase := 0
	for {
		select {
		case <-abort:
			return
		case <-ticker.C:
			for i := 0; i < cycles; i++ {
				for rank := 0; rank < nchan; rank++ {
					v := (phase + i + 500*rank) % 4096
					if v > 2047 {
						v = 4095 - v
					}
					buf[i*nchan+rank] = scanadc.RawType(v)
				}
			}
			phase += 16
		}
	}
}

func main() {
	buildDate = strings.Replace(buildDate, ".", " ", -1) // workaround for Make problems
	scanadc.Build.Date = buildDate
	scanadc.Build.Githash = githash

	printVersion := flag.Bool("version", false, "print version and quit")
	flag.Parse()

	if *printVersion {
		fmt.Printf("This is scanadcd version %s\n", scanadc.Build.Version)
		fmt.Printf("Git commit hash: %s\n", githash)
		fmt.Printf("Build time: %s\n", buildDate)
		fmt.Printf("Built on go version %s\n", runtime.Version())
		os.Exit(0)
	}

	banner := fmt.Sprintf("\nThis is scanadcd version %s (git commit %s)\n", scanadc.Build.Version, githash)
	fmt.Print(banner)

	// Start logging problems and updates to 2 rotating log files.
	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	logdir := filepath.Join(home, ".scanadc", "logs")
	problemname, err := makeFileExist(logdir, "problems.log")
	if err != nil {
		panic(err)
	}
	logname, err := makeFileExist(logdir, "updates.log")
	if err != nil {
		panic(err)
	}
	scanadc.ProblemLogger = startLogger(problemname)
	scanadc.UpdateLogger = startLogger(logname)
	fmt.Printf("Logging problems       to %s\n", problemname)
	fmt.Printf("Logging client updates to %s\n\n", logname)
	scanadc.UpdateLogger.Printf("\n\n\n\n%s", banner)

	// Find config file, creating it if needed, and read it.
	if err := setupViper(); err != nil {
		panic(err)
	}

	checkKernelTuning()

	// Demo capture: a simulated converter whose scan set comes from a
	// register-level sequencer snapshot, circular streaming into the
	// engine's buffer.
	channels := []int{4, 7, 9}
	seq := &scanadc.SequencerSnapshot{
		Layout: scanadc.ThreeRegisterLayout{},
		Regs:   scanadc.EncodeSequence(scanadc.ThreeRegisterLayout{}, channels),
	}
	sim := scanadc.NewSimPeripheral(scanadc.SimConfig{
		Registers: seq,
		Streaming: true,
		Circular:  true,
	})
	engine := new(scanadc.Engine)
	if err := engine.Initialize(sim, scanadc.BufferConfig{Size: 240, Window: 16}, nil); err != nil {
		panic(err)
	}

	abort := make(chan struct{})
	defer close(abort)
	go runTriangleFiller(sim, len(channels), 20*time.Millisecond, abort)

	// Record the session; a missing ClickHouse server degrades to no-ops.
	hostname, _ := os.Hostname()
	session := &readingdb.SessionMessage{
		ID:             readingdb.NewSessionID(scanadc.StartTime),
		Hostname:       hostname,
		Version:        scanadc.Build.Version,
		Githash:        githash,
		GoVersion:      runtime.Version(),
		ActiveChannels: len(channels),
		Window:         engine.Window(),
		Start:          scanadc.StartTime,
	}
	db := readingdb.StartConnection(session, abort)

	// Reading log, CSV, flushed every few seconds.
	readingLogName, err := makeFileExist(logdir, "readings.csv")
	if err != nil {
		panic(err)
	}
	readingFile, err := os.OpenFile(readingLogName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0664)
	if err != nil {
		panic(err)
	}
	readingLog := scanadc.NewReadingLog(readingFile, 256, 5*time.Second)
	defer readingLog.Close()

	// Fan serviced readings out to the publisher, the database and the log.
	readings := make(chan scanadc.ReadingUpdate, 64)
	published := make(chan scanadc.ReadingUpdate, 64)
	go scanadc.RunReadingPublisher(published, scanadc.Ports.Readings, abort)
	go func() {
		for {
			select {
			case <-abort:
				return
			case r := <-readings:
				select {
				case published <- r:
				default:
				}
				readingLog.Log(r)
				rank, err := engine.Ranks().Resolve(r.Channel)
				if err != nil {
					rank = -1
				}
				db.RecordReading(&readingdb.ReadingMessage{
					SessionID: session.ID,
					Channel:   r.Channel,
					Rank:      rank,
					Raw:       r.Raw,
					Scaled:    r.Scaled,
					Time:      time.Now(),
				})
			}
		}
	}()

	control := scanadc.NewEngineControl(engine, readings)
	scanadc.RunRPCServer(control, scanadc.Ports.RPC, true)
}
