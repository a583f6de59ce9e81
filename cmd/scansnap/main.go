// Command scansnap runs a short simulated capture and dumps the resulting
// buffer to .npy files, one full interleaved snapshot plus one demuxed file
// per rank, for offline inspection of the capture layout.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ekoenergy/scanadc"
)

func snap(nchan, cycles int, outdir string) error {
	channels := make([]int, nchan)
	for i := range channels {
		channels[i] = i + 1
	}
	sim := scanadc.NewSimPeripheral(scanadc.SimConfig{
		Channels:  channels,
		Streaming: true,
		Circular:  true,
	})
	engine := new(scanadc.Engine)
	cfg := scanadc.BufferConfig{Size: nchan * cycles, Window: cycles}
	if err := engine.Initialize(sim, cfg, nil); err != nil {
		return err
	}

	// Play the hardware: a ramp per rank so the demuxed files are easy to
	// eyeball.
	buf := sim.StreamingBuffer()
	for i := 0; i < cycles; i++ {
		for rank := 0; rank < nchan; rank++ {
			buf[i*nchan+rank] = scanadc.RawType(1000*rank + i)
		}
	}

	fullname := fmt.Sprintf("%s/capture.npy", outdir)
	f, err := os.Create(fullname)
	if err != nil {
		return err
	}
	if err := scanadc.WriteSnapshot(f, engine.Buffer()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Println("Wrote", fullname)

	for rank := 0; rank < nchan; rank++ {
		name := fmt.Sprintf("%s/rank%02d.npy", outdir, rank)
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := scanadc.WriteRankSnapshot(f, engine, rank); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println("Wrote", name)
	}
	return nil
}

func main() {
	nchan := flag.Int("nchan", 3, "active channels in the simulated scan")
	cycles := flag.Int("cycles", 64, "scan cycles captured")
	outdir := flag.String("outdir", ".", "directory for the .npy files")
	flag.Parse()

	if err := snap(*nchan, *cycles, *outdir); err != nil {
		fmt.Fprintln(os.Stderr, "scansnap:", err)
		os.Exit(1)
	}
}
