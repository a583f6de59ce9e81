package scanadc

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// ReadingLog appends one CSV line per serviced reading to an underlying
// writer, asynchronously: the read path only deposits records on a channel,
// a private goroutine does the writing and flushes periodically. A full
// channel drops the record rather than stall a read.
type ReadingLog struct {
	writer        *bufio.Writer
	records       chan ReadingUpdate
	flushNow      chan struct{}
	flushComplete chan struct{}
	flushInterval time.Duration
	dropped       int
}

// NewReadingLog creates a ReadingLog over w and starts its write loop. The
// CSV header is written immediately.
func NewReadingLog(w io.Writer, channelDepth int, flushInterval time.Duration) *ReadingLog {
	rl := &ReadingLog{
		writer:        bufio.NewWriter(w),
		records:       make(chan ReadingUpdate, channelDepth),
		flushNow:      make(chan struct{}),
		flushComplete: make(chan struct{}),
		flushInterval: flushInterval,
	}
	rl.writer.WriteString("# time,tag,channel,rank,raw,scaled\n")
	go rl.writeLoop()
	return rl
}

// Log deposits one record for later writing. It reports whether the record
// was accepted; a full channel drops it.
func (rl *ReadingLog) Log(update ReadingUpdate) bool {
	select {
	case rl.records <- update:
		return true
	default:
		rl.dropped++
		return false
	}
}

// Flush drains pending records into the underlying writer and flushes it.
// Blocks until the flush is complete.
func (rl *ReadingLog) Flush() {
	rl.flushNow <- struct{}{}
	<-rl.flushComplete
}

// Close flushes remaining records and stops the write loop. Log or Flush
// after Close will panic; that misuse is not guarded.
func (rl *ReadingLog) Close() {
	close(rl.flushNow)
	<-rl.flushComplete
}

func (rl *ReadingLog) writeLoop() {
	ticker := time.NewTicker(rl.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case update := <-rl.records:
			rl.writeRecord(update)

		case _, ok := <-rl.flushNow:
			rl.flush()
			rl.flushComplete <- struct{}{}
			if !ok {
				return
			}

		case <-ticker.C:
			rl.flush()
		}
	}
}

func (rl *ReadingLog) writeRecord(update ReadingUpdate) {
	tag := update.Tag
	if tag == "" {
		tag = "READING"
	}
	fmt.Fprintf(rl.writer, "%s,%s,%d,%d,%d,%g\n",
		time.Now().Format(time.RFC3339Nano), tag, update.Channel, update.Rank, update.Raw, update.Scaled)
}

// flush empties the record channel before flushing the underlying writer.
func (rl *ReadingLog) flush() {
	for {
		select {
		case update := <-rl.records:
			rl.writeRecord(update)
		default:
			rl.writer.Flush()
			return
		}
	}
}
