package scanadc

// The reading publisher broadcasts every serviced read request on a ZMQ PUB
// socket, one two-frame message per reading: a tag frame for subscriber
// filtering, then a JSON payload.

import (
	"encoding/json"
	"fmt"
	"log"

	zmq "github.com/pebbe/zmq4"
)

// ReadingUpdate carries one published channel reading.
type ReadingUpdate struct {
	Channel int
	Rank    int
	Raw     uint16
	Scaled  float64
	Tag     string // "READING" for raw reads, "SCALED" for scaled ones
}

// readingFrames renders the two ZMQ frames for one update.
func readingFrames(update ReadingUpdate) (tag string, payload []byte, err error) {
	tag = update.Tag
	if tag == "" {
		tag = "READING"
	}
	payload, err = json.Marshal(update)
	return tag, payload, err
}

// RunReadingPublisher forwards any reading from its input channel to a ZMQ
// PUB socket, so monitoring clients can follow the engine's output. It
// returns when abort closes.
func RunReadingPublisher(readings <-chan ReadingUpdate, portstatus int, abort <-chan struct{}) {
	pubSocket, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		log.Printf("could not open reading publisher socket: %v\n", err)
		return
	}
	defer pubSocket.Close()
	if err = pubSocket.Bind(fmt.Sprintf("tcp://*:%d", portstatus)); err != nil {
		log.Printf("could not bind reading publisher to port %d: %v\n", portstatus, err)
		return
	}

	for {
		select {
		case <-abort:
			return
		case update := <-readings:
			tag, payload, err := readingFrames(update)
			if err != nil {
				ProblemLogger.Printf("could not marshal reading update: %v", err)
				continue
			}
			if _, err := pubSocket.Send(tag, zmq.SNDMORE); err != nil {
				ProblemLogger.Printf("could not send reading tag frame: %v", err)
				continue
			}
			if _, err := pubSocket.SendBytes(payload, 0); err != nil {
				ProblemLogger.Printf("could not send reading payload frame: %v", err)
			}
		}
	}
}
