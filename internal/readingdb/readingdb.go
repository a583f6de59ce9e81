// Package readingdb records capture sessions and averaged readings in a
// ClickHouse database. A missing or unreachable server degrades to a no-op
// connection: recording is best-effort and never blocks the read path.
package readingdb

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

const databaseName = "scanadc" // official SQL name of the database

// Connection manages the database link and the channels that feed it.
type Connection struct {
	conn       clickhouse.Conn
	err        error
	session    *SessionMessage
	readingmsg chan *ReadingMessage
	sync.WaitGroup
}

// IsConnected reports whether the connection is usable.
func (db *Connection) IsConnected() bool {
	return (db != nil) && (db.conn != nil) && (db.err == nil)
}

// PingServer checks that a ClickHouse server answers with the configured
// credentials.
func PingServer() error {
	db := createConnection()
	if !db.IsConnected() {
		return fmt.Errorf("database is not connected")
	}
	v, err := db.conn.ServerVersion()
	if err != nil {
		return err
	}
	fmt.Printf("ClickHouse server is alive. Version:\n%s\n", v)
	return db.conn.Close()
}

// StartConnection opens the database link, records the session row and
// launches the goroutine that services reading messages until abort closes.
func StartConnection(session *SessionMessage, abort <-chan struct{}) *Connection {
	db := createConnection()
	db.session = session
	db.logSession()
	go db.handleConnection(abort)
	return db
}

// DummyConnection returns an unconnected Connection whose recording calls
// are all no-ops, for tests and database-less deployments.
func DummyConnection() *Connection {
	db := &Connection{}
	db.Add(1)
	return db
}

func createConnection() *Connection {
	db := &Connection{}
	auth := clickhouse.Auth{
		Database: databaseName,
		Username: os.Getenv("SCANADC_DB_USER"),
		Password: os.Getenv("SCANADC_DB_PASSWORD"),
	}
	client := clickhouse.ClientInfo{
		Products: []struct {
			Name    string
			Version string
		}{
			{Name: "scanadc", Version: "unknown"},
		},
	}
	opt := clickhouse.Options{
		Addr:       []string{"localhost:9000"},
		Auth:       auth,
		ClientInfo: client,
		TLS:        nil,
	}
	conn, err := clickhouse.Open(&opt)
	if err != nil {
		db.err = err
		return db
	}
	db.conn = conn
	db.Add(1)

	if err = conn.Ping(context.Background()); err != nil {
		if exception, ok := err.(*clickhouse.Exception); ok {
			fmt.Printf("Exception [%d] %s \n%s\n", exception.Code, exception.Message, exception.StackTrace)
		}
		db.err = err
		return db
	}

	db.readingmsg = make(chan *ReadingMessage)
	return db
}

func (db *Connection) logSession() {
	if !db.IsConnected() {
		return
	}
	ctx := context.Background()
	const nowait = false
	s := db.session
	formattedStart := s.Start.Format("2006-01-02 15:04:05.000000")
	formattedEnd := s.End.Format("2006-01-02 15:04:05.000000")
	if err := db.conn.AsyncInsert(ctx, `INSERT INTO capturesessions VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, nowait,
		s.ID, s.Hostname, s.Version, s.Githash, s.GoVersion,
		s.ActiveChannels, s.Window, s.Combined, formattedStart, formattedEnd,
	); err != nil {
		fmt.Println("Error raised on AsyncInsert into capturesessions ", err)
		db.err = err
	}
}

func (db *Connection) handleConnection(abort <-chan struct{}) {
	defer db.Done()
	for {
		select {
		case <-abort:
			db.Disconnect()
			return
		case rmsg := <-db.readingmsg:
			db.handleReadingMessage(rmsg)
		}
	}
}

// Disconnect finalizes the session row with its end time.
func (db *Connection) Disconnect() {
	if db.IsConnected() {
		db.session.End = time.Now()
		db.logSession()
	}
}

// RecordReading stores one reading (if the database is open). It never
// blocks the caller.
func (db *Connection) RecordReading(msg *ReadingMessage) {
	if !db.IsConnected() || msg == nil {
		return
	}
	go func() { db.readingmsg <- msg }()
}

func (db *Connection) handleReadingMessage(m *ReadingMessage) {
	if !db.IsConnected() {
		return
	}
	ctx := context.Background()
	const nowait = false
	formattedTime := m.Time.Format("2006-01-02 15:04:05.000000")
	if err := db.conn.AsyncInsert(ctx, `INSERT INTO readings VALUES (?, ?, ?, ?, ?, ?)`, nowait,
		m.SessionID, m.Channel, m.Rank, m.Raw, m.Scaled, formattedTime,
	); err != nil {
		fmt.Println("Error raised on AsyncInsert into readings ", err)
		db.err = err
	}
}
