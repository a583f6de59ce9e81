package scanadc

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestReadingLog(t *testing.T) {
	buf := new(bytes.Buffer)
	rl := NewReadingLog(buf, 16, time.Minute)

	updates := []ReadingUpdate{
		{Channel: 7, Rank: 1, Raw: 210, Scaled: 0.1692, Tag: "READING"},
		{Channel: 9, Rank: 2, Raw: 320, Scaled: 0.2579, Tag: "SCALED"},
		{Channel: 4, Rank: 0, Raw: 100, Scaled: 0.0806}, // empty tag defaults
	}
	for _, u := range updates {
		if !rl.Log(u) {
			t.Errorf("Log(%v) rejected the record with an idle channel", u)
		}
	}
	rl.Close()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1+len(updates) {
		t.Fatalf("log contains %d lines, want header + %d records:\n%s", len(lines), len(updates), buf.String())
	}
	if lines[0] != "# time,tag,channel,rank,raw,scaled" {
		t.Errorf("unexpected header line %q", lines[0])
	}
	wantSuffixes := []string{
		",READING,7,1,210,0.1692",
		",SCALED,9,2,320,0.2579",
		",READING,4,0,100,0.0806",
	}
	for i, want := range wantSuffixes {
		if !strings.HasSuffix(lines[i+1], want) {
			t.Errorf("record %d is %q, want suffix %q", i, lines[i+1], want)
		}
	}
}

func TestReadingLogFlush(t *testing.T) {
	buf := new(bytes.Buffer)
	rl := NewReadingLog(buf, 16, time.Minute)
	rl.Log(ReadingUpdate{Channel: 4, Raw: 100})
	rl.Flush()
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Errorf("after Flush the log holds %d lines, want header + 1 record", n)
	}
	rl.Close()
}
