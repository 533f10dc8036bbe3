package transport

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"skybrawl/protocol"
)

func waitPoll(t *testing.T, c *Conn) []byte {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		if p, ok := c.Poll(); ok {
			return p
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for frame")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestConnExchangesFrames(t *testing.T) {
	a, b := net.Pipe()
	ca, cb := New(a), New(b)
	defer ca.Close()
	defer cb.Close()

	frame, err := protocol.ClientFrame(protocol.PlayerEvent{CharacterID: 3, Action: 1})
	if err != nil {
		t.Fatal(err)
	}
	if !ca.Enqueue(frame) {
		t.Fatalf("enqueue refused")
	}
	got := waitPoll(t, cb)
	if !bytes.Equal(got, frame[protocol.FrameHeaderSize:]) {
		t.Fatalf("payload = % x, want % x", got, frame[protocol.FrameHeaderSize:])
	}
	deadline := time.Now().Add(time.Second)
	for ca.SentBytes() != int64(len(frame)) {
		if time.Now().After(deadline) {
			t.Fatalf("SentBytes = %d, want %d", ca.SentBytes(), len(frame))
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPollIsNonBlocking(t *testing.T) {
	a, b := net.Pipe()
	c := New(a)
	defer c.Close()
	defer b.Close()

	start := time.Now()
	if _, ok := c.Poll(); ok {
		t.Fatalf("unexpected frame")
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("Poll blocked")
	}
}

func TestEnqueueAfterCloseIsDropped(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	c := New(a)
	c.Close()
	c.Close()
	if c.Enqueue([]byte{0, 0, 0, 0}) {
		t.Fatalf("enqueue on closed conn accepted")
	}
	if !c.Closed() {
		t.Fatalf("Closed() = false after Close")
	}
}

func TestEnqueueDropsWhenQueueFull(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	c := New(a)
	defer c.Close()

	// 对端不读，net.Pipe 写会阻塞，队列最终填满
	frame := []byte{0, 0, 0, 1, 7}
	accepted := 0
	for i := 0; i < SendQueueSize+10; i++ {
		if c.Enqueue(frame) {
			accepted++
		}
	}
	if accepted > SendQueueSize+1 {
		t.Fatalf("accepted %d frames, queue holds %d", accepted, SendQueueSize)
	}
	if c.Dropped() == 0 {
		t.Fatalf("expected dropped frames")
	}
}

func TestDialFailsFastOnClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	if _, err := Dial(context.Background(), addr, 500*time.Millisecond); err == nil {
		t.Fatalf("expected dial error")
	}
}
