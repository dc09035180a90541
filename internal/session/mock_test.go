package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pellmont/gridwar/internal/protocol"
)

// eventLog is a shared, ordered record of transport activity so tests can
// assert cross-client ordering.
type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *eventLog) add(entry string) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

// fakeTransport collects sent messages and exposes them as a channel for
// await-style assertions.
type fakeTransport struct {
	name   string
	events *eventLog

	mu     sync.Mutex
	closed bool
	ch     chan protocol.Message
}

func newFakeTransport(name string) *fakeTransport {
	return &fakeTransport{name: name, ch: make(chan protocol.Message, 256)}
}

func (f *fakeTransport) Send(msg protocol.Message) error {
	if f.events != nil {
		f.events.add(f.name + ":" + msg.Type())
	}
	f.ch <- msg
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// next blocks until the transport receives a message and asserts its type.
func (f *fakeTransport) next(t *testing.T, want string) protocol.Message {
	t.Helper()
	select {
	case msg := <-f.ch:
		if msg.Type() != want {
			t.Fatalf("expected %s, got %s (%+v)", want, msg.Type(), msg)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
		return nil
	}
}

// quiet asserts no message arrives for the given window.
func (f *fakeTransport) quiet(t *testing.T, window time.Duration) {
	t.Helper()
	select {
	case msg := <-f.ch:
		t.Fatalf("expected no message, got %s", msg.Type())
	case <-time.After(window):
	}
}

// fakeRecorder captures the terminal result.
type fakeRecorder struct {
	mu      sync.Mutex
	results []Result
	ch      chan Result
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{ch: make(chan Result, 4)}
}

func (f *fakeRecorder) RecordMatch(_ context.Context, res Result) {
	f.mu.Lock()
	f.results = append(f.results, res)
	f.mu.Unlock()
	f.ch <- res
}

func (f *fakeRecorder) wait(t *testing.T) Result {
	t.Helper()
	select {
	case res := <-f.ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the recorder")
		return Result{}
	}
}

func connectInfo(callsign string) ConnectInfo {
	return ConnectInfo{
		Callsign:              callsign,
		ClientVersion:         "test",
		ExpectedServerVersion: protocol.MajorVersion,
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never held")
}
