package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	pingErr  error
}

func (f *fakeConn) WriteMessage(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, payload)
	return nil
}

func (f *fakeConn) Ping() error { return f.pingErr }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.messages))
	copy(out, f.messages)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func TestConnectThenSendPersonalDeliversInOrder(t *testing.T) {
	r := New(nil)
	conn := &fakeConn{}
	r.Connect("c1", conn)

	for i := 0; i < 5; i++ {
		if err := r.SendPersonal("c1", []byte{byte(i)}); err != nil {
			t.Fatalf("SendPersonal: %v", err)
		}
	}

	waitFor(t, func() bool { return len(conn.received()) == 5 })
	for i, msg := range conn.received() {
		if msg[0] != byte(i) {
			t.Fatalf("message %d out of order: got %v", i, msg)
		}
	}
}

func TestSendPersonalFailsForUnknownClient(t *testing.T) {
	r := New(nil)
	if err := r.SendPersonal("ghost", []byte("hi")); err == nil {
		t.Fatal("expected session_lost error")
	}
}

func TestDisconnectClosesConnAndRemovesFromGroups(t *testing.T) {
	r := New(nil)
	conn := &fakeConn{}
	r.Connect("c1", conn)
	r.AddToGroup("c1", "room")

	r.Disconnect("c1")
	waitFor(t, func() bool { return conn.closed })

	if err := r.SendPersonal("c1", []byte("x")); err == nil {
		t.Fatal("expected session_lost after disconnect")
	}
	results := r.SendGroup("room", []byte("x"), DeliveryParallel)
	if len(results) != 0 {
		t.Fatalf("expected empty group after disconnect, got %v", results)
	}
}

func TestSendGroupDeliversToAllMembersOnly(t *testing.T) {
	r := New(nil)
	connA, connB, connC := &fakeConn{}, &fakeConn{}, &fakeConn{}
	r.Connect("a", connA)
	r.Connect("b", connB)
	r.Connect("c", connC)
	r.AddToGroup("a", "room")
	r.AddToGroup("b", "room")

	results := r.SendGroup("room", []byte("hi"), DeliveryParallel)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	waitFor(t, func() bool { return len(connA.received()) == 1 && len(connB.received()) == 1 })
	if len(connC.received()) != 0 {
		t.Fatal("non-member received group message")
	}
}

func TestBroadcastSequentialDeliversToEveryClient(t *testing.T) {
	r := New(nil)
	connA, connB := &fakeConn{}, &fakeConn{}
	r.Connect("a", connA)
	r.Connect("b", connB)

	results := r.Broadcast([]byte("hi"), DeliverySequential)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	waitFor(t, func() bool { return len(connA.received()) == 1 && len(connB.received()) == 1 })
}

func TestPingAllDisconnectsFailingClient(t *testing.T) {
	r := New(nil)
	bad := &fakeConn{pingErr: errDead{}}
	r.Connect("dead", bad)

	r.PingAll()
	waitFor(t, func() bool { return bad.closed })
}

type errDead struct{}

func (errDead) Error() string { return "connection reset" }

func TestRunJanitorEvictsIdleClients(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	current := start
	var mu sync.Mutex
	r := New(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	})
	conn := &fakeConn{}
	r.Connect("idle", conn)

	mu.Lock()
	current = start.Add(10 * time.Minute)
	mu.Unlock()

	r.evictIdle()
	waitFor(t, func() bool { return conn.closed })
	if _, ok := r.Get("idle"); ok {
		t.Fatal("expected idle client to be evicted")
	}
}

func TestRunJanitorStopsOnContextCancel(t *testing.T) {
	r := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunJanitor(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunJanitor did not stop after context cancel")
	}
}
