// SPDX-License-Identifier: MIT
package transport

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ringviz/internal/engine"
)

func newTestWebSocket(t *testing.T) (*WebSocketTransport, *websocket.Conn) {
	t.Helper()
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatalf("NewWebSocketTransport: %v", err)
	}
	t.Cleanup(func() { wst.Close() })

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+wst.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(time.Second)
	for wst.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(time.Millisecond)
	}
	return wst, conn
}

func TestWebSocketBroadcast(t *testing.T) {
	wst, conn := newTestWebSocket(t)

	sent := engine.FrameStats{
		Type:     "frame",
		Frame:    42,
		Bands:    map[string]float64{"bass": 120, "lowMid": 80, "mid": 40, "highMid": 10},
		Dominant: "bass",
		Energy:   120,
		Rings:    3,
		Spawned:  true,
	}
	if err := wst.Send(sent); err != nil {
		t.Fatalf("Send error: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got engine.FrameStats
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Frame != 42 || got.Dominant != "bass" || got.Rings != 3 || !got.Spawned {
		t.Errorf("received %+v", got)
	}
	if got.Bands["mid"] != 40 {
		t.Errorf("mid energy = %g, want 40", got.Bands["mid"])
	}
}

func TestWebSocketDisconnect(t *testing.T) {
	wst, conn := newTestWebSocket(t)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for wst.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not removed after disconnect")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWebSocketSendNeverBlocks(t *testing.T) {
	wst, err := NewWebSocketTransport("127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer wst.Close()

	done := make(chan struct{})
	go func() {
		for i := range broadcastQueue * 4 {
			wst.Send(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked")
	}
}

func TestWebSocketClose(t *testing.T) {
	wst, _ := newTestWebSocket(t)
	if err := wst.Close(); err != nil {
		t.Errorf("Close error = %v", err)
	}
	if err := wst.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if err := wst.Send("late"); err == nil {
		t.Error("Send after Close succeeded")
	}
	if wst.Clients() != 0 {
		t.Errorf("%d clients left after Close", wst.Clients())
	}
}
