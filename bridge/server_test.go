package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"github.com/pthm-cable/eyeball/config"
	"github.com/pthm-cable/eyeball/scene"
)

func init() {
	config.MustInit("")
}

func newTestServer(t *testing.T) (*Server, *scene.Scene) {
	t.Helper()
	cfg := *config.Cfg()
	cfg.Sampling.Radius = 0.3
	cfg.Bridge.FrameMs = 5

	sc, err := scene.New(&cfg, scene.Options{Seed: 1, Width: 800, Height: 600})
	if err != nil {
		t.Fatal(err)
	}
	srv, err := NewServer(sc, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	return srv, sc
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) FrameMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg FrameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if msg.Type != "frame" {
		t.Fatalf("type = %q, want frame", msg.Type)
	}
	return msg
}

// ---------- Messages ----------

func TestApply_Contact(t *testing.T) {
	srv, _ := newTestServer(t)

	if err := srv.apply(Message{Type: MsgContact, Point: &[3]float64{0, 0, 1}}); err != nil {
		t.Fatal(err)
	}
	if srv.contact == nil || !vecNear(*srv.contact, mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Fatalf("contact = %v", srv.contact)
	}

	if err := srv.apply(Message{Type: MsgContact}); err != nil {
		t.Fatal(err)
	}
	if srv.contact != nil {
		t.Error("null point should clear the contact")
	}
}

func TestApply_Pointer(t *testing.T) {
	srv, sc := newTestServer(t)

	srv.apply(Message{Type: MsgPointerDown, X: 400, Y: 300})
	if !sc.Arcball().Dragging() {
		t.Fatal("pointer_down should start a drag")
	}
	srv.apply(Message{Type: MsgPointerMove, X: 450, Y: 300})
	srv.apply(Message{Type: MsgPointerUp})
	if sc.Arcball().Dragging() {
		t.Error("pointer_up should end the drag")
	}

	srv.apply(Message{Type: MsgPointerDown, X: 400, Y: 300})
	srv.apply(Message{Type: MsgPointerLeave})
	if sc.Arcball().Dragging() {
		t.Error("pointer_leave should end the drag")
	}
}

func TestApply_Snap(t *testing.T) {
	srv, sc := newTestServer(t)

	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"first particle", `{"type":"snap","index":0}`, 0},
		{"third particle", `{"type":"snap","index":2}`, 2},
		{"no index", `{"type":"snap"}`, -1},
		{"negative", `{"type":"snap","index":-1}`, -1},
		{"out of range", `{"type":"snap","index":100000}`, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc.SnapToParticle(1)

			var msg Message
			if err := json.Unmarshal([]byte(tt.raw), &msg); err != nil {
				t.Fatal(err)
			}
			if err := srv.apply(msg); err != nil {
				t.Fatal(err)
			}
			if got := sc.SnapIndex(); got != tt.want {
				t.Errorf("snap index = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApply_Unknown(t *testing.T) {
	srv, _ := newTestServer(t)

	err := srv.apply(Message{Type: "explode"})
	if !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("err = %v, want ErrUnknownMessage", err)
	}
}

func TestMessage_Decode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Message
	}{
		{"move", `{"type":"pointer_move","x":12,"y":34}`, Message{Type: MsgPointerMove, X: 12, Y: 34}},
		{"resize", `{"type":"resize","width":640,"height":480}`, Message{Type: MsgResize, Width: 640, Height: 480}},
		{"snap", `{"type":"snap","index":7}`, Message{Type: MsgSnap, Index: intPtr(7)}},
		{"snap first", `{"type":"snap","index":0}`, Message{Type: MsgSnap, Index: intPtr(0)}},
		{"snap off", `{"type":"snap"}`, Message{Type: MsgSnap}},
		{"no contact", `{"type":"contact","point":null}`, Message{Type: MsgContact}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Message
			if err := json.Unmarshal([]byte(tt.raw), &got); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// ---------- Server ----------

func TestServer_SetupThenFrames(t *testing.T) {
	srv, sc := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	conn := dial(t, ts)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var setup SetupMessage
	if err := conn.ReadJSON(&setup); err != nil {
		t.Fatal(err)
	}
	if setup.Type != "setup" {
		t.Fatalf("first message type = %q, want setup", setup.Type)
	}
	if len(setup.Particles) != len(sc.Particles()) {
		t.Fatalf("setup has %d particles, want %d", len(setup.Particles), len(sc.Particles()))
	}

	frame := readFrame(t, conn)
	if len(frame.Texture) != 4*len(setup.Particles) {
		t.Errorf("texture len = %d, want %d", len(frame.Texture), 4*len(setup.Particles))
	}
	q := frame.Orientation
	if n := q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3]; n < 0.999 || n > 1.001 {
		t.Errorf("orientation norm^2 = %v", n)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestServer_DragRotates(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	conn := dial(t, ts)
	var setup SetupMessage
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&setup); err != nil {
		t.Fatal(err)
	}

	if err := conn.WriteJSON(Message{Type: MsgPointerDown, X: 400, Y: 300}); err != nil {
		t.Fatal(err)
	}
	x := 400.0
	for i := 0; i < 200; i++ {
		x += 10
		if err := conn.WriteJSON(Message{Type: MsgPointerMove, X: x, Y: 300}); err != nil {
			t.Fatal(err)
		}
		if f := readFrame(t, conn); f.RotationVelocity > 0 {
			return
		}
	}
	t.Error("dragging never produced rotation")
}

func TestServer_DropsClosedClients(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.Clients() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	for srv.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("closed client was not dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func vecNear(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func intPtr(i int) *int { return &i }
