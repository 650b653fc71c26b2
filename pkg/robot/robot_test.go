package robot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-gaze/pkg/gaze"
)

// mockActuator records all commands for testing
type mockActuator struct {
	mu    sync.Mutex
	calls []SentCommand
	err   error
}

func (m *mockActuator) Send(ctx context.Context, cmd Command, dur time.Duration, velocity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SentCommand{Command: cmd, Duration: dur, Velocity: velocity})
	return m.err
}

func (m *mockActuator) commands() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Command, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Command
	}
	return out
}

func TestCommandFor(t *testing.T) {
	tests := []struct {
		dir  gaze.Direction
		want Command
		ok   bool
	}{
		{gaze.Up, MoveForward, true},
		{gaze.Down, MoveBackward, true},
		{gaze.Right, TurnRight, true},
		{gaze.Left, TurnLeft, true},
		{gaze.Center, Park, true},
		{gaze.Unknown, "", false},
		{gaze.NoFace, "", false},
	}
	for _, tt := range tests {
		got, ok := CommandFor(tt.dir)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CommandFor(%v) = %q, %v; want %q, %v", tt.dir, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"MF", MoveForward},
		{"mb", MoveBackward},
		{"left", TurnLeft},
		{" TR ", TurnRight},
		{"park", Park},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseCommand(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseCommand("jump"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("got %v, want ErrUnknownCommand", err)
	}
}

func TestHTTPController_Send(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		got = r.URL.Query()
	}))
	defer srv.Close()

	c := NewHTTPController(srv.URL).WithClient(srv.Client())
	if err := c.Send(context.Background(), TurnLeft, 250*time.Millisecond, 300); err != nil {
		t.Fatalf("Send: %v", err)
	}

	want := url.Values{"cmd": {"TL"}, "dur": {"250"}, "vel": {"255"}}
	for k := range want {
		if got.Get(k) != want.Get(k) {
			t.Errorf("%s = %q, want %q", k, got.Get(k), want.Get(k))
		}
	}
}

func TestHTTPController_IgnoresReplyStatus(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPController(srv.URL).WithClient(srv.Client())
	if err := c.Send(context.Background(), Park, time.Second, 100); err != nil {
		t.Errorf("500 reply should not fail the send: %v", err)
	}
	if hits != 1 {
		t.Errorf("robot hit %d times, want 1", hits)
	}
}

func TestHTTPController_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := NewHTTPController(addr)
	if err := c.Send(context.Background(), Park, time.Second, 100); err == nil {
		t.Error("expected error when the robot is unreachable")
	}
	if err := c.Send(context.Background(), Command("XX"), time.Second, 100); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("got %v, want ErrUnknownCommand", err)
	}
}

func TestNewHTTPController_BareIP(t *testing.T) {
	c := NewHTTPController("192.168.4.1")
	if c.BaseURL != "http://192.168.4.1" {
		t.Errorf("BaseURL = %q", c.BaseURL)
	}
}

func TestDryRunController(t *testing.T) {
	d := NewDryRunController()
	if err := d.Send(context.Background(), MoveForward, 250*time.Millisecond, -5); err != nil {
		t.Fatalf("Send: %v", err)
	}
	sent := d.Sent()
	if len(sent) != 1 || sent[0].Command != MoveForward || sent[0].Velocity != 0 {
		t.Errorf("Sent = %+v", sent)
	}
}

func TestDispatcher_MapsAndPaces(t *testing.T) {
	mock := &mockActuator{}
	d := NewDispatcher(mock, DispatcherConfig{Duration: time.Hour, Velocity: 150, Enabled: true})
	ctx := context.Background()

	cmd, err := d.Dispatch(ctx, gaze.Up)
	if err != nil || cmd != MoveForward {
		t.Fatalf("first dispatch = %q, %v", cmd, err)
	}
	if _, err := d.Dispatch(ctx, gaze.Left); !errors.Is(err, ErrThrottled) {
		t.Errorf("second dispatch: got %v, want ErrThrottled", err)
	}
	d.Wait()

	if got := mock.commands(); len(got) != 1 || got[0] != MoveForward {
		t.Errorf("commands = %v", got)
	}
	s := d.Stats()
	if s.Sent != 1 || s.Throttled != 1 || s.LastCommand != MoveForward {
		t.Errorf("stats = %+v", s)
	}
}

func TestDispatcher_SendsAfterDuration(t *testing.T) {
	mock := &mockActuator{}
	d := NewDispatcher(mock, DispatcherConfig{Duration: 20 * time.Millisecond, Velocity: 150, Enabled: true})
	ctx := context.Background()

	if _, err := d.Dispatch(ctx, gaze.Center); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := d.Dispatch(ctx, gaze.Right); err != nil {
		t.Fatalf("dispatch after duration: %v", err)
	}
	d.Wait()

	got := mock.commands()
	if len(got) != 2 || got[1] != TurnRight {
		t.Errorf("commands = %v", got)
	}
}

func TestDispatcher_NonActionable(t *testing.T) {
	mock := &mockActuator{}
	d := NewDispatcher(mock, DefaultDispatcherConfig())

	for _, dir := range []gaze.Direction{gaze.Unknown, gaze.NoFace} {
		if _, err := d.Dispatch(context.Background(), dir); !errors.Is(err, ErrNoCommand) {
			t.Errorf("%v: got %v, want ErrNoCommand", dir, err)
		}
	}
	d.Wait()
	if n := len(mock.commands()); n != 0 {
		t.Errorf("sent %d commands", n)
	}
}

func TestDispatcher_Toggle(t *testing.T) {
	mock := &mockActuator{}
	d := NewDispatcher(mock, DefaultDispatcherConfig())

	if d.Toggle() {
		t.Fatal("Toggle should disable")
	}
	if _, err := d.Dispatch(context.Background(), gaze.Up); !errors.Is(err, ErrDisabled) {
		t.Errorf("got %v, want ErrDisabled", err)
	}

	// Manual commands ignore the toggle.
	if err := d.Manual(context.Background(), Park); err != nil {
		t.Fatalf("Manual: %v", err)
	}
	d.Wait()
	if got := mock.commands(); len(got) != 1 || got[0] != Park {
		t.Errorf("commands = %v", got)
	}

	d.SetEnabled(true)
	if !d.Enabled() {
		t.Error("expected enabled")
	}
}

func TestDispatcher_ManualBypassesPacing(t *testing.T) {
	mock := &mockActuator{}
	d := NewDispatcher(mock, DispatcherConfig{Duration: time.Hour, Velocity: 150, Enabled: true})
	ctx := context.Background()

	d.Dispatch(ctx, gaze.Up)
	for _, cmd := range []Command{TurnLeft, TurnRight} {
		if err := d.Manual(ctx, cmd); err != nil {
			t.Fatalf("Manual(%s): %v", cmd, err)
		}
	}
	if err := d.Manual(ctx, Command("XX")); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("got %v, want ErrUnknownCommand", err)
	}
	d.Wait()

	if n := len(mock.commands()); n != 3 {
		t.Errorf("sent %d commands, want 3", n)
	}
}

func TestDispatcher_FailuresCounted(t *testing.T) {
	mock := &mockActuator{err: errors.New("unreachable")}
	d := NewDispatcher(mock, DefaultDispatcherConfig())

	if _, err := d.Dispatch(context.Background(), gaze.Down); err != nil {
		t.Fatalf("Dispatch must not surface send errors: %v", err)
	}
	d.Wait()
	if s := d.Stats(); s.Failed != 1 || s.Sent != 0 {
		t.Errorf("stats = %+v", s)
	}
}
