package notify

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"machine-solver/internal/retry"
)

func TestNotifierDisabledWhenNoCredentials(t *testing.T) {
	n := New("", "")
	if n.IsEnabled() {
		t.Error("Expected notifier to be disabled with empty credentials")
	}

	// Should not error when disabled
	if err := n.Send("test", "message"); err != nil {
		t.Errorf("Expected no error when disabled, got: %v", err)
	}
}

func TestNotifierEnabledWithCredentials(t *testing.T) {
	n := New("app-token", "user-key")
	if !n.IsEnabled() {
		t.Error("Expected notifier to be enabled with credentials")
	}
}

func TestNotifyBatchSolved(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got.Store(r.FormValue("message"))
	}))
	defer srv.Close()

	n := New("app-token", "user-key")
	n.endpoint = srv.URL

	if err := n.NotifyBatchSolved(3, 33, 120*time.Millisecond); err != nil {
		t.Fatalf("NotifyBatchSolved failed: %v", err)
	}

	msg, _ := got.Load().(string)
	if msg == "" {
		t.Fatal("server received no message")
	}
	if msg != "Machines: 3\nTotal presses: 33\nElapsed: 120ms" {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestNotifyInfeasible_HighPriority(t *testing.T) {
	var priority atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		priority.Store(r.FormValue("priority"))
	}))
	defer srv.Close()

	n := New("app-token", "user-key")
	n.endpoint = srv.URL

	if err := n.NotifyInfeasible(5, 2); err != nil {
		t.Fatalf("NotifyInfeasible failed: %v", err)
	}
	if p, _ := priority.Load().(string); p != "1" {
		t.Errorf("priority = %q, want \"1\"", p)
	}
}

func TestSend_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := New("app-token", "user-key")
	n.endpoint = srv.URL
	n.breaker = retry.NewCircuitBreaker(2, time.Minute)

	for i := 0; i < 2; i++ {
		if err := n.Send("t", "m"); err == nil {
			t.Fatal("expected send failure")
		}
	}

	err := n.Send("t", "m")
	if !errors.Is(err, retry.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}
