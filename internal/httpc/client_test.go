package httpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"192.168.4.1", "http://192.168.4.1"},
		{" 10.0.0.2:8080/ ", "http://10.0.0.2:8080"},
		{"http://robot.local/", "http://robot.local"},
		{"https://robot.local", "https://robot.local"},
	}
	for _, tt := range tests {
		if got := BaseURL(tt.in); got != tt.want {
			t.Errorf("BaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetQuery(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	params := url.Values{"cmd": {"MF"}, "dur": {"250"}}
	code, err := GetQuery(context.Background(), srv.Client(), srv.URL, params)
	if err != nil {
		t.Fatalf("GetQuery: %v", err)
	}
	if code != http.StatusOK {
		t.Errorf("code = %d", code)
	}
	if got.Get("cmd") != "MF" || got.Get("dur") != "250" {
		t.Errorf("query = %v", got)
	}
}

func TestGetQuery_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	code, err := GetQuery(context.Background(), nil, srv.URL, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("got %v, want StatusError 503", err)
	}
	if code != http.StatusServiceUnavailable {
		t.Errorf("code = %d", code)
	}
}

func TestGetQuery_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GetQuery(ctx, srv.Client(), srv.URL, nil); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
