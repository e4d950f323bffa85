package jokeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	return New(url, 2*time.Second, zap.NewNop())
}

func TestRandomJoke_TwoPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("blacklistFlags"); got != blacklistFlags {
			t.Errorf("blacklistFlags = %q", got)
		}
		if got := r.URL.Query().Get("type"); got != "twopart" {
			t.Errorf("type = %q", got)
		}
		_, _ = w.Write([]byte(`{"type":"twopart","setup":"Why?","delivery":"Because."}`))
	}))
	defer srv.Close()

	got := newTestClient(srv.URL).RandomJoke(context.Background())
	want := "Setup: Why?\nPunchline: Because."
	if got != want {
		t.Errorf("RandomJoke() = %q, want %q", got, want)
	}
}

func TestRandomJoke_SinglePart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"type":"single","joke":"A one-liner."}`))
	}))
	defer srv.Close()

	if got := newTestClient(srv.URL).RandomJoke(context.Background()); got != "A one-liner." {
		t.Errorf("RandomJoke() = %q", got)
	}
}

func TestRandomJoke_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if got := newTestClient(srv.URL).RandomJoke(context.Background()); got != FallbackJoke {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestRandomJoke_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	if got := newTestClient(srv.URL).RandomJoke(context.Background()); got != FallbackJoke {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestRandomJoke_EmptyShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	if got := newTestClient(srv.URL).RandomJoke(context.Background()); got != FallbackJoke {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestRandomJoke_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	if got := newTestClient(srv.URL).RandomJoke(context.Background()); got != FallbackJoke {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestRandomJoke_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"type":"single","joke":"too late"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, 50*time.Millisecond, zap.NewNop())
	if got := c.RandomJoke(context.Background()); got != FallbackJoke {
		t.Errorf("expected fallback, got %q", got)
	}
}
