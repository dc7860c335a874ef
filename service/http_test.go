package service

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestGetBodyRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(503)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := GetBodyRetry(srv.URL, 2)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("expected body 'ok', got %q", body)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestGetBodyRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(404)
	}))
	defer srv.Close()

	_, err := GetBodyRetry(srv.URL, 3)
	if err == nil {
		t.Errorf("expected an error")
	}
	if !Fatal(err) {
		t.Errorf("a 404 should be fatal, got %v", err)
	}
	// 4xx must not be retried
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestGetBodyRetryExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(503)
	}))
	defer srv.Close()

	_, err := GetBodyRetry(srv.URL, 1)
	if err == nil {
		t.Errorf("expected an error")
	}
	if !Temporary(err) {
		t.Errorf("an exhausted 503 should stay temporary, got %v", err)
	}
}
