package fanout_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Abraxas-365/concourse/pkg/errx"
	"github.com/Abraxas-365/concourse/pkg/fanout"
)

func TestHTTPFetcher_ReturnsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":1,"title":"hello"}`))
	}))
	defer srv.Close()

	f := fanout.NewHTTPFetcher(nil)
	payload, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `{"id":1,"title":"hello"}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := fanout.NewHTTPFetcher(nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	var e *errx.Error
	if !errors.As(err, &e) || e.Code != "FANOUT_BAD_STATUS" {
		t.Fatalf("expected FANOUT_BAD_STATUS, got %v", err)
	}
}

func TestHTTPFetcher_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"broken":`))
	}))
	defer srv.Close()

	f := fanout.NewHTTPFetcher(nil)
	_, err := f.Fetch(context.Background(), srv.URL)
	var e *errx.Error
	if !errors.As(err, &e) || e.Code != "FANOUT_BAD_PAYLOAD" {
		t.Fatalf("expected FANOUT_BAD_PAYLOAD, got %v", err)
	}
}

func TestHTTPFetcher_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listens here anymore

	f := fanout.NewHTTPFetcher(nil)
	_, err := f.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !errx.IsType(err, errx.TypeExternal) {
		t.Fatalf("expected EXTERNAL error, got %v", err)
	}
}
