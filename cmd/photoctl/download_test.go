package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"

	"github.com/photostream/photostream/model"
)

func TestImageDest(t *testing.T) {
	dir := t.TempDir()
	for _, ref := range []string{"", ".", "/", ".."} {
		if _, err := imageDest(dir, ref); !errors.Is(err, model.ErrValidation) {
			t.Fatalf("fileRef %q: expected validation error, got %v", ref, err)
		}
	}
	got, err := imageDest(dir, "../nested/kenobi1.jpg")
	if err != nil || got != filepath.Join(dir, "kenobi1.jpg") {
		t.Fatalf("imageDest = %q, %v", got, err)
	}
}

func TestFetchImage_RemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/truncated.jpg":
			w.Header().Set("Content-Length", "1024")
			_, _ = w.Write([]byte("partial"))
		case "/ok.jpg":
			_, _ = w.Write([]byte("raw-jpeg"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	rc := resty.New()
	for _, name := range []string{"truncated.jpg", "missing.jpg"} {
		dest := filepath.Join(dir, name)
		if _, err := fetchImage(context.Background(), rc, srv.URL+"/"+name, dest); err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Fatalf("%s: file left behind (stat err=%v)", name, err)
		}
	}

	dest := filepath.Join(dir, "ok.jpg")
	if _, err := fetchImage(context.Background(), rc, srv.URL+"/ok.jpg", dest); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if data, err := os.ReadFile(dest); err != nil || string(data) != "raw-jpeg" {
		t.Fatalf("saved file: %q, %v", data, err)
	}
}
