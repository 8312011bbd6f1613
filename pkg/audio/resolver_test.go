package audio

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"micrositepilot/pkg/models"
)

func TestResolveBytesPassThrough(t *testing.T) {
	t.Parallel()

	want := []byte{0x52, 0x49, 0x46, 0x46, 0x00}
	got, err := NewResolver().Resolve(context.Background(), models.BytesSource(want, "wav"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("bytes changed during resolution")
	}
}

func TestResolveLocalFile(t *testing.T) {
	t.Parallel()

	want := []byte("fake audio content")
	path := filepath.Join(t.TempDir(), "call.wav")
	if err := os.WriteFile(path, want, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewResolver().Resolve(context.Background(), models.PathSource(path, "wav"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveMissingLocalFile(t *testing.T) {
	t.Parallel()

	_, err := NewResolver().Resolve(context.Background(), models.PathSource("/no/such/file.wav", "wav"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	want := []byte("remote audio content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(want)
	}))
	defer srv.Close()

	got, err := NewResolver().Resolve(context.Background(), models.URLSource(srv.URL+"/call.mp3", "mp3"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolvePathShapedURL(t *testing.T) {
	t.Parallel()

	want := []byte("remote audio content")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(want)
	}))
	defer srv.Close()

	// A path source whose string carries an http scheme is fetched,
	// not read from disk.
	got, err := NewResolver().Resolve(context.Background(), models.PathSource(srv.URL+"/call.wav", "wav"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveURLNonSuccessStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewResolver().Resolve(context.Background(), models.URLSource(srv.URL, "wav"))
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
}

func TestResolveUnreachableURL(t *testing.T) {
	t.Parallel()

	_, err := NewResolver().Resolve(context.Background(), models.URLSource("http://127.0.0.1:1/nope", "wav"))
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
}

func TestResolveUnsupportedSource(t *testing.T) {
	t.Parallel()

	_, err := NewResolver().Resolve(context.Background(), models.AudioSource{})
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("expected ErrUnsupportedSource, got %v", err)
	}
}
