package cache

import (
	"fmt"
	"sync"
	"testing"

	"micrositepilot/pkg/models"
)

func TestPutThenGet(t *testing.T) {
	t.Parallel()

	c := New()
	want := models.Transcription{Text: "[00:00:00 - 00:00:05] Rep: hello"}
	c.Put("demo.wav", want)

	got, ok := c.Get("demo.wav")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestGetUnknownKey(t *testing.T) {
	t.Parallel()

	c := New()
	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected cache miss")
	}
}

func TestPutOverwrites(t *testing.T) {
	t.Parallel()

	c := New()
	c.Put("k", models.Transcription{Text: "first"})
	c.Put("k", models.Transcription{Text: "second"})

	got, _ := c.Get("k")
	if got.Text != "second" {
		t.Fatalf("expected last write to win, got %q", got.Text)
	}
}

func TestConcurrentPutsOnDistinctKeys(t *testing.T) {
	t.Parallel()

	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			c.Put(key, models.Transcription{Text: key})
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		got, ok := c.Get(key)
		if !ok || got.Text != key {
			t.Fatalf("entry %s corrupted or missing: %+v", key, got)
		}
	}
}

func TestKeyFor(t *testing.T) {
	t.Parallel()

	pathKey := KeyFor(models.PathSource("/tmp/call.wav", "wav"))
	if pathKey != "/tmp/call.wav" {
		t.Fatalf("unexpected path key: %q", pathKey)
	}

	urlKey := KeyFor(models.URLSource("https://example.com/call.mp3", "mp3"))
	if urlKey != "https://example.com/call.mp3" {
		t.Fatalf("unexpected url key: %q", urlKey)
	}

	a := KeyFor(models.BytesSource([]byte("audio-a"), "wav"))
	b := KeyFor(models.BytesSource([]byte("audio-b"), "wav"))
	if a == "" || b == "" {
		t.Fatal("byte source keys must be non-empty")
	}
	if a == b {
		t.Fatal("distinct content must derive distinct keys")
	}
	if a != KeyFor(models.BytesSource([]byte("audio-a"), "wav")) {
		t.Fatal("byte source keys must be stable")
	}

	if KeyFor(models.AudioSource{}) != "" {
		t.Fatal("unset source must derive empty key")
	}
}
