package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"

	"micrositepilot/pkg/models"
)

// TranscriptCache memoizes transcription results for the lifetime of
// the pipeline manager that owns it. It is a session memo, not a
// content-addressed store: byte-source keys hash the content, and a
// collision at this layer is accepted.
type TranscriptCache struct {
	mu      sync.RWMutex
	entries map[string]models.Transcription
}

func New() *TranscriptCache {
	return &TranscriptCache{
		entries: make(map[string]models.Transcription),
	}
}

// KeyFor derives a stable cache key from an audio source: the string
// form of a path or URL, or a sha256 of raw byte content.
func KeyFor(src models.AudioSource) string {
	switch src.Kind {
	case models.SourcePath:
		return src.Path
	case models.SourceURL:
		return src.URL
	case models.SourceBytes:
		return fmt.Sprintf("bytes_%x", sha256.Sum256(src.Bytes))
	default:
		return ""
	}
}

func (c *TranscriptCache) Get(key string) (models.Transcription, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.entries[key]
	return t, ok
}

// Put stores a transcription, silently overwriting any existing entry.
func (c *TranscriptCache) Put(key string, t models.Transcription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = t
}
