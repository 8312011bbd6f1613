package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"micrositepilot/pkg/models"
)

var (
	// ErrUnsupportedSource is returned for an AudioSource whose variant
	// is not a path, URL, or byte buffer.
	ErrUnsupportedSource = fmt.Errorf("unsupported audio source type")

	// ErrDownload tags remote fetch failures. The underlying cause is
	// wrapped alongside it.
	ErrDownload = fmt.Errorf("audio download failed")
)

// Resolver turns heterogeneous audio sources into raw bytes. No size
// limits and no content-type validation happen here.
type Resolver struct {
	client *http.Client
}

func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Resolve produces the byte content of the source. Raw bytes pass
// through unchanged; http(s) URLs are fetched with a streaming GET;
// everything else is read as a local file.
func (r *Resolver) Resolve(ctx context.Context, src models.AudioSource) ([]byte, error) {
	switch src.Kind {
	case models.SourceBytes:
		return src.Bytes, nil
	case models.SourceURL:
		return r.download(ctx, src.URL)
	case models.SourcePath:
		if strings.HasPrefix(src.Path, "http://") || strings.HasPrefix(src.Path, "https://") {
			return r.download(ctx, src.Path)
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("reading audio file %s: %w", src.Path, err)
		}
		return data, nil
	default:
		return nil, ErrUnsupportedSource
	}
}

func (r *Resolver) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", ErrDownload, url, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrDownload, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", ErrDownload, url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body from %s: %v", ErrDownload, url, err)
	}
	return data, nil
}
