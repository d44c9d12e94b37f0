package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/goliatone/go-editorschema/pkg/document"
)

// ErrHTTPDisabled is returned for URL sources when no HTTP client is
// configured.
var ErrHTTPDisabled = errors.New("loader: http support disabled")

// Loader implements document.Loader with file, fs.FS and HTTP strategies.
type Loader struct {
	fs       fs.FS
	http     *http.Client
	timeout  time.Duration
	maxBytes int64
}

var _ document.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options.
func New(options document.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	maxBytes := options.MaxBytes
	if maxBytes <= 0 {
		maxBytes = document.DefaultMaxBytes
	}

	return &Loader{
		fs:       options.FileSystem,
		http:     client,
		timeout:  timeout,
		maxBytes: maxBytes,
	}
}

// Load reads src and wraps the payload in a document.Document.
func (l *Loader) Load(ctx context.Context, src document.Source) (document.Document, error) {
	if src == nil {
		return document.Document{}, errors.New("loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case document.SourceKindFile:
		data, err = l.loadFile(src.Location())
	case document.SourceKindFS:
		data, err = l.loadFS(src.Location())
	case document.SourceKindURL:
		data, err = l.loadHTTP(ctx, src.Location())
	default:
		err = fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return document.Document{}, err
	}
	return document.New(src, data)
}

func (l *Loader) loadFile(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("loader: file path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	return data, nil
}

func (l *Loader) loadFS(name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("loader: fs path is required")
	}
	if l.fs == nil {
		return nil, errors.New("loader: fs is nil")
	}
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", name, err)
	}
	return data, nil
}

func (l *Loader) loadHTTP(ctx context.Context, url string) ([]byte, error) {
	if l.http == nil {
		return nil, ErrHTTPDisabled
	}
	if url == "" {
		return nil, errors.New("loader: url is required")
	}

	reqCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	req.Header.Set("Accept", "application/schema+json, application/json, application/yaml;q=0.9")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("loader: fetch %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("loader: read body: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("loader: %s exceeds %d bytes", url, l.maxBytes)
	}
	return data, nil
}
