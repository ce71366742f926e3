package books

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/japaniel/shengci/pkg/vocab"
)

var (
	// ErrBookNotFound is returned when no extension resolves to a file.
	ErrBookNotFound = errors.New("book not found")
	// ErrSuperseded is returned by a load that a newer load replaced.
	ErrSuperseded = errors.New("book load superseded by a newer request")

	errNotFound = errors.New("not found")
)

// DefaultExtensions are tried in order for each book.
var DefaultExtensions = []string{"tsv", "csv"}

// Loader fetches per-book word lists named "<bookId>.<ext>" relative to
// BaseURL, which is either an http(s) URL or a local directory.
// Only one load is in flight at a time: starting a new one cancels the
// previous one.
type Loader struct {
	BaseURL    string
	Extensions []string
	Client     *http.Client
	// MaxBytes caps the size of a word list. 0 means 10 MB.
	MaxBytes int64
	// Logger is used for informational messages. nil means no logging.
	Logger *log.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelCauseFunc
}

// NewLoader returns a loader with default extensions and a 30s HTTP timeout.
func NewLoader(baseURL string) *Loader {
	return &Loader{
		BaseURL:    baseURL,
		Extensions: DefaultExtensions,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches and parses the word list for bookID.
func (l *Loader) Load(ctx context.Context, bookID string) ([]vocab.Entry, error) {
	if err := validateBookID(bookID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancelCause(ctx)
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel(ErrSuperseded)
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if l.gen == gen {
			l.cancel = nil
		}
		l.mu.Unlock()
		cancel(nil)
	}()

	exts := l.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	for _, ext := range exts {
		name := bookID + "." + strings.TrimPrefix(ext, ".")
		body, contentType, err := l.fetch(ctx, name)
		if errors.Is(err, errNotFound) {
			if l.Logger != nil {
				l.Logger.Printf("%s not found, trying next extension", name)
			}
			continue
		}
		if err != nil {
			if errors.Is(context.Cause(ctx), ErrSuperseded) {
				return nil, ErrSuperseded
			}
			return nil, fmt.Errorf("load %s: %w", name, err)
		}

		if isHTML(contentType, name, body) {
			body, err = UnwrapHTML(body, l.pageURL(name))
			if err != nil {
				return nil, fmt.Errorf("unwrap %s: %w", name, err)
			}
		}
		entries := vocab.Parse(string(body))

		// A newer request may have started while this one was parsing.
		if errors.Is(context.Cause(ctx), ErrSuperseded) {
			return nil, ErrSuperseded
		}
		if l.Logger != nil {
			l.Logger.Printf("Loaded %d entries from %s", len(entries), name)
		}
		return entries, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrBookNotFound, bookID)
}

func (l *Loader) maxBytes() int64 {
	if l.MaxBytes > 0 {
		return l.MaxBytes
	}
	return 10 * 1024 * 1024
}

func (l *Loader) isRemote() bool {
	return strings.HasPrefix(l.BaseURL, "http://") || strings.HasPrefix(l.BaseURL, "https://")
}

func (l *Loader) pageURL(name string) *url.URL {
	if !l.isRemote() {
		return &url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(l.BaseURL, name))}
	}
	u, err := url.Parse(strings.TrimSuffix(l.BaseURL, "/") + "/" + url.PathEscape(name))
	if err != nil {
		return nil
	}
	return u
}

func (l *Loader) fetch(ctx context.Context, name string) ([]byte, string, error) {
	if !l.isRemote() {
		return l.readLocal(name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.pageURL(name).String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "text/tab-separated-values,text/csv,text/plain;q=0.9,text/html;q=0.8,*/*;q=0.5")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > l.maxBytes() {
		return nil, "", fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, l.maxBytes())
	}

	// Read one byte past the limit to tell "exactly at the limit" from "truncated".
	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes()+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(body)) > l.maxBytes() {
		return nil, "", fmt.Errorf("response body exceeded maximum size limit of %d bytes", l.maxBytes())
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (l *Loader) readLocal(name string) ([]byte, string, error) {
	path := filepath.Join(l.BaseURL, name)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, "", errNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if info.Size() > l.maxBytes() {
		return nil, "", fmt.Errorf("%s is %d bytes, limit is %d", path, info.Size(), l.maxBytes())
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return body, "", nil
}

func validateBookID(bookID string) error {
	if strings.TrimSpace(bookID) == "" {
		return fmt.Errorf("book id must be non-empty")
	}
	if strings.ContainsAny(bookID, `/\`) || strings.Contains(bookID, "..") {
		return fmt.Errorf("invalid book id %q", bookID)
	}
	return nil
}
