// Package fs stores recipe images on the local file system.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/mise"
)

// Image download limits.
const (
	DefaultDownloadTimeout = 30 * time.Second
	DefaultMaxImageBytes   = 10 << 20
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".avif": true,
}

// Ensure ImageStore implements mise.ImageStore at compile time.
var _ mise.ImageStore = (*ImageStore)(nil)

// ImageStore downloads recipe images into a directory in the background.
// Each image is named after the xxhash of its URL, so a URL is downloaded
// at most once. Files appear atomically: a download is written to a
// temporary file and renamed into place when complete.
type ImageStore struct {
	dir      string
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[string]bool
	errs    []error
}

// ImageOption configures an ImageStore.
type ImageOption func(*ImageStore)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(c *http.Client) ImageOption {
	return func(s *ImageStore) {
		s.client = c
	}
}

// WithMaxImageBytes caps the size of a downloaded image.
func WithMaxImageBytes(n int64) ImageOption {
	return func(s *ImageStore) {
		s.maxBytes = n
	}
}

// WithLogger reports failed downloads to logger.
func WithLogger(logger *slog.Logger) ImageOption {
	return func(s *ImageStore) {
		s.logger = logger
	}
}

// NewImageStore creates an ImageStore writing to dir, creating it if needed.
func NewImageStore(dir string, opts ...ImageOption) (*ImageStore, error) {
	if dir == "" {
		return nil, mise.Errorf(mise.EINVALID, "image directory required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	s := &ImageStore{
		dir:      dir,
		client:   &http.Client{Timeout: DefaultDownloadTimeout},
		maxBytes: DefaultMaxImageBytes,
		pending:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ImageName returns the file name an image URL is stored under.
func ImageName(imageURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); imageExts[e] {
			ext = e
		}
	}
	return strconv.FormatUint(xxhash.Sum64String(imageURL), 16) + ext
}

// Schedule starts downloading imageURL and returns the path it will be
// written to. The download outlives ctx's cancellation; Wait blocks until
// every scheduled download has finished.
func (s *ImageStore) Schedule(ctx context.Context, imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", mise.Errorf(mise.EINVALID, "invalid image url: %q", imageURL)
	}

	dst := filepath.Join(s.dir, ImageName(imageURL))

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[dst] {
		return dst, nil
	}
	if _, err := os.Stat(dst); err == nil {
		return dst, nil
	}
	s.pending[dst] = true

	dctx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.download(dctx, imageURL, dst)

		s.mu.Lock()
		delete(s.pending, dst)
		if err != nil {
			s.errs = append(s.errs, err)
		}
		s.mu.Unlock()

		if err != nil && s.logger != nil {
			s.logger.Warn("image download failed", "url", imageURL, "err", err)
		}
	}()
	return dst, nil
}

func (s *ImageStore) download(ctx context.Context, imageURL, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", imageURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(s.dir, ".image-*.tmp")
	if err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, s.maxBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	if n > s.maxBytes {
		return fmt.Errorf("download %s: image exceeds %d bytes", imageURL, s.maxBytes)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	return nil
}

// Wait blocks until every scheduled download has finished and returns the
// failures collected since the previous Wait.
func (s *ImageStore) Wait() error {
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	err := errors.Join(s.errs...)
	s.errs = nil
	return err
}
