package vision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// フレーム（画像1枚）の取得元
type FrameSource interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	Close() error
}

// 取得元が尽きた・閉じられた
var ErrNoFrame = errors.New("no frame available")

var imageExts = map[string]struct{}{".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {}}

// DirFrameSource はディレクトリ内の画像をファイル名順に1枚ずつ返す（録画の再生用）。
type DirFrameSource struct {
	mu     sync.Mutex
	files  []string
	next   int
	closed bool
}

func OpenDir(dir string) (*DirFrameSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open frames dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := imageExts[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images in %s", dir)
	}
	sort.Strings(files)

	return &DirFrameSource{files: files}, nil
}

func (s *DirFrameSource) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.next >= len(s.files) {
		return nil, ErrNoFrame
	}
	path := s.files[s.next]
	s.next++

	return os.ReadFile(path)
}

func (s *DirFrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// HTTPSnapshotSource はネットワークカメラの静止画URLを毎回取得する。
type HTTPSnapshotSource struct {
	url    string
	client *http.Client
	closed bool
	mu     sync.Mutex
}

func NewHTTPSnapshotSource(url string, client *http.Client) *HTTPSnapshotSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSnapshotSource{url: url, client: client}
}

func (s *HTTPSnapshotSource) ReadFrame(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrNoFrame
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create new request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(body) == 0 {
		return nil, ErrNoFrame
	}
	return body, nil
}

func (s *HTTPSnapshotSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}
