package dedupe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists identifiers as a newline-delimited text file.
type FileStore struct {
	mu     sync.Mutex
	path   string
	dryRun bool
	set    memSet
	dirty  bool
	logger *slog.Logger
}

// NewFileStore loads path into memory. A missing file yields an empty store
// and a read error keeps the ids read before it; neither is an error. Lines
// have no length limit.
func NewFileStore(path string, dryRun bool, logger *slog.Logger) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("checked items path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{
		path:   path,
		dryRun: dryRun,
		set:    newMemSet(),
		logger: logger,
	}
	if err := s.load(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("No checked items file yet, starting empty", slog.String("path", path))
		} else {
			logger.Warn("Failed to read checked items, keeping what was read", slog.String("path", path), slog.Int("count", len(s.set.order)), slog.String("error", err.Error()))
		}
	}
	return s, nil
}

func (s *FileStore) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		s.set.add(strings.TrimSpace(line))
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}
	s.logger.Info("Loaded checked items", slog.String("path", s.path), slog.Int("count", len(s.set.order)))
	return nil
}

func (s *FileStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.contains(id)
}

func (s *FileStore) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set.add(id) {
		s.dirty = true
	}
}

func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.set.order)
}

// Save rewrites the whole file via a temp file and rename, so a failed write
// never truncates the previous contents. Dry-run stores never write.
func (s *FileStore) Save(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dryRun || !s.dirty {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checked items dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp checked items file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	w := bufio.NewWriter(tmp)
	for _, id := range s.set.order {
		if _, err := w.WriteString(id + "\n"); err != nil {
			cleanup()
			return fmt.Errorf("write checked items: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flush checked items: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync checked items: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close checked items: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace checked items file: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
