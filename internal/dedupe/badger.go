package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "checked/"

// BadgerStore keeps the checked set in memory and writes newly added ids to
// a badger key-value directory on Save. Each key maps to the check time.
type BadgerStore struct {
	mu      sync.Mutex
	db      *badger.DB
	path    string
	dryRun  bool
	set     memSet
	pending []string
	logger  *slog.Logger
}

func NewBadgerStore(path string, dryRun bool, logger *slog.Logger) (*BadgerStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("badger directory is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	store := &BadgerStore{
		db:     db,
		path:   path,
		dryRun: dryRun,
		set:    newMemSet(),
		logger: logger,
	}
	if err := store.load(); err != nil {
		logger.Warn("Failed to read checked items from badger, starting empty", slog.String("path", path), slog.String("error", err.Error()))
		store.set = newMemSet()
	}
	return store, nil
}

func (s *BadgerStore) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.contains(id)
}

func (s *BadgerStore) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set.add(id) {
		s.pending = append(s.pending, id)
	}
}

func (s *BadgerStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.set.order)
}

// Save writes every id added since the last successful Save in one batch.
func (s *BadgerStore) Save(ctx context.Context) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dryRun || len(s.pending) == 0 {
		return nil
	}
	now, err := time.Now().UTC().MarshalBinary()
	if err != nil {
		return err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, id := range s.pending {
		if err := wb.Set([]byte(badgerKeyPrefix+id), now); err != nil {
			return fmt.Errorf("write checked item: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush checked items: %w", err)
	}
	s.pending = s.pending[:0]
	return nil
}

func (s *BadgerStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *BadgerStore) load() error {
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			s.set.add(strings.TrimPrefix(string(it.Item().Key()), badgerKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Loaded checked items", slog.String("path", s.path), slog.Int("count", len(s.set.order)))
	return nil
}
