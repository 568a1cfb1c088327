package unlockstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Eknes/laurel/internal/domain"
	"github.com/Eknes/laurel/internal/logging"
	"github.com/Eknes/laurel/internal/reporting"
)

const unlockStateFileName = "achievements_cache.json"

type jsonFileStore struct {
	path string

	// Guards entries and the file for the full read-mutate-rewrite cycle.
	// Two concurrent mutations would otherwise lose each other's writes
	// when rewriting the whole table.
	mutex   sync.Mutex
	entries map[string][]string
}

// NewJSONFileStore loads the unlock-state table stored in dataDir. A
// missing or unreadable file is treated as an empty table.
func NewJSONFileStore(ctx context.Context, dataDir string) *jsonFileStore {
	path := filepath.Join(dataDir, unlockStateFileName)

	store := &jsonFileStore{
		path:    path,
		entries: make(map[string][]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.FromContext(ctx).WarnContext(ctx, "Failed to read unlock state file, starting cold", "path", path, "error", err.Error())
		}
		return store
	}

	if err := json.Unmarshal(data, &store.entries); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to parse unlock state file, starting cold", "path", path, "error", err.Error())
		store.entries = make(map[string][]string)
	}

	return store
}

func (s *jsonFileStore) Get(identity domain.TrackedIdentity) domain.UnlockedSet {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return domain.NewUnlockedSet(s.entries[identity.Key()]...)
}

func (s *jsonFileStore) Set(ctx context.Context, identity domain.TrackedIdentity, unlocked domain.UnlockedSet) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.entries[identity.Key()] = unlocked.Sorted()

	if err := s.flush(); err != nil {
		err := fmt.Errorf("failed to flush unlock state: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"path":     s.path,
			"identity": identity.Key(),
		})
		return err
	}

	return nil
}

func (s *jsonFileStore) Clear(ctx context.Context, identity domain.TrackedIdentity) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.entries[identity.Key()]; !ok {
		return nil
	}

	delete(s.entries, identity.Key())

	if err := s.flush(); err != nil {
		err := fmt.Errorf("failed to flush unlock state: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"path":     s.path,
			"identity": identity.Key(),
		})
		return err
	}

	return nil
}

func (s *jsonFileStore) flush() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal unlock state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write unlock state file: %w", err)
	}

	return nil
}
