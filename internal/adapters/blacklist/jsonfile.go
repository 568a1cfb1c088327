package blacklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/Eknes/laurel/internal/logging"
	"github.com/Eknes/laurel/internal/reporting"
)

const blacklistFileName = "achievement_blacklist.json"

type jsonFileGuard struct {
	path string

	// Guards entries and the file for the full read-mutate-rewrite cycle.
	mutex   sync.Mutex
	entries map[uint32]struct{}
}

// NewJSONFileGuard loads the blacklist stored in dataDir. A missing or
// unreadable file is treated as an empty blacklist.
func NewJSONFileGuard(ctx context.Context, dataDir string) *jsonFileGuard {
	path := filepath.Join(dataDir, blacklistFileName)

	guard := &jsonFileGuard{
		path:    path,
		entries: make(map[uint32]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.FromContext(ctx).WarnContext(ctx, "Failed to read blacklist file, starting cold", "path", path, "error", err.Error())
		}
		return guard
	}

	var appIDs []string
	if err := json.Unmarshal(data, &appIDs); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Failed to parse blacklist file, starting cold", "path", path, "error", err.Error())
		return guard
	}

	for _, raw := range appIDs {
		appID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "Skipping invalid blacklist entry", "entry", raw)
			continue
		}
		guard.entries[uint32(appID)] = struct{}{}
	}

	return guard
}

func (g *jsonFileGuard) IsBlacklisted(appID uint32) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	_, ok := g.entries[appID]
	return ok
}

func (g *jsonFileGuard) Add(ctx context.Context, appID uint32) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.entries[appID]; ok {
		return nil
	}

	g.entries[appID] = struct{}{}

	if err := g.flush(); err != nil {
		err := fmt.Errorf("failed to flush blacklist: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"path":  g.path,
			"appID": strconv.FormatUint(uint64(appID), 10),
		})
		return err
	}

	return nil
}

func (g *jsonFileGuard) flush() error {
	appIDs := make([]string, 0, len(g.entries))
	for appID := range g.entries {
		appIDs = append(appIDs, strconv.FormatUint(uint64(appID), 10))
	}
	sort.Strings(appIDs)

	data, err := json.Marshal(appIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal blacklist: %w", err)
	}

	if err := os.WriteFile(g.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write blacklist file: %w", err)
	}

	return nil
}
