package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultPattern matches the exports written by the fetcher.
const DefaultPattern = "freshservice_*.json"

const errorSuffix = "_ERROR.json"

// Store finds snapshots in a directory.
type Store struct {
	dir     string
	pattern string
	logger  *zap.Logger
}

// NewStore builds a store over dir. An empty pattern uses DefaultPattern.
func NewStore(dir, pattern string, logger *zap.Logger) *Store {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, pattern: pattern, logger: logger}
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string {
	return s.dir
}

// Latest loads the most recently modified snapshot. Error exports written
// by failed fetches are skipped.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	path, err := s.latestPath(ctx)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, path)
}

// ForClient loads the snapshot of one client.
func (s *Store) ForClient(ctx context.Context, clientID string) (*Snapshot, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" || strings.ContainsAny(clientID, `/\`) || strings.Contains(clientID, "..") {
		return nil, fmt.Errorf("client %q: %w", clientID, ErrNotFound)
	}
	name := strings.Replace(s.pattern, "*", clientID, 1)
	return s.Load(ctx, filepath.Join(s.dir, name))
}

// Load reads and decodes the snapshot at path.
func (s *Store) Load(ctx context.Context, path string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	snap, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	snap.Source = path
	s.logger.Debug("snapshot loaded",
		zap.String("path", path),
		zap.Int("tickets", len(snap.Tickets)),
		zap.String("fingerprint", snap.Fingerprint),
	)
	return snap, nil
}

func (s *Store) latestPath(ctx context.Context) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return "", fmt.Errorf("glob snapshots: %w", err)
	}

	var (
		newest   string
		newestAt time.Time
	)
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if strings.HasSuffix(path, errorSuffix) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if newest == "" || info.ModTime().After(newestAt) {
			newest, newestAt = path, info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no %s in %s: %w", s.pattern, s.dir, ErrNotFound)
	}
	return newest, nil
}
