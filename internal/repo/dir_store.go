package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tbourn/go-checkin-backend/internal/domain"
)

// DirStore keeps one JSON document per record in a directory.
//
// Writes go to a hidden temp file that is synced and then hard-linked under
// its final name; the link fails when the name is taken, so concurrent
// writers never overwrite each other and readers never see partial files.
type DirStore struct {
	dir string
}

// NewDirStore creates dir if needed and returns a store rooted there.
func NewDirStore(dir string) (*DirStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store directory must not be empty")
	}
	//nolint:gosec // records are meant to be readable by operators
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir is the directory holding the records.
func (s *DirStore) Dir() string { return s.dir }

// Append implements Store.
func (s *DirStore) Append(ctx context.Context, rec domain.Record) (string, error) {
	return appendUnique(ctx, rec, s.put)
}

func (s *DirStore) put(_ context.Context, key string, doc []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	//nolint:gosec // G302: records are meant to be readable by operators
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod record: %w", err)
	}
	if err := os.Link(tmpName, filepath.Join(s.dir, key)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrKeyExists
		}
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// FindLatestByCode implements Store with a full directory scan.
func (s *DirStore) FindLatestByCode(ctx context.Context, code string) (*domain.Record, error) {
	keys, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return latestByScan(ctx, keys, code, s.load)
}

func (s *DirStore) load(ctx context.Context, key string) (domain.Record, error) {
	raw, err := s.Fetch(ctx, key)
	if err != nil {
		return domain.Record{}, err
	}
	return domain.DecodeRecord(raw)
}

// ListAll implements Store. Keys come back in directory order (sorted by name).
func (s *DirStore) ListAll(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && ValidKey(e.Name()) {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

// Fetch implements Store.
func (s *DirStore) Fetch(_ context.Context, key string) ([]byte, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}
	raw, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record: %w", err)
	}
	return raw, nil
}

// Close implements Store.
func (s *DirStore) Close() error { return nil }
