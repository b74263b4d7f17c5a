package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/sprout/internal/errors"
)

const traceExt = ".json"

// DiskStore keeps one file per trace in a directory.
type DiskStore struct {
	dir string
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.New("E150").Wrap(err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the archive directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) path(id string) string {
	return filepath.Join(s.dir, id+traceExt)
}

// Put writes data to a temp file and renames it into place.
func (s *DiskStore) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := NewID()
	tmp, err := os.CreateTemp(s.dir, ".trace-*")
	if err != nil {
		return "", errors.New("E150").Wrap(err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.New("E150").Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New("E150").Wrap(err)
	}
	if err := os.Rename(tmp.Name(), s.path(id)); err != nil {
		os.Remove(tmp.Name())
		return "", errors.New("E150").Wrap(err)
	}
	return id, nil
}

func (s *DiskStore) Get(ctx context.Context, id string) ([]byte, error) {
	if !ValidID(id) {
		return nil, notFound(id)
	}
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *DiskStore) List(ctx context.Context) ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, traceExt) {
			continue
		}
		id := strings.TrimSuffix(name, traceExt)
		if !ValidID(id) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{ID: id, Size: info.Size(), Modified: info.ModTime()})
	}
	sortEntries(entries)
	return entries, nil
}
