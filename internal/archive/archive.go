// Package archive stores replay traces on disk or in S3.
//
// Traces are opaque JSON documents addressed by a UUIDv7 id, so listing a
// store returns them in creation order.
package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/sprout/internal/config"
	"github.com/vango-dev/sprout/internal/errors"
)

// Store persists trace documents.
type Store interface {
	// Put stores data under a new id and returns it.
	Put(ctx context.Context, data []byte) (string, error)

	// Get returns the document stored under id. A missing id yields an
	// E151 error.
	Get(ctx context.Context, id string) ([]byte, error)

	// List returns every stored entry, oldest first.
	List(ctx context.Context) ([]Entry, error)
}

// Entry describes one stored trace.
type Entry struct {
	ID       string    `json:"id"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// NewID returns a time-ordered trace id.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// ValidID reports whether id is a well-formed trace id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Open builds the store described by cfg. Relative disk directories are
// resolved against baseDir.
func Open(cfg config.ArchiveConfig, baseDir string) (Store, error) {
	switch cfg.Kind {
	case "", config.ArchiveDisk:
		dir := cfg.Dir
		if dir == "" {
			dir = config.DefaultArchiveDir
		}
		if baseDir != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		return NewDiskStore(dir)
	case config.ArchiveS3:
		return NewS3Store(NewS3Client(cfg.Region, cfg.Endpoint), cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, errors.New("E121").
			WithDetail(fmt.Sprintf("archive.kind must be disk or s3, got %q", cfg.Kind))
	}
}

func notFound(id string) error {
	return errors.New("E151").WithDetail("no trace with id " + id)
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
}
