// Package artifact holds finished recordings behind opaque handles.
//
// A handle has the form "blob:reelcam/<uuid>" and stays valid until revoked.
// Content is sniffed with mimetype so callers can see what the encoder
// actually produced next to the negotiated format tag.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// PlaceholderHandle is returned by a stop when no capture device exists.
const PlaceholderHandle = "placeholder:no-capture-device"

const handlePrefix = "blob:reelcam/"

// ErrNotFound reports an unknown or revoked handle.
var ErrNotFound = errors.New("artifact not found")

// Artifact describes a stored recording.
type Artifact struct {
	Handle       string
	Format       string
	DetectedType string
	Size         int64
	CreatedAt    time.Time
}

// Placeholder returns the artifact used when nothing was captured.
func Placeholder() Artifact {
	return Artifact{Handle: PlaceholderHandle}
}

// IsPlaceholder reports whether handle is the placeholder.
func IsPlaceholder(handle string) bool {
	return handle == PlaceholderHandle
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides handle generation.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

type entry struct {
	meta Artifact
	data []byte
}

// Store keeps artifacts in memory.
type Store struct {
	mu     sync.RWMutex
	items  map[string]entry
	now    func() time.Time
	nextID func() string
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		items:  make(map[string]entry),
		now:    time.Now,
		nextID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores data tagged with format and returns its artifact.
func (s *Store) Put(data []byte, format string) Artifact {
	meta := Artifact{
		Handle:    handlePrefix + s.nextID(),
		Format:    format,
		Size:      int64(len(data)),
		CreatedAt: s.now(),
	}
	if len(data) > 0 {
		meta.DetectedType = mimetype.Detect(data).String()
	}
	s.mu.Lock()
	s.items[meta.Handle] = entry{meta: meta, data: data}
	s.mu.Unlock()
	return meta
}

// Get returns the artifact metadata for handle.
func (s *Store) Get(handle string) (Artifact, error) {
	if IsPlaceholder(handle) {
		return Placeholder(), nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[handle]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	return item.meta, nil
}

// Bytes returns a copy of the stored data.
func (s *Store) Bytes(handle string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	return append([]byte(nil), item.data...), nil
}

// Revoke drops handle. It reports whether anything was removed.
func (s *Store) Revoke(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[handle]; !ok {
		return false
	}
	delete(s.items, handle)
	return true
}

// Len reports the number of live artifacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// WriteFile writes the artifact to path. When path has no extension one is
// derived from the sniffed content. The final path is returned.
func (s *Store) WriteFile(handle, path string) (string, error) {
	s.mu.RLock()
	item, ok := s.items[handle]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, handle)
	}
	if filepath.Ext(path) == "" {
		path += Extension(item.meta, item.data)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, item.data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// Extension picks a file extension for an artifact: the sniffed one when the
// content is recognized, otherwise one derived from the format tag.
func Extension(meta Artifact, data []byte) string {
	if len(data) > 0 {
		if ext := mimetype.Detect(data).Extension(); ext != "" && ext != ".txt" {
			return ext
		}
	}
	base, _, _ := strings.Cut(meta.Format, ";")
	switch strings.TrimSpace(strings.ToLower(base)) {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/x-matroska":
		return ".mkv"
	default:
		return ".bin"
	}
}
