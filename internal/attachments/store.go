package attachments

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const DefaultMaxBytes int64 = 10 << 20

var (
	ErrTooLarge    = errors.New("attachment exceeds the maximum allowed size")
	ErrInvalidName = errors.New("invalid attachment name")
)

// Upload is a file received alongside a record.
type Upload struct {
	Name   string
	Reader io.Reader
}

// Store writes uploaded files under a single directory using random names.
type Store struct {
	dir      string
	maxBytes int64
	logger   zerolog.Logger
}

func NewStore(dir string, maxBytes int64, logger zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("attachments directory is required")
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachments directory: %w", err)
	}
	return &Store{
		dir:      dir,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "attachments").Logger(),
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save copies r into a new file named after a random id plus the extension
// of originalName and returns the stored file name.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		s.discard(path)
		return "", fmt.Errorf("write attachment: %w", err)
	case written > s.maxBytes:
		s.discard(path)
		return "", ErrTooLarge
	case closeErr != nil:
		s.discard(path)
		return "", fmt.Errorf("close attachment: %w", closeErr)
	}

	s.logger.Debug().Str("file", name).Int64("bytes", written).Msg("attachment stored")
	return name, nil
}

// SaveUpload stores u and returns a pointer to the stored name, or nil when
// there is nothing to store.
func (s *Store) SaveUpload(u *Upload) (*string, error) {
	if u == nil {
		return nil, nil
	}
	name, err := s.Save(u.Name, u.Reader)
	if err != nil {
		return nil, err
	}
	return &name, nil
}

// Open returns a reader for a previously stored file.
func (s *Store) Open(name string) (*os.File, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, ErrInvalidName
	}
	return os.Open(filepath.Join(s.dir, name))
}

func (s *Store) Remove(name string) error {
	if name == "" || name != filepath.Base(name) {
		return ErrInvalidName
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove partial attachment")
	}
}
