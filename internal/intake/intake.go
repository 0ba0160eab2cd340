// Package intake accepts uploaded source videos ahead of job creation. Every
// upload is capped in size before any job or workspace exists and is held
// under an expiring token; tokens are one-shot, and expired uploads take
// their temp files with them.
package intake

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"uniqvid/internal/config"
	"uniqvid/internal/logging"
)

var (
	// ErrTooLarge rejects uploads over the configured cap.
	ErrTooLarge = errors.New("upload exceeds size limit")
	// ErrUnknownUpload rejects tokens that were never issued or were
	// already claimed.
	ErrUnknownUpload = errors.New("unknown upload")
	// ErrUploadExpired rejects tokens past their TTL.
	ErrUploadExpired = errors.New("upload expired")
)

// Upload is one accepted source file awaiting a job.
type Upload struct {
	ID           string
	Path         string
	OriginalName string
	Size         int64
	ExpiresAt    time.Time
}

// Store holds pending uploads. Safe for concurrent use.
type Store struct {
	dir      string
	maxBytes int64
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	uploads map[string]*Upload
}

// StoreOption adjusts store construction.
type StoreOption func(*Store)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates the upload store under the configured work directory.
func NewStore(cfg *config.Config, logger *slog.Logger, opts ...StoreOption) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("intake store requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	dir := filepath.Join(cfg.Paths.WorkDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}

	ttl := time.Duration(cfg.Jobs.SessionTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	store := &Store{
		dir:      dir,
		maxBytes: cfg.MaxFileBytes(),
		ttl:      ttl,
		logger:   logging.NewComponentLogger(logger, "intake"),
		now:      time.Now,
		uploads:  make(map[string]*Upload),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Save streams an upload to disk, enforcing the size cap as it reads. On
// success it registers the upload under a fresh token. Oversized input is
// discarded without touching any job machinery.
func (s *Store) Save(originalName string, r io.Reader) (*Upload, error) {
	s.sweep()

	id := uuid.NewString()
	path := filepath.Join(s.dir, id+filepath.Ext(originalName))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	written, err := io.Copy(file, io.LimitReader(r, s.maxBytes+1))
	closeErr := file.Close()
	switch {
	case err != nil:
		os.Remove(path)
		return nil, fmt.Errorf("store upload: %w", err)
	case closeErr != nil:
		os.Remove(path)
		return nil, fmt.Errorf("store upload: %w", closeErr)
	case written > s.maxBytes:
		os.Remove(path)
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxBytes)
	}

	upload := &Upload{
		ID:           id,
		Path:         path,
		OriginalName: filepath.Base(originalName),
		Size:         written,
		ExpiresAt:    s.now().Add(s.ttl),
	}
	s.mu.Lock()
	s.uploads[id] = upload
	s.mu.Unlock()

	s.logger.Info("upload accepted",
		logging.String("upload_id", id),
		logging.String(logging.FieldSource, upload.OriginalName),
		logging.Int64("bytes", written))
	return upload, nil
}

// Claim redeems a token exactly once, transferring ownership of the temp
// file to the caller. Expired tokens fail and their files are removed.
func (s *Store) Claim(id string) (*Upload, error) {
	s.mu.Lock()
	upload, ok := s.uploads[id]
	if ok {
		delete(s.uploads, id)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrUnknownUpload
	}
	if s.now().After(upload.ExpiresAt) {
		s.removeFile(upload)
		return nil, ErrUploadExpired
	}
	return upload, nil
}

// Sweep drops expired uploads and their files, returning how many were
// removed.
func (s *Store) Sweep() int {
	return s.sweep()
}

func (s *Store) sweep() int {
	now := s.now()
	var expired []*Upload

	s.mu.Lock()
	for id, upload := range s.uploads {
		if now.After(upload.ExpiresAt) {
			expired = append(expired, upload)
			delete(s.uploads, id)
		}
	}
	s.mu.Unlock()

	for _, upload := range expired {
		s.removeFile(upload)
	}
	return len(expired)
}

// Close removes every pending upload.
func (s *Store) Close() {
	s.mu.Lock()
	pending := make([]*Upload, 0, len(s.uploads))
	for _, upload := range s.uploads {
		pending = append(pending, upload)
	}
	s.uploads = make(map[string]*Upload)
	s.mu.Unlock()

	for _, upload := range pending {
		s.removeFile(upload)
	}
}

func (s *Store) removeFile(upload *Upload) {
	if err := os.Remove(upload.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("upload cleanup failed",
			logging.String("upload_id", upload.ID),
			logging.Error(err))
	}
}
