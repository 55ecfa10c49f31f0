package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// DocumentStore writes rendered PDFs to a directory served under a public
// URL prefix.
type DocumentStore struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
	logger    *slog.Logger
}

func NewDocumentStore(fs afero.Fs, dir, urlPrefix string, logger *slog.Logger) (*DocumentStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create document directory %s: %w", dir, err)
	}
	return &DocumentStore{
		fs:        fs,
		dir:       dir,
		urlPrefix: urlPrefix,
		logger:    logger,
	}, nil
}

// Save writes data under name and returns its public location. The write
// goes through a temporary file so a reader never sees a partial PDF.
func (s *DocumentStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid document name %q", name)
	}

	target := filepath.Join(s.dir, name)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}

	s.logger.DebugContext(ctx, "document saved", "name", name, "bytes", len(data))
	return path.Join(s.urlPrefix, name), nil
}
