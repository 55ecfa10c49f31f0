package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Per-field limits on the number of attachments.
var fieldLimits = map[string]int{
	"vaccinScan":     1,
	"medicationScan": registration.MaxAttachments,
	"otherDocuments": registration.MaxAttachments,
}

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var allowedMediaTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
}

// UploadStore keeps submitted attachments under random names in a
// directory served under a public URL prefix.
type UploadStore struct {
	fs          afero.Fs
	dir         string
	urlPrefix   string
	maxFileSize int64
	logger      *slog.Logger
}

func NewUploadStore(fs afero.Fs, dir, urlPrefix string, maxFileSize int64, logger *slog.Logger) (*UploadStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &UploadStore{
		fs:          fs,
		dir:         dir,
		urlPrefix:   urlPrefix,
		maxFileSize: maxFileSize,
		logger:      logger,
	}, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", registration.ErrInvalidUpload, fmt.Sprintf(format, args...))
}

// Check validates the uploads without touching the filesystem.
func (s *UploadStore) Check(uploads []registration.Upload) error {
	counts := make(map[string]int)
	for _, u := range uploads {
		limit, ok := fieldLimits[u.Field]
		if !ok {
			return invalid("unexpected field %q", u.Field)
		}
		counts[u.Field]++
		if counts[u.Field] > limit {
			return invalid("too many files for %s", u.Field)
		}

		if !allowedExtensions[strings.ToLower(filepath.Ext(u.Filename))] {
			return invalid("%s: extension not allowed", u.Filename)
		}
		mediaType, _, err := mime.ParseMediaType(u.ContentType)
		if err != nil || !allowedMediaTypes[mediaType] {
			return invalid("%s: content type %q not allowed", u.Filename, u.ContentType)
		}
		if s.maxFileSize > 0 && u.Size > s.maxFileSize {
			return invalid("%s exceeds %d bytes", u.Filename, s.maxFileSize)
		}
	}
	return nil
}

// Store checks every upload first, then writes them. Either all files are
// stored or none are.
func (s *UploadStore) Store(ctx context.Context, uploads []registration.Upload) (registration.FileRefs, error) {
	var refs registration.FileRefs
	if err := s.Check(uploads); err != nil {
		return refs, err
	}

	for _, u := range uploads {
		ref, err := s.write(u)
		if err != nil {
			if discardErr := s.Discard(ctx, refs); discardErr != nil {
				s.logger.WarnContext(ctx, "failed to remove partial uploads", "error", discardErr)
			}
			return registration.FileRefs{}, err
		}

		switch u.Field {
		case "vaccinScan":
			refs.VaccinationProof = ref
		case "medicationScan":
			refs.MedicationScans = append(refs.MedicationScans, ref)
		case "otherDocuments":
			refs.OtherDocuments = append(refs.OtherDocuments, ref)
		}
	}

	if len(uploads) > 0 {
		s.logger.InfoContext(ctx, "uploads stored", "count", len(uploads))
	}
	return refs, nil
}

func (s *UploadStore) write(u registration.Upload) (string, error) {
	if u.Open == nil {
		return "", invalid("%s has no content", u.Filename)
	}
	src, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", u.Filename, err)
	}
	defer src.Close()

	name := uuid.New().String() + strings.ToLower(filepath.Ext(u.Filename))
	target := filepath.Join(s.dir, name)

	dst, err := s.fs.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}

	var reader io.Reader = src
	if s.maxFileSize > 0 {
		reader = io.LimitReader(src, s.maxFileSize+1)
	}
	written, err := io.Copy(dst, reader)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && s.maxFileSize > 0 && written > s.maxFileSize {
		err = invalid("%s exceeds %d bytes", u.Filename, s.maxFileSize)
	}
	if err != nil {
		_ = s.fs.Remove(target)
		return "", err
	}

	return path.Join(s.urlPrefix, name), nil
}

// Discard removes previously stored files. Missing files are ignored.
func (s *UploadStore) Discard(ctx context.Context, refs registration.FileRefs) error {
	all := append([]string{}, refs.MedicationScans...)
	all = append(all, refs.OtherDocuments...)
	if refs.VaccinationProof != "" {
		all = append(all, refs.VaccinationProof)
	}

	var errs []error
	for _, ref := range all {
		target := filepath.Join(s.dir, path.Base(ref))
		if err := s.fs.Remove(target); err != nil && !errors.Is(err, afero.ErrFileNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.DebugContext(ctx, "uploads discarded", "count", len(all))
	return nil
}
