package document

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Merco74/ScoutPlateform/internal/registration"

	"github.com/spf13/afero"
)

// Asset is a static image drawn on every page header.
type Asset struct {
	Name      string
	Data      []byte
	ImageType string
}

// LoadAsset reads an image from fsys. Any failure to obtain a usable
// image is reported as registration.ErrMissingAsset.
func LoadAsset(fsys afero.Fs, path string) (*Asset, error) {
	var imageType string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		imageType = "PNG"
	case ".jpg", ".jpeg":
		imageType = "JPG"
	default:
		return nil, fmt.Errorf("%w: %s: unsupported image type", registration.ErrMissingAsset, path)
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", registration.ErrMissingAsset, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", registration.ErrMissingAsset, path)
	}

	return &Asset{Name: filepath.Base(path), Data: data, ImageType: imageType}, nil
}
