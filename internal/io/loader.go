// Image loading and validation
package io

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"scansplit/internal/core"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageLoader handles source image file operations.
type ImageLoader struct {
	logger *logrus.Logger
}

func NewImageLoader(logger *logrus.Logger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// Load decodes a source scan from disk. Undecodable or unsupported files
// fail with core.ErrCannotLoadImage before any pipeline work starts. The
// returned format name is the registered decoder that matched ("png",
// "jpeg", ...).
func (il *ImageLoader) Load(path string) (image.Image, string, error) {
	il.logger.WithField("path", path).Debug("loading image")

	if !il.isSupportedImageFormat(path) {
		return nil, "", errors.WithMessagef(core.ErrCannotLoadImage, "unsupported image format: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.WithMessagef(core.ErrCannotLoadImage, "open %s: %v", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", errors.WithMessagef(core.ErrCannotLoadImage, "decode %s: %v", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"path":   path,
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Info("image loaded")

	return img, format, nil
}

func (il *ImageLoader) isSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range []string{".jpg", ".jpeg", ".png", ".gif", ".tiff", ".tif", ".bmp", ".webp"} {
		if ext == format {
			return true
		}
	}
	return false
}

// GetSupportedFormats lists the accepted source formats.
func (il *ImageLoader) GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "GIF", "TIFF", "BMP", "WebP"}
}

// ValidateImageFile checks that a path points to a decodable image without
// keeping the pixels around. Only the image header is read.
func (il *ImageLoader) ValidateImageFile(path string) error {
	if !il.isSupportedImageFormat(path) {
		return errors.WithMessagef(core.ErrCannotLoadImage, "unsupported image format: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.WithMessagef(core.ErrCannotLoadImage, "open %s: %v", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return errors.WithMessagef(core.ErrCannotLoadImage, "decode %s: %v", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.WithMessage(core.ErrCannotLoadImage, "invalid image dimensions")
	}
	return nil
}
