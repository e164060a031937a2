// Crop persistence as numbered sibling files
package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"scansplit/internal/core"
)

// JPEG quality for written crops.
const jpegQuality = 92

// CropWriter persists detected photos next to their source scan.
type CropWriter struct {
	logger *logrus.Logger
}

func NewCropWriter(logger *logrus.Logger) *CropWriter {
	return &CropWriter{
		logger: logger,
	}
}

// SavePhotos writes each photo's (possibly rotated) crop as
// <basename>_<n>.<ext> beside the source file, numbering from 1 in list
// order. PNG sources produce PNG crops; everything else is written as JPEG.
// It fails with core.ErrNoPhotosFound when the list is empty or no file
// could be written; individual write failures are logged and skipped.
func (cw *CropWriter) SavePhotos(photos []core.DetectedPhoto, sourcePath string) ([]string, error) {
	if len(photos) == 0 {
		return nil, errors.WithMessage(core.ErrNoPhotosFound, "empty photo list")
	}

	srcExt := strings.ToLower(filepath.Ext(sourcePath))
	outExt := ".jpg"
	if srcExt == ".png" {
		outExt = ".png"
	}
	base := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))

	written := make([]string, 0, len(photos))
	for i, photo := range photos {
		outPath := fmt.Sprintf("%s_%d%s", base, i+1, outExt)
		if err := imaging.Save(photo.Image, outPath, imaging.JPEGQuality(jpegQuality)); err != nil {
			cw.logger.WithField("path", outPath).WithError(err).Warn("failed to write crop")
			continue
		}
		cw.logger.WithFields(logrus.Fields{
			"path":   outPath,
			"width":  photo.Image.Rect.Dx(),
			"height": photo.Image.Rect.Dy(),
		}).Info("crop written")
		written = append(written, outPath)
	}

	if len(written) == 0 {
		return nil, errors.WithMessage(core.ErrNoPhotosFound, "no crops could be written")
	}
	return written, nil
}
