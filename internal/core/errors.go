// Error taxonomy for the detection pipeline
package core

import "github.com/pkg/errors"

var (
	// ErrCannotLoadImage marks a source image that could not be decoded.
	// It fails a run before the pipeline starts.
	ErrCannotLoadImage = errors.New("cannot load image")

	// ErrNoPhotosFound is returned by Save when there is nothing to write.
	ErrNoPhotosFound = errors.New("no photos found")
)
