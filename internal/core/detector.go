// Detection pipeline orchestration
package core

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"scansplit/internal/algorithms"
	"scansplit/internal/metrics"
	"scansplit/internal/raster"
)

// Options control one detection run.
type Options struct {
	// Sensitivity in [0,1] drives the binarization cutoff and the closing
	// radius. Higher values detect fainter photos.
	Sensitivity float64
	// MinRelativeSize and MaxRelativeSize bound a component's pixel area as
	// a fraction of the working-resolution pixel count.
	MinRelativeSize float64
	MaxRelativeSize float64
	// MaxCount caps the number of returned photos.
	MaxCount int
	// TrimFactor is the inward crop margin fraction discarding scanner-edge
	// artifacts around each rectified photo.
	TrimFactor float64
}

// DefaultOptions returns the stock detection parameters.
func DefaultOptions() Options {
	return Options{
		Sensitivity:     0.5,
		MinRelativeSize: 0.04,
		MaxRelativeSize: 0.50,
		MaxCount:        20,
		TrimFactor:      0.02,
	}
}

// Validate rejects parameter combinations the pipeline cannot honor.
func (o Options) Validate() error {
	if o.Sensitivity < 0 || o.Sensitivity > 1 {
		return errors.Errorf("sensitivity must be in [0,1], got %v", o.Sensitivity)
	}
	if o.MinRelativeSize < 0 || o.MaxRelativeSize > 1 || o.MinRelativeSize >= o.MaxRelativeSize {
		return errors.Errorf("relative size window [%v,%v] is invalid", o.MinRelativeSize, o.MaxRelativeSize)
	}
	if o.MaxCount < 1 {
		return errors.Errorf("max count must be positive, got %d", o.MaxCount)
	}
	if o.TrimFactor < 0 || o.TrimFactor >= 0.5 {
		return errors.Errorf("trim factor must be in [0,0.5), got %v", o.TrimFactor)
	}
	return nil
}

// Detector finds discrete photographs on a scanned image. A Detector is
// read-only after construction, so one instance may serve concurrent Detect
// calls on different images.
type Detector struct {
	opts   Options
	logger *logrus.Logger
}

// NewDetector creates a detector with the given options.
func NewDetector(opts Options, logger *logrus.Logger) *Detector {
	return &Detector{opts: opts, logger: logger}
}

// Detect runs the full pipeline on a decoded source image and returns the
// detected photos ordered by descending component area (ties broken by
// raster discovery order). Cancellation is cooperative: the context is
// checked at coarse checkpoints and an aborted run yields no partial
// results. An image with no qualifying components returns an empty,
// non-error result.
func (d *Detector) Detect(ctx context.Context, src image.Image) ([]DetectedPhoto, error) {
	if src == nil {
		return nil, errors.WithMessage(ErrCannotLoadImage, "nil source image")
	}
	timer := metrics.NewStageTimer()

	stop := timer.Track("downscale")
	gray, scale := raster.FromImage(src)
	stop()
	d.logger.WithFields(logrus.Fields{
		"working_width":  gray.Width,
		"working_height": gray.Height,
		"scale":          scale,
	}).Debug("working bitmap prepared")
	if err := cancelled(ctx); err != nil {
		return nil, err
	}

	stop = timer.Track("threshold")
	mask := algorithms.Threshold(gray, d.opts.Sensitivity)
	stop()

	stop = timer.Track("morphology")
	mask = algorithms.Close(mask, algorithms.CloseRadius(d.opts.Sensitivity))
	mask = algorithms.FillHoles(mask)
	stop()
	if err := cancelled(ctx); err != nil {
		return nil, err
	}

	stop = timer.Track("label")
	comps := algorithms.Label(mask)
	stop()

	total := gray.Width * gray.Height
	minPixels := int(d.opts.MinRelativeSize * float64(total))
	maxPixels := int(d.opts.MaxRelativeSize * float64(total))
	qualified := comps[:0]
	for _, c := range comps {
		if c.Area >= minPixels && c.Area <= maxPixels {
			qualified = append(qualified, c)
		}
	}
	// Stable sort keeps raster discovery order as the tie-break.
	sort.SliceStable(qualified, func(i, j int) bool {
		return qualified[i].Area > qualified[j].Area
	})
	if len(qualified) > d.opts.MaxCount {
		qualified = qualified[:d.opts.MaxCount]
	}
	d.logger.WithFields(logrus.Fields{
		"components": len(comps),
		"qualified":  len(qualified),
	}).Debug("components labeled")
	if err := cancelled(ctx); err != nil {
		return nil, err
	}

	stop = timer.Track("rectify")
	full := imaging.Clone(src)
	photos := make([]DetectedPhoto, 0, len(qualified))
	for _, comp := range qualified {
		if err := cancelled(ctx); err != nil {
			return nil, err
		}
		photo, err := d.rectify(comp, gray.Width, gray.Height, full)
		if err != nil {
			// Per-component failures never abort the batch.
			d.logger.WithFields(logrus.Fields{
				"component": comp.Label,
				"area":      comp.Area,
			}).WithError(err).Debug("component skipped")
			continue
		}
		photos = append(photos, photo)
	}
	stop()

	d.logger.WithFields(timer.Fields()).WithField("photos", len(photos)).Info("detection completed")
	return photos, nil
}

// rectify turns one qualifying component into a perspective-corrected photo.
func (d *Detector) rectify(comp algorithms.Component, workW, workH int, full *image.NRGBA) (DetectedPhoto, error) {
	rect, ok := algorithms.MinAreaRect(comp.Boundary)
	if !ok {
		return DetectedPhoto{}, errors.New("component has no boundary")
	}
	quad := normalizeQuad(rect, workW, workH)

	fw := float64(full.Rect.Dx())
	fh := float64(full.Rect.Dy())
	tl := fullResCorner(quad.TopLeft, fw, fh)
	tr := fullResCorner(quad.TopRight, fw, fh)
	br := fullResCorner(quad.BottomRight, fw, fh)
	bl := fullResCorner(quad.BottomLeft, fw, fh)

	// Output extent: mean of opposite edge lengths, floored at one pixel.
	outW := atLeast1(math.Round((dist(tl, tr) + dist(bl, br)) / 2))
	outH := atLeast1(math.Round((dist(tl, bl) + dist(tr, br)) / 2))

	warped, err := algorithms.WarpQuad(full, tl, tr, br, bl, outW, outH)
	if err != nil {
		return DetectedPhoto{}, errors.Wrap(err, "perspective correction")
	}

	margin := int(math.Max(2, math.Round(d.opts.TrimFactor*float64(min(outW, outH)))))
	if outW-2*margin < 1 || outH-2*margin < 1 {
		return DetectedPhoto{}, errors.Errorf("trim margin %dpx collapses %dx%d crop", margin, outW, outH)
	}
	crop := imaging.Crop(warped, image.Rect(margin, margin, outW-margin, outH-margin))

	return DetectedPhoto{Quad: quad, Image: crop, Rotation: 0}, nil
}

// normalizeQuad converts min-rect corners from working-bitmap pixel space to
// normalized coordinates with y pointing up, then assigns corner roles: the
// two highest corners become top-left/top-right ordered by x, the remaining
// two bottom-left/bottom-right ordered by x.
func normalizeQuad(rect [4]algorithms.Point2, workW, workH int) Quad {
	var pts [4]Point
	for i, c := range rect {
		pts[i] = Point{
			X: c.X / float64(workW),
			Y: 1 - c.Y/float64(workH),
		}
	}
	sorted := pts[:]
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})
	top := [2]Point{sorted[0], sorted[1]}
	bottom := [2]Point{sorted[2], sorted[3]}
	if top[0].X > top[1].X {
		top[0], top[1] = top[1], top[0]
	}
	if bottom[0].X > bottom[1].X {
		bottom[0], bottom[1] = bottom[1], bottom[0]
	}
	return Quad{
		TopLeft:     top[0],
		TopRight:    top[1],
		BottomLeft:  bottom[0],
		BottomRight: bottom[1],
	}
}

// fullResCorner maps a normalized y-up corner to full-resolution pixel
// coordinates with y pointing down.
func fullResCorner(p Point, fullW, fullH float64) algorithms.Point2 {
	return algorithms.Point2{
		X: p.X * fullW,
		Y: (1 - p.Y) * fullH,
	}
}

func dist(a, b algorithms.Point2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func atLeast1(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

func cancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "detection cancelled")
	default:
		return nil
	}
}
