// Package trackmap projects a lap's 3-D position samples onto a 2-D screen
// viewport, preserving the track's aspect ratio and sample order.
package trackmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/banshee-data/telemetry.report/internal/analytics"
	"github.com/banshee-data/telemetry.report/internal/telemetry"
)

// ErrInvalidViewport is returned for viewports with no drawable area.
var ErrInvalidViewport = errors.New("invalid viewport")

// FallbackScale is used when neither axis has any extent. A single flat
// axis does not trigger it; the other axis sets the scale.
const FallbackScale = 1.0

// Viewport is the target drawing area in screen units.
type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding float64 `json:"padding"`
}

// Validate reports whether the viewport leaves a positive drawable area.
func (v Viewport) Validate() error {
	for _, f := range []float64{v.Width, v.Height, v.Padding} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: non-finite dimension in %+v", ErrInvalidViewport, v)
		}
	}
	if v.Width <= 0 || v.Height <= 0 {
		return fmt.Errorf("%w: size %gx%g", ErrInvalidViewport, v.Width, v.Height)
	}
	if v.Padding < 0 || 2*v.Padding >= v.Width || 2*v.Padding >= v.Height {
		return fmt.Errorf("%w: padding %g in %gx%g", ErrInvalidViewport, v.Padding, v.Width, v.Height)
	}
	return nil
}

// drawable is the padded area points must land in.
func (v Viewport) drawable() r2.Rect {
	return r2.RectFromPoints(
		r2.Point{X: v.Padding, Y: v.Padding},
		r2.Point{X: v.Width - v.Padding, Y: v.Height - v.Padding},
	)
}

// Point is a screen coordinate; Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) vec() r2.Point { return r2.Point{X: p.X, Y: p.Y} }

func fromR2(p r2.Point) Point { return Point{X: p.X, Y: p.Y} }

// Polyline is a projected lap. Start marks the start/finish line and is nil
// for an empty polyline.
type Polyline struct {
	Points []Point `json:"points"`
	Start  *Point  `json:"start,omitempty"`
	Scale  float64 `json:"scale"`
}

// Project maps samples onto vp. Each sample's (x, z) becomes (x, -z) and
// height is ignored. The tighter axis sets a single scale for both, and the
// scaled extent is centred in the viewport. Output has one point per sample
// in input order.
//
// An axis with zero extent does not constrain the scale. When both have
// zero extent the scale is FallbackScale and every point sits at the
// viewport centre.
func Project(samples []telemetry.Position, vp Viewport) (Polyline, error) {
	if err := vp.Validate(); err != nil {
		return Polyline{}, err
	}
	poly := Polyline{Points: make([]Point, 0, len(samples))}
	if len(samples) == 0 {
		return poly, nil
	}

	mapped := make([]r2.Point, len(samples))
	for i, s := range samples {
		if !finite(s.X) || !finite(s.Z) {
			return Polyline{}, fmt.Errorf("sample %d (%g, %g): %w", i, s.X, s.Z, telemetry.ErrInvalidInput)
		}
		mapped[i] = r2.Point{X: s.X, Y: -s.Z}
	}

	bounds := r2.RectFromPoints(mapped...)
	extent := bounds.Size()
	if !finite(extent.X) || !finite(extent.Y) {
		return Polyline{}, fmt.Errorf("sample extent %gx%g overflows: %w", extent.X, extent.Y, telemetry.ErrInvalidInput)
	}
	area := vp.drawable()
	avail := area.Size()

	scale := math.Inf(1)
	if extent.X > 0 {
		scale = avail.X / extent.X
	}
	if extent.Y > 0 {
		scale = math.Min(scale, avail.Y/extent.Y)
	}
	if math.IsInf(scale, 1) || !finite(scale) || scale <= 0 {
		scale = FallbackScale
	}
	poly.Scale = scale

	from, to := bounds.Center(), area.Center()
	for _, m := range mapped {
		p := to.Add(m.Sub(from).Mul(scale))
		poly.Points = append(poly.Points, fromR2(area.ClampPoint(p)))
	}
	start := poly.Points[0]
	poly.Start = &start
	return poly, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ProjectBestLap selects the fastest lap, gathers its samples and projects
// them. With skipInvalid set, laps flagged invalid are not candidates. It
// reports false when no candidate lap has a positive time.
func ProjectBestLap(laps []telemetry.Lap, points []telemetry.TelemetryPoint, vp Viewport, skipInvalid bool) (Polyline, telemetry.Lap, bool, error) {
	pick := analytics.BestLap
	if skipInvalid {
		pick = analytics.BestValidLap
	}
	best, ok := pick(laps)
	if !ok {
		return Polyline{Points: []Point{}}, telemetry.Lap{}, false, nil
	}
	poly, err := Project(telemetry.LapPoints(points, best.SessionID, best.LapNumber), vp)
	if err != nil {
		return Polyline{}, best, true, fmt.Errorf("project lap %s/%d: %w", best.SessionID, best.LapNumber, err)
	}
	return poly, best, true, nil
}
