package trackmap

import (
	"math"

	"github.com/golang/geo/r2"
)

// centripetal is the Catmull-Rom knot exponent that avoids cusps and
// self-intersections within a span.
const centripetal = 0.5

// Smooth densifies poly with a centripetal Catmull-Rom spline, inserting
// segments-1 points inside each span. The original points are kept, in
// order, so the spline passes through every sample. Polylines with fewer
// than three points, or segments below two, are returned as a copy.
func Smooth(poly Polyline, segments int) Polyline {
	out := Polyline{Scale: poly.Scale}
	if poly.Start != nil {
		start := *poly.Start
		out.Start = &start
	}
	n := len(poly.Points)
	if n < 3 || segments < 2 {
		out.Points = append(make([]Point, 0, n), poly.Points...)
		return out
	}

	pts := make([]r2.Point, n+2)
	for i, p := range poly.Points {
		pts[i+1] = p.vec()
	}
	// Phantom endpoints mirror the neighbouring span.
	pts[0] = pts[1].Mul(2).Sub(pts[2])
	pts[n+1] = pts[n].Mul(2).Sub(pts[n-1])

	out.Points = make([]Point, 0, (n-1)*segments+1)
	for i := 1; i < n; i++ {
		p0, p1, p2, p3 := pts[i-1], pts[i], pts[i+1], pts[i+2]
		out.Points = append(out.Points, fromR2(p1))
		for s := 1; s < segments; s++ {
			u := float64(s) / float64(segments)
			out.Points = append(out.Points, fromR2(catmullRom(p0, p1, p2, p3, u)))
		}
	}
	out.Points = append(out.Points, poly.Points[n-1])
	return out
}

// catmullRom evaluates the span p1→p2 at u in [0, 1] using the
// Barry-Goldman pyramid.
func catmullRom(p0, p1, p2, p3 r2.Point, u float64) r2.Point {
	if p1 == p2 {
		return p1
	}
	t0 := 0.0
	t1 := t0 + knot(p0, p1)
	t2 := t1 + knot(p1, p2)
	t3 := t2 + knot(p2, p3)
	t := t1 + u*(t2-t1)

	a1 := lerp(p0, p1, t0, t1, t)
	a2 := lerp(p1, p2, t1, t2, t)
	a3 := lerp(p2, p3, t2, t3, t)
	b1 := lerp(a1, a2, t0, t2, t)
	b2 := lerp(a2, a3, t1, t3, t)
	return lerp(b1, b2, t1, t2, t)
}

// knot returns the parameter step between two control points. Coincident
// points get a unit step so the pyramid never divides by zero.
func knot(a, b r2.Point) float64 {
	d := math.Pow(b.Sub(a).Norm(), centripetal)
	if d < 1e-12 {
		return 1
	}
	return d
}

func lerp(a, b r2.Point, ta, tb, t float64) r2.Point {
	return a.Mul((tb - t) / (tb - ta)).Add(b.Mul((t - ta) / (tb - ta)))
}
