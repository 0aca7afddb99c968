package geom

// DefaultToleranceDeg is roughly 11 m at the equator, enough to strip
// near-collinear vertices from hand-drawn polygons without visibly moving
// the boundary.
const DefaultToleranceDeg = 1e-4

// minRingPoints is the smallest legal closed ring: a triangle plus closure.
const minRingPoints = 4

// Simplify applies Douglas-Peucker reduction to every ring independently.
// Ring endpoints are fixed anchors and no ring ever shrinks below four
// points. Distances are plain Euclidean in degree space; accuracy degrades
// at high latitudes, which is acceptable at the default tolerance.
func Simplify(g Geometry, toleranceDeg float64) Geometry {
	if toleranceDeg <= 0 {
		return g
	}
	switch g.Type {
	case TypePolygon:
		g.Polygon = simplifyPolygon(g.Polygon, toleranceDeg)
	case TypeMultiPolygon:
		out := make([][][][]float64, len(g.MultiPolygon))
		for i, rings := range g.MultiPolygon {
			out[i] = simplifyPolygon(rings, toleranceDeg)
		}
		g.MultiPolygon = out
	}
	return g
}

func simplifyPolygon(rings [][][]float64, tol float64) [][][]float64 {
	out := make([][][]float64, len(rings))
	for i, ring := range rings {
		out[i] = simplifyRing(ring, tol)
	}
	return out
}

func simplifyRing(ring [][]float64, tol float64) [][]float64 {
	if len(ring) <= minRingPoints {
		return ring
	}
	ring = closeRing(ring)

	keep := make([]bool, len(ring))
	keep[0] = true
	keep[len(ring)-1] = true
	markKept(ring, 0, len(ring)-1, tol*tol, keep)

	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	// the floor: a ring that would collapse is left as drawn
	if n < minRingPoints {
		return ring
	}

	out := make([][]float64, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, ring[i])
		}
	}
	return out
}

// markKept recursively flags the points that survive between two anchors.
// The split index uses -1 as the "no point found" sentinel so that a valid
// split at index 0 can never be mistaken for absence.
func markKept(ring [][]float64, first, last int, tol2 float64, keep []bool) {
	if last-first < 2 {
		return
	}
	maxIdx := -1
	maxD2 := 0.0
	for i := first + 1; i < last; i++ {
		d2 := perpDist2(ring[i], ring[first], ring[last])
		if maxIdx == -1 || d2 > maxD2 {
			maxIdx = i
			maxD2 = d2
		}
	}
	if maxIdx == -1 || maxD2 <= tol2 {
		return
	}
	keep[maxIdx] = true
	markKept(ring, first, maxIdx, tol2, keep)
	markKept(ring, maxIdx, last, tol2, keep)
}

// perpDist2 is the squared perpendicular distance from p to the chord a-b.
// Falls back to point distance when the chord is degenerate (closed ring
// halves share their endpoint).
func perpDist2(p, a, b []float64) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	den := dx*dx + dy*dy
	if den == 0 {
		px := p[0] - a[0]
		py := p[1] - a[1]
		return px*px + py*py
	}
	cross := dx*(a[1]-p[1]) - (a[0]-p[0])*dy
	return cross * cross / den
}
