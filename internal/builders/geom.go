package builders

import "math"

// Triangulate ear-clips a simple polygon (contour plus holes) into a
// flat index list. No geometry library in the example pack offers 2-D
// polygon triangulation (the teacher hand-rolls its own binary/geometry
// codec for WKB instead of depending on one — see internal/wkb/encoder.go),
// so this follows that precedent rather than reaching for stdlib alone.
//
// Holes are first spliced into the outer contour by bridging each hole
// to its nearest outer vertex (a standard simplification: it assumes the
// bridge segment does not cross another hole, true for the isolated,
// non-overlapping holes this pipeline produces). The merged ring is then
// triangulated by classic O(n²) ear clipping. The returned indices refer
// to the contour's vertices followed by each hole's vertices in order.
func Triangulate(contour []Point2D, holes [][]Point2D) []int32 {
	ring := append([]Point2D(nil), contour...)
	all := append([]Point2D(nil), contour...)
	for _, hole := range holes {
		ring = spliceHole(ring, hole)
		all = append(all, hole...)
	}
	tris := earClip(ring)
	for i, idx := range tris {
		for j, p := range all {
			if p == ring[idx] {
				tris[i] = int32(j)
				break
			}
		}
	}
	return tris
}

// spliceHole merges hole into ring by connecting ring's vertex nearest to
// hole[0] to hole, walking the hole and back, producing a single ring
// with a degenerate zero-area bridge at the seam.
func spliceHole(ring []Point2D, hole []Point2D) []Point2D {
	if len(hole) == 0 {
		return ring
	}
	best := 0
	bestDist := math.Inf(1)
	for i, p := range ring {
		d := distSq(p, hole[0])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}

	out := make([]Point2D, 0, len(ring)+len(hole)+2)
	out = append(out, ring[:best+1]...)
	out = append(out, hole...)
	out = append(out, hole[0])
	out = append(out, ring[best:]...)
	return out
}

func distSq(a, b Point2D) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// earClip triangulates a simple (possibly non-convex) ring, returning
// vertex indices into ring, three per triangle.
func earClip(ring []Point2D) []int32 {
	n := len(ring)
	if n < 3 {
		return nil
	}
	if polygonArea2(ring) < 0 {
		// Ear clipping below assumes a counter-clockwise ring; flip a
		// clockwise one so indices still map back into the original slice.
		reversed := make([]Point2D, n)
		for i, p := range ring {
			reversed[n-1-i] = p
		}
		tris := earClipCCW(reversed)
		for i, idx := range tris {
			tris[i] = int32(n-1) - idx
		}
		return tris
	}
	return earClipCCW(ring)
}

func polygonArea2(ring []Point2D) float64 {
	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return sum
}

func earClipCCW(ring []Point2D) []int32 {
	n := len(ring)
	indices := make([]int32, n)
	for i := range indices {
		indices[i] = int32(i)
	}

	var triangles []int32
	guard := 0
	for len(indices) > 3 && guard < n*n+8 {
		guard++
		clipped := false
		for i := 0; i < len(indices); i++ {
			prev := indices[(i-1+len(indices))%len(indices)]
			cur := indices[i]
			next := indices[(i+1)%len(indices)]
			if isEar(ring, indices, prev, cur, next) {
				triangles = append(triangles, prev, cur, next)
				indices = append(indices[:i], indices[i+1:]...)
				clipped = true
				break
			}
		}
		if !clipped {
			break // degenerate/self-intersecting input; stop rather than loop
		}
	}
	if len(indices) == 3 {
		triangles = append(triangles, indices[0], indices[1], indices[2])
	}
	return triangles
}

func isEar(ring []Point2D, indices []int32, a, b, c int32) bool {
	if signedArea2(ring[a], ring[b], ring[c]) <= 0 {
		return false // reflex or degenerate vertex, not convex
	}
	for _, idx := range indices {
		if idx == a || idx == b || idx == c {
			continue
		}
		if ring[idx] == ring[a] || ring[idx] == ring[b] || ring[idx] == ring[c] {
			continue // a bridge duplicate of a corner, not a vertex inside
		}
		if pointInTriangle(ring[idx], ring[a], ring[b], ring[c]) {
			return false
		}
	}
	return true
}

func signedArea2(a, b, c Point2D) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

func pointInTriangle(p, a, b, c Point2D) bool {
	d1 := signedArea2(a, b, p)
	d2 := signedArea2(b, c, p)
	d3 := signedArea2(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
