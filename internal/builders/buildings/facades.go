package buildings

import (
	"math"

	"github.com/geoquad/tilebuilder/internal/builders"
)

// flatFacade extrudes the footprint's actual contour (and hole walls, for
// a courtyard building) into vertical walls between minHeight and
// minHeight+height — the default, shape-faithful facade.
type flatFacade struct{}

func (flatFacade) Build(mctx *builders.MeshContext, polygon *Polygon, height, minHeight float64, color uint32) error {
	contours, holes := polygon.projected()
	top := minHeight + height
	for _, ring := range contours {
		appendWall(mctx.Mesh, ring, minHeight, top, color)
	}
	for _, ring := range holes {
		appendWall(mctx.Mesh, ring, minHeight, top, color)
	}
	return nil
}

// cylinderFacade ignores the footprint's actual vertices and instead
// extrudes a circle fitted to its centroid/average radius — for round
// buildings (silos, towers) where the digitized footprint is a rough
// polygon approximation of what should render as a smooth cylinder.
type cylinderFacade struct{}

const cylinderSegments = 16

func (cylinderFacade) Build(mctx *builders.MeshContext, polygon *Polygon, height, minHeight float64, color uint32) error {
	contours, _ := polygon.projected()
	for _, ring := range contours {
		if len(ring) < 3 {
			continue
		}
		c := centroid(ring)
		r := averageRadius(ring, c)
		circle := circleRing(c, r, cylinderSegments)
		appendWall(mctx.Mesh, circle, minHeight, minHeight+height, color)
	}
	return nil
}

// sphereFacade bulges a cylindrical wall outward at mid-height and tapers
// it back in at top and bottom, approximating a domed/spherical building
// shell by stacking rings whose radius follows a sine profile.
type sphereFacade struct{}

const sphereRings = 6

func (sphereFacade) Build(mctx *builders.MeshContext, polygon *Polygon, height, minHeight float64, color uint32) error {
	contours, _ := polygon.projected()
	for _, ring := range contours {
		if len(ring) < 3 {
			continue
		}
		c := centroid(ring)
		r := averageRadius(ring, c)
		mesh := mctx.Mesh

		prev := []builders.Point2D{c} // bottom pole
		prevY := minHeight
		for lvl := 1; lvl <= sphereRings; lvl++ {
			t := float64(lvl) / float64(sphereRings)
			y := minHeight + height*t
			radius := r * sinProfile(t)
			var cur []builders.Point2D
			if lvl == sphereRings {
				cur = []builders.Point2D{c} // top pole
			} else {
				cur = circleRing(c, radius, cylinderSegments)
			}
			connectRings(mesh, prev, cur, prevY, y, color)
			prev, prevY = cur, y
		}
	}
	return nil
}

// sinProfile maps t in [0,1] to sin(t*pi), a bulge that is zero at the
// poles (t=0, t=1) and maximal at the equator (t=0.5) — the radius
// envelope sphereFacade sweeps its rings through.
func sinProfile(t float64) float64 {
	return math.Sin(t * math.Pi)
}
