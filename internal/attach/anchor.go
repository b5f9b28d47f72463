package attach

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// originTolerance decides when a closest-point answer is the geometry's
// origin rather than a real surface point.
const originTolerance = 1e-9

// SelectNearest returns the candidate closest to contact and its distance.
// A closest point equal to the candidate's origin is taken to mean the
// contact lies inside the volume, so the distance is zero. Ties keep the
// first candidate. The last result is false when there are no candidates.
func SelectNearest(candidates []host.Geometry, contact r3.Vec) (host.Geometry, float64, bool) {
	var best host.Geometry
	bestDist := math.Inf(1)

	for _, g := range candidates {
		if g == nil {
			continue
		}
		d := contactDistance(g, contact)
		if d < bestDist {
			best, bestDist = g, d
		}
		if d == 0 {
			break
		}
	}

	if best == nil {
		return nil, 0, false
	}
	return best, bestDist, true
}

func contactDistance(g host.Geometry, contact r3.Vec) float64 {
	closest := g.ClosestPoint(contact)
	if geom.NearVec(closest, g.Origin(), originTolerance) {
		closest = contact
	}
	return r3.Norm(r3.Sub(closest, contact))
}
