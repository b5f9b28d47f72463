package attach

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

// Resolve returns the pose of leaf relative to owner's transform by walking
// the parent chain and accumulating each link's local pose. Positions are
// scaled by the parent's local scale on the way up and by the owner's
// rescale factor at the end.
//
// The second result is false when the chain ends before reaching the owner,
// which happens for frames on a detached sub-assembly. Callers skip the
// attachment for the tick.
func Resolve(leaf host.Transform, owner host.Body) (geom.Pose, bool) {
	if leaf == nil || owner == nil {
		return geom.Pose{}, false
	}
	root := owner.Transform()

	pos := r3.Vec{}
	rot := geom.Identity()
	for t := leaf; t != root; {
		parent := t.Parent()
		if parent == nil {
			return geom.Pose{}, false
		}
		local := t.LocalRotation()
		pos = r3.Add(geom.Rotate(local, pos), geom.MulElem(parent.LocalScale(), t.LocalPosition()))
		rot = geom.Mul(local, rot)
		t = parent
	}

	pos = r3.Scale(owner.RescaleFactor(), pos)
	return geom.NewPose(pos, rot), true
}
