package attach

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/scene"
)

// rig is an owner with an animated arm, an attach node on it and one
// dependent at (1, 0, 0) in owner space.
type rig struct {
	owner *scene.Owner
	arm   *scene.Transform
	node  *scene.Node
	body  *scene.Body
}

func newRig(physical bool) *rig {
	owner := scene.NewOwner("vessel")
	arm := owner.AddTransform("arm", nil)
	node := scene.NewNode("top", arm)
	owner.AddNode(node)

	var parent *scene.Transform
	if !physical {
		parent = owner.SceneTransform()
	}
	bt := scene.NewTransform("panel", parent)
	bt.SetLocalPose(r3.Vec{X: 1}, geom.Identity())
	body := scene.NewBody("panel", bt)
	if physical {
		body.SetJoint(scene.NewJoint())
	}

	node.Attach(body)
	owner.Attach(body, host.KindNode)
	return &rig{owner: owner, arm: arm, node: node, body: body}
}

// addDependent attaches another kinematic body at pos without a node.
func (r *rig) addDependent(id string, pos r3.Vec, kind host.Kind) *scene.Body {
	t := scene.NewTransform(id, r.owner.SceneTransform())
	t.SetLocalPose(pos, geom.Identity())
	b := scene.NewBody(id, t)
	r.owner.Attach(b, kind)
	return b
}

func (r *rig) yaw(deg float64) {
	r.arm.SetLocalPose(r.arm.LocalPosition(), geom.Euler(r3.Vec{Y: deg}))
}
