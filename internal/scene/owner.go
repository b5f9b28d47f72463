package scene

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/host"
)

// Node is an attach point on the owner. The resolved pose published by the
// attachment engine is kept for inspection.
type Node struct {
	name        string
	transform   *Transform
	attached    *Body
	position    r3.Vec
	orientation r3.Vec
	published   bool
}

func NewNode(name string, transform *Transform) *Node {
	return &Node{name: name, transform: transform}
}

func (n *Node) Name() string { return n.name }

func (n *Node) Transform() host.Transform {
	if n.transform == nil {
		return nil
	}
	return n.transform
}

func (n *Node) Attached() host.Body {
	if n.attached == nil {
		return nil
	}
	return n.attached
}

func (n *Node) SetPose(position, orientation r3.Vec) {
	n.position = position
	n.orientation = orientation
	n.published = true
}

// Pose returns the last published position and orientation and whether any
// was published.
func (n *Node) Pose() (position, orientation r3.Vec, ok bool) {
	return n.position, n.orientation, n.published
}

func (n *Node) Attach(b *Body) { n.attached = b }

// Owner is the animated part carrying attachments. Its transform is the
// root of the scene graph.
type Owner struct {
	*Body

	transforms  map[string]*Transform
	nodes       []*Node
	geometries  []*Box
	attachments []host.Attachment
}

func NewOwner(id string) *Owner {
	root := NewTransform(id, nil)
	return &Owner{
		Body:       NewBody(id, root),
		transforms: map[string]*Transform{id: root},
	}
}

// AddTransform creates a transform under parent, or under the owner root
// when parent is nil.
func (o *Owner) AddTransform(name string, parent *Transform) *Transform {
	if parent == nil {
		parent = o.transform
	}
	t := NewTransform(name, parent)
	o.transforms[name] = t
	return t
}

func (o *Owner) Transforms() map[string]*Transform { return o.transforms }

func (o *Owner) Lookup(name string) (*Transform, bool) {
	t, ok := o.transforms[name]
	return t, ok
}

func (o *Owner) FindTransform(name string) host.Transform {
	t, ok := o.transforms[name]
	if !ok {
		return nil
	}
	return t
}

func (o *Owner) AddNode(n *Node)    { o.nodes = append(o.nodes, n) }
func (o *Owner) AddGeometry(b *Box) { o.geometries = append(o.geometries, b) }

func (o *Owner) SceneNode(name string) (*Node, bool) {
	for _, n := range o.nodes {
		if n.name == name {
			return n, true
		}
	}
	return nil, false
}

func (o *Owner) Nodes() []host.Node {
	out := make([]host.Node, len(o.nodes))
	for i, n := range o.nodes {
		out[i] = n
	}
	return out
}

func (o *Owner) Geometries() []host.Geometry {
	out := make([]host.Geometry, len(o.geometries))
	for i, g := range o.geometries {
		out[i] = g
	}
	return out
}

// Attachments returns a copy of the ordered dependent list.
func (o *Owner) Attachments() []host.Attachment {
	out := make([]host.Attachment, len(o.attachments))
	copy(out, o.attachments)
	return out
}

// Attach appends b to the dependent list.
func (o *Owner) Attach(b *Body, kind host.Kind) host.Attachment {
	a := host.Attachment{Body: b, Kind: kind}
	o.attachments = append(o.attachments, a)
	return a
}

// Detach removes b from the dependent list and from any node it hangs on.
func (o *Owner) Detach(b *Body) (host.Attachment, bool) {
	for i, a := range o.attachments {
		if a.Body == host.Body(b) {
			o.attachments = append(o.attachments[:i], o.attachments[i+1:]...)
			for _, n := range o.nodes {
				if n.attached == b {
					n.attached = nil
				}
			}
			return a, true
		}
	}
	return host.Attachment{}, false
}

// SetParent makes p the owner's structural parent.
func (o *Owner) SetParent(p *Body) { o.parent = p }
