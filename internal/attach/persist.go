package attach

import (
	"github.com/san-kum/animattach/internal/document"
	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

const (
	NodeAttachment = "ATTACHMENT"
	NodeOffset     = "OFFSET"

	keyKind        = "kind"
	keyAnchor      = "anchor"
	keyName        = "name"
	keyPosition    = "position"
	keyRotation    = "rotation"
	keyOrientation = "orientation"
)

// Save appends one ATTACHMENT node per record to root, with an OFFSET child
// when an offset has been captured.
func (r *Registry) Save(root *document.Node) {
	for _, rec := range r.records {
		n := root.AddNode(NodeAttachment)
		n.AddValue(keyKind, rec.Kind.String())
		n.AddValue(keyAnchor, rec.anchor)
		if rec.Offset == nil {
			continue
		}
		off := n.AddNode(NodeOffset)
		off.AddValue(keyName, rec.anchor)
		off.AddValue(keyPosition, geom.FormatVec(rec.Offset.Position))
		off.AddValue(keyRotation, geom.FormatQuat(rec.Offset.Rotation))
		off.AddValue(keyOrientation, geom.FormatVec(rec.Offset.Orientation))
	}
}

// Load replaces the records with pending ones read from root. Anchor names
// are resolved against the owner right away; a persisted offset is restored
// as is so the record does not re-capture it. Malformed entries degrade to
// records that capture again from live observation.
func (r *Registry) Load(root *document.Node) {
	r.records = make([]*Record, 0, root.CountNodes(NodeAttachment))

	for i := 0; ; i++ {
		n := root.GetNode(NodeAttachment, i)
		if n == nil {
			break
		}
		rec := &Record{binding: BindingPending}

		kindStr, _ := n.GetValue(keyKind)
		kind, ok := host.ParseKind(kindStr)
		if !ok {
			r.log.Warn().Int("index", i).Str("kind", kindStr).Msg("unknown attachment kind, assuming node")
		}
		rec.Kind = kind

		if name, ok := n.GetValue(keyAnchor); ok && name != "" {
			r.resolveAnchor(rec, name)
		}

		if off := n.GetNode(NodeOffset, 0); off != nil {
			if p, ok := loadPose(off); ok {
				rec.Offset = &p
			} else {
				r.log.Warn().Int("index", i).Str("anchor", rec.anchor).Msg("malformed offset, will capture again")
			}
		}

		r.records = append(r.records, rec)
	}

	r.log.Debug().Str("owner", r.owner.ID()).Int("records", len(r.records)).Msg("attachments loaded")
}

func (r *Registry) resolveAnchor(rec *Record, name string) {
	rec.anchor = name
	if rec.Kind == host.KindSurface {
		if g := host.GeometryByName(r.owner, name); g != nil {
			rec.bindGeometry(g)
		}
		return
	}
	for _, n := range r.owner.Nodes() {
		if t := n.Transform(); t != nil && t.Name() == name {
			rec.bindNode(n)
			return
		}
	}
	if t := r.owner.FindTransform(name); t != nil {
		rec.frame = t
	}
}

func loadPose(n *document.Node) (geom.Pose, bool) {
	posStr, ok1 := n.GetValue(keyPosition)
	rotStr, ok2 := n.GetValue(keyRotation)
	if !ok1 || !ok2 {
		return geom.IdentityPose(), false
	}
	pos, ok1 := geom.ParseVec(posStr)
	rot, ok2 := geom.ParseQuat(rotStr)
	if !ok1 || !ok2 {
		return geom.IdentityPose(), false
	}
	p := geom.NewPose(pos, rot)
	if oriStr, ok := n.GetValue(keyOrientation); ok {
		if ori, ok := geom.ParseVec(oriStr); ok {
			p.Orientation = ori
		}
	}
	return p, true
}
