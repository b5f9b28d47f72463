package attach

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/document"
	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/scene"
)

// roundTrip pushes root through the on-disk encoding.
func roundTrip(t *testing.T, root *document.Node) *document.Node {
	t.Helper()
	data, err := document.Marshal(root)
	require.NoError(t, err)
	out, err := document.Unmarshal(data)
	require.NoError(t, err)
	return out
}

func TestSaveLoadRestoresOffset(t *testing.T) {
	r := newRig(false)
	r.arm.SetLocalPose(r3.Vec{X: 0.1, Y: 0.7, Z: -0.3}, geom.Euler(r3.Vec{X: 13, Y: 37, Z: 71}))

	e := NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
	e.Tick()
	saved := *e.Registry().Records()[0].Offset

	root := document.New("PART")
	e.Save(root)
	root = roundTrip(t, root)
	require.Equal(t, 1, root.CountNodes(NodeAttachment))

	loaded := NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
	loaded.Load(root)
	require.Equal(t, 1, loaded.Registry().Len())
	rec := loaded.Registry().Records()[0]
	assert.Equal(t, BindingPending, rec.Binding())
	assert.Equal(t, "arm", rec.Anchor())
	require.NotNil(t, rec.Offset)
	assert.Equal(t, saved, *rec.Offset, "offset survives the string encoding exactly")

	loaded.Tick()
	dep, ok := rec.Dependent()
	require.True(t, ok)
	assert.Equal(t, host.Body(r.body), dep)
}

func TestPersistedOffsetWinsOverCapture(t *testing.T) {
	r := newRig(false)
	root := document.New("PART")
	n := root.AddNode(NodeAttachment)
	n.AddValue("kind", "node")
	n.AddValue("anchor", "arm")
	off := n.AddNode(NodeOffset)
	off.AddValue("position", geom.FormatVec(r3.Vec{X: 4}))
	off.AddValue("rotation", geom.FormatQuat(geom.Identity()))

	e := NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
	e.Load(root)
	e.Tick()

	rec := e.Registry().Records()[0]
	require.True(t, rec.Bound())
	assert.Equal(t, r3.Vec{X: 4}, rec.Offset.Position, "live pose (1, 0, 0) is not re-captured")
	assert.Equal(t, r3.Vec{X: 1}, rec.Rest.Position)
	assert.True(t, geom.NearVec(geom.Forward, rec.Offset.Orientation, 1e-12), "orientation is derived when absent")
}

func TestLoadMalformedFallsBackToCapture(t *testing.T) {
	r := newRig(false)
	root := document.New("PART")
	n := root.AddNode(NodeAttachment)
	n.AddValue("kind", "sideways")
	n.AddValue("anchor", "arm")
	off := n.AddNode(NodeOffset)
	off.AddValue("position", "(1, 2)")
	off.AddValue("rotation", "(0, 0, 0, 1)")

	e := NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
	e.Load(root)
	rec := e.Registry().Records()[0]
	assert.Equal(t, host.KindNode, rec.Kind, "unknown kinds load as node")
	assert.Nil(t, rec.Offset)

	e.Tick()
	require.True(t, rec.Bound())
	assert.Equal(t, r3.Vec{X: 1}, rec.Offset.Position)
}

func TestLoadSurfaceAnchorAndIdentityMatch(t *testing.T) {
	owner := scene.NewOwner("v")
	left := owner.AddTransform("left", nil)
	left.SetLocalPose(r3.Vec{X: -5}, geom.Identity())
	right := owner.AddTransform("right", nil)
	right.SetLocalPose(r3.Vec{X: 5}, geom.Identity())
	owner.AddGeometry(scene.NewBox("left", left, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}))
	owner.AddGeometry(scene.NewBox("right", right, r3.Vec{}, r3.Vec{X: 1, Y: 1, Z: 1}))

	mk := func(id string, contact r3.Vec) *scene.Body {
		b := scene.NewBody(id, scene.NewTransform(id, owner.SceneTransform()))
		b.SetContactPoint(contact)
		return b
	}
	onLeft := mk("l", r3.Vec{X: -5.5})
	onRight := mk("r", r3.Vec{X: 5.5})
	owner.Attach(onLeft, host.KindSurface)
	owner.Attach(onRight, host.KindSurface)

	e := NewEngine(owner, DefaultSettings(), zerolog.Nop())
	e.Tick()
	root := document.New("PART")
	e.Save(root)

	// Reload with the dependents listed the other way round.
	owner.Detach(onLeft)
	owner.Attach(onLeft, host.KindSurface)

	loaded := NewEngine(owner, DefaultSettings(), zerolog.Nop())
	loaded.Load(roundTrip(t, root))
	recs := loaded.Registry().Records()
	require.Len(t, recs, 2)
	assert.Equal(t, "left", recs[0].Anchor())
	assert.NotNil(t, recs[0].Frame(), "surface anchors resolve to the geometry on load")

	loaded.Tick()
	recs = loaded.Registry().Records()
	require.Len(t, recs, 2)
	dep0, _ := recs[0].Dependent()
	dep1, _ := recs[1].Dependent()
	assert.Equal(t, "r", dep0.ID())
	assert.Equal(t, "right", recs[0].Anchor())
	assert.Equal(t, "l", dep1.ID())
	assert.Equal(t, "left", recs[1].Anchor())
}

func TestSaveWithoutOffset(t *testing.T) {
	r := newRig(false)
	settings := DefaultSettings()
	settings.Enabled = false
	e := NewEngine(r.owner, settings, zerolog.Nop())
	e.Tick()

	root := document.New("PART")
	e.Save(root)
	n := root.GetNode(NodeAttachment, 0)
	require.NotNil(t, n)
	assert.False(t, n.HasNode(NodeOffset))
	kind, _ := n.GetValue("kind")
	assert.Equal(t, "node", kind)
}

func TestReclassifiedRecordKeepsOffsetAcrossReload(t *testing.T) {
	r := newRig(false)
	plate := r.owner.AddTransform("plate", nil)
	plate.SetLocalPose(r3.Vec{Y: 3}, geom.Identity())
	r.owner.AddGeometry(scene.NewBox("plate", plate, r3.Vec{}, r3.Vec{X: 4, Y: 0.2, Z: 4}))
	b := r.addDependent("b", r3.Vec{Y: 3.5}, host.KindNode)
	b.SetContactPoint(r3.Vec{Y: 3.1})

	e := NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
	e.Tick()
	e.Tick()
	rec := e.Registry().Records()[1]
	require.Equal(t, host.KindSurface, rec.Kind)
	require.NotNil(t, rec.Offset)
	saved := *rec.Offset
	assert.True(t, geom.NearVec(r3.Vec{Y: 0.5}, saved.Position, 1e-12))

	root := document.New("PART")
	e.Save(root)
	root = roundTrip(t, root)
	kind, _ := root.GetNode(NodeAttachment, 1).GetValue("kind")
	assert.Equal(t, "surface", kind)

	// A fresh capture would now see the body 0.5 below the plate.
	plate.SetLocalPose(r3.Vec{Y: 4}, geom.Identity())

	loaded := NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
	loaded.Load(root)
	loaded.Tick()

	recs := loaded.Registry().Records()
	require.Len(t, recs, 2)
	got := recs[1]
	dep, ok := got.Dependent()
	require.True(t, ok)
	assert.Equal(t, host.Body(b), dep)
	assert.Equal(t, host.KindSurface, got.Kind)
	assert.Equal(t, "plate", got.Anchor())
	require.NotNil(t, got.Offset)
	assert.Equal(t, saved, *got.Offset, "persisted offset is kept, not captured again")
}

func TestSurfaceRecordDoesNotClaimNodeWithNode(t *testing.T) {
	r := newRig(false)
	root := document.New("PART")
	n := root.AddNode(NodeAttachment)
	n.AddValue("kind", "surface")

	e := NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
	e.Load(root)
	e.Tick()

	rec := e.Registry().Records()[0]
	assert.Equal(t, host.KindNode, rec.Kind, "a body held by a node gets a fresh node record")
	assert.Equal(t, "arm", rec.Anchor())
}
