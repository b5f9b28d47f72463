package attach

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
)

func bindAt(t *testing.T, rec *Record, x float64) {
	t.Helper()
	require.NoError(t, rec.Bind(geom.IdentityPose(), geom.NewPose(r3.Vec{X: x}, geom.Identity())))
}

func TestSyncIsIdempotent(t *testing.T) {
	r := newRig(false)
	r.addDependent("b", r3.Vec{Y: 1}, host.KindSurface)
	r.addDependent("c", r3.Vec{Y: 2}, host.KindNode)
	reg := NewRegistry(r.owner, zerolog.Nop())

	added, removed := reg.Sync(r.owner.Attachments())
	assert.Equal(t, 3, added)
	assert.Equal(t, 0, removed)
	before := append([]*Record(nil), reg.Records()...)

	added, removed = reg.Sync(r.owner.Attachments())
	assert.Equal(t, 0, added)
	assert.Equal(t, 0, removed)
	assert.Equal(t, before, reg.Records())
}

func TestSyncRemovesDetachedBody(t *testing.T) {
	r := newRig(false)
	b := r.addDependent("b", r3.Vec{Y: 1}, host.KindNode)
	c := r.addDependent("c", r3.Vec{Y: 2}, host.KindNode)
	reg := NewRegistry(r.owner, zerolog.Nop())
	reg.Sync(r.owner.Attachments())
	for i, rec := range reg.Records() {
		bindAt(t, rec, float64(i))
	}
	recB, _ := reg.Find(b)
	recC, _ := reg.Find(c)

	r.owner.Detach(b)
	added, removed := reg.Sync(r.owner.Attachments())
	assert.Equal(t, 0, added)
	assert.Equal(t, 1, removed)
	require.Equal(t, 2, reg.Len())
	assert.False(t, recB.Bound(), "removed records are cleared")

	got, ok := reg.Find(c)
	require.True(t, ok)
	assert.Same(t, recC, got, "later records survive a middle removal")
	assert.True(t, got.Bound())
}

func TestSyncDoesNotReuseSlotForNewBody(t *testing.T) {
	r := newRig(false)
	a := r.addDependent("a", r3.Vec{}, host.KindNode)
	b := r.addDependent("b", r3.Vec{}, host.KindNode)
	reg := NewRegistry(r.owner, zerolog.Nop())

	reg.Sync([]host.Attachment{{Body: a}, {Body: b}})
	bindAt(t, reg.Records()[0], 1)
	bindAt(t, reg.Records()[1], 2)

	c := r.addDependent("c", r3.Vec{}, host.KindNode)
	added, removed := reg.Sync([]host.Attachment{{Body: c}, {Body: b}})
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)

	first := reg.Records()[0]
	dep, _ := first.Dependent()
	assert.Equal(t, c, dep)
	assert.Nil(t, first.Offset, "the new body captures its own offset")
	assert.InDelta(t, 2.0, reg.Records()[1].Offset.Position.X, 0)
}

func TestSyncFollowsReorder(t *testing.T) {
	r := newRig(false)
	a := r.addDependent("a", r3.Vec{}, host.KindNode)
	b := r.addDependent("b", r3.Vec{}, host.KindNode)
	reg := NewRegistry(r.owner, zerolog.Nop())
	reg.Sync([]host.Attachment{{Body: a}, {Body: b}})
	recA, recB := reg.Records()[0], reg.Records()[1]

	added, removed := reg.Sync([]host.Attachment{{Body: b}, {Body: a}, {Body: nil}})
	assert.Zero(t, added)
	assert.Zero(t, removed)
	assert.Same(t, recB, reg.Records()[0])
	assert.Same(t, recA, reg.Records()[1])
}

func TestHandleEvents(t *testing.T) {
	r := newRig(false)
	reg := NewRegistry(r.owner, zerolog.Nop())
	att := host.Attachment{Body: r.body, Kind: host.KindNode}

	reg.Handle(host.Event{Kind: host.EventAttached, Attachment: att})
	reg.Handle(host.Event{Kind: host.EventAttached, Attachment: att})
	require.Equal(t, 1, reg.Len(), "duplicate attach is ignored")
	rec := reg.Records()[0]
	bindAt(t, rec, 1)

	reg.Handle(host.Event{Kind: host.EventDetached, Attachment: att})
	assert.Zero(t, reg.Len())
	assert.False(t, rec.Bound())

	reg.Handle(host.Event{Kind: host.EventDetached, Attachment: att})
	reg.Handle(host.Event{Kind: host.EventAttached})
	assert.Zero(t, reg.Len())
}

func TestRecapture(t *testing.T) {
	r := newRig(false)
	reg := NewRegistry(r.owner, zerolog.Nop())
	reg.Sync(r.owner.Attachments())
	bindAt(t, reg.Records()[0], 1)

	require.NoError(t, reg.Recapture(r.body))
	assert.False(t, reg.Records()[0].Bound())

	other := r.addDependent("other", r3.Vec{}, host.KindNode)
	assert.ErrorIs(t, reg.Recapture(other), ErrNoDependent)
}
