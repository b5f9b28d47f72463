package attach

import (
	"github.com/rs/zerolog"

	"github.com/san-kum/animattach/internal/host"
)

// Registry owns an owner's attachment records and keeps them in the same
// order as the owner's live dependent list.
type Registry struct {
	owner   host.Owner
	records []*Record
	log     zerolog.Logger
}

func NewRegistry(owner host.Owner, log zerolog.Logger) *Registry {
	return &Registry{
		owner:   owner,
		records: make([]*Record, 0),
		log:     log,
	}
}

func (r *Registry) Records() []*Record { return r.records }

func (r *Registry) Len() int { return len(r.records) }

// Find returns the record whose live dependent is b.
func (r *Registry) Find(b host.Body) (*Record, bool) {
	if b == nil {
		return nil, false
	}
	for _, rec := range r.records {
		if dep, ok := rec.Dependent(); ok && dep == b {
			return rec, true
		}
	}
	return nil, false
}

// Sync reconciles the records against live. Entry i of live keeps the record
// at position i if it still refers to the same body, otherwise reuses the
// record bound to that body elsewhere, otherwise claims a matching pending
// record, preferring the one at position i, otherwise gets a fresh unbound
// record. Records left unclaimed are cleared and dropped. An unchanged live
// list is a no-op.
//
// Records follow bodies, not slots: a reordered live list moves each record
// with its body and keeps its offset. Only a record whose body left the list
// is stale. A different body arriving in an old slot always starts unbound.
func (r *Registry) Sync(live []host.Attachment) (added, removed int) {
	used := make([]bool, len(r.records))
	next := make([]*Record, 0, len(live))

	for i, a := range live {
		if a.Body == nil {
			continue
		}
		rec := r.claim(i, a, used)
		if rec == nil {
			rec = newRecord(a)
			added++
			r.log.Debug().
				Str("owner", r.owner.ID()).
				Str("body", a.Body.ID()).
				Stringer("kind", a.Kind).
				Msg("attachment record created")
		}
		next = append(next, rec)
	}

	for j, rec := range r.records {
		if used[j] {
			continue
		}
		removed++
		r.logRemoved(rec, "stale")
		rec.Clear()
	}

	r.records = next
	return added, removed
}

func (r *Registry) claim(i int, a host.Attachment, used []bool) *Record {
	take := func(j int) *Record {
		used[j] = true
		return r.records[j]
	}

	if i < len(r.records) && !used[i] {
		if dep, ok := r.records[i].Dependent(); ok && dep == a.Body {
			return take(i)
		}
	}
	for j, rec := range r.records {
		if used[j] {
			continue
		}
		if dep, ok := rec.Dependent(); ok && dep == a.Body {
			return take(j)
		}
	}

	if i < len(r.records) && !used[i] && r.pendingMatch(r.records[i], a) {
		return r.adopt(take(i), a)
	}
	for j, rec := range r.records {
		if !used[j] && r.pendingMatch(rec, a) {
			return r.adopt(take(j), a)
		}
	}
	return nil
}

// pendingMatch reports whether a loaded record can belong to a: same kind,
// and the same anchor when the record has one. A node anchor is the
// transform of the node holding the body; a surface anchor is the geometry
// nearest the body's contact point. A surface record also matches a node
// attachment that has no node on the owner, since that is how it was saved.
func (r *Registry) pendingMatch(rec *Record, a host.Attachment) bool {
	if rec.binding != BindingPending {
		return false
	}
	if rec.Kind != a.Kind && !r.reclassified(rec, a) {
		return false
	}
	if rec.anchor == "" {
		return true
	}
	if rec.Kind == host.KindSurface {
		g, _, ok := SelectNearest(r.owner.Geometries(), a.Body.ContactPoint())
		return ok && g.Name() == rec.anchor
	}
	n := host.NodeFor(r.owner, a.Body)
	return n != nil && n.Transform() != nil && n.Transform().Name() == rec.anchor
}

func (r *Registry) reclassified(rec *Record, a host.Attachment) bool {
	return rec.Kind == host.KindSurface && a.Kind == host.KindNode && host.NodeFor(r.owner, a.Body) == nil
}

func (r *Registry) adopt(rec *Record, a host.Attachment) *Record {
	rec.dependent = a.Body
	rec.binding = BindingLive
	r.log.Debug().
		Str("owner", r.owner.ID()).
		Str("body", a.Body.ID()).
		Str("anchor", rec.anchor).
		Msg("pending attachment bound")
	return rec
}

// Handle applies an attach/detach notification immediately, ahead of the
// next Sync.
func (r *Registry) Handle(ev host.Event) {
	body := ev.Attachment.Body
	if body == nil {
		return
	}
	switch ev.Kind {
	case host.EventAttached:
		if _, ok := r.Find(body); ok {
			return
		}
		r.records = append(r.records, newRecord(ev.Attachment))
		r.log.Info().
			Str("owner", r.owner.ID()).
			Str("body", body.ID()).
			Msg("attached")
	case host.EventDetached:
		for i, rec := range r.records {
			if dep, ok := rec.Dependent(); ok && dep == body {
				r.logRemoved(rec, "detached")
				rec.Clear()
				r.records = append(r.records[:i], r.records[i+1:]...)
				return
			}
		}
	}
}

// Recapture clears the offset of b's record so it is captured again from the
// next valid observation.
func (r *Registry) Recapture(b host.Body) error {
	rec, ok := r.Find(b)
	if !ok {
		return ErrNoDependent
	}
	rec.Clear()
	return nil
}

// Reset clears every record's offset and rest pose.
func (r *Registry) Reset() {
	for _, rec := range r.records {
		rec.Clear()
	}
}

func (r *Registry) logRemoved(rec *Record, reason string) {
	ev := r.log.Debug().Str("owner", r.owner.ID()).Str("reason", reason)
	if dep, ok := rec.Dependent(); ok {
		ev = ev.Str("body", dep.ID())
	}
	ev.Msg("attachment record removed")
}
