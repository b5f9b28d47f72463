// Package stabilize coordinates the host's auto-strut stabilization with
// attachment animation. While any animation on the vessel is moving,
// auto-struts would fight the animated joints, so they are switched off and
// restored once everything is still again.
//
// The coordinator only polls an aggregate "anything moving" flag; it never
// touches attachment records.
package stabilize

import (
	"github.com/rs/zerolog"
)

type StrutMode int

const (
	StrutOff StrutMode = iota
	StrutRoot
	StrutHeaviest
	StrutGrandparent
)

func (m StrutMode) String() string {
	switch m {
	case StrutOff:
		return "off"
	case StrutRoot:
		return "root"
	case StrutHeaviest:
		return "heaviest"
	case StrutGrandparent:
		return "grandparent"
	default:
		return "unknown"
	}
}

// ParseStrutMode is the inverse of StrutMode.String; unknown names are off.
func ParseStrutMode(s string) StrutMode {
	switch s {
	case "root":
		return StrutRoot
	case "heaviest":
		return StrutHeaviest
	case "grandparent":
		return StrutGrandparent
	default:
		return StrutOff
	}
}

// Strutted is a body whose auto-strut mode can be changed.
type Strutted interface {
	ID() string
	AutoStrut() StrutMode
	SetAutoStrut(m StrutMode)
	ReleaseAutoStruts()
}

type savedStrut struct {
	body Strutted
	mode StrutMode
}

// Coordinator releases auto-struts when animation starts and restores them
// when it stops.
type Coordinator struct {
	moving bool
	saved  []savedStrut
	log    zerolog.Logger
}

func NewCoordinator(log zerolog.Logger) *Coordinator {
	return &Coordinator{log: log}
}

func (c *Coordinator) Moving() bool { return c.moving }

// Update applies a new moving state. Only transitions do anything; it
// reports whether one happened.
func (c *Coordinator) Update(moving bool, bodies []Strutted) bool {
	if moving == c.moving {
		return false
	}
	c.moving = moving

	if moving {
		c.log.Info().Msg("started moving")
		c.saved = c.saved[:0]
		for _, b := range bodies {
			mode := b.AutoStrut()
			if mode == StrutOff {
				continue
			}
			c.saved = append(c.saved, savedStrut{body: b, mode: mode})
			c.log.Debug().Str("body", b.ID()).Stringer("from", mode).Stringer("to", StrutOff).Msg("auto strut")
			b.SetAutoStrut(StrutOff)
			b.ReleaseAutoStruts()
		}
		return true
	}

	c.log.Info().Msg("stopped moving")
	for _, s := range c.saved {
		c.log.Debug().Str("body", s.body.ID()).Stringer("from", s.body.AutoStrut()).Stringer("to", s.mode).Msg("auto strut")
		s.body.SetAutoStrut(s.mode)
	}
	c.saved = c.saved[:0]
	return true
}
