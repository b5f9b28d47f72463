package scene

import "errors"

var (
	ErrUnknownTransform = errors.New("scene: unknown transform")
	ErrUnknownNode      = errors.New("scene: unknown node")
	ErrUnknownBody      = errors.New("scene: unknown body")
	ErrDuplicateName    = errors.New("scene: duplicate name")
	ErrBadVector        = errors.New("scene: vector needs 3 components")
	ErrUnknownKind      = errors.New("scene: unknown attachment kind")
	ErrUnknownEvent     = errors.New("scene: unknown event type")
	ErrBadTrack         = errors.New("scene: invalid track")
)
