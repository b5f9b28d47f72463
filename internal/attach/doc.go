// Package attach keeps bodies attached to animated frames on an owner in
// step with those frames.
//
// The package is organised leaves first:
//
//   - [Resolve]: composes a transform chain into an owner-relative pose
//   - [Capture]: freezes a dependent's pose in its frame's local space
//   - [SelectNearest]: picks the contact geometry closest to a point
//   - [Registry]: one [Record] per dependent, reconciled every tick and
//     persisted to a [document.Node]
//   - [Engine]: bootstrap phases and per-tick propagation, either by
//     writing the dependent's local pose or by driving its joint
//
// # Bootstrap
//
// An engine starts in [PhaseInit] after [Engine.Activate]. Its first tick
// captures offsets and moves it to [PhaseStarting]. Only the host's
// bootstrap-finished signal moves it to [PhaseStarted], and only then is
// anything propagated.
//
// # Failure model
//
// A record whose frame, joint or dependent cannot be resolved is skipped
// for that tick and retried on the next. Nothing in the tick path returns an
// error.
//
// # Thread Safety
//
// Engine and Registry are NOT thread-safe. Each owner's engine is ticked by
// a single goroutine.
package attach
