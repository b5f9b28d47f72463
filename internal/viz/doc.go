// Package viz provides a terminal live view of an attachment run.
//
// The view steps a [sim.Runner] itself on every frame and only reads the
// snapshots it returns, so it never changes what the engine does:
//
//   - a top-down braille [Canvas] of frames and dependents in owner space
//   - a table of every attachment record with phase and outcome
//   - the selected dependent's position error over time
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Step one tick while paused
//	Tab   - Select next record
//	C     - Forget the selected offset so it is captured again
//	Q     - Quit
package viz
