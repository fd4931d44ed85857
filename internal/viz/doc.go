// Package viz renders the satellite in the terminal.
//
// Rendering only ever sees a [satellite.Snapshot]; nothing here feeds back
// into control.
//
//   - [Canvas]: Braille-based pixel canvas
//   - [FrameRenderer]: frame-throttled ANSI output for headless runs
//   - [Model]: Bubble Tea application behind the live command
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Single step while paused
//	R     - Reset to initial state
//	←/→   - Fire counter-clockwise/clockwise torque (switches to manual)
//	H     - Hold the last manual torque
//	A     - Hand control back to the configured policy
//	Q     - Quit
package viz
