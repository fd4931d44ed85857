// Package analysis inspects recorded episodes.
//
//   - [Summarize]: sensor availability, outage lengths and a gyro noise
//     estimate from rest ticks
//   - [PowerSpectrum], [DominantPeriod]: limit-cycle detection on gyro traces
//   - [NewPortrait]: orientation/rate phase portrait with an ASCII renderer
//
// Everything here works from stored steps, so it can run on archived runs
// without the simulator.
package analysis
