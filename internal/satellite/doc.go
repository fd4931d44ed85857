// Package satellite models the rotational dynamics of a single-axis satellite
// body driven by a reaction-wheel torque motor.
//
// The [Simulator] owns the true state (angular velocity and total orientation)
// and exposes only what a real sensing system could see:
//
//   - a 5-entry history of noisy gyro rate readings, most recent first
//   - the last noisy absolute attitude reading, normalized to [0, 2π)
//   - the number of ticks since that reading was refreshed
//
// Absolute attitude is only measured while |ω| < [Constants.MaxVForReading];
// otherwise the reading goes stale and the counter grows. A stale reading is
// normal data, not an error.
//
// # Example
//
//	sat := satellite.NewDefault(42)
//	for i := 0; i < 100; i++ {
//	    obs := sat.State()
//	    sat.Step(choose(obs))
//	}
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. Run one instance per episode.
package satellite
