// Package episode drives a satellite simulator through bounded control
// episodes.
//
// A [Runner] asks a [Policy] for one action per tick, steps the simulator,
// records the post-step observation and forwards it to metrics, observers and
// an optional [Renderer]. Episodes stop at MaxSteps, when the attitude reading
// has been fresh for SettleSteps consecutive ticks, or when the context is
// canceled.
//
//	sat := satellite.NewDefault(seed)
//	res, err := episode.Run(ctx, sat, policy.NewDetumble(0), nil, 500)
//
// Use [Ensemble] for many independent episodes in parallel; every run builds
// its own simulator so no state leaks between episodes.
package episode
