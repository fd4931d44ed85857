// Package policy provides control policies for the satellite simulator.
//
// Policies implement [episode.Policy]: they see only the sensor observation
// (gyro history, last attitude reading and its staleness) and return one
// discrete action per tick.
//
//   - [Rest]: never fires the motor
//   - [BangBang]: torques against the newest gyro reading every tick
//   - [Detumble]: torques against the mean gyro rate with a deadband
//   - [Pointing]: dead-reckons attitude and slews to a target angle
//   - [Random]: seeded uniform actions
//   - [Scripted]: replays a fixed action list
//   - [Manual]: action set from outside (interactive mode)
//
// Policies may carry state; build a fresh one per episode.
package policy
