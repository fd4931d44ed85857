// Package telemetry exports per-tick sensor data from running episodes.
//
// [Collector] keeps Prometheus counters and gauges; [Publisher] streams JSON
// frames to an MQTT broker. Both implement [episode.Observer] and see only the
// sensor observation, never ground truth.
package telemetry
