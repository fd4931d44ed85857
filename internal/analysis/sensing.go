package analysis

import (
	"math"

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/satellite"
)

// Outage is a run of consecutive ticks without a fresh attitude reading.
type Outage struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

func Outages(steps []episode.Step) []Outage {
	var out []Outage
	for _, s := range steps {
		if s.Observation.Fresh() {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Start+out[n-1].Length == s.Index {
			out[n-1].Length++
			continue
		}
		out = append(out, Outage{Start: s.Index, Length: 1})
	}
	return out
}

type Summary struct {
	Ticks         int     `json:"ticks"`
	Readings      int     `json:"readings"`
	Outages       int     `json:"outages"`
	LongestOutage int     `json:"longest_outage"`
	MeanOutage    float64 `json:"mean_outage"`
	TorqueTicks   int     `json:"torque_ticks"`
	GyroNoise     float64 `json:"gyro_noise"`
	NoiseSamples  int     `json:"noise_samples"`
	Period        float64 `json:"period"`
}

// Summarize computes sensor statistics for a recorded episode.
//
// The gyro noise estimate uses consecutive rest ticks: the true rate is
// unchanged between them, so the reading difference has std-dev σ√2.
func Summarize(steps []episode.Step) Summary {
	sum := Summary{Ticks: len(steps)}

	outages := Outages(steps)
	sum.Outages = len(outages)
	total := 0
	for _, o := range outages {
		total += o.Length
		sum.LongestOutage = max(sum.LongestOutage, o.Length)
	}
	if len(outages) > 0 {
		sum.MeanOutage = float64(total) / float64(len(outages))
	}

	rates := make([]float64, len(steps))
	var diffs []float64
	for i, s := range steps {
		rates[i] = s.Observation.Gyros[0]
		if s.Observation.Fresh() {
			sum.Readings++
		}
		if s.Action != satellite.Rest {
			sum.TorqueTicks++
			continue
		}
		if i > 0 {
			diffs = append(diffs, s.Observation.Gyros[0]-steps[i-1].Observation.Gyros[0])
		}
	}

	sum.NoiseSamples = len(diffs)
	if len(diffs) > 1 {
		sum.GyroNoise = stdDev(diffs) / math.Sqrt2
	}
	sum.Period, _ = DominantPeriod(rates)
	return sum
}

func stdDev(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	v := 0.0
	for _, x := range xs {
		v += (x - mean) * (x - mean)
	}
	return math.Sqrt(v / float64(len(xs)-1))
}
