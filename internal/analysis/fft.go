package analysis

import (
	"math"
	"math/cmplx"
)

// FFT zero-pads data to the next power of two and returns the radix-2
// transform of the padded sequence.
func FFT(data []float64) []complex128 {
	n := nextPow2(len(data))
	if n == len(data) {
		return fft(data)
	}
	padded := make([]float64, n)
	copy(padded, data)
	return fft(padded)
}

func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum removes the mean, zero-pads to a power of two and returns the
// magnitude of the first half of the spectrum. Bin k corresponds to a period
// of len/k ticks where len is the padded length.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	padded := make([]float64, nextPow2(len(data)))
	for i, v := range data {
		padded[i] = v - mean
	}

	spec := fft(padded)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod returns the period in ticks of the strongest non-DC
// component, or 0 when the trace is flat.
func DominantPeriod(data []float64) (period float64, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, 0
	}
	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > power {
			best, power = k, ps[k]
		}
	}
	if best == 0 {
		return 0, 0
	}
	return float64(2*len(ps)) / float64(best), power
}
