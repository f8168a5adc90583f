package analysis

// UpwardCrossings returns the interpolated times at which values goes from
// below zero to zero or above.
func UpwardCrossings(times, values []float64) []float64 {
	var out []float64
	for i := 1; i < len(values) && i < len(times); i++ {
		prev, curr := values[i-1], values[i]
		if prev < 0 && curr >= 0 {
			frac := -prev / (curr - prev)
			out = append(out, times[i-1]+frac*(times[i]-times[i-1]))
		}
	}
	return out
}

// Period is the mean spacing of upward zero crossings. It reports false
// when fewer than two crossings exist.
func Period(times, values []float64) (float64, bool) {
	c := UpwardCrossings(times, values)
	if len(c) < 2 {
		return 0, false
	}
	return (c[len(c)-1] - c[0]) / float64(len(c)-1), true
}

// Peaks returns the largest value between consecutive upward crossings.
func Peaks(times, values []float64) []float64 {
	c := UpwardCrossings(times, values)
	if len(c) < 2 {
		return nil
	}
	peaks := make([]float64, len(c)-1)
	k := 0
	for i, t := range times {
		for k < len(peaks) && t > c[k+1] {
			k++
		}
		if k >= len(peaks) {
			break
		}
		if t >= c[k] && values[i] > peaks[k] {
			peaks[k] = values[i]
		}
	}
	return peaks
}
