package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns the magnitudes of the len(data)/2+1 non-negative
// frequency bins of a real series of any length.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	return spectrum(fourier.NewFFT(len(data)), data)
}

func spectrum(fft *fourier.FFT, data []float64) []float64 {
	coeff := fft.Coefficients(nil, data)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero
// bin of a series sampled every dt.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 2 || dt <= 0 {
		return 0
	}
	fft := fourier.NewFFT(len(data))
	ps := spectrum(fft, data)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return fft.Freq(best) / dt
}
