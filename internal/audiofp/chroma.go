package audiofp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	chromaFrameSize = 4096
	chromaHopSize   = 2048
	// referencePitch anchors pitch class mapping at A4.
	referencePitch = 440.0
	// minChromaFreq ignores rumble below roughly C2.
	minChromaFreq = 65.0
)

// Chromagram folds the magnitude spectrum of each analysis frame onto the 12
// pitch classes. Each frame is normalized by its peak so loudness does not
// dominate the comparison.
func Chromagram(samples []float64, sampleRate int) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples")
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}

	frameCount := 1
	if len(samples) > chromaFrameSize {
		frameCount = 1 + (len(samples)-chromaFrameSize)/chromaHopSize
	}

	chroma := make([][]float64, NumBins)
	for b := range chroma {
		chroma[b] = make([]float64, frameCount)
	}

	window := hann(chromaFrameSize)
	fft := fourier.NewFFT(chromaFrameSize)
	buf := make([]float64, chromaFrameSize)
	binHz := float64(sampleRate) / float64(chromaFrameSize)

	for frame := 0; frame < frameCount; frame++ {
		start := frame * chromaHopSize
		for i := 0; i < chromaFrameSize; i++ {
			if start+i < len(samples) {
				buf[i] = samples[start+i] * window[i]
			} else {
				buf[i] = 0
			}
		}
		coeffs := fft.Coefficients(nil, buf)

		for k := 1; k < len(coeffs); k++ {
			freq := float64(k) * binHz
			if freq < minChromaFreq || freq > float64(sampleRate)/2 {
				continue
			}
			mag := math.Hypot(real(coeffs[k]), imag(coeffs[k]))
			chroma[pitchClass(freq)][frame] += mag
		}

		peak := 0.0
		for b := 0; b < NumBins; b++ {
			if chroma[b][frame] > peak {
				peak = chroma[b][frame]
			}
		}
		if peak > 0 {
			for b := 0; b < NumBins; b++ {
				chroma[b][frame] /= peak
			}
		}
	}
	return chroma, nil
}

// pitchClass maps a frequency to its chroma bin, with C as bin 0.
func pitchClass(freq float64) int {
	// MIDI note number for the frequency; A4 (440 Hz) is note 69.
	note := 69.0 + 12.0*math.Log2(freq/referencePitch)
	pc := int(math.Round(note)) % NumBins
	if pc < 0 {
		pc += NumBins
	}
	return pc
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Extract computes a fingerprint from mono samples.
func Extract(samples []float64, sampleRate, windowFrames int) (*Fingerprint, error) {
	chroma, err := Chromagram(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	return Downsample(chroma, windowFrames)
}
