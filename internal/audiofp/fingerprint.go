// Package audiofp computes and compares compact acoustic fingerprints.
// Fingerprints are chroma matrices (12 pitch classes) downsampled over time
// windows, compared by cosine similarity.
package audiofp

import (
	"fmt"
	"math"
)

// NumBins is the number of pitch classes in a chroma fingerprint.
const NumBins = 12

// DefaultWindowFrames is the downsampling window width applied to the raw
// chromagram.
const DefaultWindowFrames = 50

// Fingerprint is a bins-by-frames chroma matrix. Data[b][f] holds the
// averaged energy of pitch class b in window f.
type Fingerprint struct {
	Data [][]float64 `json:"data"`
}

// Frames reports the fingerprint width in windows.
func (f *Fingerprint) Frames() int {
	if f == nil || len(f.Data) == 0 {
		return 0
	}
	return len(f.Data[0])
}

// Valid reports whether the fingerprint has the expected shape.
func (f *Fingerprint) Valid() bool {
	if f == nil || len(f.Data) != NumBins {
		return false
	}
	width := len(f.Data[0])
	if width == 0 {
		return false
	}
	for _, row := range f.Data {
		if len(row) != width {
			return false
		}
	}
	return true
}

// Downsample reduces a raw chromagram to a fingerprint by averaging
// windowFrames-wide column windows. Chromagrams shorter than one window
// collapse to a single column of global means.
func Downsample(chroma [][]float64, windowFrames int) (*Fingerprint, error) {
	if len(chroma) != NumBins {
		return nil, fmt.Errorf("chromagram has %d rows, want %d", len(chroma), NumBins)
	}
	frames := len(chroma[0])
	if frames == 0 {
		return nil, fmt.Errorf("empty chromagram")
	}
	if windowFrames < 1 {
		windowFrames = DefaultWindowFrames
	}

	numWindows := frames / windowFrames
	if numWindows == 0 {
		data := make([][]float64, NumBins)
		for b := 0; b < NumBins; b++ {
			sum := 0.0
			for _, v := range chroma[b] {
				sum += v
			}
			data[b] = []float64{sum / float64(frames)}
		}
		return &Fingerprint{Data: data}, nil
	}

	data := make([][]float64, NumBins)
	for b := 0; b < NumBins; b++ {
		data[b] = make([]float64, numWindows)
		for w := 0; w < numWindows; w++ {
			sum := 0.0
			for i := w * windowFrames; i < (w+1)*windowFrames; i++ {
				sum += chroma[b][i]
			}
			data[b][w] = sum / float64(windowFrames)
		}
	}
	return &Fingerprint{Data: data}, nil
}

// Compare returns the cosine similarity of two fingerprints in [0, 1].
// Equal-width fingerprints are compared directly. Otherwise the narrower
// fingerprint slides across the wider one and the best alignment wins.
func Compare(a, b *Fingerprint) float64 {
	if !a.Valid() || !b.Valid() {
		return 0
	}
	if a.Frames() == b.Frames() {
		return cosineAt(a, b, 0)
	}
	if a.Frames() > b.Frames() {
		a, b = b, a
	}
	best := 0.0
	for offset := 0; offset <= b.Frames()-a.Frames(); offset++ {
		if sim := cosineAt(a, b, offset); sim > best {
			best = sim
		}
	}
	return best
}

// cosineAt compares a against the window of b starting at the given column
// offset. a must not be wider than b.
func cosineAt(a, b *Fingerprint, offset int) float64 {
	var dot, normA, normB float64
	width := a.Frames()
	for bin := 0; bin < NumBins; bin++ {
		for f := 0; f < width; f++ {
			va := a.Data[bin][f]
			vb := b.Data[bin][offset+f]
			dot += va * vb
			normA += va * va
			normB += vb * vb
		}
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	return sim
}
