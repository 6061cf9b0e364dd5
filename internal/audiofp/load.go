package audiofp

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// LoadAudio decodes an audio file to mono float64 samples in [-1, 1].
// Supported formats are WAV and MP3; anything else is rejected rather than
// silently skipped.
func LoadAudio(path string) (samples []float64, sampleRate int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return loadWAV(f)
	case ".mp3":
		return loadMP3(f)
	default:
		return nil, 0, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
}

func loadWAV(f *os.File) ([]float64, int, error) {
	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode wav: %w", err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, 0, fmt.Errorf("decode wav: empty stream")
	}
	return monoFloat(buf), buf.Format.SampleRate, nil
}

// monoFloat downmixes an interleaved PCM buffer to mono samples in [-1, 1].
func monoFloat(buf *audio.IntBuffer) []float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := float64(int(1) << 15)
	if buf.SourceBitDepth > 0 {
		scale = float64(int(1) << (buf.SourceBitDepth - 1))
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}
	return samples
}

func loadMP3(f *os.File) ([]float64, int, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, 0, fmt.Errorf("decode mp3: %w", err)
	}

	// go-mp3 emits 16-bit little-endian stereo frames.
	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("read mp3 stream: %w", err)
	}
	frames := len(raw) / 4
	if frames == 0 {
		return nil, 0, fmt.Errorf("decode mp3: empty stream")
	}

	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(raw[i*4:]))
		right := int16(binary.LittleEndian.Uint16(raw[i*4+2:]))
		samples[i] = (float64(left) + float64(right)) / 2 / 32768
	}
	return samples, decoder.SampleRate(), nil
}

// ExtractFile loads an audio file and fingerprints it.
func ExtractFile(path string, windowFrames int) (*Fingerprint, error) {
	samples, sampleRate, err := LoadAudio(path)
	if err != nil {
		return nil, err
	}
	return Extract(samples, sampleRate, windowFrames)
}
