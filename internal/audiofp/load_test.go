package audiofp

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, freq float64, seconds int) {
	t.Helper()
	const sampleRate = 22050
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	n := sampleRate * seconds
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, n),
	}
	for i := 0; i < n; i++ {
		buf.Data[i] = int(30000 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close wav: %v", err)
	}
}

func TestLoadAudioWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, 440, 2)

	samples, sampleRate, err := LoadAudio(path)
	if err != nil {
		t.Fatalf("LoadAudio: %v", err)
	}
	if sampleRate != 22050 {
		t.Errorf("sample rate = %d, want 22050", sampleRate)
	}
	if len(samples) != 22050*2 {
		t.Errorf("samples = %d, want %d", len(samples), 22050*2)
	}
	for _, s := range samples {
		if s < -1.01 || s > 1.01 {
			t.Fatalf("sample %v outside [-1, 1]", s)
		}
	}
}

func TestLoadAudioUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.flac")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadAudio(path); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestExtractFileMatchesInMemoryExtract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeTestWAV(t, path, 440, 5)

	fromFile, err := ExtractFile(path, DefaultWindowFrames)
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	inMemory, err := Extract(sine(440, 22050, 22050*5), 22050, DefaultWindowFrames)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := Compare(fromFile, inMemory); got < 0.99 {
		t.Errorf("Compare(file, in-memory) = %v, want >= 0.99", got)
	}
}
