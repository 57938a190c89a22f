package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// probeMP3 читает заголовок MP3 и считает длительность
func probeMP3(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return Info{}, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	// go-mp3 декодирует в signed 16-bit stereo: 4 байта на фрейм
	frames := dec.Length() / 4
	return Info{
		Format:     "mp3",
		Duration:   float64(frames) / float64(dec.SampleRate()),
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}

// loadMP3 декодирует MP3 в 16kHz mono float32.
// go-mp3 всегда выдаёт 16-bit stereo PCM, каналы усредняются в моно.
func loadMP3(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create MP3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}

	numFrames := len(pcm) / 4
	mono := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		left := int16(binary.LittleEndian.Uint16(pcm[i*4:]))
		right := int16(binary.LittleEndian.Uint16(pcm[i*4+2:]))
		mono[i] = (float32(left) + float32(right)) / 2.0 / 32768.0
	}

	if dec.SampleRate() != TargetSampleRate {
		mono = resampleLinear(mono, dec.SampleRate(), TargetSampleRate)
	}
	return mono, nil
}
