package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// probeWAV читает заголовок WAV и считает длительность
func probeWAV(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Info{}, fmt.Errorf("invalid wav file: %s", path)
	}
	dec.ReadInfo()

	dur, err := dec.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read wav duration: %w", err)
	}

	return Info{
		Format:     "wav",
		Duration:   dur.Seconds(),
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
	}, nil
}

// loadWAV декодирует WAV в 16kHz mono float32
func loadWAV(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	dec.ReadInfo()

	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("unsupported wav format: %d, need PCM=1", dec.WavAudioFormat)
	}
	channels := int(dec.NumChans)
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("unsupported channels: %d, need mono or stereo", channels)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav: %w", err)
	}

	// Нормализация в float32 [-1.0, 1.0] по битности источника
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	scale := float32(int64(1) << (bitDepth - 1))

	numFrames := len(buf.Data) / channels
	mono := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		if channels == 1 {
			mono[i] = float32(buf.Data[i]) / scale
		} else {
			left := float32(buf.Data[i*2]) / scale
			right := float32(buf.Data[i*2+1]) / scale
			mono[i] = (left + right) / 2.0
		}
	}

	if int(dec.SampleRate) != TargetSampleRate {
		mono = resampleLinear(mono, int(dec.SampleRate), TargetSampleRate)
	}
	return mono, nil
}
