// Package audio предоставляет чтение аудио файлов для транскрипции
package audio

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TargetSampleRate частота, которую ожидают движки транскрипции
const TargetSampleRate = 16000

// Info сведения об аудио файле
type Info struct {
	Format     string  // "wav" или "mp3"
	Duration   float64 // секунды
	SampleRate int     // исходная частота дискретизации
	Channels   int     // исходное количество каналов
}

// Probe возвращает сведения об аудио файле без полного декодирования
func Probe(path string) (Info, error) {
	switch format(path) {
	case "wav":
		return probeWAV(path)
	case "mp3":
		return probeMP3(path)
	default:
		return Info{}, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}

// Load декодирует файл в 16kHz mono float32 [-1.0, 1.0]
func Load(path string) ([]float32, error) {
	switch format(path) {
	case "wav":
		return loadWAV(path)
	case "mp3":
		return loadMP3(path)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", filepath.Ext(path))
	}
}

// Loader реализует загрузку аудио для Runner
type Loader struct{}

// Load декодирует файл в 16kHz mono float32
func (Loader) Load(path string) ([]float32, error) {
	return Load(path)
}

// IsSupported проверяет расширение файла
func IsSupported(path string) bool {
	return format(path) != ""
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "wav"
	case ".mp3":
		return "mp3"
	default:
		return ""
	}
}
