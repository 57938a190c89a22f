// Package ai предоставляет WhisperEngine - движок Whisper через sherpa-onnx
package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"whisperbench/models"
)

const (
	whisperSampleRate = 16000 // Whisper ожидает 16kHz
	whisperFeatureDim = 80    // количество mel-фильтров
	// Окно декодирования. Whisper обрабатывает аудио блоками до 30 секунд,
	// более длинный вход скармливается окнами с пересчётом таймстемпов.
	whisperWindowSeconds = 30
)

// WhisperEngine движок транскрипции на базе sherpa-onnx offline Whisper.
// Привязан к одному устройству и режиму точности на весь свой жизненный цикл.
type WhisperEngine struct {
	recognizer  *sherpa.OfflineRecognizer
	device      Device
	precision   PrecisionMode
	language    string
	mu          sync.Mutex
	initialized bool
}

var _ TranscriptionEngine = (*WhisperEngine)(nil)

// NewWhisperEngine создаёт движок для конкретных файлов модели.
// paths - файлы encoder/decoder/tokens, уже выбранные под режим точности.
func NewWhisperEngine(cfg EngineConfig, paths models.WhisperPaths) (*WhisperEngine, error) {
	threads := cfg.NumThreads
	if threads <= 0 {
		threads = 4
	}

	sherpaConfig := sherpa.OfflineRecognizerConfig{}
	sherpaConfig.FeatConfig.SampleRate = whisperSampleRate
	sherpaConfig.FeatConfig.FeatureDim = whisperFeatureDim
	sherpaConfig.ModelConfig.Whisper.Encoder = paths.Encoder
	sherpaConfig.ModelConfig.Whisper.Decoder = paths.Decoder
	sherpaConfig.ModelConfig.Whisper.Language = cfg.LanguageHint
	sherpaConfig.ModelConfig.Whisper.Task = "transcribe"
	sherpaConfig.ModelConfig.Tokens = paths.Tokens
	sherpaConfig.ModelConfig.NumThreads = threads
	sherpaConfig.ModelConfig.Debug = 0
	sherpaConfig.ModelConfig.Provider = string(cfg.Device)
	sherpaConfig.ModelConfig.ModelType = "whisper"

	// sherpa-onnx сообщает об отказе создания nil-указателем:
	// несовместимый provider, отсутствующий драйвер, нехватка памяти
	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create offline recognizer: provider=%s encoder=%s",
			cfg.Device, paths.Encoder)
	}

	log.Printf("WhisperEngine: initialized profile=%s provider=%s precision=%s threads=%d",
		cfg.Profile, cfg.Device, cfg.Precision, threads)

	return &WhisperEngine{
		recognizer:  recognizer,
		device:      cfg.Device,
		precision:   cfg.Precision,
		language:    cfg.LanguageHint,
		initialized: true,
	}, nil
}

// Transcribe транскрибирует аудио окнами по 30 секунд
func (e *WhisperEngine) Transcribe(ctx context.Context, samples []float32) ([]TranscriptSegment, TranscriptInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, TranscriptInfo{}, fmt.Errorf("engine is closed")
	}
	if len(samples) == 0 {
		return nil, TranscriptInfo{}, fmt.Errorf("no samples")
	}

	info := TranscriptInfo{Language: e.language}
	if e.language != "" {
		info.LanguageConfidence = 1.0
	}

	windowSamples := whisperWindowSeconds * whisperSampleRate
	var segments []TranscriptSegment

	for offset := 0; offset < len(samples); offset += windowSamples {
		if err := ctx.Err(); err != nil {
			return nil, TranscriptInfo{}, err
		}

		end := offset + windowSamples
		if end > len(samples) {
			end = len(samples)
		}
		window := samples[offset:end]
		base := float64(offset) / whisperSampleRate

		seg, lang, err := e.decodeWindow(window, base)
		if err != nil {
			return nil, TranscriptInfo{}, err
		}
		if seg != nil {
			segments = append(segments, *seg)
		}

		// Язык берём из первого окна, где модель его определила.
		// Уверенность определения runtime не публикует, оставляем 0.
		if info.Language == "" && lang != "" {
			info.Language = lang
		}
	}

	return segments, info, nil
}

// decodeWindow декодирует одно окно и возвращает сегмент с абсолютными таймстемпами
func (e *WhisperEngine) decodeWindow(window []float32, base float64) (*TranscriptSegment, string, error) {
	stream := sherpa.NewOfflineStream(e.recognizer)
	if stream == nil {
		return nil, "", fmt.Errorf("failed to create decoding stream")
	}
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(whisperSampleRate, window)
	e.recognizer.Decode(stream)

	seg, lang := segmentFromResult(stream.GetResult(), len(window), base)
	return seg, lang, nil
}

// segmentFromResult переводит результат декодера в сегмент с абсолютными
// таймстемпами. Nil-результат - окно без распознанных токенов (тишина),
// это не ошибка, сегмента просто нет.
func segmentFromResult(result *sherpa.OfflineRecognizerResult, windowLen int, base float64) (*TranscriptSegment, string) {
	if result == nil {
		return nil, ""
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return nil, cleanLangToken(result.Lang)
	}

	start := base
	end := base + float64(windowLen)/whisperSampleRate
	// Токенные таймстемпы (если модель их выдала) уточняют границы сегмента
	if len(result.Timestamps) > 0 {
		start = base + float64(result.Timestamps[0])
		if last := float64(result.Timestamps[len(result.Timestamps)-1]); base+last > start {
			end = base + last
		}
	}

	return &TranscriptSegment{Start: start, End: end, Text: text}, cleanLangToken(result.Lang)
}

// Device возвращает устройство движка
func (e *WhisperEngine) Device() Device { return e.device }

// PrecisionMode возвращает численный режим движка
func (e *WhisperEngine) PrecisionMode() PrecisionMode { return e.precision }

// Close освобождает recognizer и память устройства.
// Повторный вызов безопасен.
func (e *WhisperEngine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return
	}
	sherpa.DeleteOfflineRecognizer(e.recognizer)
	e.recognizer = nil
	e.initialized = false
	log.Printf("WhisperEngine: closed (device=%s)", e.device)
}

// cleanLangToken убирает служебное обрамление языкового токена Whisper ("<|en|>" -> "en")
func cleanLangToken(lang string) string {
	lang = strings.TrimPrefix(lang, "<|")
	lang = strings.TrimSuffix(lang, "|>")
	return lang
}

// WhisperFactory создаёт WhisperEngine, разрешая профиль и точность
// в файлы модели через реестр моделей
type WhisperFactory struct {
	Models *models.Manager
}

var _ EngineFactory = (*WhisperFactory)(nil)

// Construct реализует EngineFactory
func (f *WhisperFactory) Construct(ctx context.Context, cfg EngineConfig) (TranscriptionEngine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	paths, err := f.Models.WhisperPathsFor(string(cfg.Profile), string(cfg.Precision))
	if err != nil {
		return nil, err
	}
	return NewWhisperEngine(cfg, paths)
}
