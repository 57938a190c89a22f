// Package ai предоставляет Runner - транскрипцию с пробированием устройств
package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// ErrBadDeviceOrder порядок устройств пуст или содержит дубликаты
var ErrBadDeviceOrder = errors.New("bad device preference order")

// DeviceOrderFor разворачивает строковое предпочтение в порядок устройств.
// "auto" означает "ускоритель, затем CPU": Runner сам откатится,
// если ускоритель недоступен.
func DeviceOrderFor(preference string) ([]Device, error) {
	switch preference {
	case "", "auto":
		return []Device{DeviceCUDA, DeviceCPU}, nil
	case string(DeviceCUDA):
		return []Device{DeviceCUDA}, nil
	case string(DeviceCPU):
		return []Device{DeviceCPU}, nil
	default:
		return nil, fmt.Errorf("%w: unknown preference %q", ErrBadDeviceOrder, preference)
	}
}

// Request запрос на одну транскрипцию. Неизменяем после создания.
type Request struct {
	AudioPath    string   // путь к аудио файлу
	LanguageHint string   // язык, "" = автоопределение
	DeviceOrder  []Device // порядок предпочтения устройств, без дубликатов
	Profile      Profile  // размер модели
}

// Result результат успешной транскрипции.
// Создаётся один раз, после создания не изменяется.
type Result struct {
	Text                       string              `json:"text"`
	Segments                   []TranscriptSegment `json:"segments"`
	DetectedLanguage           string              `json:"language"`
	DetectedLanguageConfidence float64             `json:"languageConfidence"`
	AudioDuration              float64             `json:"audioDuration"`  // секунды
	ProcessingTime             float64             `json:"processingTime"` // секунды
	RealTimeFactor             float64             `json:"realTimeFactor"` // audioDuration / processingTime
	DeviceUsed                 Device              `json:"deviceUsed"`
	Attempts                   []DeviceAttempt     `json:"attempts"`
}

// AudioLoader загружает аудио файл в 16kHz mono float32
type AudioLoader interface {
	Load(path string) ([]float32, error)
}

// Runner выполняет транскрипцию с упорядоченным пробированием устройств.
// Доступность ускорителя неизвестна до попытки создания движка, поэтому
// выбор устройства - это последовательность исчерпаемых попыток, а не
// одноразовая проверка. Полная история попыток сохраняется в результате.
//
// Один вызов Run владеет ровно одним движком и освобождает его на каждом
// пути выхода. Одновременные вызовы на одном ускорителе делят его память;
// сериализация таких вызовов - ответственность вызывающего.
type Runner struct {
	factory   EngineFactory
	loader    AudioLoader
	inventory DeviceInventory // опционально, nil = без префильтра
	threads   int
}

// RunnerConfig конфигурация Runner
type RunnerConfig struct {
	Factory   EngineFactory
	Loader    AudioLoader
	Inventory DeviceInventory // nil допустим: префильтр это оптимизация
	Threads   int             // потоки декодера, <=0 = выбор движка
}

// NewRunner создаёт Runner
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Factory == nil {
		return nil, fmt.Errorf("runner: engine factory is required")
	}
	if cfg.Loader == nil {
		return nil, fmt.Errorf("runner: audio loader is required")
	}
	return &Runner{
		factory:   cfg.Factory,
		loader:    cfg.Loader,
		inventory: cfg.Inventory,
		threads:   cfg.Threads,
	}, nil
}

// Run выполняет одну транскрипцию.
// Возвращает либо полный Result, либо типизированную ошибку:
// *InputNotFoundError до первой попытки устройства,
// *AllDevicesExhaustedError с полным attempt trail после исчерпания порядка.
// Ошибки отдельных устройств наружу не выходят - только терминальный исход.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validateDeviceOrder(req.DeviceOrder); err != nil {
		return nil, err
	}
	if !ValidProfile(req.Profile) {
		return nil, fmt.Errorf("unknown model profile: %q", req.Profile)
	}

	// Проверка входа до каких-либо попыток устройств:
	// на отсутствующий файл не тратим создание движка
	if err := checkInput(req.AudioPath); err != nil {
		return nil, err
	}

	samples, err := r.loader.Load(req.AudioPath)
	if err != nil {
		return nil, &InputNotFoundError{Path: req.AudioPath, Kind: InputUndecodable, Reason: fmt.Sprintf("decode failed: %v", err)}
	}
	if len(samples) == 0 {
		return nil, &InputNotFoundError{Path: req.AudioPath, Kind: InputUndecodable, Reason: "decoded to zero samples"}
	}
	audioDuration := float64(len(samples)) / 16000.0

	attempts := make([]DeviceAttempt, 0, len(req.DeviceOrder))

	for _, device := range req.DeviceOrder {
		// Отмена вызывающим не считается отказом устройства
		// и не попадает в attempt trail
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		precision := PrecisionFor(device)
		if precision == "" {
			return nil, fmt.Errorf("%w: unknown device %q", ErrBadDeviceOrder, device)
		}

		// Префильтр по инвентарю: заведомо безнадёжные попытки пропускаем.
		// Только оптимизация - отказ создания обрабатывается в любом случае.
		if skip, detail := r.hopeless(device); skip {
			log.Printf("Runner: skipping %s: %s", device, detail)
			attempts = append(attempts, DeviceAttempt{
				Device:        device,
				Precision:     precision,
				Outcome:       AttemptFailure,
				FailureKind:   FailureConstruction,
				FailureDetail: detail,
			})
			continue
		}

		engCfg := EngineConfig{
			Profile:      req.Profile,
			Device:       device,
			Precision:    precision,
			LanguageHint: req.LanguageHint,
			NumThreads:   r.threads,
		}

		loadStart := time.Now()
		engine, err := r.construct(ctx, engCfg)
		loadTime := time.Since(loadStart)

		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			aErr := newAttemptError(FailureConstruction, err)
			log.Printf("Runner: %s construction failed in %.2fs: %v", device, loadTime.Seconds(), err)
			attempts = append(attempts, DeviceAttempt{
				Device:        device,
				Precision:     precision,
				Outcome:       AttemptFailure,
				FailureKind:   aErr.kind,
				FailureDetail: aErr.detail,
				LoadTime:      loadTime,
			})
			continue
		}

		log.Printf("Runner: engine ready on %s (%s) in %.2fs", device, precision, loadTime.Seconds())

		procStart := time.Now()
		segments, info, err := r.transcribe(ctx, engine, samples)
		procTime := time.Since(procStart)

		// Освобождение на каждом пути: и успех, и отказ транскрипции
		engine.Close()

		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return nil, cerr
			}
			// Отказ выполнения откатывает на следующее устройство так же,
			// как отказ создания: другое устройство может не иметь этой ошибки
			aErr := newAttemptError(FailureExecution, err)
			log.Printf("Runner: transcription on %s failed after %.2fs: %v", device, procTime.Seconds(), err)
			attempts = append(attempts, DeviceAttempt{
				Device:        device,
				Precision:     precision,
				Outcome:       AttemptFailure,
				FailureKind:   aErr.kind,
				FailureDetail: aErr.detail,
				LoadTime:      loadTime,
			})
			continue
		}

		attempts = append(attempts, DeviceAttempt{
			Device:    device,
			Precision: precision,
			Outcome:   AttemptSuccess,
			LoadTime:  loadTime,
		})

		if procTime <= 0 {
			procTime = time.Nanosecond
		}
		procSeconds := procTime.Seconds()

		result := &Result{
			Text:                       joinSegmentText(segments),
			Segments:                   segments,
			DetectedLanguage:           info.Language,
			DetectedLanguageConfidence: info.LanguageConfidence,
			AudioDuration:              audioDuration,
			ProcessingTime:             procSeconds,
			RealTimeFactor:             audioDuration / procSeconds,
			DeviceUsed:                 device,
			Attempts:                   attempts,
		}
		log.Printf("Runner: done on %s: %.1fs audio in %.2fs (%.1fx real-time, %d segments)",
			device, audioDuration, procSeconds, result.RealTimeFactor, len(segments))
		return result, nil
	}

	log.Printf("Runner: all %d devices exhausted for %s", len(attempts), req.AudioPath)
	return nil, &AllDevicesExhaustedError{Attempts: attempts}
}

// construct создаёт движок, нормализуя паники нижележащей библиотеки в ошибку
func (r *Runner) construct(ctx context.Context, cfg EngineConfig) (engine TranscriptionEngine, err error) {
	defer func() {
		if p := recover(); p != nil {
			engine = nil
			err = fmt.Errorf("engine construction panic: %v", p)
		}
	}()
	return r.factory.Construct(ctx, cfg)
}

// transcribe выполняет транскрипцию, нормализуя паники в ошибку
func (r *Runner) transcribe(ctx context.Context, engine TranscriptionEngine, samples []float32) (segments []TranscriptSegment, info TranscriptInfo, err error) {
	defer func() {
		if p := recover(); p != nil {
			segments, info = nil, TranscriptInfo{}
			err = fmt.Errorf("transcription panic: %v", p)
		}
	}()
	return engine.Transcribe(ctx, samples)
}

// hopeless проверяет по инвентарю, что попытка заведомо безнадёжна
func (r *Runner) hopeless(device Device) (bool, string) {
	if r.inventory == nil || device == DeviceCPU {
		return false, ""
	}
	if !r.inventory.Available(device) {
		return true, fmt.Sprintf("device %s not present", device)
	}
	if free, ok := r.inventory.FreeMemory(device); ok && free == 0 {
		return true, fmt.Sprintf("device %s has no free memory", device)
	}
	return false, ""
}

func validateDeviceOrder(order []Device) error {
	if len(order) == 0 {
		return fmt.Errorf("%w: empty", ErrBadDeviceOrder)
	}
	seen := make(map[Device]bool, len(order))
	for _, d := range order {
		if seen[d] {
			return fmt.Errorf("%w: duplicate device %q", ErrBadDeviceOrder, d)
		}
		seen[d] = true
	}
	return nil
}

// checkInput проверяет, что вход существует, читается и не пуст
func checkInput(path string) error {
	if path == "" {
		return &InputNotFoundError{Path: path, Kind: InputMissing, Reason: "empty path"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &InputNotFoundError{Path: path, Kind: InputMissing, Reason: err.Error()}
	}
	if info.IsDir() {
		return &InputNotFoundError{Path: path, Kind: InputMissing, Reason: "is a directory"}
	}
	if info.Size() == 0 {
		return &InputNotFoundError{Path: path, Kind: InputMissing, Reason: "file is empty"}
	}
	f, err := os.Open(path)
	if err != nil {
		return &InputNotFoundError{Path: path, Kind: InputMissing, Reason: err.Error()}
	}
	f.Close()
	return nil
}

// joinSegmentText склеивает текст сегментов: trim + одиночные пробелы
func joinSegmentText(segments []TranscriptSegment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
