// Package ai предоставляет интерфейсы и реализации для транскрипции речи
package ai

import "context"

// TranscriptSegment сегмент транскрипции с таймстемпами
type TranscriptSegment struct {
	Start float64 // секунды от начала аудио
	End   float64 // секунды от начала аудио
	Text  string  // текст сегмента (trimmed)
}

// TranscriptInfo метаданные одной транскрипции
type TranscriptInfo struct {
	Language           string  // определённый или заданный язык (ISO код)
	LanguageConfidence float64 // уверенность определения языка, [0,1]
}

// Device класс вычислительного устройства
type Device string

const (
	// DeviceCUDA - ускоритель NVIDIA (доступность не гарантирована)
	DeviceCUDA Device = "cuda"
	// DeviceCPU - универсальный процессор, доступен всегда
	DeviceCPU Device = "cpu"
)

// PrecisionMode численный режим движка
type PrecisionMode string

const (
	// PrecisionFloat16 - half precision, режим для ускорителей
	PrecisionFloat16 PrecisionMode = "float16"
	// PrecisionInt8 - квантизованный целочисленный режим для CPU
	PrecisionInt8 PrecisionMode = "int8"
)

// precisionByDevice фиксированная таблица device -> precision.
// Не вычисляется: класс устройства однозначно задаёт режим.
var precisionByDevice = map[Device]PrecisionMode{
	DeviceCUDA: PrecisionFloat16,
	DeviceCPU:  PrecisionInt8,
}

// PrecisionFor возвращает режим точности для класса устройства
func PrecisionFor(device Device) PrecisionMode {
	return precisionByDevice[device]
}

// Profile размер модели Whisper
type Profile string

const (
	ProfileTiny   Profile = "tiny"
	ProfileBase   Profile = "base"
	ProfileSmall  Profile = "small"
	ProfileMedium Profile = "medium"
	ProfileLarge  Profile = "large"
)

// KnownProfiles все поддерживаемые размеры моделей
var KnownProfiles = []Profile{ProfileTiny, ProfileBase, ProfileSmall, ProfileMedium, ProfileLarge}

// ValidProfile проверяет, что профиль известен
func ValidProfile(p Profile) bool {
	for _, known := range KnownProfiles {
		if p == known {
			return true
		}
	}
	return false
}

// TranscriptionEngine интерфейс движка транскрипции, привязанного
// к конкретному устройству и режиму точности.
// Экземпляр принадлежит одному вызову Runner.Run и закрывается им.
type TranscriptionEngine interface {
	// Transcribe транскрибирует аудио и возвращает сегменты с таймстемпами
	// samples - аудио данные в формате float32, 16kHz, mono
	Transcribe(ctx context.Context, samples []float32) ([]TranscriptSegment, TranscriptInfo, error)

	// Device возвращает устройство, на котором работает движок
	Device() Device

	// PrecisionMode возвращает численный режим движка
	PrecisionMode() PrecisionMode

	// Close освобождает ресурсы движка (включая память устройства)
	Close()
}

// EngineConfig конфигурация для создания движка
type EngineConfig struct {
	Profile      Profile       // размер модели
	Device       Device        // целевое устройство
	Precision    PrecisionMode // численный режим
	LanguageHint string        // язык распознавания, "" = автоопределение
	NumThreads   int           // количество потоков декодера
}

// EngineFactory создаёт движок для конфигурации.
// Возвращает ошибку, если устройство недоступно или модель не загружается.
type EngineFactory interface {
	Construct(ctx context.Context, cfg EngineConfig) (TranscriptionEngine, error)
}
