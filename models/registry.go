// Package models предоставляет реестр и загрузку моделей Whisper
package models

// Precision режим точности файлов модели
type Precision string

const (
	// PrecisionFloat - файлы полной/половинной точности (для ускорителей)
	PrecisionFloat Precision = "float16"
	// PrecisionInt8 - квантизованные файлы (для CPU)
	PrecisionInt8 Precision = "int8"
)

// Имена файлов модели внутри директории профиля
const (
	FileEncoder     = "encoder.onnx"
	FileDecoder     = "decoder.onnx"
	FileEncoderInt8 = "encoder.int8.onnx"
	FileDecoderInt8 = "decoder.int8.onnx"
	FileTokens      = "tokens.txt"
)

// ModelInfo информация о профиле модели Whisper.
// Каждый профиль это пять файлов: encoder/decoder в двух точностях
// плюс общий словарь токенов.
type ModelInfo struct {
	ID          string   `json:"id"`
	Profile     string   `json:"profile"`
	Name        string   `json:"name"`
	Size        string   `json:"size"`
	SizeBytes   int64    `json:"sizeBytes"`
	Description string   `json:"description"`
	Languages   []string `json:"languages"`
	Speed       string   `json:"speed"`
	Recommended bool     `json:"recommended,omitempty"`

	// URL файлов (float точность)
	EncoderURL string `json:"encoderUrl"`
	DecoderURL string `json:"decoderUrl"`
	TokensURL  string `json:"tokensUrl"`

	// URL квантизованных файлов (int8)
	EncoderInt8URL string `json:"encoderInt8Url"`
	DecoderInt8URL string `json:"decoderInt8Url"`
}

// ModelStatus статус модели на устройстве
type ModelStatus string

const (
	ModelStatusNotDownloaded ModelStatus = "not_downloaded"
	ModelStatusDownloading   ModelStatus = "downloading"
	ModelStatusDownloaded    ModelStatus = "downloaded"
	ModelStatusError         ModelStatus = "error"
)

// ModelState состояние модели с информацией
type ModelState struct {
	ModelInfo
	Status   ModelStatus `json:"status"`
	Progress float64     `json:"progress,omitempty"` // 0-100
	Error    string      `json:"error,omitempty"`
	Path     string      `json:"path,omitempty"` // директория файлов модели
}

const whisperHubBase = "https://huggingface.co/csukuangfj/sherpa-onnx-whisper-"

// whisperURL собирает URL файла модели на Hugging Face
func whisperURL(repo, file string) string {
	return whisperHubBase + repo + "/resolve/main/" + file
}

// Registry реестр доступных профилей моделей
var Registry = []ModelInfo{
	{
		ID:             "whisper-tiny",
		Profile:        "tiny",
		Name:           "Tiny",
		Size:           "111 MB",
		SizeBytes:      116_000_000,
		Description:    "Самая быстрая модель, базовое качество",
		Languages:      []string{"multi"},
		Speed:          "~10x",
		EncoderURL:     whisperURL("tiny", "tiny-encoder.onnx"),
		DecoderURL:     whisperURL("tiny", "tiny-decoder.onnx"),
		TokensURL:      whisperURL("tiny", "tiny-tokens.txt"),
		EncoderInt8URL: whisperURL("tiny", "tiny-encoder.int8.onnx"),
		DecoderInt8URL: whisperURL("tiny", "tiny-decoder.int8.onnx"),
	},
	{
		ID:             "whisper-base",
		Profile:        "base",
		Name:           "Base",
		Size:           "205 MB",
		SizeBytes:      215_000_000,
		Description:    "Хороший баланс скорости и качества",
		Languages:      []string{"multi"},
		Speed:          "~7x",
		Recommended:    true,
		EncoderURL:     whisperURL("base", "base-encoder.onnx"),
		DecoderURL:     whisperURL("base", "base-decoder.onnx"),
		TokensURL:      whisperURL("base", "base-tokens.txt"),
		EncoderInt8URL: whisperURL("base", "base-encoder.int8.onnx"),
		DecoderInt8URL: whisperURL("base", "base-decoder.int8.onnx"),
	},
	{
		ID:             "whisper-small",
		Profile:        "small",
		Name:           "Small",
		Size:           "610 MB",
		SizeBytes:      640_000_000,
		Description:    "Хорошее качество распознавания",
		Languages:      []string{"multi"},
		Speed:          "~4x",
		EncoderURL:     whisperURL("small", "small-encoder.onnx"),
		DecoderURL:     whisperURL("small", "small-decoder.onnx"),
		TokensURL:      whisperURL("small", "small-tokens.txt"),
		EncoderInt8URL: whisperURL("small", "small-encoder.int8.onnx"),
		DecoderInt8URL: whisperURL("small", "small-decoder.int8.onnx"),
	},
	{
		ID:             "whisper-medium",
		Profile:        "medium",
		Name:           "Medium",
		Size:           "1.9 GB",
		SizeBytes:      2_000_000_000,
		Description:    "Высокое качество распознавания",
		Languages:      []string{"multi"},
		Speed:          "~2x",
		EncoderURL:     whisperURL("medium", "medium-encoder.onnx"),
		DecoderURL:     whisperURL("medium", "medium-decoder.onnx"),
		TokensURL:      whisperURL("medium", "medium-tokens.txt"),
		EncoderInt8URL: whisperURL("medium", "medium-encoder.int8.onnx"),
		DecoderInt8URL: whisperURL("medium", "medium-decoder.int8.onnx"),
	},
	{
		ID:             "whisper-large",
		Profile:        "large",
		Name:           "Large V3",
		Size:           "3.9 GB",
		SizeBytes:      4_100_000_000,
		Description:    "Максимальное качество распознавания",
		Languages:      []string{"multi"},
		Speed:          "~1x",
		EncoderURL:     whisperURL("large-v3", "large-v3-encoder.onnx"),
		DecoderURL:     whisperURL("large-v3", "large-v3-decoder.onnx"),
		TokensURL:      whisperURL("large-v3", "large-v3-tokens.txt"),
		EncoderInt8URL: whisperURL("large-v3", "large-v3-encoder.int8.onnx"),
		DecoderInt8URL: whisperURL("large-v3", "large-v3-decoder.int8.onnx"),
	},
}

// GetModelByID возвращает информацию о модели по ID
func GetModelByID(id string) *ModelInfo {
	for i := range Registry {
		if Registry[i].ID == id {
			return &Registry[i]
		}
	}
	return nil
}

// GetModelByProfile возвращает информацию о модели по имени профиля
func GetModelByProfile(profile string) *ModelInfo {
	for i := range Registry {
		if Registry[i].Profile == profile {
			return &Registry[i]
		}
	}
	return nil
}
