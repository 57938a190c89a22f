// Package config предоставляет явную конфигурацию процесса.
// Все настройки, влияющие на работу движков (потоки, устройства, директории),
// живут здесь и передаются вниз объектом - не через изменяемое окружение.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"runtime"
)

// Config конфигурация процесса
type Config struct {
	ModelsDir string // директория файлов моделей
	DataDir   string // директория отчётов и рабочих данных
	Port      string // порт websocket сервера
	Profile   string // размер модели по умолчанию
	Language  string // язык распознавания, "" = автоопределение
	Device    string // предпочтение устройства: auto, cuda, cpu
	Threads   int    // потоки декодера
	Label     string // метка машины/конфигурации для отчётов
}

// Load читает конфигурацию из флагов с env-дефолтами
func Load() *Config {
	modelsDir := flag.String("models", envOr("WHISPERBENCH_MODELS_DIR", "data/models"), "Directory for downloaded models")
	dataDir := flag.String("data", envOr("WHISPERBENCH_DATA_DIR", "data/reports"), "Directory for benchmark reports")
	port := flag.String("port", "8090", "Server port")
	profile := flag.String("profile", "base", "Model profile: tiny|base|small|medium|large")
	language := flag.String("lang", "", "Language code (e.g. en, ru); empty = auto-detect")
	device := flag.String("device", "auto", "Device preference: auto|cuda|cpu")
	threads := flag.Int("threads", defaultThreads(), "Number of decoder threads")
	label := flag.String("label", "", "Optional machine/config label for reports")
	flag.Parse()

	return &Config{
		ModelsDir: *modelsDir,
		DataDir:   *dataDir,
		Port:      *port,
		Profile:   *profile,
		Language:  *language,
		Device:    *device,
		Threads:   *threads,
		Label:     *label,
	}
}

// ReportPath возвращает путь файла отчёта внутри DataDir
func (c *Config) ReportPath(name string) string {
	return filepath.Join(c.DataDir, name)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultThreads ограничивает потоки декодера сверху: больше 8 потоков
// offline Whisper обычно не масштабируется
func defaultThreads() int {
	n := runtime.NumCPU()
	if n > 8 {
		return 8
	}
	return n
}
