// Транскрипция одного аудио файла из командной строки.
//
// Запуск: go run ./cmd/transcribe -in audio.wav -model base -device auto
//
// Формат вывода: markdown (по умолчанию), json или text.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"whisperbench/ai"
	"whisperbench/audio"
	"whisperbench/models"
)

func main() {
	inPath := flag.String("in", "", "путь к аудио файлу (wav или mp3)")
	profile := flag.String("model", "base", "размер модели: tiny, base, small, medium, large")
	language := flag.String("lang", "", "код языка (en, ru, ...), пусто = автоопределение")
	device := flag.String("device", "auto", "устройство: auto, cuda, cpu")
	format := flag.String("format", "markdown", "формат вывода: markdown, json, text")
	outPath := flag.String("out", "", "файл вывода, пусто = stdout")
	modelsDir := flag.String("models-dir", envOr("WHISPERBENCH_MODELS_DIR", "data/models"), "директория файлов моделей")
	threads := flag.Int("threads", 0, "потоки декодера, 0 = по числу ядер")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -in is required")
		flag.Usage()
		os.Exit(1)
	}

	order, err := ai.DeviceOrderFor(*device)
	if err != nil {
		fatal(err)
	}

	modelMgr, err := models.NewManager(*modelsDir)
	if err != nil {
		fatal(err)
	}

	runner, err := ai.NewRunner(ai.RunnerConfig{
		Factory:   &ai.WhisperFactory{Models: modelMgr},
		Loader:    &audio.Loader{},
		Inventory: ai.NewSystemInventory(),
		Threads:   *threads,
	})
	if err != nil {
		fatal(err)
	}

	result, err := runner.Run(context.Background(), ai.Request{
		AudioPath:    *inPath,
		LanguageHint: *language,
		DeviceOrder:  order,
		Profile:      ai.Profile(*profile),
	})
	if err != nil {
		var exhausted *ai.AllDevicesExhaustedError
		if errors.As(err, &exhausted) {
			fmt.Fprintln(os.Stderr, "Error: all devices exhausted:")
			for _, a := range exhausted.Attempts {
				fmt.Fprintf(os.Stderr, "  %s (%s): %s: %s\n", a.Device, a.Precision, a.FailureKind, a.FailureDetail)
			}
			os.Exit(1)
		}
		fatal(err)
	}

	output, err := render(result, *inPath, *format)
	if err != nil {
		fatal(err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(output), 0644); err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", *outPath)
	} else {
		fmt.Println(output)
	}

	log.Printf("Transcription completed: %.1fx real-time on %s", result.RealTimeFactor, result.DeviceUsed)
}

func render(result *ai.Result, inPath, format string) (string, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil

	case "text":
		return result.Text, nil

	case "markdown":
		var b strings.Builder
		fmt.Fprintf(&b, "# Audio Transcription\n\n")
		fmt.Fprintf(&b, "**File**: %s\n", filepath.Base(inPath))
		fmt.Fprintf(&b, "**Language**: %s (%.1f%% confidence)\n",
			result.DetectedLanguage, result.DetectedLanguageConfidence*100)
		fmt.Fprintf(&b, "**Duration**: %.1fs\n", result.AudioDuration)
		fmt.Fprintf(&b, "**Processing**: %.2fs (%.1fx real-time)\n",
			result.ProcessingTime, result.RealTimeFactor)
		fmt.Fprintf(&b, "**Device**: %s (%s)\n", result.DeviceUsed, precisionUsed(result))
		if note := fallbackNote(result); note != "" {
			fmt.Fprintf(&b, "**Note**: %s\n", note)
		}
		fmt.Fprintf(&b, "\n## Transcript\n\n%s\n", result.Text)
		return b.String(), nil

	default:
		return "", fmt.Errorf("unknown format: %s", format)
	}
}

func precisionUsed(result *ai.Result) string {
	for _, a := range result.Attempts {
		if a.Outcome == ai.AttemptSuccess {
			return string(a.Precision)
		}
	}
	return ""
}

// fallbackNote описывает неудачные попытки устройств, если они были
func fallbackNote(result *ai.Result) string {
	var failed []string
	for _, a := range result.Attempts {
		if a.Outcome == ai.AttemptFailure {
			failed = append(failed, fmt.Sprintf("%s (%s)", a.Device, a.FailureDetail))
		}
	}
	if len(failed) == 0 {
		return ""
	}
	return "fell back after failed attempts: " + strings.Join(failed, "; ")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
