// Проверка зависимостей окружения перед запуском прогонов.
//
// Запуск: go run ./cmd/checkdeps -model base
//
// Обязательные проверки: ONNX Runtime и декодирование аудио.
// CUDA и скачанные модели отмечаются, но не являются обязательными.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	ort "github.com/yalue/onnxruntime_go"

	"whisperbench/ai"
	"whisperbench/audio"
	"whisperbench/models"
)

func main() {
	profile := flag.String("model", "base", "профиль модели для проверки файлов")
	modelsDir := flag.String("models-dir", envOr("WHISPERBENCH_MODELS_DIR", "data/models"), "директория файлов моделей")
	flag.Parse()

	failed := false

	if err := checkONNXRuntime(); err != nil {
		fmt.Printf("❌ onnxruntime: %v\n", err)
		failed = true
	} else {
		fmt.Println("✅ onnxruntime")
	}

	inventory := ai.NewSystemInventory()
	if gpus := inventory.GPUs(); len(gpus) > 0 {
		fmt.Printf("✅ cuda: %s (%d MiB free)\n", gpus[0].Name, gpus[0].FreeMemory/(1024*1024))
	} else {
		fmt.Println("⚠️ cuda: no GPU detected, cpu only")
	}

	checkModels(*modelsDir, *profile)

	if err := checkAudioDecode(); err != nil {
		fmt.Printf("❌ audio decode: %v\n", err)
		failed = true
	} else {
		fmt.Println("✅ audio decode")
	}

	if failed {
		fmt.Println("\nRequired dependencies missing")
		os.Exit(1)
	}
	fmt.Println("\nAll required dependencies available")
}

// checkONNXRuntime инициализирует и сразу освобождает окружение ONNX Runtime
func checkONNXRuntime() error {
	if libPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return err
	}
	return ort.DestroyEnvironment()
}

func checkModels(modelsDir, profile string) {
	mgr, err := models.NewManager(modelsDir)
	if err != nil {
		fmt.Printf("⚠️ models: %v\n", err)
		return
	}
	for _, precision := range []models.Precision{models.PrecisionFloat, models.PrecisionInt8} {
		if mgr.IsDownloaded(profile, string(precision)) {
			fmt.Printf("✅ model %s (%s)\n", profile, precision)
		} else {
			fmt.Printf("⚠️ model %s (%s): not downloaded\n", profile, precision)
		}
	}
}

// checkAudioDecode пишет короткий синусоидальный WAV и декодирует его обратно
func checkAudioDecode() error {
	dir, err := os.MkdirTemp("", "checkdeps")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "probe.wav")
	if err := writeTestWAV(path); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	samples, err := (&audio.Loader{}).Load(path)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("decoded zero samples")
	}
	return nil
}

func writeTestWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	const rate = 16000
	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		SourceBitDepth: 16,
		Data:           make([]int, rate/10),
	}
	for i := range buf.Data {
		buf.Data[i] = int(10000 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
